package response

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusSubmitted  Status = "submitted"
	StatusGraded     Status = "graded"
)

func (s Status) IsValid() bool {
	return s == StatusInProgress || s == StatusSubmitted || s == StatusGraded
}

// SurveyResponse is one attempt by one student. Attempt numbers are
// 1-based and unique per (survey, student); the composite unique index is
// what serializes concurrent allocation.
type SurveyResponse struct {
	ID              uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SurveyID        uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:idx_responses_attempt,priority:1" json:"survey_id"`
	StudentID       uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:idx_responses_attempt,priority:2" json:"student_id"`
	AttemptNumber   int        `gorm:"not null;default:1;uniqueIndex:idx_responses_attempt,priority:3" json:"attempt_number"`
	Status          Status     `gorm:"type:varchar(20);not null;default:'in_progress';index" json:"status"`
	TotalScore      *float64   `gorm:"type:decimal(5,2)" json:"total_score,omitempty"`
	PercentageScore *float64   `gorm:"type:decimal(5,2)" json:"percentage_score,omitempty"`
	IsPassed        *bool      `json:"is_passed,omitempty"`
	StartTime       time.Time  `gorm:"not null" json:"start_time"`
	SubmitTime      *time.Time `json:"submit_time,omitempty"`
	TimeSpent       *int       `json:"time_spent,omitempty"` // seconds
	IPAddress       string     `gorm:"type:varchar(50)" json:"ip_address,omitempty"`
	UserAgent       string     `gorm:"type:text" json:"user_agent,omitempty"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Answers []Answer `gorm:"foreignKey:ResponseID;constraint:OnDelete:CASCADE" json:"answers,omitempty"`
}

func (SurveyResponse) TableName() string { return "survey_responses" }

type Answer struct {
	ID             uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ResponseID     uuid.UUID      `gorm:"type:uuid;not null;index;uniqueIndex:idx_answers_response_question,priority:1" json:"response_id"`
	QuestionID     uuid.UUID      `gorm:"type:uuid;not null;index;uniqueIndex:idx_answers_response_question,priority:2" json:"question_id"`
	StudentAnswer  datatypes.JSON `gorm:"type:jsonb" json:"student_answer,omitempty"`
	IsCorrect      *bool          `json:"is_correct,omitempty"`
	Score          float64        `gorm:"type:decimal(5,2);not null;default:0" json:"score"`
	TeacherComment string         `gorm:"type:text" json:"teacher_comment,omitempty"`
	AutoGraded     bool           `gorm:"not null;default:false" json:"auto_graded"`
	GradedBy       *uuid.UUID     `gorm:"type:uuid" json:"graded_by,omitempty"`
	GradedAt       *time.Time     `json:"graded_at,omitempty"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Answer) TableName() string { return "answers" }

// IsGraded reports whether the answer carries a final score: either the
// engine graded it or a teacher did.
func (a *Answer) IsGraded() bool {
	return a.AutoGraded || a.GradedAt != nil
}
