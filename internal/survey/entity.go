package survey

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
)

type Survey struct {
	ID                    uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Title                 string         `gorm:"type:varchar(200);not null" json:"title"`
	Description           string         `gorm:"type:text" json:"description,omitempty"`
	TeacherID             uuid.UUID      `gorm:"type:uuid;not null;index" json:"teacher_id"`
	CourseID              *uuid.UUID     `gorm:"type:uuid;index" json:"course_id,omitempty"`
	ClassID               *uuid.UUID     `gorm:"type:uuid" json:"class_id,omitempty"`
	SurveyType            Type           `gorm:"type:varchar(50);not null;default:'questionnaire'" json:"survey_type"`
	TargetStudents        datatypes.JSON `gorm:"type:jsonb" json:"target_students,omitempty"`
	GenerationMethod      string         `gorm:"type:varchar(50);not null;default:'manual'" json:"generation_method"`
	GenerationPrompt      string         `gorm:"type:text" json:"generation_prompt,omitempty"`
	Status                Status         `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	TotalScore            float64        `gorm:"not null;default:100" json:"total_score"`
	PassScore             float64        `gorm:"not null;default:60" json:"pass_score"`
	TimeLimit             *int           `json:"time_limit,omitempty"` // minutes
	AllowMultipleAttempts bool           `gorm:"not null;default:false" json:"allow_multiple_attempts"`
	MaxAttempts           int            `gorm:"not null;default:1" json:"max_attempts"`
	ShowAnswer            bool           `gorm:"not null;default:false" json:"show_answer"`
	ShuffleQuestions      bool           `gorm:"not null;default:false" json:"shuffle_questions"`
	StartTime             *time.Time     `json:"start_time,omitempty"`
	EndTime               *time.Time     `json:"end_time,omitempty"`
	CreatedAt             time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt             time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	PublishedAt           *time.Time     `json:"published_at,omitempty"`

	Questions []Question `gorm:"foreignKey:SurveyID;constraint:OnDelete:CASCADE" json:"questions,omitempty"`
}

func (Survey) TableName() string { return "surveys" }

// WithinWindow reports whether new attempts may start at t. A missing bound
// leaves that side of the window open.
func (s *Survey) WithinWindow(t time.Time) bool {
	if s.StartTime != nil && t.Before(*s.StartTime) {
		return false
	}
	if s.EndTime != nil && t.After(*s.EndTime) {
		return false
	}
	return true
}

// AttemptLimit is the effective per-student cap: a survey that disallows
// multiple attempts is always capped at one regardless of max_attempts.
func (s *Survey) AttemptLimit() int {
	if !s.AllowMultipleAttempts {
		return 1
	}
	if s.MaxAttempts < 1 {
		return 1
	}
	return s.MaxAttempts
}

type Question struct {
	ID                uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SurveyID          uuid.UUID      `gorm:"type:uuid;not null;index;uniqueIndex:idx_questions_survey_order,priority:1" json:"survey_id"`
	QuestionType      QuestionType   `gorm:"type:varchar(50);not null;index" json:"question_type"`
	QuestionText      string         `gorm:"type:text;not null" json:"question_text"`
	QuestionOrder     int            `gorm:"not null;uniqueIndex:idx_questions_survey_order,priority:2" json:"question_order"`
	Score             float64        `gorm:"type:decimal(10,2);not null;default:0" json:"score"`
	Difficulty        string         `gorm:"type:varchar(20);default:'medium'" json:"difficulty,omitempty"`
	Options           datatypes.JSON `gorm:"type:jsonb" json:"options,omitempty"`
	CorrectAnswer     datatypes.JSON `gorm:"type:jsonb" json:"correct_answer,omitempty"`
	AnswerExplanation string         `gorm:"type:text" json:"answer_explanation,omitempty"`
	Tags              pq.StringArray `gorm:"type:text[]" json:"tags,omitempty"`
	KnowledgePoints   pq.StringArray `gorm:"type:text[]" json:"knowledge_points,omitempty"`
	IsRequired        bool           `gorm:"not null;default:true" json:"is_required"`
	ReferenceFiles    datatypes.JSON `gorm:"type:jsonb" json:"reference_files,omitempty"`
	MinWordCount      *int           `json:"min_word_count,omitempty"`
	GradingCriteria   datatypes.JSON `gorm:"type:jsonb" json:"grading_criteria,omitempty"`
	CreatedAt         time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Question) TableName() string { return "questions" }
