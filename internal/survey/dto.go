package survey

import (
	"time"

	"github.com/google/uuid"
)

// Create payloads use camelCase field names: that is the one canonical
// naming convention at the API boundary. Entities keep snake_case for
// storage and response bodies.

type QuestionCreateDTO struct {
	QuestionType      QuestionType  `json:"questionType" validate:"required"`
	QuestionText      string        `json:"questionText" validate:"required"`
	QuestionOrder     int           `json:"questionOrder" validate:"required,gte=1"`
	Score             float64       `json:"score" validate:"gte=0"`
	Difficulty        string        `json:"difficulty,omitempty"`
	Options           []string      `json:"options,omitempty"`
	CorrectAnswer     interface{}   `json:"correctAnswer,omitempty"`
	AnswerExplanation string        `json:"answerExplanation,omitempty"`
	Tags              []string      `json:"tags,omitempty"`
	KnowledgePoints   []string      `json:"knowledgePoints,omitempty"`
	IsRequired        *bool         `json:"isRequired,omitempty"`
	ReferenceFiles    []string      `json:"referenceFiles,omitempty"`
	MinWordCount      *int          `json:"minWordCount,omitempty"`
	GradingCriteria   interface{}   `json:"gradingCriteria,omitempty"`
}

type CreateSurveyDTO struct {
	Title                 string              `json:"title" validate:"required,max=200"`
	Description           string              `json:"description,omitempty"`
	SurveyType            Type                `json:"surveyType,omitempty"`
	CourseID              *uuid.UUID          `json:"courseId,omitempty"`
	ClassID               *uuid.UUID          `json:"classId,omitempty"`
	TotalScore            *float64            `json:"totalScore,omitempty" validate:"omitempty,gt=0"`
	PassScore             *float64            `json:"passScore,omitempty" validate:"omitempty,gte=0"`
	TimeLimit             *int                `json:"timeLimit,omitempty" validate:"omitempty,gt=0"`
	AllowMultipleAttempts bool                `json:"allowMultipleAttempts,omitempty"`
	MaxAttempts           int                 `json:"maxAttempts,omitempty" validate:"omitempty,gte=1"`
	ShowAnswer            bool                `json:"showAnswer,omitempty"`
	ShuffleQuestions      bool                `json:"shuffleQuestions,omitempty"`
	StartTime             *time.Time          `json:"startTime,omitempty"`
	EndTime               *time.Time          `json:"endTime,omitempty"`
	Questions             []QuestionCreateDTO `json:"questions" validate:"required,min=1,dive"`
}

// SurveyDetail is a created/fetched survey plus soft-invariant warnings
// (e.g. question scores exceeding the configured total).
type SurveyDetail struct {
	Survey   *Survey  `json:"survey"`
	Warnings []string `json:"warnings,omitempty"`
}

// SurveyInfo is the teacher list row: survey metadata plus response counts.
type SurveyInfo struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Status    Status    `json:"status"`
	Responses int64     `json:"responses"`
	Total     int64     `json:"total"`
	CreatedAt time.Time `json:"created_at"`
}

type Filter struct {
	TeacherID *uuid.UUID
	Status    *Status
}
