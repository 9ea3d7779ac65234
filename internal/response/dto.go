package response

import "github.com/google/uuid"

type SubmitDTO struct {
	Answers map[uuid.UUID]interface{} `json:"answers"`
}

type ManualGradeDTO struct {
	Score   float64 `json:"score"`
	Comment string  `json:"comment,omitempty"`
}

type SubmitAck struct {
	ResponseID      uuid.UUID `json:"response_id"`
	AttemptNumber   int       `json:"attempt_number"`
	Status          Status    `json:"status"`
	TotalScore      *float64  `json:"total_score,omitempty"`
	PercentageScore *float64  `json:"percentage_score,omitempty"`
	IsPassed        *bool     `json:"is_passed,omitempty"`
	TimeSpent       *int      `json:"time_spent,omitempty"`
}

func ackFrom(resp *SurveyResponse) SubmitAck {
	return SubmitAck{
		ResponseID:      resp.ID,
		AttemptNumber:   resp.AttemptNumber,
		Status:          resp.Status,
		TotalScore:      resp.TotalScore,
		PercentageScore: resp.PercentageScore,
		IsPassed:        resp.IsPassed,
		TimeSpent:       resp.TimeSpent,
	}
}
