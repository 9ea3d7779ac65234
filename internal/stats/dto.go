package stats

import "github.com/google/uuid"

// SurveyResults is the teacher dashboard view of one survey: for choice
// questions a per-option occurrence count, for free-text questions only
// the graded/ungraded split (answer content is never aggregated).
type SurveyResults struct {
	SurveyID       uuid.UUID                  `json:"survey_id"`
	Title          string                     `json:"title"`
	TotalResponses int64                      `json:"total_responses"`
	Results        map[uuid.UUID]Distribution `json:"results"`
}

type Distribution map[string]int64

type DashboardStats struct {
	TotalStudents    int64   `json:"total_students"`
	ActiveSurveys    int64   `json:"active_surveys"`
	SurveysCompleted int64   `json:"surveys_completed"`
	AverageScore     float64 `json:"average_score"`
}

// RecentQuestion comes from the QA subsystem, which lives outside this
// service. The aggregator only relays it.
type RecentQuestion struct {
	ID       string `json:"id"`
	Student  string `json:"student"`
	Question string `json:"question"`
	Time     string `json:"time"`
}
