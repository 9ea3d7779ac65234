package stats

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/edulane/survey-backend/internal/apperr"
	"github.com/edulane/survey-backend/internal/response"
	"github.com/edulane/survey-backend/internal/survey"
)

// QASource is the external question-answering subsystem. A nil source is
// valid and yields an empty recent-questions list.
type QASource interface {
	RecentQuestions(ctx context.Context, teacherID uuid.UUID, limit int) ([]RecentQuestion, error)
}

type Service interface {
	SurveyResults(ctx context.Context, surveyID uuid.UUID) (*SurveyResults, error)
	DashboardStats(ctx context.Context, teacherID uuid.UUID) (*DashboardStats, error)
	RecentQuestions(ctx context.Context, teacherID uuid.UUID) ([]RecentQuestion, error)
	// ResponseCounts satisfies survey.ResponseCounts for the teacher list.
	ResponseCounts(ctx context.Context, surveyIDs []uuid.UUID) (map[uuid.UUID]survey.AttemptCounts, error)
}

type service struct {
	repo    Repository
	surveys survey.Repository
	qa      QASource
}

func NewService(repo Repository, surveys survey.Repository, qa QASource) Service {
	return &service{repo: repo, surveys: surveys, qa: qa}
}

// SurveyResults recomputes the distribution on every call; with current
// response volumes a persisted rollup is not worth the invalidation
// machinery.
func (s *service) SurveyResults(ctx context.Context, surveyID uuid.UUID) (*SurveyResults, error) {
	sv, err := s.surveys.FindByID(ctx, surveyID)
	if err != nil {
		return nil, apperr.Storage("fetch survey", err)
	}
	if sv == nil {
		return nil, apperr.NotFound("survey")
	}

	responses, err := s.repo.ListCompleted(ctx, surveyID)
	if err != nil {
		return nil, apperr.Storage("list completed responses", err)
	}

	results := make(map[uuid.UUID]Distribution, len(sv.Questions))
	byID := make(map[uuid.UUID]*survey.Question, len(sv.Questions))
	for i := range sv.Questions {
		q := &sv.Questions[i]
		byID[q.ID] = q
		results[q.ID] = Distribution{}
	}

	for i := range responses {
		for j := range responses[i].Answers {
			a := &responses[i].Answers[j]
			q, ok := byID[a.QuestionID]
			if !ok {
				continue
			}
			tally(results[q.ID], q, a)
		}
	}

	return &SurveyResults{
		SurveyID:       sv.ID,
		Title:          sv.Title,
		TotalResponses: int64(len(responses)),
		Results:        results,
	}, nil
}

func tally(dist Distribution, q *survey.Question, a *response.Answer) {
	if q.QuestionType.IsChoice() {
		var payload interface{}
		if err := json.Unmarshal(a.StudentAnswer, &payload); err != nil {
			return
		}
		switch v := payload.(type) {
		case string:
			dist[v]++
		case []interface{}:
			for _, e := range v {
				if s, ok := e.(string); ok {
					dist[s]++
				}
			}
		}
		return
	}

	// free-text: count grading progress only
	if a.IsGraded() {
		dist["graded"]++
	} else {
		dist["ungraded"]++
	}
}

func (s *service) DashboardStats(ctx context.Context, teacherID uuid.UUID) (*DashboardStats, error) {
	surveys, err := s.repo.TeacherSurveys(ctx, teacherID)
	if err != nil {
		return nil, apperr.Storage("list teacher surveys", err)
	}

	ids := make([]uuid.UUID, len(surveys))
	var active int64
	for i, sv := range surveys {
		ids[i] = sv.ID
		if sv.Status == survey.StatusPublished {
			active++
		}
	}

	counts, err := s.repo.CountBySurvey(ctx, ids)
	if err != nil {
		return nil, apperr.Storage("count responses", err)
	}
	var completed int64
	for _, row := range counts {
		completed += row.Completed
	}

	students, err := s.repo.DistinctStudents(ctx, ids)
	if err != nil {
		return nil, apperr.Storage("count students", err)
	}
	avg, err := s.repo.AveragePercentage(ctx, ids)
	if err != nil {
		return nil, apperr.Storage("average score", err)
	}

	return &DashboardStats{
		TotalStudents:    students,
		ActiveSurveys:    active,
		SurveysCompleted: completed,
		AverageScore:     avg,
	}, nil
}

func (s *service) RecentQuestions(ctx context.Context, teacherID uuid.UUID) ([]RecentQuestion, error) {
	if s.qa == nil {
		return []RecentQuestion{}, nil
	}
	questions, err := s.qa.RecentQuestions(ctx, teacherID, 10)
	if err != nil {
		return nil, apperr.Storage("fetch recent questions", err)
	}
	return questions, nil
}

func (s *service) ResponseCounts(ctx context.Context, surveyIDs []uuid.UUID) (map[uuid.UUID]survey.AttemptCounts, error) {
	rows, err := s.repo.CountBySurvey(ctx, surveyIDs)
	if err != nil {
		return nil, apperr.Storage("count responses", err)
	}

	out := make(map[uuid.UUID]survey.AttemptCounts, len(rows))
	for id, row := range rows {
		out[id] = survey.AttemptCounts{Completed: row.Completed, Total: row.Total}
	}
	return out, nil
}
