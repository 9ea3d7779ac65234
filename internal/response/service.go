package response

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edulane/survey-backend/internal/apperr"
	"github.com/edulane/survey-backend/internal/config"
	"github.com/edulane/survey-backend/internal/grading"
	"github.com/edulane/survey-backend/internal/survey"
)

// attemptInsertRetries bounds the retry loop racing on the
// (survey, student, attempt_number) unique constraint.
const attemptInsertRetries = 3

// AttemptMeta carries request metadata recorded on the attempt row.
type AttemptMeta struct {
	IPAddress string
	UserAgent string
}

type Service interface {
	StartAttempt(ctx context.Context, surveyID, studentID uuid.UUID, meta AttemptMeta) (*SurveyResponse, error)
	SubmitAnswers(ctx context.Context, responseID, studentID uuid.UUID, answers map[uuid.UUID]interface{}) (*SurveyResponse, error)
	// SubmitToSurvey resolves the student's open attempt (starting one when
	// none exists) and submits in a single call.
	SubmitToSurvey(ctx context.Context, surveyID, studentID uuid.UUID, answers map[uuid.UUID]interface{}, meta AttemptMeta) (*SurveyResponse, error)
	ManualGrade(ctx context.Context, answerID, graderID uuid.UUID, score float64, comment string) (*Answer, error)
	Get(ctx context.Context, id uuid.UUID) (*SurveyResponse, error)
	ListBySurvey(ctx context.Context, surveyID uuid.UUID) ([]SurveyResponse, error)
	ListMine(ctx context.Context, surveyID, studentID uuid.UUID) ([]SurveyResponse, error)
}

type service struct {
	repo    Repository
	surveys survey.Repository
}

func NewService(repo Repository, surveys survey.Repository) Service {
	return &service{repo: repo, surveys: surveys}
}

func (s *service) StartAttempt(ctx context.Context, surveyID, studentID uuid.UUID, meta AttemptMeta) (*SurveyResponse, error) {
	log := config.WithContext(ctx)

	sv, err := s.surveys.FindByID(ctx, surveyID)
	if err != nil {
		return nil, apperr.Storage("fetch survey", err)
	}
	if sv == nil {
		return nil, apperr.NotFound("survey")
	}
	if sv.Status != survey.StatusPublished {
		return nil, apperr.InvalidState("survey is not accepting responses")
	}
	now := time.Now()
	if !sv.WithinWindow(now) {
		return nil, apperr.InvalidState("survey is outside its response window")
	}

	limit := sv.AttemptLimit()
	for i := 0; i < attemptInsertRetries; i++ {
		max, err := s.repo.MaxAttemptNumber(ctx, surveyID, studentID)
		if err != nil {
			return nil, apperr.Storage("count attempts", err)
		}
		if max >= limit {
			return nil, apperr.InvalidState("attempt limit reached (%d of %d)", max, limit)
		}

		resp := &SurveyResponse{
			ID:            uuid.New(),
			SurveyID:      surveyID,
			StudentID:     studentID,
			AttemptNumber: max + 1,
			Status:        StatusInProgress,
			StartTime:     now,
			IPAddress:     meta.IPAddress,
			UserAgent:     meta.UserAgent,
		}
		err = s.repo.Insert(ctx, resp)
		if err == nil {
			log.WithField("response_id", resp.ID).WithField("attempt", resp.AttemptNumber).Info("Attempt started")
			return resp, nil
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// another request claimed this attempt number; re-read and retry
			continue
		}
		log.WithError(err).Error("Failed to start attempt")
		return nil, apperr.Storage("start attempt", err)
	}

	return nil, apperr.Storage("start attempt", errors.New("attempt number contention not resolved"))
}

func (s *service) SubmitAnswers(ctx context.Context, responseID, studentID uuid.UUID, answers map[uuid.UUID]interface{}) (*SurveyResponse, error) {
	log := config.WithContext(ctx)

	resp, err := s.repo.FindByID(ctx, responseID)
	if err != nil {
		return nil, apperr.Storage("fetch response", err)
	}
	if resp == nil || resp.StudentID != studentID {
		return nil, apperr.NotFound("response")
	}
	if resp.Status != StatusInProgress {
		return nil, apperr.InvalidState("attempt was already submitted")
	}

	sv, err := s.surveys.FindByID(ctx, resp.SurveyID)
	if err != nil {
		return nil, apperr.Storage("fetch survey", err)
	}
	if sv == nil {
		return nil, apperr.NotFound("survey")
	}
	if sv.Status == survey.StatusClosed {
		return nil, apperr.InvalidState("survey is closed")
	}

	rows, err := buildAnswers(resp.ID, sv, answers)
	if err != nil {
		return nil, err
	}

	scores := make([]grading.AnswerScore, len(rows))
	for i := range rows {
		scores[i] = grading.AnswerScore{Score: rows[i].Score, Graded: rows[i].IsGraded()}
	}
	total, pct, passed, complete := grading.Totals(scores, sv.TotalScore, sv.PassScore)
	totals := Totals{TotalScore: total, PercentageScore: pct, IsPassed: passed, Complete: complete}

	submitTime := time.Now()
	timeSpent := int(submitTime.Sub(resp.StartTime).Seconds())

	claimed, err := s.repo.CompleteSubmission(ctx, resp.ID, StatusInProgress, submitTime, timeSpent, rows, totals)
	if err != nil {
		log.WithError(err).Error("Failed to submit answers")
		return nil, apperr.Storage("submit answers", err)
	}
	if !claimed {
		return nil, apperr.InvalidState("attempt was already submitted")
	}

	log.WithField("response_id", resp.ID).WithField("total_score", total).Info("Attempt submitted")

	out, err := s.repo.FindByID(ctx, resp.ID)
	if err != nil {
		return nil, apperr.Storage("fetch response", err)
	}
	return out, nil
}

func (s *service) SubmitToSurvey(ctx context.Context, surveyID, studentID uuid.UUID, answers map[uuid.UUID]interface{}, meta AttemptMeta) (*SurveyResponse, error) {
	open, err := s.repo.FindOpen(ctx, surveyID, studentID)
	if err != nil {
		return nil, apperr.Storage("fetch open attempt", err)
	}
	if open == nil {
		open, err = s.StartAttempt(ctx, surveyID, studentID, meta)
		if err != nil {
			return nil, err
		}
	}
	return s.SubmitAnswers(ctx, open.ID, studentID, answers)
}

// buildAnswers validates the submitted payloads against the survey's
// questions and grades everything auto-gradable.
func buildAnswers(responseID uuid.UUID, sv *survey.Survey, answers map[uuid.UUID]interface{}) ([]Answer, error) {
	byID := make(map[uuid.UUID]*survey.Question, len(sv.Questions))
	for i := range sv.Questions {
		byID[sv.Questions[i].ID] = &sv.Questions[i]
	}

	for qid := range answers {
		if _, ok := byID[qid]; !ok {
			return nil, apperr.Validation("answer references unknown question %s", qid)
		}
	}

	rows := make([]Answer, 0, len(answers))
	for i := range sv.Questions {
		q := &sv.Questions[i]
		payload, answered := answers[q.ID]
		if !answered {
			if q.IsRequired {
				return nil, apperr.Validation("required question %d is unanswered", q.QuestionOrder)
			}
			continue
		}
		if err := validatePayload(q, payload); err != nil {
			return nil, err
		}

		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, apperr.Validation("question %d: answer is not serializable", q.QuestionOrder)
		}

		res := grading.Grade(gradingQ(q), payload)
		rows = append(rows, Answer{
			ID:            uuid.New(),
			ResponseID:    responseID,
			QuestionID:    q.ID,
			StudentAnswer: raw,
			IsCorrect:     res.IsCorrect,
			Score:         res.Score,
			AutoGraded:    res.AutoGraded,
		})
	}
	return rows, nil
}

func validatePayload(q *survey.Question, payload interface{}) error {
	switch q.QuestionType {
	case survey.QuestionSingleChoice, survey.QuestionTrueFalse:
		if _, ok := payload.(string); !ok {
			return apperr.Validation("question %d expects a single option value", q.QuestionOrder)
		}
	case survey.QuestionMultipleChoice:
		if !isStringSlice(payload) {
			return apperr.Validation("question %d expects a list of option values", q.QuestionOrder)
		}
	case survey.QuestionShortAnswer, survey.QuestionEssay:
		text, ok := payload.(string)
		if !ok {
			return apperr.Validation("question %d expects a text answer", q.QuestionOrder)
		}
		if q.MinWordCount != nil && wordCount(text) < *q.MinWordCount {
			return apperr.Validation("question %d requires at least %d words", q.QuestionOrder, *q.MinWordCount)
		}
	}
	return nil
}

func isStringSlice(payload interface{}) bool {
	switch x := payload.(type) {
	case []string:
		return true
	case []interface{}:
		for _, e := range x {
			if _, ok := e.(string); !ok {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}

// gradingQ projects a catalog question onto the grading engine's input.
func gradingQ(q *survey.Question) grading.Q {
	gq := grading.Q{
		Type:     string(q.QuestionType),
		Score:    q.Score,
		Criteria: grading.ParseCriteria(q.GradingCriteria),
	}
	if len(q.CorrectAnswer) > 0 {
		var key interface{}
		if err := json.Unmarshal(q.CorrectAnswer, &key); err == nil {
			gq.CorrectAnswer = key
		}
	}
	return gq
}

func (s *service) ManualGrade(ctx context.Context, answerID, graderID uuid.UUID, score float64, comment string) (*Answer, error) {
	log := config.WithContext(ctx)

	answer, err := s.repo.FindAnswer(ctx, answerID)
	if err != nil {
		return nil, apperr.Storage("fetch answer", err)
	}
	if answer == nil {
		return nil, apperr.NotFound("answer")
	}

	question, err := s.surveys.FindQuestion(ctx, answer.QuestionID)
	if err != nil {
		return nil, apperr.Storage("fetch question", err)
	}
	if question == nil {
		return nil, apperr.NotFound("question")
	}
	if score < 0 || score > question.Score {
		return nil, apperr.Validation("score must be between 0 and %.2f", question.Score)
	}

	resp, err := s.repo.FindByID(ctx, answer.ResponseID)
	if err != nil {
		return nil, apperr.Storage("fetch response", err)
	}
	if resp == nil {
		return nil, apperr.NotFound("response")
	}
	if resp.Status == StatusInProgress {
		return nil, apperr.InvalidState("attempt has not been submitted yet")
	}

	sv, err := s.surveys.FindByID(ctx, resp.SurveyID)
	if err != nil {
		return nil, apperr.Storage("fetch survey", err)
	}
	if sv == nil {
		return nil, apperr.NotFound("survey")
	}

	now := time.Now()
	correct := score >= question.Score
	answer.Score = score
	answer.IsCorrect = &correct
	answer.TeacherComment = comment
	answer.AutoGraded = false
	answer.GradedBy = &graderID
	answer.GradedAt = &now

	scores := make([]grading.AnswerScore, 0, len(resp.Answers))
	for i := range resp.Answers {
		a := &resp.Answers[i]
		if a.ID == answer.ID {
			a = answer
		}
		scores = append(scores, grading.AnswerScore{Score: a.Score, Graded: a.IsGraded()})
	}
	total, pct, passed, complete := grading.Totals(scores, sv.TotalScore, sv.PassScore)
	totals := Totals{TotalScore: total, PercentageScore: pct, IsPassed: passed, Complete: complete}

	if err := s.repo.UpdateAnswerGrade(ctx, answer, totals); err != nil {
		log.WithError(err).Error("Failed to save manual grade")
		return nil, apperr.Storage("save manual grade", err)
	}

	log.WithField("answer_id", answer.ID).WithField("score", score).Info("Answer manually graded")
	return answer, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*SurveyResponse, error) {
	resp, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Storage("fetch response", err)
	}
	if resp == nil {
		return nil, apperr.NotFound("response")
	}
	return resp, nil
}

func (s *service) ListBySurvey(ctx context.Context, surveyID uuid.UUID) ([]SurveyResponse, error) {
	responses, err := s.repo.ListBySurvey(ctx, surveyID)
	if err != nil {
		return nil, apperr.Storage("list responses", err)
	}
	return responses, nil
}

func (s *service) ListMine(ctx context.Context, surveyID, studentID uuid.UUID) ([]SurveyResponse, error) {
	responses, err := s.repo.ListByStudent(ctx, surveyID, studentID)
	if err != nil {
		return nil, apperr.Storage("list attempts", err)
	}
	return responses, nil
}
