package survey

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/edulane/survey-backend/internal/apperr"
	"github.com/edulane/survey-backend/internal/config"
)

type Service interface {
	Create(ctx context.Context, teacherID uuid.UUID, dto CreateSurveyDTO) (*SurveyDetail, error)
	Get(ctx context.Context, id uuid.UUID) (*Survey, error)
	GetForStudent(ctx context.Context, id uuid.UUID) (*Survey, error)
	List(ctx context.Context, f Filter) ([]Survey, error)
	ListPublished(ctx context.Context) ([]Survey, error)
	Publish(ctx context.Context, id, teacherID uuid.UUID) (*Survey, error)
	Unpublish(ctx context.Context, id, teacherID uuid.UUID) (*Survey, error)
	Close(ctx context.Context, id, teacherID uuid.UUID) (*Survey, error)
	Delete(ctx context.Context, id, teacherID uuid.UUID) error
}

type service struct {
	repo     Repository
	validate *validator.Validate
}

func NewService(repo Repository) Service {
	return &service{repo: repo, validate: validator.New()}
}

func (s *service) Create(ctx context.Context, teacherID uuid.UUID, dto CreateSurveyDTO) (*SurveyDetail, error) {
	log := config.WithContext(ctx)

	if err := s.validate.Struct(dto); err != nil {
		return nil, apperr.Validation("invalid survey payload: %v", err)
	}

	survey := &Survey{
		ID:                    uuid.New(),
		Title:                 dto.Title,
		Description:           dto.Description,
		TeacherID:             teacherID,
		CourseID:              dto.CourseID,
		ClassID:               dto.ClassID,
		SurveyType:            TypeQuestionnaire,
		GenerationMethod:      "manual",
		Status:                StatusDraft,
		TotalScore:            100,
		PassScore:             60,
		TimeLimit:             dto.TimeLimit,
		AllowMultipleAttempts: dto.AllowMultipleAttempts,
		MaxAttempts:           1,
		ShowAnswer:            dto.ShowAnswer,
		ShuffleQuestions:      dto.ShuffleQuestions,
		StartTime:             dto.StartTime,
		EndTime:               dto.EndTime,
	}
	if dto.SurveyType != "" {
		if !dto.SurveyType.IsValid() {
			return nil, apperr.Validation("unknown survey type %q", dto.SurveyType)
		}
		survey.SurveyType = dto.SurveyType
	}
	if dto.TotalScore != nil {
		survey.TotalScore = *dto.TotalScore
	}
	if dto.PassScore != nil {
		survey.PassScore = *dto.PassScore
	}
	if dto.MaxAttempts > 0 {
		survey.MaxAttempts = dto.MaxAttempts
	}
	if survey.StartTime != nil && survey.EndTime != nil && survey.EndTime.Before(*survey.StartTime) {
		return nil, apperr.Validation("end_time precedes start_time")
	}

	questions, err := buildQuestions(survey.ID, dto.Questions)
	if err != nil {
		return nil, err
	}
	survey.Questions = questions

	if err := s.repo.Create(ctx, survey); err != nil {
		log.WithError(err).Error("Failed to create survey")
		return nil, apperr.Storage("create survey", err)
	}

	log.WithField("survey_id", survey.ID).Info("Survey created")
	return &SurveyDetail{Survey: survey, Warnings: scoreWarnings(survey)}, nil
}

func buildQuestions(surveyID uuid.UUID, dtos []QuestionCreateDTO) ([]Question, error) {
	seenOrder := make(map[int]bool, len(dtos))
	questions := make([]Question, 0, len(dtos))

	for i, qd := range dtos {
		if !qd.QuestionType.IsValid() {
			return nil, apperr.Validation("question %d: unknown type %q", i+1, qd.QuestionType)
		}
		if seenOrder[qd.QuestionOrder] {
			return nil, apperr.Validation("duplicate question_order %d", qd.QuestionOrder)
		}
		seenOrder[qd.QuestionOrder] = true

		if qd.QuestionType.IsChoice() && len(qd.Options) == 0 {
			return nil, apperr.Validation("question %d: %s question requires options", i+1, qd.QuestionType)
		}
		if qd.QuestionType == QuestionEssay && qd.CorrectAnswer != nil {
			return nil, apperr.Validation("question %d: essay question cannot declare a correct answer", i+1)
		}
		if qd.MinWordCount != nil && !qd.QuestionType.IsFreeText() {
			return nil, apperr.Validation("question %d: min_word_count only applies to free-text questions", i+1)
		}

		q := Question{
			ID:                uuid.New(),
			SurveyID:          surveyID,
			QuestionType:      qd.QuestionType,
			QuestionText:      qd.QuestionText,
			QuestionOrder:     qd.QuestionOrder,
			Score:             qd.Score,
			Difficulty:        qd.Difficulty,
			AnswerExplanation: qd.AnswerExplanation,
			Tags:              qd.Tags,
			KnowledgePoints:   qd.KnowledgePoints,
			IsRequired:        true,
			MinWordCount:      qd.MinWordCount,
		}
		if qd.IsRequired != nil {
			q.IsRequired = *qd.IsRequired
		}

		var err error
		if q.Options, err = toJSON(qd.Options); err != nil {
			return nil, apperr.Validation("question %d: invalid options", i+1)
		}
		if q.CorrectAnswer, err = toJSON(qd.CorrectAnswer); err != nil {
			return nil, apperr.Validation("question %d: invalid correct answer", i+1)
		}
		if q.ReferenceFiles, err = toJSON(qd.ReferenceFiles); err != nil {
			return nil, apperr.Validation("question %d: invalid reference files", i+1)
		}
		if q.GradingCriteria, err = toJSON(qd.GradingCriteria); err != nil {
			return nil, apperr.Validation("question %d: invalid grading criteria", i+1)
		}

		questions = append(questions, q)
	}
	return questions, nil
}

func toJSON(v interface{}) (datatypes.JSON, error) {
	if v == nil {
		return nil, nil
	}
	switch x := v.(type) {
	case []string:
		if len(x) == 0 {
			return nil, nil
		}
	}
	buf, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(buf), nil
}

// scoreWarnings reports soft-invariant violations. A question-score sum
// above the survey total is suspicious but never blocks creation.
func scoreWarnings(s *Survey) []string {
	var sum float64
	for _, q := range s.Questions {
		sum += q.Score
	}
	if sum > s.TotalScore {
		return []string{fmt.Sprintf("question scores sum to %.2f, exceeding survey total_score %.2f", sum, s.TotalScore)}
	}
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Survey, error) {
	sv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Storage("fetch survey", err)
	}
	if sv == nil {
		return nil, apperr.NotFound("survey")
	}
	return sv, nil
}

// GetForStudent returns a published survey with grading material stripped
// unless the survey exposes answers. Shuffled surveys randomize question
// order per fetch.
func (s *service) GetForStudent(ctx context.Context, id uuid.UUID) (*Survey, error) {
	sv, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sv.Status != StatusPublished {
		return nil, apperr.NotFound("survey")
	}

	if !sv.ShowAnswer {
		for i := range sv.Questions {
			sv.Questions[i].CorrectAnswer = nil
			sv.Questions[i].AnswerExplanation = ""
			sv.Questions[i].GradingCriteria = nil
		}
	}
	if sv.ShuffleQuestions {
		rand.Shuffle(len(sv.Questions), func(i, j int) {
			sv.Questions[i], sv.Questions[j] = sv.Questions[j], sv.Questions[i]
		})
	}
	return sv, nil
}

func (s *service) List(ctx context.Context, f Filter) ([]Survey, error) {
	surveys, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, apperr.Storage("list surveys", err)
	}
	return surveys, nil
}

func (s *service) ListPublished(ctx context.Context) ([]Survey, error) {
	surveys, err := s.repo.ListPublished(ctx)
	if err != nil {
		return nil, apperr.Storage("list published surveys", err)
	}

	now := time.Now()
	visible := make([]Survey, 0, len(surveys))
	for _, sv := range surveys {
		if !sv.WithinWindow(now) {
			continue
		}
		if !sv.ShowAnswer {
			for i := range sv.Questions {
				sv.Questions[i].CorrectAnswer = nil
				sv.Questions[i].AnswerExplanation = ""
				sv.Questions[i].GradingCriteria = nil
			}
		}
		visible = append(visible, sv)
	}
	return visible, nil
}

func (s *service) Publish(ctx context.Context, id, teacherID uuid.UUID) (*Survey, error) {
	log := config.WithContext(ctx)

	sv, err := s.ownedSurvey(ctx, id, teacherID)
	if err != nil {
		return nil, err
	}
	if sv.Status == StatusPublished {
		return nil, apperr.InvalidState("survey is already published")
	}
	if sv.Status == StatusClosed {
		return nil, apperr.InvalidState("survey is closed")
	}
	if len(sv.Questions) == 0 {
		return nil, apperr.InvalidState("survey has no questions")
	}

	now := time.Now()
	ok, err := s.repo.UpdateStatus(ctx, id, StatusDraft, StatusPublished, &now)
	if err != nil {
		log.WithError(err).Error("Failed to publish survey")
		return nil, apperr.Storage("publish survey", err)
	}
	if !ok {
		return nil, apperr.InvalidState("survey is no longer in draft")
	}

	sv.Status = StatusPublished
	sv.PublishedAt = &now
	log.WithField("survey_id", id).Info("Survey published")
	return sv, nil
}

func (s *service) Unpublish(ctx context.Context, id, teacherID uuid.UUID) (*Survey, error) {
	log := config.WithContext(ctx)

	sv, err := s.ownedSurvey(ctx, id, teacherID)
	if err != nil {
		return nil, err
	}
	if sv.Status == StatusClosed {
		return nil, apperr.InvalidState("closed survey cannot be unpublished")
	}
	if sv.Status == StatusDraft {
		return nil, apperr.InvalidState("survey is already a draft")
	}

	ok, err := s.repo.UpdateStatus(ctx, id, StatusPublished, StatusDraft, nil)
	if err != nil {
		log.WithError(err).Error("Failed to unpublish survey")
		return nil, apperr.Storage("unpublish survey", err)
	}
	if !ok {
		return nil, apperr.InvalidState("survey is no longer published")
	}

	sv.Status = StatusDraft
	log.WithField("survey_id", id).Info("Survey unpublished")
	return sv, nil
}

func (s *service) Close(ctx context.Context, id, teacherID uuid.UUID) (*Survey, error) {
	log := config.WithContext(ctx)

	sv, err := s.ownedSurvey(ctx, id, teacherID)
	if err != nil {
		return nil, err
	}
	if sv.Status != StatusPublished {
		return nil, apperr.InvalidState("only published surveys can be closed")
	}

	ok, err := s.repo.UpdateStatus(ctx, id, StatusPublished, StatusClosed, nil)
	if err != nil {
		log.WithError(err).Error("Failed to close survey")
		return nil, apperr.Storage("close survey", err)
	}
	if !ok {
		return nil, apperr.InvalidState("survey is no longer published")
	}

	sv.Status = StatusClosed
	log.WithField("survey_id", id).Info("Survey closed")
	return sv, nil
}

func (s *service) Delete(ctx context.Context, id, teacherID uuid.UUID) error {
	log := config.WithContext(ctx)

	ok, err := s.repo.Delete(ctx, id, teacherID)
	if err != nil {
		log.WithError(err).Error("Failed to delete survey")
		return apperr.Storage("delete survey", err)
	}
	if !ok {
		return apperr.NotFound("survey")
	}

	log.WithField("survey_id", id).Info("Survey deleted")
	return nil
}

func (s *service) ownedSurvey(ctx context.Context, id, teacherID uuid.UUID) (*Survey, error) {
	sv, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sv.TeacherID != teacherID {
		return nil, apperr.NotFound("survey")
	}
	return sv, nil
}
