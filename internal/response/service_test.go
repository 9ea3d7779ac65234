package response_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/edulane/survey-backend/internal/apperr"
	"github.com/edulane/survey-backend/internal/response"
	"github.com/edulane/survey-backend/internal/survey"
)

// fakeSurveyRepo serves the catalog reads the response service performs.
type fakeSurveyRepo struct {
	surveys map[uuid.UUID]*survey.Survey
}

func newFakeSurveyRepo(surveys ...*survey.Survey) *fakeSurveyRepo {
	f := &fakeSurveyRepo{surveys: map[uuid.UUID]*survey.Survey{}}
	for _, sv := range surveys {
		f.surveys[sv.ID] = sv
	}
	return f
}

func (f *fakeSurveyRepo) Create(_ context.Context, s *survey.Survey) error {
	f.surveys[s.ID] = s
	return nil
}

func (f *fakeSurveyRepo) FindByID(_ context.Context, id uuid.UUID) (*survey.Survey, error) {
	s, ok := f.surveys[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	cp.Questions = append([]survey.Question(nil), s.Questions...)
	return &cp, nil
}

func (f *fakeSurveyRepo) FindQuestion(_ context.Context, id uuid.UUID) (*survey.Question, error) {
	for _, s := range f.surveys {
		for i := range s.Questions {
			if s.Questions[i].ID == id {
				q := s.Questions[i]
				return &q, nil
			}
		}
	}
	return nil, nil
}

func (f *fakeSurveyRepo) List(context.Context, survey.Filter) ([]survey.Survey, error) {
	return nil, nil
}

func (f *fakeSurveyRepo) ListPublished(context.Context) ([]survey.Survey, error) {
	return nil, nil
}

func (f *fakeSurveyRepo) UpdateStatus(_ context.Context, id uuid.UUID, from, to survey.Status, _ *time.Time) (bool, error) {
	s, ok := f.surveys[id]
	if !ok || s.Status != from {
		return false, nil
	}
	s.Status = to
	return true, nil
}

func (f *fakeSurveyRepo) Delete(_ context.Context, id, _ uuid.UUID) (bool, error) {
	delete(f.surveys, id)
	return true, nil
}

// fakeResponseRepo enforces the (survey, student, attempt_number) unique
// constraint the way the database would. The hooks let tests interleave a
// racing request between read and write.
type fakeResponseRepo struct {
	responses map[uuid.UUID]*response.SurveyResponse

	beforeInsert   func()
	beforeComplete func()
}

func newFakeResponseRepo() *fakeResponseRepo {
	return &fakeResponseRepo{responses: map[uuid.UUID]*response.SurveyResponse{}}
}

func (f *fakeResponseRepo) Insert(_ context.Context, resp *response.SurveyResponse) error {
	if f.beforeInsert != nil {
		f.beforeInsert()
		f.beforeInsert = nil
	}
	for _, r := range f.responses {
		if r.SurveyID == resp.SurveyID && r.StudentID == resp.StudentID && r.AttemptNumber == resp.AttemptNumber {
			return gorm.ErrDuplicatedKey
		}
	}
	cp := *resp
	f.responses[resp.ID] = &cp
	return nil
}

func (f *fakeResponseRepo) FindByID(_ context.Context, id uuid.UUID) (*response.SurveyResponse, error) {
	r, ok := f.responses[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	cp.Answers = append([]response.Answer(nil), r.Answers...)
	return &cp, nil
}

func (f *fakeResponseRepo) FindOpen(_ context.Context, surveyID, studentID uuid.UUID) (*response.SurveyResponse, error) {
	for _, r := range f.responses {
		if r.SurveyID == surveyID && r.StudentID == studentID && r.Status == response.StatusInProgress {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeResponseRepo) MaxAttemptNumber(_ context.Context, surveyID, studentID uuid.UUID) (int, error) {
	max := 0
	for _, r := range f.responses {
		if r.SurveyID == surveyID && r.StudentID == studentID && r.AttemptNumber > max {
			max = r.AttemptNumber
		}
	}
	return max, nil
}

func (f *fakeResponseRepo) ListBySurvey(_ context.Context, surveyID uuid.UUID) ([]response.SurveyResponse, error) {
	var out []response.SurveyResponse
	for _, r := range f.responses {
		if r.SurveyID == surveyID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeResponseRepo) ListByStudent(_ context.Context, surveyID, studentID uuid.UUID) ([]response.SurveyResponse, error) {
	var out []response.SurveyResponse
	for _, r := range f.responses {
		if r.SurveyID == surveyID && r.StudentID == studentID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeResponseRepo) CompleteSubmission(_ context.Context, responseID uuid.UUID, from response.Status, submitTime time.Time, timeSpent int, answers []response.Answer, totals response.Totals) (bool, error) {
	if f.beforeComplete != nil {
		f.beforeComplete()
		f.beforeComplete = nil
	}
	r, ok := f.responses[responseID]
	if !ok || r.Status != from {
		return false, nil
	}
	r.Status = response.StatusSubmitted
	if totals.Complete {
		r.Status = response.StatusGraded
	}
	r.SubmitTime = &submitTime
	r.TimeSpent = &timeSpent
	r.TotalScore = &totals.TotalScore
	r.PercentageScore = &totals.PercentageScore
	r.IsPassed = &totals.IsPassed
	r.Answers = append([]response.Answer(nil), answers...)
	return true, nil
}

func (f *fakeResponseRepo) FindAnswer(_ context.Context, answerID uuid.UUID) (*response.Answer, error) {
	for _, r := range f.responses {
		for i := range r.Answers {
			if r.Answers[i].ID == answerID {
				a := r.Answers[i]
				return &a, nil
			}
		}
	}
	return nil, nil
}

func (f *fakeResponseRepo) UpdateAnswerGrade(_ context.Context, answer *response.Answer, totals response.Totals) error {
	r := f.responses[answer.ResponseID]
	for i := range r.Answers {
		if r.Answers[i].ID == answer.ID {
			r.Answers[i] = *answer
		}
	}
	r.Status = response.StatusSubmitted
	if totals.Complete {
		r.Status = response.StatusGraded
	}
	r.TotalScore = &totals.TotalScore
	r.PercentageScore = &totals.PercentageScore
	r.IsPassed = &totals.IsPassed
	return nil
}

func jsonKey(t *testing.T, v interface{}) datatypes.JSON {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal answer key: %v", err)
	}
	return datatypes.JSON(raw)
}

// examSurvey builds a published two-question survey: a 10-point single
// choice (key "B") and a 20-point optional essay. Total 30, pass 18.
func examSurvey(t *testing.T) *survey.Survey {
	t.Helper()
	now := time.Now()
	sv := &survey.Survey{
		ID:          uuid.New(),
		Title:       "unit exam",
		TeacherID:   uuid.New(),
		Status:      survey.StatusPublished,
		TotalScore:  30,
		PassScore:   18,
		MaxAttempts: 1,
		PublishedAt: &now,
	}
	sv.Questions = []survey.Question{
		{
			ID:            uuid.New(),
			SurveyID:      sv.ID,
			QuestionType:  survey.QuestionSingleChoice,
			QuestionText:  "pick one",
			QuestionOrder: 1,
			Score:         10,
			IsRequired:    true,
			Options:       jsonKey(t, []string{"A", "B", "C", "D"}),
			CorrectAnswer: jsonKey(t, "B"),
		},
		{
			ID:            uuid.New(),
			SurveyID:      sv.ID,
			QuestionType:  survey.QuestionEssay,
			QuestionText:  "explain",
			QuestionOrder: 2,
			Score:         20,
			IsRequired:    false,
		},
	}
	return sv
}

func TestStartAttempt(t *testing.T) {
	t.Run("PublishedSurvey", func(t *testing.T) {
		sv := examSurvey(t)
		svc := response.NewService(newFakeResponseRepo(), newFakeSurveyRepo(sv))

		resp, err := svc.StartAttempt(context.Background(), sv.ID, uuid.New(), response.AttemptMeta{IPAddress: "10.0.0.1"})
		if err != nil {
			t.Fatalf("StartAttempt failed: %v", err)
		}
		if resp.AttemptNumber != 1 {
			t.Errorf("attempt_number = %d, want 1", resp.AttemptNumber)
		}
		if resp.Status != response.StatusInProgress {
			t.Errorf("status = %s, want in_progress", resp.Status)
		}
		if resp.IPAddress != "10.0.0.1" {
			t.Error("request metadata not recorded")
		}
	})

	t.Run("DraftSurvey", func(t *testing.T) {
		sv := examSurvey(t)
		sv.Status = survey.StatusDraft
		svc := response.NewService(newFakeResponseRepo(), newFakeSurveyRepo(sv))

		_, err := svc.StartAttempt(context.Background(), sv.ID, uuid.New(), response.AttemptMeta{})
		if apperr.KindOf(err) != apperr.KindInvalidState {
			t.Errorf("err = %v, want invalid state", err)
		}
	})

	t.Run("WindowExpired", func(t *testing.T) {
		sv := examSurvey(t)
		past := time.Now().Add(-time.Hour)
		sv.EndTime = &past
		svc := response.NewService(newFakeResponseRepo(), newFakeSurveyRepo(sv))

		_, err := svc.StartAttempt(context.Background(), sv.ID, uuid.New(), response.AttemptMeta{})
		if apperr.KindOf(err) != apperr.KindInvalidState {
			t.Errorf("err = %v, want invalid state", err)
		}
	})

	t.Run("GaplessNumberingUpToLimit", func(t *testing.T) {
		sv := examSurvey(t)
		sv.AllowMultipleAttempts = true
		sv.MaxAttempts = 3
		repo := newFakeResponseRepo()
		svc := response.NewService(repo, newFakeSurveyRepo(sv))
		studentID := uuid.New()

		for want := 1; want <= 3; want++ {
			resp, err := svc.StartAttempt(context.Background(), sv.ID, studentID, response.AttemptMeta{})
			if err != nil {
				t.Fatalf("attempt %d failed: %v", want, err)
			}
			if resp.AttemptNumber != want {
				t.Errorf("attempt_number = %d, want %d", resp.AttemptNumber, want)
			}
			repo.responses[resp.ID].Status = response.StatusSubmitted
		}

		_, err := svc.StartAttempt(context.Background(), sv.ID, studentID, response.AttemptMeta{})
		if apperr.KindOf(err) != apperr.KindInvalidState {
			t.Errorf("fourth attempt: err = %v, want invalid state", err)
		}
	})

	t.Run("SingleAttemptDefault", func(t *testing.T) {
		sv := examSurvey(t)
		repo := newFakeResponseRepo()
		svc := response.NewService(repo, newFakeSurveyRepo(sv))
		studentID := uuid.New()

		if _, err := svc.StartAttempt(context.Background(), sv.ID, studentID, response.AttemptMeta{}); err != nil {
			t.Fatalf("first attempt failed: %v", err)
		}
		_, err := svc.StartAttempt(context.Background(), sv.ID, studentID, response.AttemptMeta{})
		if apperr.KindOf(err) != apperr.KindInvalidState {
			t.Errorf("err = %v, want invalid state", err)
		}
	})

	t.Run("RetriesOnAttemptNumberRace", func(t *testing.T) {
		sv := examSurvey(t)
		sv.AllowMultipleAttempts = true
		sv.MaxAttempts = 5
		repo := newFakeResponseRepo()
		svc := response.NewService(repo, newFakeSurveyRepo(sv))
		studentID := uuid.New()

		// a racing request lands attempt 1 between our read and our insert
		repo.beforeInsert = func() {
			rival := &response.SurveyResponse{
				ID:            uuid.New(),
				SurveyID:      sv.ID,
				StudentID:     studentID,
				AttemptNumber: 1,
				Status:        response.StatusSubmitted,
			}
			repo.responses[rival.ID] = rival
		}

		resp, err := svc.StartAttempt(context.Background(), sv.ID, studentID, response.AttemptMeta{})
		if err != nil {
			t.Fatalf("StartAttempt failed: %v", err)
		}
		if resp.AttemptNumber != 2 {
			t.Errorf("attempt_number = %d, want 2 after losing the race for 1", resp.AttemptNumber)
		}
	})
}

func startAttempt(t *testing.T, svc response.Service, surveyID uuid.UUID) (*response.SurveyResponse, uuid.UUID) {
	t.Helper()
	studentID := uuid.New()
	resp, err := svc.StartAttempt(context.Background(), surveyID, studentID, response.AttemptMeta{})
	if err != nil {
		t.Fatalf("StartAttempt failed: %v", err)
	}
	return resp, studentID
}

func TestSubmitAnswers(t *testing.T) {
	t.Run("CorrectChoiceAutoGraded", func(t *testing.T) {
		sv := examSurvey(t)
		svc := response.NewService(newFakeResponseRepo(), newFakeSurveyRepo(sv))
		resp, studentID := startAttempt(t, svc, sv.ID)

		out, err := svc.SubmitAnswers(context.Background(), resp.ID, studentID, map[uuid.UUID]interface{}{
			sv.Questions[0].ID: "B",
			sv.Questions[1].ID: "my essay",
		})
		if err != nil {
			t.Fatalf("SubmitAnswers failed: %v", err)
		}
		if out.Status != response.StatusSubmitted {
			t.Errorf("status = %s, want submitted while essay is ungraded", out.Status)
		}
		if len(out.Answers) != 2 {
			t.Fatalf("answer count = %d, want 2", len(out.Answers))
		}
		for _, a := range out.Answers {
			switch a.QuestionID {
			case sv.Questions[0].ID:
				if !a.AutoGraded || a.Score != 10 {
					t.Errorf("choice answer: auto_graded=%v score=%.0f, want graded 10", a.AutoGraded, a.Score)
				}
				if a.IsCorrect == nil || !*a.IsCorrect {
					t.Error("choice answer not marked correct")
				}
			case sv.Questions[1].ID:
				if a.IsGraded() {
					t.Error("essay answer must stay ungraded after submission")
				}
			}
		}
	})

	t.Run("WrongChoiceGetsZero", func(t *testing.T) {
		sv := examSurvey(t)
		svc := response.NewService(newFakeResponseRepo(), newFakeSurveyRepo(sv))
		resp, studentID := startAttempt(t, svc, sv.ID)

		out, err := svc.SubmitAnswers(context.Background(), resp.ID, studentID, map[uuid.UUID]interface{}{
			sv.Questions[0].ID: "C",
		})
		if err != nil {
			t.Fatalf("SubmitAnswers failed: %v", err)
		}
		a := out.Answers[0]
		if !a.AutoGraded || a.Score != 0 {
			t.Errorf("auto_graded=%v score=%.0f, want graded 0", a.AutoGraded, a.Score)
		}
		if a.IsCorrect == nil || *a.IsCorrect {
			t.Error("wrong answer not marked incorrect")
		}
	})

	t.Run("FullyAutoGradedAttempt", func(t *testing.T) {
		sv := examSurvey(t)
		sv.Questions = sv.Questions[:1] // choice only
		sv.TotalScore = 10
		sv.PassScore = 6
		svc := response.NewService(newFakeResponseRepo(), newFakeSurveyRepo(sv))
		resp, studentID := startAttempt(t, svc, sv.ID)

		out, err := svc.SubmitAnswers(context.Background(), resp.ID, studentID, map[uuid.UUID]interface{}{
			sv.Questions[0].ID: "B",
		})
		if err != nil {
			t.Fatalf("SubmitAnswers failed: %v", err)
		}
		if out.Status != response.StatusGraded {
			t.Errorf("status = %s, want graded", out.Status)
		}
		if out.TotalScore == nil || *out.TotalScore != 10 {
			t.Errorf("total_score = %v, want 10", out.TotalScore)
		}
		if out.PercentageScore == nil || *out.PercentageScore != 100 {
			t.Errorf("percentage_score = %v, want 100", out.PercentageScore)
		}
		if out.IsPassed == nil || !*out.IsPassed {
			t.Error("attempt should be passing")
		}
	})

	t.Run("RequiredQuestionUnanswered", func(t *testing.T) {
		sv := examSurvey(t)
		svc := response.NewService(newFakeResponseRepo(), newFakeSurveyRepo(sv))
		resp, studentID := startAttempt(t, svc, sv.ID)

		_, err := svc.SubmitAnswers(context.Background(), resp.ID, studentID, map[uuid.UUID]interface{}{
			sv.Questions[1].ID: "essay only",
		})
		if apperr.KindOf(err) != apperr.KindValidation {
			t.Errorf("err = %v, want validation error", err)
		}
	})

	t.Run("UnknownQuestion", func(t *testing.T) {
		sv := examSurvey(t)
		svc := response.NewService(newFakeResponseRepo(), newFakeSurveyRepo(sv))
		resp, studentID := startAttempt(t, svc, sv.ID)

		_, err := svc.SubmitAnswers(context.Background(), resp.ID, studentID, map[uuid.UUID]interface{}{
			sv.Questions[0].ID: "B",
			uuid.New():         "stray",
		})
		if apperr.KindOf(err) != apperr.KindValidation {
			t.Errorf("err = %v, want validation error", err)
		}
	})

	t.Run("WrongPayloadShape", func(t *testing.T) {
		sv := examSurvey(t)
		svc := response.NewService(newFakeResponseRepo(), newFakeSurveyRepo(sv))
		resp, studentID := startAttempt(t, svc, sv.ID)

		_, err := svc.SubmitAnswers(context.Background(), resp.ID, studentID, map[uuid.UUID]interface{}{
			sv.Questions[0].ID: []string{"A", "B"}, // single choice wants one value
		})
		if apperr.KindOf(err) != apperr.KindValidation {
			t.Errorf("err = %v, want validation error", err)
		}
	})

	t.Run("ForeignStudent", func(t *testing.T) {
		sv := examSurvey(t)
		svc := response.NewService(newFakeResponseRepo(), newFakeSurveyRepo(sv))
		resp, _ := startAttempt(t, svc, sv.ID)

		_, err := svc.SubmitAnswers(context.Background(), resp.ID, uuid.New(), map[uuid.UUID]interface{}{
			sv.Questions[0].ID: "B",
		})
		if apperr.KindOf(err) != apperr.KindNotFound {
			t.Errorf("err = %v, want not found", err)
		}
	})

	t.Run("SecondSubmitRejected", func(t *testing.T) {
		sv := examSurvey(t)
		svc := response.NewService(newFakeResponseRepo(), newFakeSurveyRepo(sv))
		resp, studentID := startAttempt(t, svc, sv.ID)

		answers := map[uuid.UUID]interface{}{sv.Questions[0].ID: "B"}
		if _, err := svc.SubmitAnswers(context.Background(), resp.ID, studentID, answers); err != nil {
			t.Fatalf("first submit failed: %v", err)
		}
		_, err := svc.SubmitAnswers(context.Background(), resp.ID, studentID, answers)
		if apperr.KindOf(err) != apperr.KindInvalidState {
			t.Errorf("err = %v, want invalid state", err)
		}
	})

	t.Run("ConcurrentSubmitLosesClaim", func(t *testing.T) {
		sv := examSurvey(t)
		repo := newFakeResponseRepo()
		svc := response.NewService(repo, newFakeSurveyRepo(sv))
		resp, studentID := startAttempt(t, svc, sv.ID)

		// rival submission wins between our read and our conditional update
		rivalScore := 10.0
		repo.beforeComplete = func() {
			r := repo.responses[resp.ID]
			r.Status = response.StatusSubmitted
			r.TotalScore = &rivalScore
		}

		_, err := svc.SubmitAnswers(context.Background(), resp.ID, studentID, map[uuid.UUID]interface{}{
			sv.Questions[0].ID: "C",
		})
		if apperr.KindOf(err) != apperr.KindInvalidState {
			t.Errorf("err = %v, want invalid state", err)
		}
		if got := repo.responses[resp.ID]; got.TotalScore == nil || *got.TotalScore != 10 {
			t.Error("losing submission must not overwrite the winner's totals")
		}
	})

	t.Run("ClosedSurvey", func(t *testing.T) {
		sv := examSurvey(t)
		surveys := newFakeSurveyRepo(sv)
		svc := response.NewService(newFakeResponseRepo(), surveys)
		resp, studentID := startAttempt(t, svc, sv.ID)

		sv.Status = survey.StatusClosed
		_, err := svc.SubmitAnswers(context.Background(), resp.ID, studentID, map[uuid.UUID]interface{}{
			sv.Questions[0].ID: "B",
		})
		if apperr.KindOf(err) != apperr.KindInvalidState {
			t.Errorf("err = %v, want invalid state", err)
		}
	})
}

func TestSubmitToSurvey(t *testing.T) {
	t.Run("StartsAttemptWhenNoneOpen", func(t *testing.T) {
		sv := examSurvey(t)
		svc := response.NewService(newFakeResponseRepo(), newFakeSurveyRepo(sv))

		out, err := svc.SubmitToSurvey(context.Background(), sv.ID, uuid.New(), map[uuid.UUID]interface{}{
			sv.Questions[0].ID: "B",
			sv.Questions[1].ID: "essay body",
		}, response.AttemptMeta{})
		if err != nil {
			t.Fatalf("SubmitToSurvey failed: %v", err)
		}
		if out.AttemptNumber != 1 || out.Status != response.StatusSubmitted {
			t.Errorf("attempt=%d status=%s, want attempt 1 submitted", out.AttemptNumber, out.Status)
		}
	})

	t.Run("ReusesOpenAttempt", func(t *testing.T) {
		sv := examSurvey(t)
		svc := response.NewService(newFakeResponseRepo(), newFakeSurveyRepo(sv))
		resp, studentID := startAttempt(t, svc, sv.ID)

		out, err := svc.SubmitToSurvey(context.Background(), sv.ID, studentID, map[uuid.UUID]interface{}{
			sv.Questions[0].ID: "B",
		}, response.AttemptMeta{})
		if err != nil {
			t.Fatalf("SubmitToSurvey failed: %v", err)
		}
		if out.ID != resp.ID {
			t.Error("open attempt was not reused")
		}
	})
}

func TestManualGrade(t *testing.T) {
	submitExam := func(t *testing.T) (response.Service, *fakeResponseRepo, *survey.Survey, *response.SurveyResponse) {
		t.Helper()
		sv := examSurvey(t)
		repo := newFakeResponseRepo()
		svc := response.NewService(repo, newFakeSurveyRepo(sv))
		resp, studentID := startAttempt(t, svc, sv.ID)
		out, err := svc.SubmitAnswers(context.Background(), resp.ID, studentID, map[uuid.UUID]interface{}{
			sv.Questions[0].ID: "B",
			sv.Questions[1].ID: "a thoughtful essay",
		})
		if err != nil {
			t.Fatalf("submit failed: %v", err)
		}
		return svc, repo, sv, out
	}

	essayAnswer := func(t *testing.T, sv *survey.Survey, resp *response.SurveyResponse) response.Answer {
		t.Helper()
		for _, a := range resp.Answers {
			if a.QuestionID == sv.Questions[1].ID {
				return a
			}
		}
		t.Fatal("essay answer not found")
		return response.Answer{}
	}

	t.Run("GradingEssayCompletesAttempt", func(t *testing.T) {
		svc, repo, sv, resp := submitExam(t)
		graderID := uuid.New()

		graded, err := svc.ManualGrade(context.Background(), essayAnswer(t, sv, resp).ID, graderID, 15, "solid work")
		if err != nil {
			t.Fatalf("ManualGrade failed: %v", err)
		}
		if graded.Score != 15 || graded.AutoGraded {
			t.Errorf("score=%.0f auto_graded=%v, want manual 15", graded.Score, graded.AutoGraded)
		}
		if graded.GradedAt == nil || graded.GradedBy == nil || *graded.GradedBy != graderID {
			t.Error("grader attribution missing")
		}
		if graded.IsCorrect == nil || *graded.IsCorrect {
			t.Error("partial credit must not be marked correct")
		}

		stored := repo.responses[resp.ID]
		if stored.Status != response.StatusGraded {
			t.Errorf("response status = %s, want graded", stored.Status)
		}
		if stored.TotalScore == nil || *stored.TotalScore != 25 {
			t.Errorf("total_score = %v, want 25", stored.TotalScore)
		}
		if stored.IsPassed == nil || !*stored.IsPassed {
			t.Error("25 of 30 with pass score 18 should pass")
		}
	})

	t.Run("FullMarksIsCorrect", func(t *testing.T) {
		svc, _, sv, resp := submitExam(t)

		graded, err := svc.ManualGrade(context.Background(), essayAnswer(t, sv, resp).ID, uuid.New(), 20, "")
		if err != nil {
			t.Fatalf("ManualGrade failed: %v", err)
		}
		if graded.IsCorrect == nil || !*graded.IsCorrect {
			t.Error("full marks should be marked correct")
		}
	})

	t.Run("ScoreAboveQuestionMax", func(t *testing.T) {
		svc, _, sv, resp := submitExam(t)
		_, err := svc.ManualGrade(context.Background(), essayAnswer(t, sv, resp).ID, uuid.New(), 25, "")
		if apperr.KindOf(err) != apperr.KindValidation {
			t.Errorf("err = %v, want validation error", err)
		}
	})

	t.Run("NegativeScore", func(t *testing.T) {
		svc, _, sv, resp := submitExam(t)
		_, err := svc.ManualGrade(context.Background(), essayAnswer(t, sv, resp).ID, uuid.New(), -1, "")
		if apperr.KindOf(err) != apperr.KindValidation {
			t.Errorf("err = %v, want validation error", err)
		}
	})

	t.Run("UnsubmittedAttempt", func(t *testing.T) {
		svc, repo, sv, resp := submitExam(t)
		repo.responses[resp.ID].Status = response.StatusInProgress

		_, err := svc.ManualGrade(context.Background(), essayAnswer(t, sv, resp).ID, uuid.New(), 10, "")
		if apperr.KindOf(err) != apperr.KindInvalidState {
			t.Errorf("err = %v, want invalid state", err)
		}
	})

	t.Run("MissingAnswer", func(t *testing.T) {
		svc, _, _, _ := submitExam(t)
		_, err := svc.ManualGrade(context.Background(), uuid.New(), uuid.New(), 10, "")
		if apperr.KindOf(err) != apperr.KindNotFound {
			t.Errorf("err = %v, want not found", err)
		}
	})
}
