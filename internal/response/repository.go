package response

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Totals is the rolled-up result of grading one attempt.
type Totals struct {
	TotalScore      float64
	PercentageScore float64
	IsPassed        bool
	Complete        bool
}

type Repository interface {
	// Insert persists a fresh attempt; a duplicate (survey, student,
	// attempt_number) surfaces as gorm.ErrDuplicatedKey.
	Insert(ctx context.Context, resp *SurveyResponse) error
	FindByID(ctx context.Context, id uuid.UUID) (*SurveyResponse, error)
	FindOpen(ctx context.Context, surveyID, studentID uuid.UUID) (*SurveyResponse, error)
	MaxAttemptNumber(ctx context.Context, surveyID, studentID uuid.UUID) (int, error)
	ListBySurvey(ctx context.Context, surveyID uuid.UUID) ([]SurveyResponse, error)
	ListByStudent(ctx context.Context, surveyID, studentID uuid.UUID) ([]SurveyResponse, error)

	// CompleteSubmission atomically claims the attempt (conditional update
	// keyed on the expected prior status), writes the answers and the
	// totals. It reports false without touching anything when the attempt
	// already left in_progress.
	CompleteSubmission(ctx context.Context, responseID uuid.UUID, from Status, submitTime time.Time, timeSpent int, answers []Answer, totals Totals) (bool, error)

	FindAnswer(ctx context.Context, answerID uuid.UUID) (*Answer, error)
	// UpdateAnswerGrade persists a manual grade together with the
	// recomputed attempt totals in one transaction.
	UpdateAnswerGrade(ctx context.Context, answer *Answer, totals Totals) error
}

type responseRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &responseRepository{db: db}
}

func (r *responseRepository) Insert(ctx context.Context, resp *SurveyResponse) error {
	return r.db.WithContext(ctx).Create(resp).Error
}

func (r *responseRepository) FindByID(ctx context.Context, id uuid.UUID) (*SurveyResponse, error) {
	var resp SurveyResponse
	err := r.db.WithContext(ctx).
		Preload("Answers").
		First(&resp, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &resp, nil
}

func (r *responseRepository) FindOpen(ctx context.Context, surveyID, studentID uuid.UUID) (*SurveyResponse, error) {
	var resp SurveyResponse
	err := r.db.WithContext(ctx).
		Where("survey_id = ? AND student_id = ? AND status = ?", surveyID, studentID, StatusInProgress).
		Order("attempt_number DESC").
		First(&resp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &resp, nil
}

func (r *responseRepository) MaxAttemptNumber(ctx context.Context, surveyID, studentID uuid.UUID) (int, error) {
	var max int
	err := r.db.WithContext(ctx).
		Model(&SurveyResponse{}).
		Where("survey_id = ? AND student_id = ?", surveyID, studentID).
		Select("COALESCE(MAX(attempt_number), 0)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max, nil
}

func (r *responseRepository) ListBySurvey(ctx context.Context, surveyID uuid.UUID) ([]SurveyResponse, error) {
	var responses []SurveyResponse
	err := r.db.WithContext(ctx).
		Preload("Answers").
		Where("survey_id = ?", surveyID).
		Order("start_time DESC").
		Find(&responses).Error
	if err != nil {
		return nil, err
	}
	return responses, nil
}

func (r *responseRepository) ListByStudent(ctx context.Context, surveyID, studentID uuid.UUID) ([]SurveyResponse, error) {
	var responses []SurveyResponse
	err := r.db.WithContext(ctx).
		Where("survey_id = ? AND student_id = ?", surveyID, studentID).
		Order("attempt_number ASC").
		Find(&responses).Error
	if err != nil {
		return nil, err
	}
	return responses, nil
}

func (r *responseRepository) CompleteSubmission(ctx context.Context, responseID uuid.UUID, from Status, submitTime time.Time, timeSpent int, answers []Answer, totals Totals) (bool, error) {
	claimed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		status := StatusSubmitted
		if totals.Complete {
			status = StatusGraded
		}

		res := tx.Model(&SurveyResponse{}).
			Where("id = ? AND status = ?", responseID, from).
			Updates(map[string]interface{}{
				"status":           status,
				"submit_time":      submitTime,
				"time_spent":       timeSpent,
				"total_score":      totals.TotalScore,
				"percentage_score": totals.PercentageScore,
				"is_passed":        totals.IsPassed,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// someone else already submitted this attempt
			return nil
		}
		claimed = true

		if len(answers) == 0 {
			return nil
		}
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "response_id"}, {Name: "question_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"student_answer", "is_correct", "score", "auto_graded", "updated_at",
			}),
		}).Create(&answers).Error
	})
	if err != nil {
		return false, err
	}
	return claimed, nil
}

func (r *responseRepository) FindAnswer(ctx context.Context, answerID uuid.UUID) (*Answer, error) {
	var a Answer
	if err := r.db.WithContext(ctx).First(&a, "id = ?", answerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *responseRepository) UpdateAnswerGrade(ctx context.Context, answer *Answer, totals Totals) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&Answer{}).
			Where("id = ?", answer.ID).
			Updates(map[string]interface{}{
				"score":           answer.Score,
				"is_correct":      answer.IsCorrect,
				"teacher_comment": answer.TeacherComment,
				"auto_graded":     false,
				"graded_by":       answer.GradedBy,
				"graded_at":       answer.GradedAt,
			}).Error; err != nil {
			return err
		}

		status := StatusSubmitted
		if totals.Complete {
			status = StatusGraded
		}
		return tx.Model(&SurveyResponse{}).
			Where("id = ?", answer.ResponseID).
			Updates(map[string]interface{}{
				"status":           status,
				"total_score":      totals.TotalScore,
				"percentage_score": totals.PercentageScore,
				"is_passed":        totals.IsPassed,
			}).Error
	})
}
