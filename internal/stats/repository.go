package stats

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edulane/survey-backend/internal/response"
	"github.com/edulane/survey-backend/internal/survey"
)

type Repository interface {
	// ListCompleted returns submitted and graded attempts with answers.
	ListCompleted(ctx context.Context, surveyID uuid.UUID) ([]response.SurveyResponse, error)
	CountBySurvey(ctx context.Context, surveyIDs []uuid.UUID) (map[uuid.UUID]CountRow, error)
	TeacherSurveys(ctx context.Context, teacherID uuid.UUID) ([]survey.Survey, error)
	DistinctStudents(ctx context.Context, surveyIDs []uuid.UUID) (int64, error)
	AveragePercentage(ctx context.Context, surveyIDs []uuid.UUID) (float64, error)
}

type CountRow struct {
	Completed int64
	Total     int64
}

type statsRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &statsRepository{db: db}
}

func (r *statsRepository) ListCompleted(ctx context.Context, surveyID uuid.UUID) ([]response.SurveyResponse, error) {
	var responses []response.SurveyResponse
	err := r.db.WithContext(ctx).
		Preload("Answers").
		Where("survey_id = ? AND status IN ?", surveyID, []response.Status{response.StatusSubmitted, response.StatusGraded}).
		Find(&responses).Error
	if err != nil {
		return nil, err
	}
	return responses, nil
}

func (r *statsRepository) CountBySurvey(ctx context.Context, surveyIDs []uuid.UUID) (map[uuid.UUID]CountRow, error) {
	out := make(map[uuid.UUID]CountRow, len(surveyIDs))
	if len(surveyIDs) == 0 {
		return out, nil
	}

	var rows []struct {
		SurveyID  uuid.UUID
		Completed int64
		Total     int64
	}
	err := r.db.WithContext(ctx).
		Model(&response.SurveyResponse{}).
		Select("survey_id, COUNT(*) FILTER (WHERE status IN ('submitted','graded')) AS completed, COUNT(*) AS total").
		Where("survey_id IN ?", surveyIDs).
		Group("survey_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		out[row.SurveyID] = CountRow{Completed: row.Completed, Total: row.Total}
	}
	return out, nil
}

func (r *statsRepository) TeacherSurveys(ctx context.Context, teacherID uuid.UUID) ([]survey.Survey, error) {
	var surveys []survey.Survey
	err := r.db.WithContext(ctx).
		Where("teacher_id = ?", teacherID).
		Find(&surveys).Error
	if err != nil {
		return nil, err
	}
	return surveys, nil
}

func (r *statsRepository) DistinctStudents(ctx context.Context, surveyIDs []uuid.UUID) (int64, error) {
	if len(surveyIDs) == 0 {
		return 0, nil
	}
	var n int64
	err := r.db.WithContext(ctx).
		Model(&response.SurveyResponse{}).
		Where("survey_id IN ?", surveyIDs).
		Distinct("student_id").
		Count(&n).Error
	return n, err
}

func (r *statsRepository) AveragePercentage(ctx context.Context, surveyIDs []uuid.UUID) (float64, error) {
	if len(surveyIDs) == 0 {
		return 0, nil
	}
	var avg *float64
	err := r.db.WithContext(ctx).
		Model(&response.SurveyResponse{}).
		Where("survey_id IN ? AND status = ?", surveyIDs, response.StatusGraded).
		Select("AVG(percentage_score)").
		Scan(&avg).Error
	if err != nil || avg == nil {
		return 0, err
	}
	return *avg, nil
}
