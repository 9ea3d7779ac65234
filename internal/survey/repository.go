package survey

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, s *Survey) error
	FindByID(ctx context.Context, id uuid.UUID) (*Survey, error)
	FindQuestion(ctx context.Context, id uuid.UUID) (*Question, error)
	List(ctx context.Context, f Filter) ([]Survey, error)
	ListPublished(ctx context.Context) ([]Survey, error)
	// UpdateStatus flips status only when the row still holds the expected
	// value; it reports whether a row was updated.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status, publishedAt *time.Time) (bool, error)
	Delete(ctx context.Context, id, teacherID uuid.UUID) (bool, error)
}

type surveyRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &surveyRepository{db: db}
}

func (r *surveyRepository) Create(ctx context.Context, s *Survey) error {
	// Survey and questions land atomically; gorm cascades the association
	// insert inside one transaction.
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *surveyRepository) FindByID(ctx context.Context, id uuid.UUID) (*Survey, error) {
	var s Survey
	err := r.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("question_order ASC, created_at ASC")
		}).
		First(&s, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *surveyRepository) FindQuestion(ctx context.Context, id uuid.UUID) (*Question, error) {
	var q Question
	if err := r.db.WithContext(ctx).First(&q, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &q, nil
}

func (r *surveyRepository) List(ctx context.Context, f Filter) ([]Survey, error) {
	q := r.db.WithContext(ctx).Model(&Survey{})
	if f.TeacherID != nil {
		q = q.Where("teacher_id = ?", *f.TeacherID)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}

	var surveys []Survey
	if err := q.Order("created_at DESC").Find(&surveys).Error; err != nil {
		return nil, err
	}
	return surveys, nil
}

func (r *surveyRepository) ListPublished(ctx context.Context) ([]Survey, error) {
	var surveys []Survey
	err := r.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("question_order ASC, created_at ASC")
		}).
		Where("status = ?", StatusPublished).
		Order("created_at DESC").
		Find(&surveys).Error
	if err != nil {
		return nil, err
	}
	return surveys, nil
}

func (r *surveyRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status, publishedAt *time.Time) (bool, error) {
	updates := map[string]interface{}{"status": to}
	if publishedAt != nil {
		updates["published_at"] = *publishedAt
	}

	res := r.db.WithContext(ctx).
		Model(&Survey{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *surveyRepository) Delete(ctx context.Context, id, teacherID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND teacher_id = ?", id, teacherID).
		Delete(&Survey{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
