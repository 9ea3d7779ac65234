package response

import (
	"gorm.io/gorm"

	"github.com/edulane/survey-backend/internal/survey"
)

type ResponseContainer struct {
	Repo    Repository
	Service Service
	Handler *Handler
}

func NewResponseContainer(db *gorm.DB, surveys survey.Repository) *ResponseContainer {
	repo := NewRepository(db)
	service := NewService(repo, surveys)
	handler := NewHandler(service)

	return &ResponseContainer{
		Repo:    repo,
		Service: service,
		Handler: handler,
	}
}
