package stats

import (
	"gorm.io/gorm"

	"github.com/edulane/survey-backend/internal/survey"
)

type StatsContainer struct {
	Repo    Repository
	Service Service
	Handler *Handler
}

func NewStatsContainer(db *gorm.DB, surveys survey.Repository, qa QASource) *StatsContainer {
	repo := NewRepository(db)
	service := NewService(repo, surveys, qa)
	handler := NewHandler(service)

	return &StatsContainer{
		Repo:    repo,
		Service: service,
		Handler: handler,
	}
}
