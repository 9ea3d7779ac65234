package survey

import "gorm.io/gorm"

type SurveyContainer struct {
	Repo    Repository
	Service Service
	Handler *Handler
}

func NewSurveyContainer(db *gorm.DB, counts ResponseCounts) *SurveyContainer {
	repo := NewRepository(db)
	service := NewService(repo)
	handler := NewHandler(service, counts)

	return &SurveyContainer{
		Repo:    repo,
		Service: service,
		Handler: handler,
	}
}
