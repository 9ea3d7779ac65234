package container

import (
	"context"
	"log"

	"github.com/edulane/survey-backend/internal/auth"
	"github.com/edulane/survey-backend/internal/config"
	"github.com/edulane/survey-backend/internal/response"
	"github.com/edulane/survey-backend/internal/stats"
	"github.com/edulane/survey-backend/internal/survey"
	"github.com/edulane/survey-backend/internal/upload"
)

type Container struct {
	SurveyContainer   *survey.SurveyContainer
	ResponseContainer *response.ResponseContainer
	StatsContainer    *stats.StatsContainer
	UploadHandler     *upload.Handler
	UploadDir         string
}

func New() *Container {
	config.Init()
	auth.Init()

	dsn := config.Env("DATABASE_DSN", "")
	if err := config.Connect(context.Background(), dsn); err != nil {
		log.Fatalf("failed to connect to DB: %v", err)
	}
	if err := config.DB.AutoMigrate(
		&survey.Survey{},
		&survey.Question{},
		&response.SurveyResponse{},
		&response.Answer{},
	); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	surveyRepo := survey.NewRepository(config.DB)

	// the QA subsystem is a separate service; no source is wired here
	statsContainer := stats.NewStatsContainer(config.DB, surveyRepo, nil)
	surveyContainer := survey.NewSurveyContainer(config.DB, statsContainer.Service)
	responseContainer := response.NewResponseContainer(config.DB, surveyRepo)

	uploadDir := config.Env("UPLOAD_DIR", "uploads")
	storage, err := upload.NewStorage(uploadDir, config.Env("PUBLIC_BASE_URL", ""))
	if err != nil {
		log.Fatalf("failed to init upload storage: %v", err)
	}

	return &Container{
		SurveyContainer:   surveyContainer,
		ResponseContainer: responseContainer,
		StatsContainer:    statsContainer,
		UploadHandler:     upload.NewHandler(storage),
		UploadDir:         uploadDir,
	}
}
