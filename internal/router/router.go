package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/edulane/survey-backend/internal/auth"
	"github.com/edulane/survey-backend/internal/config"
	"github.com/edulane/survey-backend/internal/middlewares"
	"github.com/edulane/survey-backend/internal/response"
	"github.com/edulane/survey-backend/internal/stats"
	"github.com/edulane/survey-backend/internal/survey"
	"github.com/edulane/survey-backend/internal/upload"
)

type RouterConfig struct {
	SurveyHandler   *survey.Handler
	ResponseHandler *response.Handler
	StatsHandler    *stats.Handler
	UploadHandler   *upload.Handler
	UploadDir       string
}

func New(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewares.CorsMiddleware)

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		config.JSON(w, http.StatusOK, map[string]string{
			"message": "survey backend API",
			"version": "1.0.0",
		})
	})
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		config.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// uploaded reference material is public static content
	fileServer := http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir)))
	r.Get("/uploads/*", fileServer.ServeHTTP)

	r.Route("/api/student", func(r chi.Router) {
		r.Use(auth.AuthMiddleware)
		r.Use(auth.RequireRole(auth.RoleStudent))

		r.Route("/surveys", func(r chi.Router) {
			r.Get("/", cfg.SurveyHandler.ListPublished)
			r.Get("/{id}", cfg.SurveyHandler.GetForStudent)
			r.Post("/{id}/start", cfg.ResponseHandler.StartAttempt)
			r.Post("/{id}/submit", cfg.ResponseHandler.Submit)
			r.Get("/{id}/attempts", cfg.ResponseHandler.ListMine)
		})
		r.Post("/attempts/{responseID}/submit", cfg.ResponseHandler.SubmitAttempt)
	})

	r.Route("/api/teacher", func(r chi.Router) {
		r.Use(auth.AuthMiddleware)
		r.Use(auth.RequireRole(auth.RoleTeacher))

		r.Route("/surveys", func(r chi.Router) {
			r.Get("/", cfg.SurveyHandler.List)
			r.Post("/", cfg.SurveyHandler.Create)
			r.Post("/upload", cfg.UploadHandler.Upload)
			r.Get("/{id}", cfg.SurveyHandler.Get)
			r.Delete("/{id}", cfg.SurveyHandler.Delete)
			r.Post("/{id}/publish", cfg.SurveyHandler.Publish)
			r.Post("/{id}/unpublish", cfg.SurveyHandler.Unpublish)
			r.Post("/{id}/close", cfg.SurveyHandler.Close)
			r.Get("/{id}/results", cfg.StatsHandler.SurveyResults)
			r.Get("/{id}/responses", cfg.ResponseHandler.ListBySurvey)
		})

		r.Post("/answers/{answerID}/grade", cfg.ResponseHandler.ManualGrade)

		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/stats", cfg.StatsHandler.DashboardStats)
			r.Get("/recent-questions", cfg.StatsHandler.RecentQuestions)
		})
	})

	return r
}
