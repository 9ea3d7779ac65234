package stats

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/edulane/survey-backend/internal/apperr"
	"github.com/edulane/survey-backend/internal/auth"
	"github.com/edulane/survey-backend/internal/config"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) SurveyResults(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		http.Error(w, "invalid survey id", http.StatusBadRequest)
		return
	}

	results, err := h.service.SurveyResults(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err, "Failed to compute survey results")
		return
	}

	config.JSON(w, http.StatusOK, results)
}

func (h *Handler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	claims, err := auth.GetUserClaimsFromContext(r.Context())
	if err != nil {
		log.Warn("User not authenticated")
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	teacherID, err := uuid.Parse(claims.UserID)
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	stats, err := h.service.DashboardStats(r.Context(), teacherID)
	if err != nil {
		h.writeError(w, r, err, "Failed to compute dashboard stats")
		return
	}

	config.JSON(w, http.StatusOK, stats)
}

func (h *Handler) RecentQuestions(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	claims, err := auth.GetUserClaimsFromContext(r.Context())
	if err != nil {
		log.Warn("User not authenticated")
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	teacherID, err := uuid.Parse(claims.UserID)
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	questions, err := h.service.RecentQuestions(r.Context(), teacherID)
	if err != nil {
		h.writeError(w, r, err, "Failed to fetch recent questions")
		return
	}

	config.JSON(w, http.StatusOK, questions)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error, logMsg string) {
	log := config.WithContext(r.Context())

	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.WithError(err).Error(logMsg)
	} else {
		log.WithError(err).Warn(logMsg)
	}
	http.Error(w, apperr.SafeMessage(err), status)
}
