package survey

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/edulane/survey-backend/internal/apperr"
	"github.com/edulane/survey-backend/internal/auth"
	"github.com/edulane/survey-backend/internal/config"
)

// ResponseCounts supplies per-survey attempt counts for the teacher list
// view. Implemented by the stats service.
type ResponseCounts interface {
	ResponseCounts(ctx context.Context, surveyIDs []uuid.UUID) (map[uuid.UUID]AttemptCounts, error)
}

type AttemptCounts struct {
	Completed int64 `json:"responses"`
	Total     int64 `json:"total"`
}

type Handler struct {
	service Service
	counts  ResponseCounts
}

func NewHandler(service Service, counts ResponseCounts) *Handler {
	return &Handler{service: service, counts: counts}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	teacherID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	var dto CreateSurveyDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		log.WithError(err).Error("Invalid request body")
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	detail, err := h.service.Create(r.Context(), teacherID, dto)
	if err != nil {
		h.writeError(w, r, err, "Failed to create survey")
		return
	}

	config.JSON(w, http.StatusCreated, detail)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	teacherID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	f := Filter{TeacherID: &teacherID}
	if raw := r.URL.Query().Get("status"); raw != "" {
		st := Status(raw)
		if !st.IsValid() {
			http.Error(w, "invalid status filter", http.StatusBadRequest)
			return
		}
		f.Status = &st
	}

	surveys, err := h.service.List(r.Context(), f)
	if err != nil {
		h.writeError(w, r, err, "Failed to list surveys")
		return
	}

	ids := make([]uuid.UUID, len(surveys))
	for i, sv := range surveys {
		ids[i] = sv.ID
	}
	counts, err := h.counts.ResponseCounts(r.Context(), ids)
	if err != nil {
		h.writeError(w, r, err, "Failed to count survey responses")
		return
	}

	infos := make([]SurveyInfo, len(surveys))
	for i, sv := range surveys {
		infos[i] = SurveyInfo{
			ID:        sv.ID,
			Title:     sv.Title,
			Status:    sv.Status,
			Responses: counts[sv.ID].Completed,
			Total:     counts[sv.ID].Total,
			CreatedAt: sv.CreatedAt,
		}
	}

	config.JSON(w, http.StatusOK, infos)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.surveyID(w, r)
	if !ok {
		return
	}

	sv, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err, "Failed to fetch survey")
		return
	}

	config.JSON(w, http.StatusOK, sv)
}

func (h *Handler) Publish(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Publish, "Failed to publish survey")
}

func (h *Handler) Unpublish(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Unpublish, "Failed to unpublish survey")
}

func (h *Handler) Close(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Close, "Failed to close survey")
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	teacherID, ok := h.callerID(w, r)
	if !ok {
		return
	}
	id, ok := h.surveyID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id, teacherID); err != nil {
		h.writeError(w, r, err, "Failed to delete survey")
		return
	}

	config.JSON(w, http.StatusOK, map[string]string{"message": "survey deleted successfully"})
}

// student-facing

func (h *Handler) ListPublished(w http.ResponseWriter, r *http.Request) {
	surveys, err := h.service.ListPublished(r.Context())
	if err != nil {
		h.writeError(w, r, err, "Failed to list published surveys")
		return
	}
	config.JSON(w, http.StatusOK, surveys)
}

func (h *Handler) GetForStudent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.surveyID(w, r)
	if !ok {
		return
	}

	sv, err := h.service.GetForStudent(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err, "Failed to fetch survey for student")
		return
	}

	config.JSON(w, http.StatusOK, sv)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, fn func(context.Context, uuid.UUID, uuid.UUID) (*Survey, error), logMsg string) {
	teacherID, ok := h.callerID(w, r)
	if !ok {
		return
	}
	id, ok := h.surveyID(w, r)
	if !ok {
		return
	}

	sv, err := fn(r.Context(), id, teacherID)
	if err != nil {
		h.writeError(w, r, err, logMsg)
		return
	}

	config.JSON(w, http.StatusOK, map[string]interface{}{
		"id":           sv.ID,
		"status":       sv.Status,
		"published_at": sv.PublishedAt,
	})
}

func (h *Handler) callerID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	log := config.WithContext(r.Context())

	claims, err := auth.GetUserClaimsFromContext(r.Context())
	if err != nil {
		log.Warn("User not authenticated")
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return uuid.Nil, false
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) surveyID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idStr := chi.URLParam(r, "id")
	if idStr == "" {
		http.Error(w, "survey id required", http.StatusBadRequest)
		return uuid.Nil, false
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		http.Error(w, "invalid survey id", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
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
