package response

import (
	"encoding/json"
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

func (h *Handler) StartAttempt(w http.ResponseWriter, r *http.Request) {
	studentID, ok := callerID(w, r)
	if !ok {
		return
	}
	surveyID, ok := pathID(w, r, "id", "survey")
	if !ok {
		return
	}

	resp, err := h.service.StartAttempt(r.Context(), surveyID, studentID, metaFrom(r))
	if err != nil {
		writeError(w, r, err, "Failed to start attempt")
		return
	}

	config.JSON(w, http.StatusCreated, resp)
}

// Submit handles POST /surveys/{id}/submit: it resolves or starts the
// student's attempt and submits the answers in one round trip.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	studentID, ok := callerID(w, r)
	if !ok {
		return
	}
	surveyID, ok := pathID(w, r, "id", "survey")
	if !ok {
		return
	}

	var dto SubmitDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		log.WithError(err).Error("Invalid request body")
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(dto.Answers) == 0 {
		http.Error(w, "answers required", http.StatusBadRequest)
		return
	}

	resp, err := h.service.SubmitToSurvey(r.Context(), surveyID, studentID, dto.Answers, metaFrom(r))
	if err != nil {
		writeError(w, r, err, "Failed to submit answers")
		return
	}

	config.JSON(w, http.StatusOK, ackFrom(resp))
}

// SubmitAttempt handles POST /attempts/{responseID}/submit for clients
// that started the attempt explicitly.
func (h *Handler) SubmitAttempt(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	studentID, ok := callerID(w, r)
	if !ok {
		return
	}
	responseID, ok := pathID(w, r, "responseID", "response")
	if !ok {
		return
	}

	var dto SubmitDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		log.WithError(err).Error("Invalid request body")
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := h.service.SubmitAnswers(r.Context(), responseID, studentID, dto.Answers)
	if err != nil {
		writeError(w, r, err, "Failed to submit answers")
		return
	}

	config.JSON(w, http.StatusOK, ackFrom(resp))
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	studentID, ok := callerID(w, r)
	if !ok {
		return
	}
	surveyID, ok := pathID(w, r, "id", "survey")
	if !ok {
		return
	}

	responses, err := h.service.ListMine(r.Context(), surveyID, studentID)
	if err != nil {
		writeError(w, r, err, "Failed to list attempts")
		return
	}

	config.JSON(w, http.StatusOK, responses)
}

func (h *Handler) ListBySurvey(w http.ResponseWriter, r *http.Request) {
	surveyID, ok := pathID(w, r, "id", "survey")
	if !ok {
		return
	}

	responses, err := h.service.ListBySurvey(r.Context(), surveyID)
	if err != nil {
		writeError(w, r, err, "Failed to list responses")
		return
	}

	config.JSON(w, http.StatusOK, responses)
}

func (h *Handler) ManualGrade(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	graderID, ok := callerID(w, r)
	if !ok {
		return
	}
	answerID, ok := pathID(w, r, "answerID", "answer")
	if !ok {
		return
	}

	var dto ManualGradeDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		log.WithError(err).Error("Invalid request body")
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	answer, err := h.service.ManualGrade(r.Context(), answerID, graderID, dto.Score, dto.Comment)
	if err != nil {
		writeError(w, r, err, "Failed to grade answer")
		return
	}

	config.JSON(w, http.StatusOK, answer)
}

func metaFrom(r *http.Request) AttemptMeta {
	return AttemptMeta{
		IPAddress: r.RemoteAddr,
		UserAgent: r.UserAgent(),
	}
}

func callerID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
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

func pathID(w http.ResponseWriter, r *http.Request, param, entity string) (uuid.UUID, bool) {
	idStr := chi.URLParam(r, param)
	if idStr == "" {
		http.Error(w, entity+" id required", http.StatusBadRequest)
		return uuid.Nil, false
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		http.Error(w, "invalid "+entity+" id", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func writeError(w http.ResponseWriter, r *http.Request, err error, logMsg string) {
	log := config.WithContext(r.Context())

	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.WithError(err).Error(logMsg)
	} else {
		log.WithError(err).Warn(logMsg)
	}
	http.Error(w, apperr.SafeMessage(err), status)
}
