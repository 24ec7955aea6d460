package adaptor

import (
	"net/http"

	"finance-tracker/internal/usecase"
	"finance-tracker/pkg/utils"

	"go.uber.org/zap"
)

type SessionHandler struct {
	service usecase.SessionService
	log     *zap.Logger
}

func NewSessionHandler(service usecase.SessionService, log *zap.Logger) *SessionHandler {
	return &SessionHandler{
		service: service,
		log:     log.With(zap.String("handler", "session")),
	}
}

// List handles GET /api/v1/sessions
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	sessionID, _ := utils.GetSessionIDFromContext(r.Context())

	sessions, err := h.service.List(r.Context(), userID, sessionID)
	if err != nil {
		writeError(w, h.log, err, "list sessions")
		return
	}

	utils.ResponseSuccess(w, "Sessions retrieved successfully", sessions)
}

// Revoke handles DELETE /api/v1/sessions/{id}
func (h *SessionHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	sessionID, ok := pathID(w, r, "session")
	if !ok {
		return
	}

	if err := h.service.Revoke(r.Context(), userID, sessionID); err != nil {
		writeError(w, h.log, err, "revoke session")
		return
	}

	utils.ResponseSuccess(w, "Session revoked", nil)
}
