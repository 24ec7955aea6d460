package adaptor

import (
	"net/http"

	"finance-tracker/internal/dto/request"
	"finance-tracker/internal/usecase"
	"finance-tracker/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type PasswordResetHandler struct {
	service usecase.PasswordResetService
	log     *zap.Logger
}

func NewPasswordResetHandler(service usecase.PasswordResetService, log *zap.Logger) *PasswordResetHandler {
	return &PasswordResetHandler{
		service: service,
		log:     log.With(zap.String("handler", "password_reset")),
	}
}

// Request handles POST /api/v1/password-reset/request
func (h *PasswordResetHandler) Request(w http.ResponseWriter, r *http.Request) {
	var req request.EmailRequest
	if !bindJSON(w, r, &req) {
		return
	}

	if err := h.service.Request(r.Context(), req.Email); err != nil {
		writeError(w, h.log, err, "request password reset")
		return
	}

	utils.ResponseSuccess(w, "If an account with that email exists, a password reset link has been sent", nil)
}

// Verify handles GET /api/v1/password-reset/verify/{token}
func (h *PasswordResetHandler) Verify(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Verify(r.Context(), chi.URLParam(r, "token")); err != nil {
		writeError(w, h.log, err, "verify reset token")
		return
	}

	utils.ResponseSuccess(w, "Reset token is valid", map[string]bool{"valid": true})
}

// Reset handles POST /api/v1/password-reset/reset
func (h *PasswordResetHandler) Reset(w http.ResponseWriter, r *http.Request) {
	var req request.ResetPasswordRequest
	if !bindJSON(w, r, &req) {
		return
	}

	if err := h.service.Reset(r.Context(), &req); err != nil {
		writeError(w, h.log, err, "reset password")
		return
	}

	utils.ResponseSuccess(w, "Password reset successful", nil)
}
