package adaptor

import (
	"net/http"

	"finance-tracker/internal/dto/request"
	"finance-tracker/internal/usecase"
	"finance-tracker/pkg/utils"

	"go.uber.org/zap"
)

type AuthHandler struct {
	service usecase.AuthService
	cookie  refreshCookie
	log     *zap.Logger
}

func NewAuthHandler(service usecase.AuthService, cookie refreshCookie, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		cookie:  cookie,
		log:     log.With(zap.String("handler", "auth")),
	}
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if !bindJSON(w, r, &req) {
		return
	}

	resp, err := h.service.Register(r.Context(), &req, deviceInfo(r))
	if err != nil {
		writeError(w, h.log, err, "register")
		return
	}

	if resp.Tokens == nil {
		utils.ResponseCreated(w, "User registered successfully. Check your email to verify your account", resp)
		return
	}

	h.cookie.set(w, resp.Tokens.RefreshToken)
	utils.ResponseCreated(w, "User registered successfully", resp)
}

// VerifyEmail handles POST /api/v1/auth/verify-email
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req request.VerifyEmailRequest
	if !bindJSON(w, r, &req) {
		return
	}

	user, err := h.service.VerifyEmail(r.Context(), req.Token)
	if err != nil {
		writeError(w, h.log, err, "verify email")
		return
	}

	utils.ResponseSuccess(w, "Email verified successfully", user)
}

// ResendVerification handles POST /api/v1/auth/resend-verification
func (h *AuthHandler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var req request.EmailRequest
	if !bindJSON(w, r, &req) {
		return
	}

	if err := h.service.ResendVerification(r.Context(), req.Email); err != nil {
		writeError(w, h.log, err, "resend verification")
		return
	}

	utils.ResponseSuccess(w, "If an account with that email exists, a verification email has been sent", nil)
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if !bindJSON(w, r, &req) {
		return
	}

	resp, err := h.service.Login(r.Context(), &req, deviceInfo(r))
	if err != nil {
		writeError(w, h.log, err, "login")
		return
	}

	h.cookie.set(w, resp.Tokens.RefreshToken)
	utils.ResponseSuccess(w, "Login successful", resp)
}

// RefreshToken handles POST /api/v1/auth/refresh-token
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req request.RefreshTokenRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	resp, err := h.service.RefreshToken(r.Context(), h.cookie.read(r, req.RefreshToken), deviceInfo(r))
	if err != nil {
		if usecase.KindOf(err) != usecase.KindInternal {
			h.cookie.clear(w)
		}
		writeError(w, h.log, err, "refresh token")
		return
	}

	h.cookie.set(w, resp.Tokens.RefreshToken)
	utils.ResponseSuccess(w, "Tokens refreshed successfully", resp)
}

// Logout handles POST /api/v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req request.RefreshTokenRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := h.service.Logout(r.Context(), h.cookie.read(r, req.RefreshToken)); err != nil {
		writeError(w, h.log, err, "logout")
		return
	}

	h.cookie.clear(w)
	utils.ResponseSuccess(w, "Logout successful", nil)
}

// LogoutAll handles POST /api/v1/auth/logout-all
func (h *AuthHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	if err := h.service.LogoutAll(r.Context(), userID); err != nil {
		writeError(w, h.log, err, "logout all")
		return
	}

	h.cookie.clear(w)
	utils.ResponseSuccess(w, "Logged out from all devices", nil)
}
