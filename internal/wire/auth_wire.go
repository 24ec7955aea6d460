package wire

import (
	"net/http"

	"finance-tracker/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireAuth(r chi.Router, authHandler *adaptor.AuthHandler, guard func(http.Handler) http.Handler, limit limiters) {
	r.Route("/auth", func(r chi.Router) {
		// ==================== PUBLIC ROUTES ====================
		r.With(limit.auth).Post("/register", authHandler.Register)
		r.With(limit.auth).Post("/login", authHandler.Login)
		r.With(limit.auth).Post("/refresh-token", authHandler.RefreshToken)
		r.With(limit.auth).Post("/verify-email", authHandler.VerifyEmail)
		r.With(limit.auth).Post("/resend-verification", authHandler.ResendVerification)
		r.Post("/logout", authHandler.Logout)

		// ==================== PROTECTED ROUTES ====================
		r.With(guard).Post("/logout-all", authHandler.LogoutAll)
	})
}
