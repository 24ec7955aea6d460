package wire

import (
	"finance-tracker/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wirePasswordReset(r chi.Router, resetHandler *adaptor.PasswordResetHandler, limit limiters) {
	r.With(limit.reset).Route("/password-reset", func(r chi.Router) {
		r.Post("/request", resetHandler.Request)
		r.Get("/verify/{token}", resetHandler.Verify)
		r.Post("/reset", resetHandler.Reset)
	})
}
