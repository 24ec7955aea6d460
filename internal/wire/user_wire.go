package wire

import (
	"net/http"

	"finance-tracker/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

// wireUser configures profile and session management, all behind the guard.
func wireUser(r chi.Router, userHandler *adaptor.UserHandler, sessionHandler *adaptor.SessionHandler, guard func(http.Handler) http.Handler) {
	r.With(guard).Route("/users/me", func(r chi.Router) {
		r.Get("/", userHandler.GetProfile)
		r.Put("/", userHandler.UpdateProfile)
		r.Delete("/", userHandler.DeleteProfile)
	})

	r.With(guard).Route("/sessions", func(r chi.Router) {
		r.Get("/", sessionHandler.List)
		r.Delete("/{id}", sessionHandler.Revoke)
	})
}
