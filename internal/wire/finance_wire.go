package wire

import (
	"net/http"

	"finance-tracker/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireFinance(
	r chi.Router,
	categoryHandler *adaptor.CategoryHandler,
	transactionHandler *adaptor.TransactionHandler,
	guard func(http.Handler) http.Handler,
) {
	r.With(guard).Route("/categories", func(r chi.Router) {
		r.Get("/", categoryHandler.List)
		r.Post("/", categoryHandler.Create)
		r.Put("/{id}", categoryHandler.Update)
		r.Delete("/{id}", categoryHandler.Delete)
	})

	r.With(guard).Route("/transactions", func(r chi.Router) {
		r.Get("/", transactionHandler.List)
		r.Post("/", transactionHandler.Create)
		r.Get("/{id}", transactionHandler.Get)
		r.Put("/{id}", transactionHandler.Update)
		r.Delete("/{id}", transactionHandler.Delete)
	})
}
