package adaptor

import (
	"net/http"

	"finance-tracker/internal/dto/request"
	"finance-tracker/internal/usecase"
	"finance-tracker/pkg/utils"

	"go.uber.org/zap"
)

type CategoryHandler struct {
	service usecase.CategoryService
	log     *zap.Logger
}

func NewCategoryHandler(service usecase.CategoryService, log *zap.Logger) *CategoryHandler {
	return &CategoryHandler{service: service, log: log.With(zap.String("handler", "category"))}
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	categories, err := h.service.List(r.Context(), userID)
	if err != nil {
		writeError(w, h.log, err, "list categories")
		return
	}
	utils.ResponseSuccess(w, "Categories retrieved successfully", categories)
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	var req request.CategoryRequest
	if !bindJSON(w, r, &req) {
		return
	}

	category, err := h.service.Create(r.Context(), userID, &req)
	if err != nil {
		writeError(w, h.log, err, "create category")
		return
	}
	utils.ResponseCreated(w, "Category created successfully", category)
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "category")
	if !ok {
		return
	}
	var req request.CategoryRequest
	if !bindJSON(w, r, &req) {
		return
	}

	category, err := h.service.Update(r.Context(), userID, id, &req)
	if err != nil {
		writeError(w, h.log, err, "update category")
		return
	}
	utils.ResponseSuccess(w, "Category updated successfully", category)
}

func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "category")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), userID, id); err != nil {
		writeError(w, h.log, err, "delete category")
		return
	}
	utils.ResponseSuccess(w, "Category deleted successfully", nil)
}

type TransactionHandler struct {
	service usecase.TransactionService
	log     *zap.Logger
}

func NewTransactionHandler(service usecase.TransactionService, log *zap.Logger) *TransactionHandler {
	return &TransactionHandler{service: service, log: log.With(zap.String("handler", "transaction"))}
}

// List handles GET /api/v1/transactions?page=&per_page=&category_id=&type=&start_date=&end_date=&search=
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	query := &request.TransactionQuery{
		PaginatedRequest: request.PageFromQuery(q),
		CategoryID:       q.Get("category_id"),
		Type:             q.Get("type"),
		StartDate:        q.Get("start_date"),
		EndDate:          q.Get("end_date"),
		Search:           q.Get("search"),
	}

	page, err := h.service.List(r.Context(), userID, query)
	if err != nil {
		writeError(w, h.log, err, "list transactions")
		return
	}
	utils.ResponseSuccess(w, "Transactions retrieved successfully", page)
}

func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "transaction")
	if !ok {
		return
	}

	tx, err := h.service.Get(r.Context(), userID, id)
	if err != nil {
		writeError(w, h.log, err, "get transaction")
		return
	}
	utils.ResponseSuccess(w, "Transaction retrieved successfully", tx)
}

func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	var req request.TransactionRequest
	if !bindJSON(w, r, &req) {
		return
	}

	tx, err := h.service.Create(r.Context(), userID, &req)
	if err != nil {
		writeError(w, h.log, err, "create transaction")
		return
	}
	utils.ResponseCreated(w, "Transaction created successfully", tx)
}

func (h *TransactionHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "transaction")
	if !ok {
		return
	}
	var req request.TransactionRequest
	if !bindJSON(w, r, &req) {
		return
	}

	tx, err := h.service.Update(r.Context(), userID, id, &req)
	if err != nil {
		writeError(w, h.log, err, "update transaction")
		return
	}
	utils.ResponseSuccess(w, "Transaction updated successfully", tx)
}

func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "transaction")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), userID, id); err != nil {
		writeError(w, h.log, err, "delete transaction")
		return
	}
	utils.ResponseSuccess(w, "Transaction deleted successfully", nil)
}
