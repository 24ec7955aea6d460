package usecase

import (
	"context"
	"time"

	"finance-tracker/internal/data/entity"
	"finance-tracker/internal/data/repository"
	"finance-tracker/internal/dto/request"
	"finance-tracker/internal/dto/response"
	"finance-tracker/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TransactionService interface {
	List(ctx context.Context, userID uuid.UUID, query *request.TransactionQuery) (*response.PaginatedResponse[response.TransactionResponse], error)
	Get(ctx context.Context, userID, id uuid.UUID) (*response.TransactionResponse, error)
	Create(ctx context.Context, userID uuid.UUID, req *request.TransactionRequest) (*response.TransactionResponse, error)
	Update(ctx context.Context, userID, id uuid.UUID, req *request.TransactionRequest) (*response.TransactionResponse, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type transactionService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewTransactionService(repo *repository.Repository, log *zap.Logger) TransactionService {
	return &transactionService{
		repo: repo,
		log:  log.With(zap.String("service", "transaction")),
	}
}

func (s *transactionService) List(ctx context.Context, userID uuid.UUID, query *request.TransactionQuery) (*response.PaginatedResponse[response.TransactionResponse], error) {
	if errs := utils.ValidateStruct(query); len(errs) > 0 {
		return nil, validationError(utils.FormatValidationErrors(errs))
	}

	filter := repository.TransactionFilter{Search: query.Search}
	if query.CategoryID != "" {
		id, _ := uuid.Parse(query.CategoryID)
		filter.CategoryID = &id
	}
	if query.Type != "" {
		t := entity.TransactionType(query.Type)
		filter.Type = &t
	}

	var err error
	if filter.StartDate, err = utils.ParseDate(query.StartDate); err != nil {
		return nil, validationError("start_date: must be YYYY-MM-DD")
	}
	if filter.EndDate, err = utils.ParseDate(query.EndDate); err != nil {
		return nil, validationError("end_date: must be YYYY-MM-DD")
	}

	limit, offset := query.Limit(), query.Offset()

	total, err := s.repo.Transaction.Count(ctx, userID, filter)
	if err != nil {
		return nil, internalError(err)
	}

	transactions, err := s.repo.Transaction.FindAll(ctx, userID, filter, limit, offset)
	if err != nil {
		return nil, internalError(err)
	}

	data := make([]response.TransactionResponse, 0, len(transactions))
	for _, t := range transactions {
		data = append(data, response.TransactionToResponse(t))
	}

	page := query.Page
	if page < 1 {
		page = 1
	}
	return response.NewPaginatedResponse(data, page, limit, total), nil
}

func (s *transactionService) Get(ctx context.Context, userID, id uuid.UUID) (*response.TransactionResponse, error) {
	t, err := s.repo.Transaction.FindByID(ctx, id, userID)
	if err != nil {
		return nil, internalError(err)
	}
	if t == nil {
		return nil, notFound("Transaction not found")
	}

	resp := response.TransactionToResponse(t)
	return &resp, nil
}

func (s *transactionService) Create(ctx context.Context, userID uuid.UUID, req *request.TransactionRequest) (*response.TransactionResponse, error) {
	t := &entity.Transaction{UserID: userID}
	if err := s.apply(ctx, t, req); err != nil {
		return nil, err
	}

	t.Record = entity.NewRecord(time.Now())

	if err := s.repo.Transaction.Create(ctx, t); err != nil {
		return nil, internalError(err)
	}

	resp := response.TransactionToResponse(t)
	return &resp, nil
}

func (s *transactionService) Update(ctx context.Context, userID, id uuid.UUID, req *request.TransactionRequest) (*response.TransactionResponse, error) {
	t, err := s.repo.Transaction.FindByID(ctx, id, userID)
	if err != nil {
		return nil, internalError(err)
	}
	if t == nil {
		return nil, notFound("Transaction not found")
	}

	if err := s.apply(ctx, t, req); err != nil {
		return nil, err
	}
	t.Touch(time.Now())

	if err := s.repo.Transaction.Update(ctx, t); err != nil {
		return nil, internalError(err)
	}

	resp := response.TransactionToResponse(t)
	return &resp, nil
}

func (s *transactionService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	t, err := s.repo.Transaction.FindByID(ctx, id, userID)
	if err != nil {
		return internalError(err)
	}
	if t == nil {
		return notFound("Transaction not found")
	}

	if err := s.repo.Transaction.Delete(ctx, id, userID); err != nil {
		return internalError(err)
	}
	return nil
}

// apply validates req and copies it onto t. The category must belong to the
// transaction's owner.
func (s *transactionService) apply(ctx context.Context, t *entity.Transaction, req *request.TransactionRequest) error {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return validationError(utils.FormatValidationErrors(errs))
	}

	date, err := utils.ParseDate(req.Date)
	if err != nil || date == nil {
		return validationError("date: must be YYYY-MM-DD")
	}

	categoryID, _ := uuid.Parse(req.CategoryID)
	category, err := s.repo.Category.FindByID(ctx, categoryID, t.UserID)
	if err != nil {
		return internalError(err)
	}
	if category == nil {
		return notFound("Category not found or does not belong to you")
	}

	t.CategoryID = category.ID
	t.CategoryName = category.Name
	t.Amount = req.Amount
	t.Type = entity.TransactionType(req.Type)
	t.Date = *date
	t.Description = req.Description
	return nil
}
