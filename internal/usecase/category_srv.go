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

type defaultCategory struct {
	Name, Icon, Color string
}

var defaultCategories = []defaultCategory{
	{"Housing & Rent", "🏠", "#EF4444"},
	{"Food & Injera", "🍲", "#F59E0B"},
	{"Transport (Taxi/Ride)", "🚗", "#10B981"},
	{"Utilities (Electric/Water)", "⚡", "#3B82F6"},
	{"Equb & Savings", "💰", "#8B5CF6"},
	{"Insurance", "🛡️", "#6366F1"},
	{"Healthcare", "🏥", "#EC4899"},
	{"Personal Care", "✨", "#06B6D4"},
	{"Entertainment & Coffee", "☕", "#F43F5E"},
	{"Shopping", "🛍️", "#F97316"},
	{"Miscellaneous", "📦", "#64748B"},
}

type CategoryService interface {
	List(ctx context.Context, userID uuid.UUID) ([]response.CategoryResponse, error)
	Create(ctx context.Context, userID uuid.UUID, req *request.CategoryRequest) (*response.CategoryResponse, error)
	Update(ctx context.Context, userID, id uuid.UUID, req *request.CategoryRequest) (*response.CategoryResponse, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	// SeedDefaults creates the starter categories unless the user already has some.
	SeedDefaults(ctx context.Context, userID uuid.UUID) error
}

type categoryService struct {
	categories repository.CategoryRepository
	log        *zap.Logger
}

func NewCategoryService(categories repository.CategoryRepository, log *zap.Logger) CategoryService {
	return &categoryService{
		categories: categories,
		log:        log.With(zap.String("service", "category")),
	}
}

func (s *categoryService) List(ctx context.Context, userID uuid.UUID) ([]response.CategoryResponse, error) {
	categories, err := s.categories.FindAllByUser(ctx, userID)
	if err != nil {
		return nil, internalError(err)
	}

	out := make([]response.CategoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, response.CategoryToResponse(c))
	}
	return out, nil
}

func (s *categoryService) Create(ctx context.Context, userID uuid.UUID, req *request.CategoryRequest) (*response.CategoryResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(utils.FormatValidationErrors(errs))
	}

	existing, err := s.categories.FindByName(ctx, userID, req.Name)
	if err != nil {
		return nil, internalError(err)
	}
	if existing != nil {
		return nil, conflict("Category with this name already exists")
	}

	now := time.Now()
	category := &entity.Category{
		Record: entity.NewRecord(now),
		UserID: userID,
		Name:   req.Name,
		Color:  orDefault(req.Color, "#64748B"),
		Icon:   orDefault(req.Icon, "📦"),
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, internalError(err)
	}

	resp := response.CategoryToResponse(category)
	return &resp, nil
}

func (s *categoryService) Update(ctx context.Context, userID, id uuid.UUID, req *request.CategoryRequest) (*response.CategoryResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(utils.FormatValidationErrors(errs))
	}

	category, err := s.categories.FindByID(ctx, id, userID)
	if err != nil {
		return nil, internalError(err)
	}
	if category == nil {
		return nil, notFound("Category not found")
	}

	if req.Name != category.Name {
		existing, err := s.categories.FindByName(ctx, userID, req.Name)
		if err != nil {
			return nil, internalError(err)
		}
		if existing != nil {
			return nil, conflict("Category with this name already exists")
		}
		category.Name = req.Name
	}
	if req.Color != "" {
		category.Color = req.Color
	}
	if req.Icon != "" {
		category.Icon = req.Icon
	}
	category.Touch(time.Now())

	if err := s.categories.Update(ctx, category); err != nil {
		return nil, internalError(err)
	}

	resp := response.CategoryToResponse(category)
	return &resp, nil
}

// Delete refuses categories that still have transactions.
func (s *categoryService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	category, err := s.categories.FindByID(ctx, id, userID)
	if err != nil {
		return internalError(err)
	}
	if category == nil {
		return notFound("Category not found")
	}

	count, err := s.categories.CountTransactions(ctx, id)
	if err != nil {
		return internalError(err)
	}
	if count > 0 {
		return conflict("Cannot delete category with associated transactions")
	}

	if err := s.categories.Delete(ctx, id, userID); err != nil {
		return internalError(err)
	}
	return nil
}

func (s *categoryService) SeedDefaults(ctx context.Context, userID uuid.UUID) error {
	count, err := s.categories.CountByUser(ctx, userID)
	if err != nil {
		return err
	}
	if count > 0 {
		s.log.Info("Categories already exist, skipping seeding", zap.String("user_id", userID.String()))
		return nil
	}

	now := time.Now()
	categories := make([]*entity.Category, 0, len(defaultCategories))
	for _, d := range defaultCategories {
		categories = append(categories, &entity.Category{
			Record: entity.NewRecord(now),
			UserID: userID,
			Name:   d.Name,
			Color:  d.Color,
			Icon:   d.Icon,
		})
	}

	if err := s.categories.CreateBatch(ctx, categories); err != nil {
		return err
	}

	s.log.Info("Default categories seeded", zap.String("user_id", userID.String()), zap.Int("count", len(categories)))
	return nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
