package usecase

import (
	"context"
	"errors"
	"time"

	"finance-tracker/internal/data/repository"
	"finance-tracker/internal/dto/request"
	"finance-tracker/internal/dto/response"
	"finance-tracker/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UserService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*response.UserResponse, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req *request.UpdateProfileRequest) (*response.UserResponse, error)
	DeleteAccount(ctx context.Context, userID uuid.UUID) error
}

type userService struct {
	repo   *repository.Repository
	mailer Mailer
	config *utils.Config
	log    *zap.Logger
}

func NewUserService(repo *repository.Repository, mailer Mailer, config *utils.Config, log *zap.Logger) UserService {
	return &userService{
		repo:   repo,
		mailer: mailer,
		config: config,
		log:    log.With(zap.String("service", "user")),
	}
}

func (us *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*response.UserResponse, error) {
	user, err := us.repo.User.FindByID(ctx, userID)
	if err != nil {
		return nil, internalError(err)
	}
	if user == nil {
		return nil, notFound("User not found")
	}

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (us *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *request.UpdateProfileRequest) (*response.UserResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(utils.FormatValidationErrors(errs))
	}

	user, err := us.repo.User.FindByID(ctx, userID)
	if err != nil {
		return nil, internalError(err)
	}
	if user == nil {
		return nil, notFound("User not found")
	}

	now := time.Now()

	// A new email must be verified again before the next login.
	var verificationToken string
	if req.Email != nil && (user.Email == nil || *user.Email != *req.Email) {
		other, err := us.repo.User.FindByEmail(ctx, *req.Email)
		if err != nil {
			return nil, internalError(err)
		}
		if other != nil && other.ID != userID {
			return nil, conflict("Email already exists")
		}
		email := *req.Email
		user.Email = &email
		user.EmailVerified = false
		verificationToken, err = setVerificationToken(user, now, us.config.Security.VerificationTTL)
		if err != nil {
			return nil, internalError(err)
		}
	}
	if req.Name != nil {
		user.Name = *req.Name
	}
	user.Touch(now)

	if err := us.repo.User.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, notFound("User not found")
		}
		return nil, internalError(err)
	}

	if verificationToken != "" {
		link := verificationLink(us.config.App.FrontendURL, verificationToken)
		if err := us.mailer.SendVerification(ctx, *user.Email, user.UserName, link); err != nil {
			us.log.Error("Failed to send verification email", zap.Error(err), zap.String("user_id", user.ID.String()))
		}
	}

	resp := response.UserToResponse(user)
	return &resp, nil
}

// DeleteAccount revokes every session first, then deletes the user. Rows
// owned by the user go with it.
func (us *userService) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	if _, err := us.repo.Session.RevokeAllForUser(ctx, userID); err != nil {
		return internalError(err)
	}

	if err := us.repo.User.Delete(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return notFound("User not found")
		}
		return internalError(err)
	}

	us.log.Info("Account deleted", zap.String("user_id", userID.String()))
	return nil
}
