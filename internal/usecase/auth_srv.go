package usecase

import (
	"context"
	"strings"
	"time"

	"finance-tracker/internal/data/entity"
	"finance-tracker/internal/data/repository"
	"finance-tracker/internal/dto/request"
	"finance-tracker/internal/dto/response"
	"finance-tracker/pkg/metrics"
	"finance-tracker/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AuthService interface {
	Register(ctx context.Context, req *request.RegisterRequest, device DeviceInfo) (*response.AuthResponse, error)
	VerifyEmail(ctx context.Context, token string) (*response.UserResponse, error)
	ResendVerification(ctx context.Context, email string) error
	Login(ctx context.Context, req *request.LoginRequest, device DeviceInfo) (*response.AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string, device DeviceInfo) (*response.AuthResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	LogoutAll(ctx context.Context, userID uuid.UUID) error
}

type authService struct {
	repo       *repository.Repository
	verifier   CredentialVerifier
	tokens     TokenService
	categories CategoryService
	mailer     Mailer
	config     *utils.Config
	now        func() time.Time
	log        *zap.Logger
}

func NewAuthService(
	repo *repository.Repository,
	verifier CredentialVerifier,
	tokens TokenService,
	categories CategoryService,
	mailer Mailer,
	config *utils.Config,
	log *zap.Logger,
) AuthService {
	return &authService{
		repo:       repo,
		verifier:   verifier,
		tokens:     tokens,
		categories: categories,
		mailer:     mailer,
		config:     config,
		now:        time.Now,
		log:        log.With(zap.String("service", "auth")),
	}
}

// Register creates the account. Guest accounts (no email) are signed in
// right away; accounts with an email get a verification mail and no tokens.
func (s *authService) Register(ctx context.Context, req *request.RegisterRequest, device DeviceInfo) (*response.AuthResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Register validation failed", zap.Any("errors", errs))
		return nil, validationError(utils.FormatValidationErrors(errs))
	}

	existing, err := s.repo.User.FindByUserName(ctx, req.UserName)
	if err != nil {
		return nil, internalError(err)
	}
	if existing != nil {
		return nil, conflict("Username already exists")
	}

	if req.Email != "" {
		existing, err = s.repo.User.FindByEmail(ctx, req.Email)
		if err != nil {
			return nil, internalError(err)
		}
		if existing != nil {
			return nil, conflict("Email already exists")
		}
	}

	hashedPassword, err := utils.HashPassword(req.Password, s.config.Security.BcryptCost)
	if err != nil {
		return nil, internalError(err)
	}

	now := s.now()
	user := &entity.User{
		Record:       entity.NewRecord(now),
		Name:         req.Name,
		UserName:     req.UserName,
		PasswordHash: hashedPassword,
	}

	var verificationToken string
	if req.Email != "" {
		email := req.Email
		user.Email = &email
		verificationToken, err = setVerificationToken(user, now, s.config.Security.VerificationTTL)
		if err != nil {
			return nil, internalError(err)
		}
	}

	if err := s.repo.User.Create(ctx, user); err != nil {
		return nil, internalError(err)
	}

	s.log.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.Bool("guest", !user.HasEmail()),
	)

	if user.HasEmail() {
		if err := s.mailer.SendVerification(ctx, *user.Email, user.UserName, verificationLink(s.config.App.FrontendURL, verificationToken)); err != nil {
			s.log.Error("Failed to send verification email", zap.Error(err), zap.String("user_id", user.ID.String()))
		}
		recordAuthEvent("register", nil)
		return &response.AuthResponse{
			User:                 response.UserToResponse(user),
			RequiresVerification: true,
		}, nil
	}

	if err := s.categories.SeedDefaults(ctx, user.ID); err != nil {
		s.log.Error("Failed to seed categories", zap.Error(err), zap.String("user_id", user.ID.String()))
	}

	pair, err := s.tokens.Issue(ctx, user, device)
	recordAuthEvent("register", err)
	if err != nil {
		return nil, err
	}

	return authResponse(user, pair), nil
}

func (s *authService) VerifyEmail(ctx context.Context, token string) (*response.UserResponse, error) {
	if token == "" {
		return nil, ErrInvalidVerification
	}

	user, err := s.repo.User.FindByVerificationHash(ctx, utils.DigestToken(token))
	if err != nil {
		return nil, internalError(err)
	}
	if user == nil || user.VerificationExpiresAt == nil || !user.VerificationExpiresAt.After(s.now()) {
		return nil, ErrInvalidVerification
	}

	user.EmailVerified = true
	user.VerificationTokenHash = nil
	user.VerificationExpiresAt = nil
	user.Touch(s.now())

	if err := s.repo.User.Update(ctx, user); err != nil {
		return nil, internalError(err)
	}

	if err := s.categories.SeedDefaults(ctx, user.ID); err != nil {
		s.log.Error("Failed to seed categories", zap.Error(err), zap.String("user_id", user.ID.String()))
	}
	if err := s.mailer.SendWelcome(ctx, *user.Email, user.UserName); err != nil {
		s.log.Error("Failed to send welcome email", zap.Error(err), zap.String("user_id", user.ID.String()))
	}

	s.log.Info("Email verified", zap.String("user_id", user.ID.String()))

	resp := response.UserToResponse(user)
	return &resp, nil
}

// ResendVerification answers the same way whether or not the email belongs
// to an account. Only the digest is stored, so a fresh token is always minted.
func (s *authService) ResendVerification(ctx context.Context, email string) error {
	user, err := s.repo.User.FindByEmail(ctx, email)
	if err != nil {
		return internalError(err)
	}
	if user == nil || !user.HasEmail() || user.EmailVerified {
		s.log.Info("Resend verification skipped")
		return nil
	}

	now := s.now()
	token, err := setVerificationToken(user, now, s.config.Security.VerificationTTL)
	if err != nil {
		return internalError(err)
	}
	user.Touch(now)

	if err := s.repo.User.Update(ctx, user); err != nil {
		return internalError(err)
	}

	if err := s.mailer.SendVerification(ctx, *user.Email, user.UserName, verificationLink(s.config.App.FrontendURL, token)); err != nil {
		return internalError(err)
	}
	return nil
}

func (s *authService) Login(ctx context.Context, req *request.LoginRequest, device DeviceInfo) (*response.AuthResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(utils.FormatValidationErrors(errs))
	}

	user, err := s.verifier.Verify(ctx, req.Identifier, req.Password)
	if err != nil {
		recordAuthEvent("login", err)
		return nil, err
	}

	pair, err := s.tokens.Issue(ctx, user, device)
	recordAuthEvent("login", err)
	if err != nil {
		return nil, err
	}

	s.log.Info("User logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("session_id", pair.SessionID.String()),
	)

	return authResponse(user, pair), nil
}

func (s *authService) RefreshToken(ctx context.Context, refreshToken string, device DeviceInfo) (*response.AuthResponse, error) {
	if refreshToken == "" {
		recordAuthEvent("refresh", ErrMissingCredential)
		return nil, ErrMissingCredential
	}

	pair, user, err := s.tokens.Rotate(ctx, refreshToken, device)
	recordAuthEvent("refresh", err)
	if err != nil {
		return nil, err
	}

	return authResponse(user, pair), nil
}

// Logout revokes the session behind refreshToken. Unknown, already revoked
// and empty tokens are not errors.
func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	if err := s.repo.Session.RevokeByHash(ctx, utils.DigestToken(refreshToken)); err != nil {
		return internalError(err)
	}

	recordAuthEvent("logout", nil)
	return nil
}

func (s *authService) LogoutAll(ctx context.Context, userID uuid.UUID) error {
	n, err := s.repo.Session.RevokeAllForUser(ctx, userID)
	if err != nil {
		return internalError(err)
	}

	s.log.Info("All sessions revoked", zap.String("user_id", userID.String()), zap.Int64("sessions", n))
	recordAuthEvent("logout_all", nil)
	return nil
}

// ==================== HELPER METHODS ====================

func setVerificationToken(user *entity.User, now time.Time, ttl time.Duration) (string, error) {
	token, err := utils.GenerateRandomToken(32)
	if err != nil {
		return "", err
	}
	digest := utils.DigestToken(token)
	expiresAt := now.Add(ttl)
	user.VerificationTokenHash = &digest
	user.VerificationExpiresAt = &expiresAt
	return token, nil
}

func verificationLink(frontendURL, token string) string {
	return strings.TrimRight(frontendURL, "/") + "/verify-email?token=" + token
}

func authResponse(user *entity.User, pair *TokenPair) *response.AuthResponse {
	return &response.AuthResponse{
		User: response.UserToResponse(user),
		Tokens: &response.TokenResponse{
			AccessToken:      pair.AccessToken,
			RefreshToken:     pair.RefreshToken,
			SessionID:        pair.SessionID.String(),
			AccessExpiresAt:  pair.AccessExpiresAt,
			RefreshExpiresAt: pair.RefreshExpiresAt,
		},
	}
}

func recordAuthEvent(event string, err error) {
	result := "success"
	if err != nil {
		result = strings.ToLower(string(KindOf(err)))
	}
	metrics.AuthEvents.WithLabelValues(event, result).Inc()
}
