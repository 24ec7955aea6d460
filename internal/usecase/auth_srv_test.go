package usecase

import (
	"context"
	"net/http"
	"testing"
	"time"

	"finance-tracker/internal/dto/request"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_GuestGetsTokensAndCategories(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	resp, err := h.svc.Auth.Register(ctx, &request.RegisterRequest{
		Name: "Guest User", UserName: "guest", Password: testPassword,
	}, testDevice)
	require.NoError(t, err)

	assert.False(t, resp.RequiresVerification)
	require.NotNil(t, resp.Tokens)
	assert.NotEmpty(t, resp.Tokens.AccessToken)
	assert.Nil(t, resp.User.Email)

	userID := uuid.MustParse(resp.User.ID)
	categories, err := h.svc.Category.List(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, categories, 11)

	// Guests are never gated by verification.
	login, err := h.svc.Auth.Login(ctx, &request.LoginRequest{Identifier: "guest", Password: testPassword}, testDevice)
	require.NoError(t, err)
	assert.NotNil(t, login.Tokens)
	assert.Equal(t, 2, h.store.LiveSessions(userID))
}

func TestRegister_WithEmailRequiresVerification(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	resp, err := h.svc.Auth.Register(ctx, &request.RegisterRequest{
		Name: "Almaz", UserName: "almaz", Email: "a@b.com", Password: testPassword,
	}, testDevice)
	require.NoError(t, err)
	assert.True(t, resp.RequiresVerification)
	assert.Nil(t, resp.Tokens)

	link := lastLink(h.mailer.verifications)
	assert.Contains(t, link, "http://localhost:5173/verify-email?token=")

	userID := uuid.MustParse(resp.User.ID)
	assert.Equal(t, 0, h.store.LiveSessions(userID))

	_, err = h.svc.Auth.Login(ctx, &request.LoginRequest{Identifier: "a@b.com", Password: testPassword}, testDevice)
	assert.ErrorIs(t, err, ErrEmailNotVerified)

	user, err := h.svc.Auth.VerifyEmail(ctx, tokenFromLink(t, link))
	require.NoError(t, err)
	assert.True(t, user.EmailVerified)
	assert.Len(t, h.mailer.welcomes, 1)

	categories, err := h.svc.Category.List(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, categories, 11)

	login, err := h.svc.Auth.Login(ctx, &request.LoginRequest{Identifier: "almaz", Password: testPassword}, testDevice)
	require.NoError(t, err)
	assert.NotNil(t, login.Tokens)

	// Tokens are single use.
	_, err = h.svc.Auth.VerifyEmail(ctx, tokenFromLink(t, link))
	assert.ErrorIs(t, err, ErrInvalidVerification)
}

func TestRegister_Conflicts(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.createUser(t, "taken", "taken@b.com", true)

	_, err := h.svc.Auth.Register(ctx, &request.RegisterRequest{
		Name: "Someone", UserName: "taken", Password: testPassword,
	}, testDevice)
	assert.Equal(t, KindConflict, KindOf(err))

	_, err = h.svc.Auth.Register(ctx, &request.RegisterRequest{
		Name: "Someone", UserName: "fresh", Email: "taken@b.com", Password: testPassword,
	}, testDevice)
	assert.Equal(t, KindConflict, KindOf(err))

	_, err = h.svc.Auth.Register(ctx, &request.RegisterRequest{
		Name: "Someone", UserName: "weak", Password: "password",
	}, testDevice)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestVerifyEmail_Expired(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.svc.Auth.Register(ctx, &request.RegisterRequest{
		Name: "Almaz", UserName: "almaz", Email: "a@b.com", Password: testPassword,
	}, testDevice)
	require.NoError(t, err)

	auth := h.svc.Auth.(*authService)
	auth.now = func() time.Time { return time.Now().Add(25 * time.Hour) }

	_, err = h.svc.Auth.VerifyEmail(ctx, tokenFromLink(t, lastLink(h.mailer.verifications)))
	assert.ErrorIs(t, err, ErrInvalidVerification)

	_, err = h.svc.Auth.VerifyEmail(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidVerification)
}

func TestResendVerification(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	require.NoError(t, h.svc.Auth.ResendVerification(ctx, "nobody@b.com"))
	assert.Empty(t, h.mailer.verifications)

	h.createUser(t, "verified", "v@b.com", true)
	require.NoError(t, h.svc.Auth.ResendVerification(ctx, "v@b.com"))
	assert.Empty(t, h.mailer.verifications)

	_, err := h.svc.Auth.Register(ctx, &request.RegisterRequest{
		Name: "Almaz", UserName: "almaz", Email: "a@b.com", Password: testPassword,
	}, testDevice)
	require.NoError(t, err)
	first := tokenFromLink(t, lastLink(h.mailer.verifications))

	require.NoError(t, h.svc.Auth.ResendVerification(ctx, "a@b.com"))
	second := tokenFromLink(t, lastLink(h.mailer.verifications))
	assert.NotEqual(t, first, second)

	_, err = h.svc.Auth.VerifyEmail(ctx, first)
	assert.ErrorIs(t, err, ErrInvalidVerification)
	_, err = h.svc.Auth.VerifyEmail(ctx, second)
	assert.NoError(t, err)
}

func TestLogin_Failures(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.createUser(t, "unverified", "a@b.com", false)
	h.createUser(t, "abebe", "abebe@b.com", true)

	cases := []struct {
		name       string
		identifier string
		password   string
		want       *Error
	}{
		{"unknown identifier", "nobody", testPassword, ErrAccountNotFound},
		{"wrong password", "abebe", "Wrong@123", ErrInvalidCredentials},
		{"unverified email", "a@b.com", testPassword, ErrEmailNotVerified},
		{"unverified wrong password", "a@b.com", "Wrong@123", ErrInvalidCredentials},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := h.svc.Auth.Login(ctx, &request.LoginRequest{Identifier: tc.identifier, Password: tc.password}, testDevice)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	resp, err := h.svc.Auth.Login(ctx, &request.LoginRequest{Identifier: "abebe@b.com", Password: testPassword}, testDevice)
	require.NoError(t, err)
	assert.Equal(t, "abebe", resp.User.UserName)
}

func TestRefreshToken_MissingAndReused(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.createUser(t, "abebe", "", false)

	_, err := h.svc.Auth.RefreshToken(ctx, "", testDevice)
	assert.ErrorIs(t, err, ErrMissingCredential)

	login, err := h.svc.Auth.Login(ctx, &request.LoginRequest{Identifier: "abebe", Password: testPassword}, testDevice)
	require.NoError(t, err)

	refreshed, err := h.svc.Auth.RefreshToken(ctx, login.Tokens.RefreshToken, testDevice)
	require.NoError(t, err)
	assert.Equal(t, "abebe", refreshed.User.UserName)

	_, err = h.svc.Auth.RefreshToken(ctx, login.Tokens.RefreshToken, testDevice)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogout_IsIdempotent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := h.createUser(t, "abebe", "", false)

	pair, err := h.svc.Tokens.Issue(ctx, user, testDevice)
	require.NoError(t, err)

	require.NoError(t, h.svc.Auth.Logout(ctx, pair.RefreshToken))
	require.NoError(t, h.svc.Auth.Logout(ctx, pair.RefreshToken))
	require.NoError(t, h.svc.Auth.Logout(ctx, ""))
	require.NoError(t, h.svc.Auth.Logout(ctx, "unknown"))

	assert.Equal(t, 0, h.store.LiveSessions(user.ID))
}

func TestLogoutAll_IsIdempotent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := h.createUser(t, "abebe", "", false)
	other := h.createUser(t, "other", "", false)

	for i := 0; i < 3; i++ {
		_, err := h.svc.Tokens.Issue(ctx, user, testDevice)
		require.NoError(t, err)
	}
	_, err := h.svc.Tokens.Issue(ctx, other, testDevice)
	require.NoError(t, err)

	require.NoError(t, h.svc.Auth.LogoutAll(ctx, user.ID))
	first := h.store.Sessions(user.ID)

	require.NoError(t, h.svc.Auth.LogoutAll(ctx, user.ID))
	assert.ElementsMatch(t, first, h.store.Sessions(user.ID))

	assert.Equal(t, 0, h.store.LiveSessions(user.ID))
	assert.Equal(t, 1, h.store.LiveSessions(other.ID))
}

func TestErrorKind_Status(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, KindMissingCredential.Status())
	assert.Equal(t, http.StatusUnauthorized, KindInvalidToken.Status())
	assert.Equal(t, http.StatusUnauthorized, KindSessionRevoked.Status())
	assert.Equal(t, http.StatusNotFound, KindAccountNotFound.Status())
	assert.Equal(t, http.StatusForbidden, KindEmailNotVerified.Status())
	assert.Equal(t, http.StatusConflict, KindConflict.Status())
	assert.Equal(t, http.StatusBadRequest, KindInvalidResetToken.Status())
	assert.Equal(t, http.StatusInternalServerError, KindOf(assert.AnError).Status())
}
