package usecase

import (
	"context"
	"testing"
	"time"

	"finance-tracker/internal/dto/request"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessions_ListAndRevoke(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := h.createUser(t, "abebe", "", false)
	other := h.createUser(t, "other", "", false)

	current, err := h.svc.Tokens.Issue(ctx, user, testDevice)
	require.NoError(t, err)
	second, err := h.svc.Tokens.Issue(ctx, user, DeviceInfo{UserAgent: "phone"})
	require.NoError(t, err)

	principal, err := h.svc.Guard.Authenticate(ctx, current.AccessToken)
	require.NoError(t, err)

	sessions, err := h.svc.Session.List(ctx, principal.User.ID, principal.SessionID)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	for _, s := range sessions {
		assert.Equal(t, s.ID == current.SessionID.String(), s.IsCurrent)
	}

	// Someone else's session looks missing.
	err = h.svc.Session.Revoke(ctx, other.ID, second.SessionID)
	assert.Equal(t, KindNotFound, KindOf(err))

	require.NoError(t, h.svc.Session.Revoke(ctx, user.ID, second.SessionID))
	err = h.svc.Session.Revoke(ctx, user.ID, second.SessionID)
	assert.Equal(t, KindNotFound, KindOf(err))

	_, err = h.svc.Guard.Authenticate(ctx, second.AccessToken)
	assert.ErrorIs(t, err, ErrSessionRevoked)
}

func TestUser_UpdateAndDelete(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := h.createUser(t, "abebe", "abebe@b.com", true)
	h.createUser(t, "other", "other@b.com", true)

	name := "Abebe Bikila"
	updated, err := h.svc.User.UpdateProfile(ctx, user.ID, &request.UpdateProfileRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)

	taken := "other@b.com"
	_, err = h.svc.User.UpdateProfile(ctx, user.ID, &request.UpdateProfileRequest{Email: &taken})
	assert.Equal(t, KindConflict, KindOf(err))

	pair, err := h.svc.Tokens.Issue(ctx, user, testDevice)
	require.NoError(t, err)

	require.NoError(t, h.svc.User.DeleteAccount(ctx, user.ID))

	_, err = h.svc.Guard.Authenticate(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, ErrSessionRevoked)

	_, err = h.svc.User.GetProfile(ctx, user.ID)
	assert.Equal(t, KindNotFound, KindOf(err))

	err = h.svc.User.DeleteAccount(ctx, user.ID)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestUser_AddingEmailRequiresVerification(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	guest := h.createUser(t, "guest", "", false)

	email := "guest@b.com"
	updated, err := h.svc.User.UpdateProfile(ctx, guest.ID, &request.UpdateProfileRequest{Email: &email})
	require.NoError(t, err)
	assert.False(t, updated.EmailVerified)
	require.Len(t, h.mailer.verifications, 1)

	login := &request.LoginRequest{Identifier: "guest", Password: testPassword}
	_, err = h.svc.Auth.Login(ctx, login, testDevice)
	assert.ErrorIs(t, err, ErrEmailNotVerified)

	_, err = h.svc.Auth.VerifyEmail(ctx, tokenFromLink(t, lastLink(h.mailer.verifications)))
	require.NoError(t, err)

	_, err = h.svc.Auth.Login(ctx, login, testDevice)
	assert.NoError(t, err)

	// saving the same address again does not reset verification
	updated, err = h.svc.User.UpdateProfile(ctx, guest.ID, &request.UpdateProfileRequest{Email: &email})
	require.NoError(t, err)
	assert.True(t, updated.EmailVerified)
	assert.Len(t, h.mailer.verifications, 1)
}

func TestPasswordReset_RevokesAllSessions(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := h.createUser(t, "abebe", "abebe@b.com", true)

	pair, err := h.svc.Tokens.Issue(ctx, user, testDevice)
	require.NoError(t, err)

	require.NoError(t, h.svc.PasswordReset.Request(ctx, "nobody@b.com"))
	assert.Empty(t, h.mailer.resets)

	require.NoError(t, h.svc.PasswordReset.Request(ctx, "abebe@b.com"))
	link := lastLink(h.mailer.resets)
	assert.Contains(t, link, "/reset-password?token=")
	token := tokenFromLink(t, link)

	require.NoError(t, h.svc.PasswordReset.Verify(ctx, token))
	assert.ErrorIs(t, h.svc.PasswordReset.Verify(ctx, "bogus"), ErrInvalidResetToken)

	require.NoError(t, h.svc.PasswordReset.Reset(ctx, &request.ResetPasswordRequest{Token: token, Password: "NewSecret@456"}))

	assert.Equal(t, 0, h.store.LiveSessions(user.ID))
	_, err = h.svc.Guard.Authenticate(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, ErrSessionRevoked)

	_, err = h.svc.Auth.Login(ctx, &request.LoginRequest{Identifier: "abebe", Password: testPassword}, testDevice)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = h.svc.Auth.Login(ctx, &request.LoginRequest{Identifier: "abebe", Password: "NewSecret@456"}, testDevice)
	assert.NoError(t, err)

	err = h.svc.PasswordReset.Reset(ctx, &request.ResetPasswordRequest{Token: token, Password: "Other@7890"})
	assert.ErrorIs(t, err, ErrInvalidResetToken)
}

func TestPasswordReset_Expired(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.createUser(t, "abebe", "abebe@b.com", true)

	require.NoError(t, h.svc.PasswordReset.Request(ctx, "abebe@b.com"))
	token := tokenFromLink(t, lastLink(h.mailer.resets))

	srv := h.svc.PasswordReset.(*passwordResetService)
	srv.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	assert.ErrorIs(t, h.svc.PasswordReset.Verify(ctx, token), ErrInvalidResetToken)
}

func TestCategoriesAndTransactions(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := h.createUser(t, "abebe", "", false)
	other := h.createUser(t, "other", "", false)

	category, err := h.svc.Category.Create(ctx, user.ID, &request.CategoryRequest{Name: "Books"})
	require.NoError(t, err)
	assert.Equal(t, "#64748B", category.Color)

	_, err = h.svc.Category.Create(ctx, user.ID, &request.CategoryRequest{Name: "Books"})
	assert.Equal(t, KindConflict, KindOf(err))

	// Seeding skips users who already have categories.
	require.NoError(t, h.svc.Category.SeedDefaults(ctx, user.ID))
	list, err := h.svc.Category.List(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	desc := "Fikir Eske Mekabir"
	tx, err := h.svc.Transaction.Create(ctx, user.ID, &request.TransactionRequest{
		CategoryID: category.ID, Amount: 250, Type: "expense", Date: "2024-03-01", Description: &desc,
	})
	require.NoError(t, err)
	assert.Equal(t, "Books", tx.CategoryName)
	assert.Equal(t, "2024-03-01", tx.Date)

	_, err = h.svc.Transaction.Create(ctx, other.ID, &request.TransactionRequest{
		CategoryID: category.ID, Amount: 10, Type: "expense", Date: "2024-03-01",
	})
	assert.Equal(t, KindNotFound, KindOf(err))

	page, err := h.svc.Transaction.List(ctx, user.ID, &request.TransactionQuery{
		PaginatedRequest: request.PaginatedRequest{Page: 1, PerPage: 10},
		Search:           "fikir",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Pagination.Total)
	assert.Equal(t, 1, page.Pagination.TotalPages)

	err = h.svc.Category.Delete(ctx, user.ID, uuid.MustParse(category.ID))
	assert.Equal(t, KindConflict, KindOf(err))

	_, err = h.svc.Transaction.Get(ctx, other.ID, uuid.MustParse(tx.ID))
	assert.Equal(t, KindNotFound, KindOf(err))

	require.NoError(t, h.svc.Transaction.Delete(ctx, user.ID, uuid.MustParse(tx.ID)))
	require.NoError(t, h.svc.Category.Delete(ctx, user.ID, uuid.MustParse(category.ID)))
}
