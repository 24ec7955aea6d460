package usecase

import (
	"context"
	"testing"

	"finance-tracker/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthenticate_MissingAndInvalid(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.svc.Guard.Authenticate(ctx, "")
	assert.ErrorIs(t, err, ErrMissingCredential)

	_, err = h.svc.Guard.Authenticate(ctx, "not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthenticate_RevokedSession(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := h.createUser(t, "abebe", "", false)

	pair, err := h.svc.Tokens.Issue(ctx, user, testDevice)
	require.NoError(t, err)

	require.NoError(t, h.svc.Auth.LogoutAll(ctx, user.ID))

	_, err = h.svc.Guard.Authenticate(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, ErrSessionRevoked)
}

func TestAuthenticate_ExpiredSession(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := h.createUser(t, "abebe", "", false)

	pair, err := h.svc.Tokens.Issue(ctx, user, testDevice)
	require.NoError(t, err)

	h.store.ExpireSession(pair.SessionID)

	_, err = h.svc.Guard.Authenticate(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, ErrSessionRevoked)
}

func TestAuthenticate_SessionOfAnotherUser(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.createUser(t, "owner", "", false)
	other := h.createUser(t, "other", "", false)

	pair, err := h.svc.Tokens.Issue(ctx, owner, testDevice)
	require.NoError(t, err)

	signer := utils.NewTokenSigner(testConfig().JWT)
	forged, _, err := signer.SignAccess(other.ID, other.UserName, pair.SessionID)
	require.NoError(t, err)

	_, err = h.svc.Guard.Authenticate(ctx, forged)
	assert.ErrorIs(t, err, ErrSessionRevoked)
}

func TestAuthenticate_TokenWithoutSession(t *testing.T) {
	h := newHarness(t)
	user := h.createUser(t, "abebe", "", false)

	signer := utils.NewTokenSigner(testConfig().JWT)
	token, _, err := signer.SignAccess(user.ID, user.UserName, uuid.Nil)
	require.NoError(t, err)

	principal, err := h.svc.Guard.Authenticate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, principal.User.ID)
	assert.Equal(t, uuid.Nil, principal.SessionID)
}

func TestAuthenticate_UnknownUser(t *testing.T) {
	h := newHarness(t)

	signer := utils.NewTokenSigner(testConfig().JWT)
	token, _, err := signer.SignAccess(uuid.New(), "ghost", uuid.Nil)
	require.NoError(t, err)

	_, err = h.svc.Guard.Authenticate(context.Background(), token)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
