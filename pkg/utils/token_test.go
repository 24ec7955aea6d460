package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSigner() *TokenSigner {
	return NewTokenSigner(JWTConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     time.Hour,
		RefreshTTL:    7 * 24 * time.Hour,
	})
}

func TestTokenSigner_AccessRoundTrip(t *testing.T) {
	s := testSigner()
	userID, sessionID := uuid.New(), uuid.New()

	token, expiresAt, err := s.SignAccess(userID, "abebe", sessionID)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := s.ParseAccess(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "abebe", claims.UserName)
	assert.Equal(t, sessionID.String(), claims.SessionID)
}

func TestTokenSigner_AccessWithoutSession(t *testing.T) {
	s := testSigner()

	token, _, err := s.SignAccess(uuid.New(), "guest", uuid.Nil)
	require.NoError(t, err)

	claims, err := s.ParseAccess(token)
	require.NoError(t, err)
	assert.Empty(t, claims.SessionID)
}

func TestTokenSigner_SecretsAreNotInterchangeable(t *testing.T) {
	s := testSigner()
	userID := uuid.New()

	refresh, err := s.SignRefresh(userID, time.Now().Add(time.Hour))
	require.NoError(t, err)
	access, _, err := s.SignAccess(userID, "abebe", uuid.New())
	require.NoError(t, err)

	_, err = s.ParseAccess(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = s.ParseRefresh(access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenSigner_RefreshExpiry(t *testing.T) {
	now := time.Now()
	s := testSigner().WithClock(func() time.Time { return now })
	userID := uuid.New()

	token, err := s.SignRefresh(userID, now.Add(time.Minute))
	require.NoError(t, err)

	claims, err := s.ParseRefresh(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.NotEmpty(t, claims.ID)

	s.WithClock(func() time.Time { return now.Add(2 * time.Minute) })
	_, err = s.ParseRefresh(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenSigner_RefreshTokensAreUnique(t *testing.T) {
	s := testSigner()
	userID := uuid.New()
	expiresAt := time.Now().Add(time.Hour)

	a, err := s.SignRefresh(userID, expiresAt)
	require.NoError(t, err)
	b, err := s.SignRefresh(userID, expiresAt)
	require.NoError(t, err)

	assert.NotEqual(t, DigestToken(a), DigestToken(b))
}

func TestTokenSigner_RejectsOtherAlgorithms(t *testing.T) {
	s := testSigner()
	claims := AccessClaims{
		UserID: uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("access-secret"))
	require.NoError(t, err)

	_, err = s.ParseAccess(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = s.ParseAccess("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestDigestToken(t *testing.T) {
	d := DigestToken("abc")
	assert.Len(t, d, 64)
	assert.Equal(t, d, DigestToken("abc"))
	assert.NotEqual(t, d, DigestToken("abd"))
}
