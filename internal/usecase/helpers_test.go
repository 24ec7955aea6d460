package usecase

import (
	"context"
	"net/url"
	"sync"
	"testing"
	"time"

	"finance-tracker/internal/data/entity"
	"finance-tracker/internal/data/repository"
	"finance-tracker/internal/data/repository/repotest"
	"finance-tracker/pkg/utils"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "Secret@123"

type fakeMailer struct {
	mu            sync.Mutex
	verifications []string
	resets        []string
	welcomes      []string
}

func (m *fakeMailer) SendVerification(_ context.Context, to, _, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verifications = append(m.verifications, link)
	return nil
}

func (m *fakeMailer) SendWelcome(_ context.Context, to, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.welcomes = append(m.welcomes, to)
	return nil
}

func (m *fakeMailer) SendPasswordReset(_ context.Context, to, _, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resets = append(m.resets, link)
	return nil
}

func tokenFromLink(t *testing.T, link string) string {
	t.Helper()
	u, err := url.Parse(link)
	require.NoError(t, err)
	token := u.Query().Get("token")
	require.NotEmpty(t, token)
	return token
}

func testConfig() *utils.Config {
	return &utils.Config{
		App: utils.AppConfig{Env: "test", FrontendURL: "http://localhost:5173/"},
		JWT: utils.JWTConfig{
			AccessSecret:  "access-secret",
			RefreshSecret: "refresh-secret",
			AccessTTL:     time.Hour,
			RefreshTTL:    168 * time.Hour,
		},
		Security: utils.SecurityConfig{
			BcryptCost:      bcrypt.MinCost,
			VerificationTTL: 24 * time.Hour,
			ResetTTL:        time.Hour,
		},
	}
}

type harness struct {
	svc    *Service
	repo   *repository.Repository
	store  *repotest.Store
	mailer *fakeMailer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	repo, store := repotest.New()
	mailer := &fakeMailer{}
	return &harness{
		svc:    NewService(repo, mailer, testConfig(), zap.NewNop()),
		repo:   repo,
		store:  store,
		mailer: mailer,
	}
}

// createUser stores a user directly, bypassing registration.
func (h *harness) createUser(t *testing.T, userName, email string, verified bool) *entity.User {
	t.Helper()
	hash, err := utils.HashPassword(testPassword, bcrypt.MinCost)
	require.NoError(t, err)

	now := time.Now()
	user := &entity.User{
		Record:        entity.NewRecord(now),
		Name:          "Test " + userName,
		UserName:      userName,
		PasswordHash:  hash,
		EmailVerified: verified,
	}
	if email != "" {
		user.Email = &email
	}
	require.NoError(t, h.repo.User.Create(context.Background(), user))
	return user
}

var testDevice = DeviceInfo{UserAgent: "go-test", IPAddress: "127.0.0.1"}

func lastLink(links []string) string {
	if len(links) == 0 {
		return ""
	}
	return links[len(links)-1]
}
