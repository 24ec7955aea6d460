// Package repotest provides in-memory repositories for service and router
// tests. All four share one store so cascades behave like the schema.
package repotest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"finance-tracker/internal/data/entity"
	"finance-tracker/internal/data/repository"

	"github.com/google/uuid"
)

type Store struct {
	mu           sync.Mutex
	now          func() time.Time
	users        map[uuid.UUID]*entity.User
	sessions     map[uuid.UUID]*entity.Session
	categories   map[uuid.UUID]*entity.Category
	transactions map[uuid.UUID]*entity.Transaction
}

// New returns a repository set backed by a fresh store.
func New() (*repository.Repository, *Store) {
	s := &Store{
		now:          time.Now,
		users:        map[uuid.UUID]*entity.User{},
		sessions:     map[uuid.UUID]*entity.Session{},
		categories:   map[uuid.UUID]*entity.Category{},
		transactions: map[uuid.UUID]*entity.Transaction{},
	}
	return &repository.Repository{
		User:        &userRepo{s},
		Session:     &sessionRepo{s},
		Category:    &categoryRepo{s},
		Transaction: &transactionRepo{s},
	}, s
}

// SetClock changes what the store treats as NOW().
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Sessions returns copies of every session row, revoked ones included.
func (s *Store) Sessions(userID uuid.UUID) []entity.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.Session
	for _, sess := range s.sessions {
		if sess.UserID == userID {
			out = append(out, *sess)
		}
	}
	return out
}

// LiveSessions counts live rows for the user.
func (s *Store) LiveSessions(userID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, sess := range s.sessions {
		if sess.UserID == userID && sess.IsLive(s.now()) {
			n++
		}
	}
	return n
}

// ExpireSession moves a session's expiry into the past.
func (s *Store) ExpireSession(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		sess.ExpiresAt = s.now().Add(-time.Second)
	}
}

// ---------------------------------------------------------------- users

type userRepo struct{ s *Store }

func (r *userRepo) Create(_ context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.UserName == user.UserName || (user.HasEmail() && u.HasEmail() && *u.Email == *user.Email) {
			return errDuplicate
		}
	}
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

func (r *userRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return u.ID == id }), nil
}

func (r *userRepo) FindByIdentifier(_ context.Context, identifier string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool {
		return u.UserName == identifier || (u.HasEmail() && *u.Email == identifier)
	}), nil
}

func (r *userRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return u.HasEmail() && *u.Email == email }), nil
}

func (r *userRepo) FindByUserName(_ context.Context, userName string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return u.UserName == userName }), nil
}

func (r *userRepo) FindByVerificationHash(_ context.Context, hash string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool {
		return u.VerificationTokenHash != nil && *u.VerificationTokenHash == hash
	}), nil
}

func (r *userRepo) FindByResetHash(_ context.Context, hash string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool {
		return u.ResetTokenHash != nil && *u.ResetTokenHash == hash
	}), nil
}

func (r *userRepo) Update(_ context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[user.ID]; !ok {
		return repository.ErrUserNotFound
	}
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

func (r *userRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(r.s.users, id)
	for sid, sess := range r.s.sessions {
		if sess.UserID == id {
			delete(r.s.sessions, sid)
		}
	}
	for tid, t := range r.s.transactions {
		if t.UserID == id {
			delete(r.s.transactions, tid)
		}
	}
	for cid, c := range r.s.categories {
		if c.UserID == id {
			delete(r.s.categories, cid)
		}
	}
	return nil
}

func (r *userRepo) find(match func(*entity.User) bool) *entity.User {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if match(u) {
			cp := *u
			return &cp
		}
	}
	return nil
}

// ---------------------------------------------------------------- sessions

type sessionRepo struct{ s *Store }

func (r *sessionRepo) Create(_ context.Context, session *entity.Session) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[session.UserID]; !ok {
		return errForeignKey
	}
	for _, existing := range r.s.sessions {
		if existing.TokenHash == session.TokenHash {
			return errDuplicate
		}
	}
	cp := *session
	r.s.sessions[session.ID] = &cp
	return nil
}

func (r *sessionRepo) FindLiveByHash(_ context.Context, hash string, userID uuid.UUID) (*entity.Session, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if sess := r.liveByHash(hash, userID); sess != nil {
		cp := *sess
		return &cp, nil
	}
	return nil, nil
}

func (r *sessionRepo) FindLiveByID(_ context.Context, id uuid.UUID) (*entity.Session, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if sess, ok := r.s.sessions[id]; ok && sess.IsLive(r.s.now()) {
		cp := *sess
		return &cp, nil
	}
	return nil, nil
}

func (r *sessionRepo) ListLiveByUser(_ context.Context, userID uuid.UUID) ([]*entity.Session, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Session
	for _, sess := range r.s.sessions {
		if sess.UserID == userID && sess.IsLive(r.s.now()) {
			cp := *sess
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *sessionRepo) ClaimLiveByHash(_ context.Context, hash string, userID uuid.UUID) (*entity.Session, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sess := r.liveByHash(hash, userID)
	if sess == nil {
		return nil, nil
	}
	sess.IsRevoked = true
	cp := *sess
	return &cp, nil
}

func (r *sessionRepo) RevokeByHash(_ context.Context, hash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sess := range r.s.sessions {
		if sess.TokenHash == hash {
			sess.IsRevoked = true
		}
	}
	return nil
}

func (r *sessionRepo) RevokeByID(_ context.Context, id, userID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sess, ok := r.s.sessions[id]
	if !ok || sess.UserID != userID || !sess.IsLive(r.s.now()) {
		return false, nil
	}
	sess.IsRevoked = true
	return true, nil
}

func (r *sessionRepo) RevokeAllForUser(_ context.Context, userID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, sess := range r.s.sessions {
		if sess.UserID == userID && !sess.IsRevoked {
			sess.IsRevoked = true
			n++
		}
	}
	return n, nil
}

func (r *sessionRepo) liveByHash(hash string, userID uuid.UUID) *entity.Session {
	for _, sess := range r.s.sessions {
		if sess.TokenHash == hash && sess.UserID == userID && sess.IsLive(r.s.now()) {
			return sess
		}
	}
	return nil
}

// ---------------------------------------------------------------- categories

type categoryRepo struct{ s *Store }

func (r *categoryRepo) Create(_ context.Context, c *entity.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.insert(c)
}

func (r *categoryRepo) CreateBatch(_ context.Context, categories []*entity.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range categories {
		if err := r.insert(c); err != nil {
			return err
		}
	}
	return nil
}

func (r *categoryRepo) insert(c *entity.Category) error {
	for _, existing := range r.s.categories {
		if existing.UserID == c.UserID && existing.Name == c.Name {
			return errDuplicate
		}
	}
	cp := *c
	r.s.categories[c.ID] = &cp
	return nil
}

func (r *categoryRepo) FindByID(_ context.Context, id, userID uuid.UUID) (*entity.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c, ok := r.s.categories[id]; ok && c.UserID == userID {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (r *categoryRepo) FindByName(_ context.Context, userID uuid.UUID, name string) (*entity.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.categories {
		if c.UserID == userID && c.Name == name {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *categoryRepo) FindAllByUser(_ context.Context, userID uuid.UUID) ([]*entity.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Category
	for _, c := range r.s.categories {
		if c.UserID == userID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *categoryRepo) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	all, _ := r.FindAllByUser(ctx, userID)
	return int64(len(all)), nil
}

func (r *categoryRepo) CountTransactions(_ context.Context, id uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, t := range r.s.transactions {
		if t.CategoryID == id {
			n++
		}
	}
	return n, nil
}

func (r *categoryRepo) Update(_ context.Context, c *entity.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if existing, ok := r.s.categories[c.ID]; ok && existing.UserID == c.UserID {
		cp := *c
		r.s.categories[c.ID] = &cp
	}
	return nil
}

func (r *categoryRepo) Delete(_ context.Context, id, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c, ok := r.s.categories[id]; ok && c.UserID == userID {
		delete(r.s.categories, id)
	}
	return nil
}

// ---------------------------------------------------------------- transactions

type transactionRepo struct{ s *Store }

func (r *transactionRepo) Create(_ context.Context, t *entity.Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *t
	r.s.transactions[t.ID] = &cp
	return nil
}

func (r *transactionRepo) FindByID(_ context.Context, id, userID uuid.UUID) (*entity.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if t, ok := r.s.transactions[id]; ok && t.UserID == userID {
		return r.withCategory(t), nil
	}
	return nil, nil
}

func (r *transactionRepo) FindAll(_ context.Context, userID uuid.UUID, f repository.TransactionFilter, limit, offset int) ([]*entity.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	matched := r.filter(userID, f)
	if offset >= len(matched) {
		return nil, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func (r *transactionRepo) Count(_ context.Context, userID uuid.UUID, f repository.TransactionFilter) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.filter(userID, f))), nil
}

func (r *transactionRepo) Update(_ context.Context, t *entity.Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if existing, ok := r.s.transactions[t.ID]; ok && existing.UserID == t.UserID {
		cp := *t
		r.s.transactions[t.ID] = &cp
	}
	return nil
}

func (r *transactionRepo) Delete(_ context.Context, id, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if t, ok := r.s.transactions[id]; ok && t.UserID == userID {
		delete(r.s.transactions, id)
	}
	return nil
}

func (r *transactionRepo) filter(userID uuid.UUID, f repository.TransactionFilter) []*entity.Transaction {
	var out []*entity.Transaction
	for _, t := range r.s.transactions {
		if t.UserID != userID {
			continue
		}
		if f.CategoryID != nil && t.CategoryID != *f.CategoryID {
			continue
		}
		if f.Type != nil && t.Type != *f.Type {
			continue
		}
		if f.StartDate != nil && t.Date.Before(*f.StartDate) {
			continue
		}
		if f.EndDate != nil && t.Date.After(*f.EndDate) {
			continue
		}
		if f.Search != "" && (t.Description == nil || !strings.Contains(strings.ToLower(*t.Description), strings.ToLower(f.Search))) {
			continue
		}
		out = append(out, r.withCategory(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

func (r *transactionRepo) withCategory(t *entity.Transaction) *entity.Transaction {
	cp := *t
	if c, ok := r.s.categories[t.CategoryID]; ok {
		cp.CategoryName = c.Name
	}
	return &cp
}
