package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/agrihover/backend-quote/internal/repo"
)

type fakeStore struct {
	mu           sync.Mutex
	usersByEmail map[string]repo.UserRow
	usersByID    map[uuid.UUID]repo.UserRow
	sessions     map[uuid.UUID]repo.SessionRow
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		usersByEmail: make(map[string]repo.UserRow),
		usersByID:    make(map[uuid.UUID]repo.UserRow),
		sessions:     make(map[uuid.UUID]repo.SessionRow),
	}
}

func (f *fakeStore) Create(_ context.Context, name, email, passwordHash, role string) (repo.UserRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := strings.ToLower(email)
	if _, exists := f.usersByEmail[key]; exists {
		return repo.UserRow{}, &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
	}
	now := time.Now()
	user := repo.UserRow{
		ID:           uuid.New(),
		Name:         name,
		Email:        key,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	f.usersByEmail[key] = user
	f.usersByID[user.ID] = user
	return user, nil
}

func (f *fakeStore) GetByEmail(_ context.Context, email string) (repo.UserRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.usersByEmail[strings.ToLower(email)]
	if !ok {
		return repo.UserRow{}, pgx.ErrNoRows
	}
	return user, nil
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (repo.UserRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.usersByID[id]
	if !ok {
		return repo.UserRow{}, pgx.ErrNoRows
	}
	return user, nil
}

func (f *fakeStore) CreateSession(_ context.Context, s repo.SessionRow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s.ID = uuid.New()
	s.CreatedAt = time.Now()
	f.sessions[s.ID] = s
	return nil
}

func (f *fakeStore) GetSessionByTokenHash(_ context.Context, hash string) (repo.SessionRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sessions {
		if s.RefreshTokenHash == hash && s.RevokedAt == nil {
			return s, nil
		}
	}
	return repo.SessionRow{}, pgx.ErrNoRows
}

func (f *fakeStore) RevokeSession(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil
	}
	now := time.Now()
	s.RevokedAt = &now
	f.sessions[id] = s
	return nil
}

func (f *fakeStore) RevokeSessionsForUser(_ context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	for id, s := range f.sessions {
		if s.UserID == userID && s.RevokedAt == nil {
			s.RevokedAt = &now
			f.sessions[id] = s
		}
	}
	return nil
}

func (f *fakeStore) activeSessionCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, s := range f.sessions {
		if s.RevokedAt == nil {
			n++
		}
	}
	return n
}

func newTestService(t interface {
	Helper()
	Fatalf(format string, args ...any)
}) (*Service, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	svc, err := NewService(Config{
		Store:           store,
		Secret:          "super-secret-key",
		AccessTokenTTL:  time.Minute,
		RefreshTokenTTL: time.Hour,
		Issuer:          "backend-quote",
		Audience:        "agrihover-frontend",
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, store
}
