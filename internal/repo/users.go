package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// UserRow mirrors the users relation.
type UserRow struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SessionRow mirrors the sessions relation. Refresh tokens are stored hashed.
type SessionRow struct {
	ID               uuid.UUID
	UserID           uuid.UUID
	RefreshTokenHash string
	UserAgent        string
	IP               string
	ExpiresAt        time.Time
	RevokedAt        *time.Time
	CreatedAt        time.Time
}

// Users provides access to the users and sessions tables.
type Users struct {
	db DBTX
}

// NewUsers constructs a Users repository.
func NewUsers(db DBTX) Users {
	return Users{db: db}
}

const userColumns = `id, name, email, password_hash, role, created_at, updated_at`

func scanUser(row pgx.Row) (UserRow, error) {
	var u UserRow
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// Create inserts a user.
func (r Users) Create(ctx context.Context, name, email, passwordHash, role string) (UserRow, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO users (id, name, email, password_hash, role)
		VALUES (gen_random_uuid(), $1, $2, $3, $4)
		RETURNING `+userColumns, name, email, passwordHash, role)
	return scanUser(row)
}

// GetByEmail fetches a user by normalised email.
func (r Users) GetByEmail(ctx context.Context, email string) (UserRow, error) {
	return scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

// GetByID fetches a user by primary key.
func (r Users) GetByID(ctx context.Context, id uuid.UUID) (UserRow, error) {
	return scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// CreateSession stores a refresh session.
func (r Users) CreateSession(ctx context.Context, s SessionRow) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO sessions (id, user_id, refresh_token_hash, user_agent, ip, expires_at)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5)`,
		s.UserID, s.RefreshTokenHash, s.UserAgent, s.IP, s.ExpiresAt)
	return err
}

// GetSessionByTokenHash fetches an unrevoked, unexpired session.
func (r Users) GetSessionByTokenHash(ctx context.Context, hash string) (SessionRow, error) {
	var s SessionRow
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, refresh_token_hash, user_agent, ip, expires_at, revoked_at, created_at
		FROM sessions
		WHERE refresh_token_hash = $1 AND revoked_at IS NULL AND expires_at > now()`, hash).
		Scan(&s.ID, &s.UserID, &s.RefreshTokenHash, &s.UserAgent, &s.IP,
			&s.ExpiresAt, &s.RevokedAt, &s.CreatedAt)
	return s, err
}

// RevokeSession marks a single session revoked.
func (r Users) RevokeSession(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx,
		`UPDATE sessions SET revoked_at = now() WHERE id = $1 AND revoked_at IS NULL`, id)
	return err
}

// RevokeSessionsForUser revokes every active session belonging to a user.
func (r Users) RevokeSessionsForUser(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.Exec(ctx,
		`UPDATE sessions SET revoked_at = now() WHERE user_id = $1 AND revoked_at IS NULL`, userID)
	return err
}
