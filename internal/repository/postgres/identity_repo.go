// internal/repository/postgres/identity_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	xerrors "tishe-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Credential is one identity row owned by the local identity gateway.
type Credential struct {
	ID           string
	Email        string
	PasswordHash string // empty for OAuth-only identities
	DisplayName  string
	PhotoURL     string
	Provider     string
	CreatedAt    time.Time
	LastLoginAt  *time.Time
}

type IdentityRepository struct {
	db *pgxpool.Pool
}

func NewIdentityRepository(db *pgxpool.Pool) *IdentityRepository {
	return &IdentityRepository{db: db}
}

// Migrate creates the identities table if it does not exist.
func (r *IdentityRepository) Migrate(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS identities (
			id            TEXT PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL DEFAULT '',
			display_name  TEXT NOT NULL DEFAULT '',
			photo_url     TEXT NOT NULL DEFAULT '',
			provider      TEXT NOT NULL DEFAULT 'password',
			created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
			last_login_at TIMESTAMPTZ
		)
	`
	if _, err := r.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create identities table: %w", err)
	}
	return nil
}

// Create inserts a new identity row.
func (r *IdentityRepository) Create(ctx context.Context, cred *Credential) error {
	query := `
		INSERT INTO identities (id, email, password_hash, display_name, photo_url, provider)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	err := r.db.QueryRow(ctx, query,
		cred.ID, cred.Email, cred.PasswordHash, cred.DisplayName, cred.PhotoURL, cred.Provider,
	).Scan(&cred.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create identity: %w", err)
	}
	return nil
}

// FindByEmail looks an identity up by email.
func (r *IdentityRepository) FindByEmail(ctx context.Context, email string) (*Credential, error) {
	query := `
		SELECT id, email, password_hash, display_name, photo_url, provider, created_at, last_login_at
		FROM identities WHERE email = $1
	`
	return r.scanOne(r.db.QueryRow(ctx, query, email))
}

// FindByID looks an identity up by id.
func (r *IdentityRepository) FindByID(ctx context.Context, id string) (*Credential, error) {
	query := `
		SELECT id, email, password_hash, display_name, photo_url, provider, created_at, last_login_at
		FROM identities WHERE id = $1
	`
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

// ExistsByEmail reports whether an identity with this email exists.
func (r *IdentityRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM identities WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return exists, nil
}

// TouchLastLogin records a successful sign-in.
func (r *IdentityRepository) TouchLastLogin(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `UPDATE identities SET last_login_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

func (r *IdentityRepository) scanOne(row pgx.Row) (*Credential, error) {
	var cred Credential
	err := row.Scan(
		&cred.ID, &cred.Email, &cred.PasswordHash, &cred.DisplayName,
		&cred.PhotoURL, &cred.Provider, &cred.CreatedAt, &cred.LastLoginAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan identity: %w", err)
	}
	return &cred, nil
}
