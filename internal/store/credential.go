package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/plms/internal/model"
)

// ErrNoToken is returned by Token when no credential is persisted.
var ErrNoToken = errors.New("no saved credential")

// ErrNoProfile is returned by Profile when no snapshot is persisted.
var ErrNoProfile = errors.New("no saved profile")

// Credential is the persisted bearer token.
type Credential struct {
	Token      string
	APIBaseURL string
	SavedAt    time.Time
}

type credentialRow struct {
	Token      string `db:"token"`
	APIBaseURL string `db:"api_base_url"`
	SavedAt    string `db:"saved_at"`
}

type profileRow struct {
	UserID      int64          `db:"user_id"`
	Email       string         `db:"email"`
	DisplayName string         `db:"display_name"`
	CreatedAt   string         `db:"created_at"`
	LastLoginAt sql.NullString `db:"last_login_at"`
	FetchedAt   string         `db:"fetched_at"`
}

// SaveToken persists token, replacing any previous credential. The profile
// snapshot of the previous credential is dropped with it.
func (s *Store) SaveToken(ctx context.Context, token, apiBaseURL string, now time.Time) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM credential"); err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	row := credentialRow{Token: token, APIBaseURL: apiBaseURL, SavedAt: now.UTC().Format(time.RFC3339)}
	if _, err := tx.NamedExecContext(ctx, `
		INSERT INTO credential (id, token, api_base_url, saved_at)
		VALUES (1, :token, :api_base_url, :saved_at)
	`, row); err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	return tx.Commit()
}

// Token returns the persisted credential or ErrNoToken.
func (s *Store) Token(ctx context.Context) (*Credential, error) {
	var row credentialRow
	err := s.db.GetContext(ctx, &row, "SELECT token, api_base_url, saved_at FROM credential WHERE id = 1")
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoToken
	}
	if err != nil {
		return nil, fmt.Errorf("load credential: %w", err)
	}
	savedAt, err := time.Parse(time.RFC3339, row.SavedAt)
	if err != nil {
		return nil, fmt.Errorf("parse saved_at: %w", err)
	}
	return &Credential{Token: row.Token, APIBaseURL: row.APIBaseURL, SavedAt: savedAt}, nil
}

// ClearToken removes the credential and, via cascade, the profile.
// Clearing an empty store is not an error.
func (s *Store) ClearToken(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM credential"); err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	return nil
}

// SaveProfile stores a snapshot of the signed-in user. It requires a saved
// credential.
func (s *Store) SaveProfile(ctx context.Context, u *model.User, now time.Time) error {
	row := profileRow{
		UserID:      u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt.UTC().Format(time.RFC3339),
		FetchedAt:   now.UTC().Format(time.RFC3339),
	}
	if u.LastLoginAt != nil {
		row.LastLoginAt = sql.NullString{String: u.LastLoginAt.UTC().Format(time.RFC3339), Valid: true}
	}
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO profile (id, user_id, email, display_name, created_at, last_login_at, fetched_at)
		VALUES (1, :user_id, :email, :display_name, :created_at, :last_login_at, :fetched_at)
		ON CONFLICT (id) DO UPDATE SET
			user_id = excluded.user_id,
			email = excluded.email,
			display_name = excluded.display_name,
			created_at = excluded.created_at,
			last_login_at = excluded.last_login_at,
			fetched_at = excluded.fetched_at
	`, row)
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// Profile returns the stored user snapshot and when it was fetched.
func (s *Store) Profile(ctx context.Context) (*model.User, time.Time, error) {
	var row profileRow
	err := s.db.GetContext(ctx, &row, `
		SELECT user_id, email, display_name, created_at, last_login_at, fetched_at
		FROM profile WHERE id = 1
	`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, ErrNoProfile
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("load profile: %w", err)
	}

	u := &model.User{ID: row.UserID, Email: row.Email, DisplayName: row.DisplayName}
	if u.CreatedAt, err = time.Parse(time.RFC3339, row.CreatedAt); err != nil {
		return nil, time.Time{}, fmt.Errorf("parse created_at: %w", err)
	}
	if row.LastLoginAt.Valid {
		t, err := time.Parse(time.RFC3339, row.LastLoginAt.String)
		if err != nil {
			return nil, time.Time{}, fmt.Errorf("parse last_login_at: %w", err)
		}
		u.LastLoginAt = &t
	}
	fetched, err := time.Parse(time.RFC3339, row.FetchedAt)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("parse fetched_at: %w", err)
	}
	return u, fetched, nil
}
