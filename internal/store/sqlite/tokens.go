package sqlite

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tidyspot/internal/model"
)

type tokenStore struct {
	db *sql.DB
}

// newTokenValue returns a 32-byte URL-safe random token.
func newTokenValue() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func (s *tokenStore) Create(ctx context.Context, t *model.APIToken) (*model.APIToken, error) {
	if t.Name == "" {
		return nil, fmt.Errorf("%w: token name required", model.ErrValidation)
	}
	value, err := newTokenValue()
	if err != nil {
		return nil, err
	}
	t.ID = uuid.NewString()
	t.Token = value
	t.IsActive = true
	t.CreatedAt = time.Now().UTC()

	_, err = s.db.ExecContext(ctx, `INSERT INTO api_tokens
		(id, token, name, is_active, created_at) VALUES (?, ?, ?, 1, ?)`,
		t.ID, t.Token, t.Name, t.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *tokenStore) Verify(ctx context.Context, token string) (*model.APIToken, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, name, is_active, created_at,
		last_used_at FROM api_tokens WHERE token = ?`, token)

	var (
		t        model.APIToken
		active   int
		created  string
		lastUsed sql.NullString
	)
	err := row.Scan(&t.ID, &t.Name, &active, &created, &lastUsed)
	if err == sql.ErrNoRows {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if active == 0 {
		// Revoked tokens always fail verification.
		return nil, model.ErrNotFound
	}
	t.IsActive = true
	if ct, err := time.Parse(time.RFC3339Nano, created); err == nil {
		t.CreatedAt = ct
	}

	now := time.Now().UTC()
	if _, err := s.db.ExecContext(ctx,
		`UPDATE api_tokens SET last_used_at = ? WHERE id = ?`,
		now.Format(time.RFC3339Nano), t.ID); err != nil {
		return nil, err
	}
	t.LastUsedAt = &now
	return &t, nil
}

func (s *tokenStore) List(ctx context.Context) ([]*model.APIToken, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, is_active,
		created_at, last_used_at FROM api_tokens ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []*model.APIToken
	for rows.Next() {
		var (
			t        model.APIToken
			active   int
			created  string
			lastUsed sql.NullString
		)
		if err := rows.Scan(&t.ID, &t.Name, &active, &created, &lastUsed); err != nil {
			return nil, err
		}
		t.IsActive = active != 0
		if ct, err := time.Parse(time.RFC3339Nano, created); err == nil {
			t.CreatedAt = ct
		}
		if lastUsed.Valid && lastUsed.String != "" {
			if lt, err := time.Parse(time.RFC3339Nano, lastUsed.String); err == nil {
				t.LastUsedAt = &lt
			}
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

func (s *tokenStore) Revoke(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE api_tokens SET is_active = 0 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *tokenStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM api_tokens WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *tokenStore) CountActive(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM api_tokens WHERE is_active = 1`).Scan(&n)
	return n, err
}
