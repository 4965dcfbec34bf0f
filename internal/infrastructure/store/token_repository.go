// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package store

import (
	"context"

	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel/codes"

	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/domain"
	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/domain/models"
)

// TokenRepository stores OAuth grants. The newest row is the live one.
type TokenRepository struct {
	base
}

var _ domain.TokenRepository = (*TokenRepository)(nil)

// NewTokenRepository creates a PostgreSQL token repository.
func NewTokenRepository(db *sqlx.DB) *TokenRepository {
	return &TokenRepository{base{db: db, entity: "oauth token", table: "oauth_tokens"}}
}

func (r *TokenRepository) LatestToken(ctx context.Context) (*models.OAuthToken, error) {
	ctx, span := r.startSpan(ctx, "select")
	defer span.End()

	var token models.OAuthToken
	err := r.db.GetContext(ctx, &token,
		`SELECT * FROM oauth_tokens ORDER BY created_at DESC, id DESC LIMIT 1`)
	if err != nil {
		return nil, r.fail(ctx, span, "get", err, domain.ErrTokenNotFound)
	}
	span.SetStatus(codes.Ok, "")
	return &token, nil
}

func (r *TokenRepository) CreateToken(ctx context.Context, token *models.OAuthToken) error {
	ctx, span := r.startSpan(ctx, "insert")
	defer span.End()

	rows, err := r.db.NamedQueryContext(ctx, `
		INSERT INTO oauth_tokens (access_token, refresh_token, expires_at, token_type, created_at)
		VALUES (:access_token, :refresh_token, :expires_at, :token_type, :created_at)
		RETURNING id`, token)
	if err != nil {
		return r.fail(ctx, span, "create", err, domain.ErrTokenNotFound)
	}
	defer func() { _ = rows.Close() }()
	if rows.Next() {
		if err := rows.Scan(&token.ID); err != nil {
			return r.fail(ctx, span, "create", err, domain.ErrTokenNotFound)
		}
	}
	span.SetStatus(codes.Ok, "")
	return rows.Err()
}

func (r *TokenRepository) UpdateToken(ctx context.Context, token *models.OAuthToken) error {
	ctx, span := r.startSpan(ctx, "update")
	defer span.End()

	res, err := r.db.NamedExecContext(ctx, `
		UPDATE oauth_tokens
		SET access_token = :access_token, refresh_token = :refresh_token,
		    expires_at = :expires_at, token_type = :token_type
		WHERE id = :id`, token)
	if err == nil {
		err = requireRow(res)
	}
	if err != nil {
		return r.fail(ctx, span, "update", err, domain.ErrTokenNotFound)
	}
	span.SetStatus(codes.Ok, "")
	return nil
}

func (r *TokenRepository) DeleteAllTokens(ctx context.Context) (int64, error) {
	ctx, span := r.startSpan(ctx, "delete")
	defer span.End()

	res, err := r.db.ExecContext(ctx, `DELETE FROM oauth_tokens`)
	if err != nil {
		return 0, r.fail(ctx, span, "delete", err, domain.ErrTokenNotFound)
	}
	n, _ := res.RowsAffected()
	span.SetStatus(codes.Ok, "")
	return n, nil
}
