package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dtroode/tokenkeeper/internal/model"
)

var _ model.RefreshTokenStore = (*RefreshTokenRepository)(nil)

// RefreshTokenRepository stores refresh tokens by the SHA-256 digest of their value.
type RefreshTokenRepository struct {
	db *Connection
}

func NewRefreshTokenRepository(db *Connection) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

func (r *RefreshTokenRepository) Create(ctx context.Context, token model.RefreshToken) error {
	const query = `
        INSERT INTO refresh_tokens (
            id, token_hash, jwt_id, user_id, is_used, is_revoked, added_date, expiry_date, updated_at
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,NOW())
    `

	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}

	_, err := r.db.Exec(ctx, query,
		token.ID, model.HashRefreshToken(token.Token), token.JwtID, token.UserID,
		token.IsUsed, token.IsRevoked, token.AddedDate, token.ExpiryDate,
	)
	if err != nil {
		return fmt.Errorf("failed to create refresh token: %w", err)
	}
	return nil
}

func (r *RefreshTokenRepository) GetByToken(ctx context.Context, token string) (model.RefreshToken, error) {
	const query = `
        SELECT id, jwt_id, user_id, is_used, is_revoked, added_date, expiry_date
        FROM refresh_tokens WHERE token_hash = $1
    `
	rt := model.RefreshToken{Token: token}
	err := r.db.QueryRow(ctx, query, model.HashRefreshToken(token)).Scan(
		&rt.ID, &rt.JwtID, &rt.UserID, &rt.IsUsed, &rt.IsRevoked, &rt.AddedDate, &rt.ExpiryDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.RefreshToken{}, model.ErrNotFound
		}
		return model.RefreshToken{}, fmt.Errorf("failed to get refresh token: %w", err)
	}
	return rt, nil
}

func (r *RefreshTokenRepository) MarkUsed(ctx context.Context, token string) error {
	const query = `
        UPDATE refresh_tokens SET is_used = TRUE, updated_at = NOW()
        WHERE token_hash = $1 AND is_used = FALSE AND is_revoked = FALSE
    `
	tag, err := r.db.Exec(ctx, query, model.HashRefreshToken(token))
	if err != nil {
		return fmt.Errorf("failed to mark refresh token used: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrTokenAlreadyUsed
	}
	return nil
}

func (r *RefreshTokenRepository) Revoke(ctx context.Context, token string) error {
	const query = `
        UPDATE refresh_tokens SET is_revoked = TRUE, updated_at = NOW()
        WHERE token_hash = $1
    `
	tag, err := r.db.Exec(ctx, query, model.HashRefreshToken(token))
	if err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *RefreshTokenRepository) RevokeAllByUser(ctx context.Context, userID uuid.UUID) error {
	const query = `
        UPDATE refresh_tokens SET is_revoked = TRUE, updated_at = NOW()
        WHERE user_id = $1 AND is_revoked = FALSE
    `
	if _, err := r.db.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to revoke refresh tokens by user: %w", err)
	}
	return nil
}
