package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/Maxiflexy/MonieBank/internal/models"
)

// TokenRepository is the persisted record of every issued token and its
// blacklist status. Rows are written once at issuance, flipped at most
// once to blacklisted, and deleted by the cleanup job after expiry.
type TokenRepository interface {
	// Create stores a newly issued token row.
	Create(ctx context.Context, token *models.Token) error

	// CreatePair stores both rows of an issued pair in one
	// transaction. Either both rows land or neither does, so a failed
	// issuance never leaves a live orphan token behind.
	CreatePair(ctx context.Context, access, refresh *models.Token) error

	// GetByValue fetches a token by its exact value.
	// Returns nil if not found.
	GetByValue(ctx context.Context, tokenValue string) (*models.Token, error)

	// IsBlacklisted reports whether a row exists for this exact value
	// with is_blacklisted = TRUE.
	IsBlacklisted(ctx context.Context, tokenValue string) (bool, error)

	// Blacklist sets is_blacklisted = TRUE for the matching row and
	// reports whether this call flipped the flag. The conditional
	// update is the storage-level guard that makes refresh rotation
	// one-shot: of two concurrent callers, exactly one sees flipped.
	Blacklist(ctx context.Context, tokenValue string) (flipped bool, err error)

	// BlacklistAllForUser sweeps every currently non-blacklisted row
	// owned by userID. Rows created after the call are unaffected.
	BlacklistAllForUser(ctx context.Context, userID uuid.UUID) error

	// DeleteExpired bulk-deletes rows whose expiry_date is in the past.
	DeleteExpired(ctx context.Context) error
}

type tokenRepository struct {
	db DB
}

func NewTokenRepository(db DB) TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) Create(ctx context.Context, token *models.Token) error {
	query := `
        INSERT INTO tokens (id, token_value, token_type, user_id, expiry_date, is_blacklisted, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
    `
	_, err := r.db.Exec(ctx, query,
		token.ID,
		token.TokenValue,
		token.TokenType,
		token.UserID,
		token.ExpiryDate,
		token.IsBlacklisted,
	)
	return err
}

func (r *tokenRepository) CreatePair(ctx context.Context, access, refresh *models.Token) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	txRepo := &tokenRepository{db: tx}
	if err := txRepo.Create(ctx, access); err != nil {
		return err
	}
	if err := txRepo.Create(ctx, refresh); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *tokenRepository) GetByValue(ctx context.Context, tokenValue string) (*models.Token, error) {
	query := `
        SELECT id, token_value, token_type, user_id, expiry_date, is_blacklisted, created_at, updated_at
        FROM tokens
        WHERE token_value = $1
    `
	row := r.db.QueryRow(ctx, query, tokenValue)

	var t models.Token
	err := row.Scan(
		&t.ID,
		&t.TokenValue,
		&t.TokenType,
		&t.UserID,
		&t.ExpiryDate,
		&t.IsBlacklisted,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *tokenRepository) IsBlacklisted(ctx context.Context, tokenValue string) (bool, error) {
	query := `
        SELECT EXISTS (
            SELECT 1 FROM tokens
            WHERE token_value = $1 AND is_blacklisted = TRUE
        )
    `
	var exists bool
	err := r.db.QueryRow(ctx, query, tokenValue).Scan(&exists)
	return exists, err
}

func (r *tokenRepository) Blacklist(ctx context.Context, tokenValue string) (bool, error) {
	query := `
        UPDATE tokens SET is_blacklisted = TRUE, updated_at = NOW()
        WHERE token_value = $1 AND is_blacklisted = FALSE
    `
	tag, err := r.db.Exec(ctx, query, tokenValue)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *tokenRepository) BlacklistAllForUser(ctx context.Context, userID uuid.UUID) error {
	query := `
        UPDATE tokens SET is_blacklisted = TRUE, updated_at = NOW()
        WHERE user_id = $1 AND is_blacklisted = FALSE
    `
	_, err := r.db.Exec(ctx, query, userID)
	return err
}

func (r *tokenRepository) DeleteExpired(ctx context.Context) error {
	query := `DELETE FROM tokens WHERE expiry_date < $1`
	_, err := r.db.Exec(ctx, query, time.Now())
	return err
}
