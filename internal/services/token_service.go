package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Maxiflexy/MonieBank/internal/config"
	"github.com/Maxiflexy/MonieBank/internal/models"
	"github.com/Maxiflexy/MonieBank/internal/repositories"
	"github.com/Maxiflexy/MonieBank/internal/utils"
)

// ---------------------------------------------------------------------
// TokenService interface
// ---------------------------------------------------------------------

// TokenPair is an access/refresh pair plus expiry metadata for clients.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresIn  time.Duration
	RefreshExpiresIn time.Duration
}

// TokenClaims are the verified claims decoded from a valid token.
type TokenClaims struct {
	UserID    uuid.UUID
	Email     string
	TokenType models.TokenType
}

// TokenService issues, validates, and revokes signed token pairs. Every
// issued token is persisted; a token is valid only while its row is
// present and not blacklisted, its signature verifies, and it has not
// passed its expiry claim.
type TokenService interface {
	// IssuePair signs and persists a new access/refresh pair for the
	// user. Issuance is complete only once both rows are stored; a
	// persistence failure returns no tokens.
	IssuePair(ctx context.Context, user *models.User) (*TokenPair, error)

	// Validate checks blacklist status first, then signature and
	// expiry, then the token type when expectedType is non-empty.
	// Revocation is authoritative even for a cryptographically valid
	// token.
	Validate(ctx context.Context, tokenValue string, expectedType models.TokenType) (*TokenClaims, error)

	// Revoke blacklists the matching row. Already-blacklisted or
	// absent tokens are a no-op, so Revoke is idempotent.
	Revoke(ctx context.Context, tokenValue string) error

	// RevokeAllForUser blacklists every token the user holds at call
	// time. Tokens issued afterwards are unaffected.
	RevokeAllForUser(ctx context.Context, userID uuid.UUID) error

	// Consume blacklists the token and fails with ErrTokenRevoked
	// unless this call is the one that flipped the flag. Used for
	// one-shot refresh rotation: of two concurrent consumers of the
	// same token, at most one succeeds.
	Consume(ctx context.Context, tokenValue string) error

	// CleanupExpired bulk-deletes rows past their expiry date.
	CleanupExpired(ctx context.Context) error
}

// ---------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------

type tokenService struct {
	secret             []byte
	accessTokenExpiry  time.Duration
	refreshTokenExpiry time.Duration
	tokenRepo          repositories.TokenRepository
}

func NewTokenService(cfg *config.Config, tokenRepo repositories.TokenRepository) TokenService {
	return &tokenService{
		secret:             cfg.TokenSecret,
		accessTokenExpiry:  cfg.AccessTokenExpiry,
		refreshTokenExpiry: cfg.RefreshTokenExpiry,
		tokenRepo:          tokenRepo,
	}
}

func (s *tokenService) IssuePair(ctx context.Context, user *models.User) (*TokenPair, error) {
	accessRow, err := s.signToken(user, models.TokenTypeAccess, s.accessTokenExpiry)
	if err != nil {
		return nil, err
	}
	refreshRow, err := s.signToken(user, models.TokenTypeRefresh, s.refreshTokenExpiry)
	if err != nil {
		return nil, err
	}

	// Both rows land in one transaction: a failed issuance must not
	// leave a live orphan token behind, and a signed token that was
	// never persisted is never handed out.
	if err := s.tokenRepo.CreatePair(ctx, accessRow, refreshRow); err != nil {
		return nil, fmt.Errorf("failed to persist token pair: %w", err)
	}

	return &TokenPair{
		AccessToken:      accessRow.TokenValue,
		RefreshToken:     refreshRow.TokenValue,
		AccessExpiresIn:  s.accessTokenExpiry,
		RefreshExpiresIn: s.refreshTokenExpiry,
	}, nil
}

// signToken builds and signs one token and its unsaved row.
func (s *tokenService) signToken(
	user *models.User,
	tokenType models.TokenType,
	expiry time.Duration,
) (*models.Token, error) {
	now := time.Now()
	expiresAt := now.Add(expiry)
	id := uuid.New()

	// jti keeps two tokens signed within the same second distinct;
	// token_value carries a unique constraint.
	claims := jwt.MapClaims{
		"sub":       user.ID.String(),
		"email":     user.Email,
		"tokenType": string(tokenType),
		"jti":       id.String(),
		"iat":       now.Unix(),
		"exp":       expiresAt.Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign %s token: %w", tokenType, err)
	}

	return &models.Token{
		ID:            id,
		TokenValue:    signed,
		TokenType:     tokenType,
		UserID:        user.ID,
		ExpiryDate:    expiresAt,
		IsBlacklisted: false,
	}, nil
}

func (s *tokenService) Validate(
	ctx context.Context,
	tokenValue string,
	expectedType models.TokenType,
) (*TokenClaims, error) {
	// Blacklist first: a revoked token is rejected regardless of its
	// cryptographic state.
	blacklisted, err := s.tokenRepo.IsBlacklisted(ctx, tokenValue)
	if err != nil {
		return nil, fmt.Errorf("blacklist lookup failed: %w", err)
	}
	if blacklisted {
		return nil, utils.ErrTokenRevoked
	}

	claims, err := ParseTokenClaims(tokenValue, s.secret)
	if err != nil {
		return nil, err
	}

	if expectedType != "" && claims.TokenType != expectedType {
		return nil, utils.ErrTokenWrongType
	}

	return claims, nil
}

func (s *tokenService) Revoke(ctx context.Context, tokenValue string) error {
	_, err := s.tokenRepo.Blacklist(ctx, tokenValue)
	return err
}

func (s *tokenService) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	return s.tokenRepo.BlacklistAllForUser(ctx, userID)
}

func (s *tokenService) Consume(ctx context.Context, tokenValue string) error {
	flipped, err := s.tokenRepo.Blacklist(ctx, tokenValue)
	if err != nil {
		return err
	}
	if !flipped {
		// Someone else consumed it first, or it was never stored.
		return utils.ErrTokenRevoked
	}
	return nil
}

func (s *tokenService) CleanupExpired(ctx context.Context) error {
	return s.tokenRepo.DeleteExpired(ctx)
}

// ---------------------------------------------------------------------
// Local verification helper (shared with the API gateway)
// ---------------------------------------------------------------------

// ParseTokenClaims verifies the HMAC signature and standard expiry
// claim, then decodes the identity claims. It performs no blacklist
// check and touches no storage.
func ParseTokenClaims(tokenValue string, secret []byte) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenValue, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, utils.ErrTokenExpired
		}
		return nil, utils.ErrTokenMalformed
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, utils.ErrTokenMalformed
	}

	sub, ok := mapClaims["sub"].(string)
	if !ok {
		return nil, utils.ErrTokenMalformed
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, utils.ErrTokenMalformed
	}

	email, _ := mapClaims["email"].(string)
	tokenType, _ := mapClaims["tokenType"].(string)

	return &TokenClaims{
		UserID:    userID,
		Email:     email,
		TokenType: models.TokenType(tokenType),
	}, nil
}
