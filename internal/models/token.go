package models

import (
	"time"

	"github.com/google/uuid"
)

// TokenType distinguishes the two halves of an issued pair.
type TokenType string

const (
	TokenTypeAccess  TokenType = "ACCESS"
	TokenTypeRefresh TokenType = "REFRESH"
)

// Token is the persisted record of one issued signed token. One row is
// created per token; is_blacklisted only ever transitions false→true.
type Token struct {
	ID            uuid.UUID `json:"id"`
	TokenValue    string    `json:"token_value"`
	TokenType     TokenType `json:"token_type"`
	UserID        uuid.UUID `json:"user_id"`
	ExpiryDate    time.Time `json:"expiry_date"`
	IsBlacklisted bool      `json:"is_blacklisted"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (t *Token) IsExpired() bool {
	return time.Now().After(t.ExpiryDate)
}
