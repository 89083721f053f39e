package models

import (
	"time"

	"github.com/google/uuid"
)

// AuthProvider names the identity provider a user signed up with.
type AuthProvider string

const (
	AuthProviderLocal  AuthProvider = "LOCAL"
	AuthProviderGoogle AuthProvider = "GOOGLE"
)

// User is an account owned by the auth service. Verification fields are
// cleared once the email is verified.
type User struct {
	ID                 uuid.UUID    `json:"id"`
	Name               string       `json:"name"`
	Email              string       `json:"email"`
	PasswordHash       string       `json:"-"`
	Provider           AuthProvider `json:"provider"`
	ProviderID         string       `json:"provider_id,omitempty"`
	ImageURL           string       `json:"image_url,omitempty"`
	ContactAddress     string       `json:"contact_address,omitempty"`
	EmailVerified      bool         `json:"email_verified"`
	VerificationToken  string       `json:"-"`
	VerificationExpiry *time.Time   `json:"-"`
	CreatedAt          time.Time    `json:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at"`
}
