package dtos

type ProfileUpdateRequest struct {
	Name           string `json:"name" validate:"required,min=2,max=100"`
	ContactAddress string `json:"contact_address,omitempty"`
}

// UserResponse is the caller-facing profile. Sensitive fields are run
// through the per-request field codec before serialization.
type UserResponse struct {
	UserID         string `json:"user_id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	ImageURL       string `json:"image_url,omitempty"`
	ContactAddress string `json:"contact_address,omitempty"`
	EmailVerified  bool   `json:"email_verified"`
}

// MinimalUserResponse is returned to internal services that only need
// identity fields.
type MinimalUserResponse struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}
