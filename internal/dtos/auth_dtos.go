package dtos

// ----------------------
// Signup / Login
// ----------------------

type SignUpRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type GoogleTokenRequest struct {
	TokenID string `json:"token_id" validate:"required"`
}

// AuthResponse carries the minimal user profile plus expiry metadata.
// Raw tokens are only present in header-carrier deployments; with the
// cookie carrier they travel exclusively as http-only cookies.
type AuthResponse struct {
	UserID                string `json:"user_id"`
	Email                 string `json:"email"`
	Name                  string `json:"name"`
	ImageURL              string `json:"image_url,omitempty"`
	TokenType             string `json:"token_type"`
	AccessToken           string `json:"access_token,omitempty"`
	RefreshToken          string `json:"refresh_token,omitempty"`
	AccessTokenExpiresIn  int64  `json:"access_token_expires_in"`
	RefreshTokenExpiresIn int64  `json:"refresh_token_expires_in"`
}

// ----------------------
// Refresh / Logout
// ----------------------

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token,omitempty"`
}

type LogoutRequest struct {
	RefreshToken         string `json:"refresh_token,omitempty"`
	LogoutFromAllDevices bool   `json:"logout_from_all_devices"`
}

// ----------------------
// Generic API response
// ----------------------

type ApiResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
