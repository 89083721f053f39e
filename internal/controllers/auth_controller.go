package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/Maxiflexy/MonieBank/internal/config"
	"github.com/Maxiflexy/MonieBank/internal/dtos"
	"github.com/Maxiflexy/MonieBank/internal/services"
	"github.com/Maxiflexy/MonieBank/internal/utils"
)

type AuthController struct {
	authService  services.AuthService
	verification services.EmailVerificationService
	cfg          *config.Config
}

func NewAuthController(
	authService services.AuthService,
	verification services.EmailVerificationService,
	cfg *config.Config,
) *AuthController {
	return &AuthController{
		authService:  authService,
		verification: verification,
		cfg:          cfg,
	}
}

var authValidate = validator.New()

// -------------------
// Signup & verification
// -------------------

func (c *AuthController) Signup(w http.ResponseWriter, r *http.Request) {
	codec := utils.NewFieldCodec(c.cfg.FieldEncryptionKey, w, r)

	var req dtos.SignUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid payload", nil, err,
		)
		return
	}
	req.Name = codec.Decode(req.Name)
	req.Email = codec.Decode(req.Email)
	req.Password = codec.Decode(req.Password)

	if err := authValidate.Struct(req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation, "Invalid signup payload", nil, err,
		)
		return
	}

	_, err := c.authService.Signup(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, utils.ErrEmailExists) {
			utils.RespondErrorWithCode(
				w, http.StatusBadRequest, utils.ErrCodeConflict, "Email address already in use!", nil,
			)
			return
		}
		utils.RespondErrorWithCode(
			w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to register user", nil, err,
		)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, dtos.ApiResponse{
		Success: true,
		Message: "User registered successfully! Please check your email to verify your account.",
	})
}

func (c *AuthController) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")

	verified, err := c.verification.VerifyEmail(r.Context(), token)
	if err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusInternalServerError, utils.ErrCodeInternal, "Verification failed", nil, err,
		)
		return
	}
	if !verified {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation, "Invalid or expired verification token.", nil,
		)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dtos.ApiResponse{
		Success: true,
		Message: "Email verified successfully. You can now login.",
	})
}

func (c *AuthController) ResendVerification(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "email query parameter is required", nil,
		)
		return
	}

	err := c.verification.ResendVerification(r.Context(), email)
	switch {
	case err == nil:
		utils.RespondWithJSON(w, http.StatusOK, dtos.ApiResponse{
			Success: true,
			Message: "Verification email resent. Please check your email.",
		})
	case errors.Is(err, utils.ErrUserNotFound):
		utils.RespondErrorWithCode(
			w, http.StatusNotFound, utils.ErrCodeNotFound, "User not found with email: "+email, nil,
		)
	case errors.Is(err, utils.ErrEmailAlreadyVerified):
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeConflict, "Email already verified.", nil,
		)
	default:
		utils.RespondErrorWithCode(
			w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to resend verification email", nil, err,
		)
	}
}

// -------------------
// Login / OAuth
// -------------------

func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	codec := utils.NewFieldCodec(c.cfg.FieldEncryptionKey, w, r)

	var req dtos.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid payload", nil, err,
		)
		return
	}
	req.Email = codec.Decode(req.Email)
	req.Password = codec.Decode(req.Password)

	if err := authValidate.Struct(req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation, "Invalid login payload", nil, err,
		)
		return
	}

	result, err := c.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrEmailNotVerified):
			utils.RespondErrorWithCode(
				w, http.StatusForbidden, utils.ErrCodeEmailNotVerified,
				"Email not verified. Please verify your email before logging in.", nil,
			)
		case errors.Is(err, utils.ErrUserNotFound), errors.Is(err, utils.ErrBadCredentials):
			utils.RespondErrorWithCode(
				w, http.StatusUnauthorized, utils.ErrCodeInvalidCredentials, "Invalid email or password", nil,
			)
		default:
			utils.RespondErrorWithCode(
				w, http.StatusInternalServerError, utils.ErrCodeInternal, "Login failed", nil, err,
			)
		}
		return
	}

	c.writeAuthenticated(w, result, codec)
}

func (c *AuthController) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	codec := utils.NewFieldCodec(c.cfg.FieldEncryptionKey, w, r)

	var req dtos.GoogleTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid payload", nil, err,
		)
		return
	}
	if err := authValidate.Struct(req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation, "token_id is required", nil, err,
		)
		return
	}

	result, err := c.authService.GoogleLogin(r.Context(), req.TokenID)
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrBadCredentials):
			utils.RespondErrorWithCode(
				w, http.StatusBadRequest, utils.ErrCodeInvalidCredentials, "Invalid Google token", nil,
			)
		case errors.Is(err, utils.ErrProviderConflict):
			utils.RespondErrorWithCode(
				w, http.StatusBadRequest, utils.ErrCodeConflict,
				"You have previously signed up with another method. Please use that method to login.", nil,
			)
		default:
			utils.RespondErrorWithCode(
				w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to process Google authentication", nil, err,
			)
		}
		return
	}

	c.writeAuthenticated(w, result, codec)
}

// -------------------
// Refresh / Logout
// -------------------

func (c *AuthController) Refresh(w http.ResponseWriter, r *http.Request) {
	codec := utils.NewFieldCodec(c.cfg.FieldEncryptionKey, w, r)

	var req dtos.RefreshTokenRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	refreshToken := extractRefreshToken(r, c.cfg.TokenCarrier, req.RefreshToken)
	if refreshToken == "" {
		utils.ClearAuthCookies(w, c.cfg.CookieSecure)
		utils.RespondErrorWithCode(
			w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "No refresh token found. Please login again.", nil,
		)
		return
	}

	result, err := c.authService.Refresh(r.Context(), refreshToken)
	if err != nil {
		utils.ClearAuthCookies(w, c.cfg.CookieSecure)
		code := utils.ErrCodeUnauthorized
		if errors.Is(err, utils.ErrTokenRevoked) {
			code = utils.ErrCodeTokenRevoked
		} else if errors.Is(err, utils.ErrTokenExpired) {
			code = utils.ErrCodeTokenExpired
		}
		utils.RespondErrorWithCode(
			w, http.StatusUnauthorized, code, "Invalid or expired refresh token. Please login again.", nil, err,
		)
		return
	}

	c.writeAuthenticated(w, result, codec)
}

// Logout never fails the caller: whatever the state of the presented
// tokens, the response is a successful logout and the cookies are
// cleared.
func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	var req dtos.LogoutRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	accessToken, _ := extractAccessToken(r, c.cfg.TokenCarrier)
	refreshToken := extractRefreshToken(r, c.cfg.TokenCarrier, req.RefreshToken)

	c.authService.Logout(r.Context(), accessToken, refreshToken, req.LogoutFromAllDevices)

	utils.ClearAuthCookies(w, c.cfg.CookieSecure)
	utils.RespondWithJSON(w, http.StatusOK, dtos.ApiResponse{
		Success: true,
		Message: "Logged out successfully",
	})
}

// -------------------
// Validate (consumed by the API gateway)
// -------------------

func (c *AuthController) ValidateToken(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		utils.RespondErrorWithCode(
			w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Token validation failed", nil,
		)
		return
	}

	if err := c.authService.ValidateAccessToken(r.Context(), token); err != nil {
		// The gateway keys its revoked/expired handling off these
		// codes, so the mapping here is part of the wire contract.
		code := utils.ErrCodeUnauthorized
		switch {
		case errors.Is(err, utils.ErrTokenRevoked):
			code = utils.ErrCodeTokenRevoked
		case errors.Is(err, utils.ErrTokenExpired):
			code = utils.ErrCodeTokenExpired
		}
		utils.RespondErrorWithCode(
			w, http.StatusUnauthorized, code, "Token is invalid or blacklisted", nil, err,
		)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dtos.ApiResponse{
		Success: true,
		Message: "Token is valid",
	})
}

// writeAuthenticated sets the token carrier and responds with the
// profile plus expiry metadata.
func (c *AuthController) writeAuthenticated(
	w http.ResponseWriter,
	result *services.AuthResult,
	codec *utils.FieldCodec,
) {
	if c.cfg.TokenCarrier == config.CarrierCookie {
		utils.SetAuthCookies(
			w,
			result.Pair.AccessToken,
			result.Pair.RefreshToken,
			result.Pair.AccessExpiresIn,
			result.Pair.RefreshExpiresIn,
			c.cfg.CookieSecure,
		)
	}
	utils.RespondWithJSON(w, http.StatusOK, toAuthResponse(result, c.cfg.TokenCarrier, codec))
}
