package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Maxiflexy/MonieBank/internal/config"
	"github.com/Maxiflexy/MonieBank/internal/dtos"
	"github.com/Maxiflexy/MonieBank/internal/models"
	"github.com/Maxiflexy/MonieBank/internal/services"
	"github.com/Maxiflexy/MonieBank/internal/utils"
)

// extractAccessToken reads the access token from the one carrier the
// deployment trusts. The other carrier is ignored entirely.
func extractAccessToken(r *http.Request, carrier config.TokenCarrier) (string, error) {
	switch carrier {
	case config.CarrierCookie:
		c, err := r.Cookie(utils.AccessTokenCookieName)
		if err != nil || c.Value == "" {
			return "", errors.New("missing access token cookie")
		}
		return c.Value, nil
	default:
		h := r.Header.Get("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			return "", errors.New("missing Authorization header")
		}
		return strings.TrimPrefix(h, "Bearer "), nil
	}
}

// extractRefreshToken prefers the cookie in cookie-carrier mode and
// falls back to the request body value otherwise.
func extractRefreshToken(r *http.Request, carrier config.TokenCarrier, bodyToken string) string {
	if carrier == config.CarrierCookie {
		if c, err := r.Cookie(utils.RefreshTokenCookieName); err == nil && c.Value != "" {
			return c.Value
		}
	}
	return bodyToken
}

// toAuthResponse builds the login/refresh payload. Raw tokens are only
// included in header-carrier deployments; cookie deployments carry them
// exclusively as http-only cookies. Identity fields go through the
// per-request codec.
func toAuthResponse(
	result *services.AuthResult,
	carrier config.TokenCarrier,
	codec *utils.FieldCodec,
) *dtos.AuthResponse {
	resp := &dtos.AuthResponse{
		UserID:                codec.Encode(result.User.ID.String()),
		Email:                 codec.Encode(result.User.Email),
		Name:                  codec.Encode(result.User.Name),
		ImageURL:              result.User.ImageURL,
		TokenType:             "Bearer",
		AccessTokenExpiresIn:  int64(result.Pair.AccessExpiresIn.Seconds()),
		RefreshTokenExpiresIn: int64(result.Pair.RefreshExpiresIn.Seconds()),
	}
	if carrier == config.CarrierHeader {
		resp.AccessToken = result.Pair.AccessToken
		resp.RefreshToken = result.Pair.RefreshToken
	}
	return resp
}

func toUserResponse(user *models.User, codec *utils.FieldCodec) *dtos.UserResponse {
	return &dtos.UserResponse{
		UserID:         codec.Encode(user.ID.String()),
		Name:           codec.Encode(user.Name),
		Email:          codec.Encode(user.Email),
		ImageURL:       user.ImageURL,
		ContactAddress: codec.Encode(user.ContactAddress),
		EmailVerified:  user.EmailVerified,
	}
}
