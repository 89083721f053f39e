package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/Maxiflexy/MonieBank/internal/config"
	"github.com/Maxiflexy/MonieBank/internal/models"
	"github.com/Maxiflexy/MonieBank/internal/services"
	"github.com/Maxiflexy/MonieBank/internal/utils"
)

// Trusted identity headers injected after validation. Inbound copies
// are stripped on every request so upstreams can rely on them.
const (
	HeaderUserID    = "X-User-Id"
	HeaderUserEmail = "X-User-Email"
)

type contextKey string

const ContextKeyUserID = contextKey("userID")

// AuthFilter guards proxied routes. Verification is two-phase: the
// signature and expiry are checked locally with the shared secret, and
// only tokens that pass are sent to the authority for the blacklist
// check. Any failure on the remote leg rejects the request.
type AuthFilter struct {
	cfg    *config.GatewayConfig
	client *http.Client
}

func NewAuthFilter(cfg *config.GatewayConfig) *AuthFilter {
	return &AuthFilter{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.ValidateTimeout},
	}
}

func (f *AuthFilter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr, err := extractAccessToken(r, f.cfg.TokenCarrier)
		if err != nil {
			utils.RespondErrorWithCode(
				w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "No valid authentication found", nil, err,
			)
			return
		}

		// Local check first: bad signatures and expired tokens never
		// reach the authority.
		claims, err := services.ParseTokenClaims(tokenStr, f.cfg.TokenSecret)
		if err != nil {
			if errors.Is(err, utils.ErrTokenExpired) {
				utils.RespondErrorWithCode(
					w, http.StatusUnauthorized, utils.ErrCodeTokenExpired, "Token expired", nil, err,
				)
				return
			}
			utils.RespondErrorWithCode(
				w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid token", nil, err,
			)
			return
		}
		if claims.TokenType != models.TokenTypeAccess {
			utils.RespondErrorWithCode(
				w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid token type", nil,
			)
			return
		}

		if err := f.remoteValidate(r.Context(), tokenStr); err != nil {
			switch {
			case errors.Is(err, utils.ErrTokenRevoked):
				utils.RespondErrorWithCode(
					w, http.StatusUnauthorized, utils.ErrCodeTokenRevoked, "Token has been revoked", nil, err,
				)
			case errors.Is(err, utils.ErrUpstreamUnavailable):
				utils.RespondErrorWithCode(
					w, http.StatusServiceUnavailable, utils.ErrCodeUpstreamUnavailable, "Token validation unavailable", nil, err,
				)
			default:
				utils.RespondErrorWithCode(
					w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid token", nil, err,
				)
			}
			return
		}

		r.Header.Set(HeaderUserID, claims.UserID.String())
		r.Header.Set(HeaderUserEmail, claims.Email)

		ctx := context.WithValue(r.Context(), ContextKeyUserID, claims.UserID.String())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// remoteValidate asks the authority whether the token is still live.
// Nil means valid; anything else, the transport included, means the
// request must be rejected.
func (f *AuthFilter) remoteValidate(ctx context.Context, tokenStr string) error {
	endpoint := strings.TrimRight(f.cfg.AuthServiceURL, "/") +
		"/api/auth/validate-token?token=" + url.QueryEscape(tokenStr)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", utils.ErrUpstreamUnavailable, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", utils.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		var body utils.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err == nil &&
			body.Code == utils.ErrCodeTokenRevoked {
			return utils.ErrTokenRevoked
		}
		return utils.ErrTokenMalformed
	default:
		return fmt.Errorf("%w: authority returned %d", utils.ErrUpstreamUnavailable, resp.StatusCode)
	}
}

// stripTrustedHeaders removes identity headers from inbound requests
// on every route, secured or not.
func stripTrustedHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Header.Del(HeaderUserID)
		r.Header.Del(HeaderUserEmail)
		next.ServeHTTP(w, r)
	})
}

// extractAccessToken reads the token from the one configured carrier.
func extractAccessToken(r *http.Request, carrier config.TokenCarrier) (string, error) {
	if carrier == config.CarrierCookie {
		c, err := r.Cookie(utils.AccessTokenCookieName)
		if err != nil || c.Value == "" {
			return "", errors.New("missing access token cookie")
		}
		return c.Value, nil
	}

	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return "", errors.New("missing Authorization header")
	}
	return strings.TrimPrefix(h, "Bearer "), nil
}
