package gateway

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Maxiflexy/MonieBank/internal/config"
	"github.com/Maxiflexy/MonieBank/internal/utils"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func signTestToken(t *testing.T, userID uuid.UUID, email, tokenType string, ttl time.Duration) string {
	t.Helper()
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":       userID.String(),
		"email":     email,
		"tokenType": tokenType,
		"jti":       uuid.NewString(),
		"iat":       now.Unix(),
		"exp":       now.Add(ttl).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)
	return signed
}

func gatewayConfig(authorityURL string, carrier config.TokenCarrier) *config.GatewayConfig {
	return &config.GatewayConfig{
		AppName:         "api-gateway",
		TokenSecret:     testSecret,
		TokenCarrier:    carrier,
		AuthServiceURL:  authorityURL,
		ValidateTimeout: 300 * time.Millisecond,
	}
}

// authorityStub is an httptest stand-in for the validate-token
// endpoint. hits counts remote calls.
type authorityStub struct {
	server *httptest.Server
	hits   int64
}

func newAuthorityStub(t *testing.T, handler http.HandlerFunc) *authorityStub {
	t.Helper()
	stub := &authorityStub{}
	stub.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&stub.hits, 1)
		require.Equal(t, "/api/auth/validate-token", r.URL.Path)
		require.NotEmpty(t, r.URL.Query().Get("token"))
		handler(w, r)
	}))
	t.Cleanup(stub.server.Close)
	return stub
}

func approve(w http.ResponseWriter, _ *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, map[string]bool{"valid": true})
}

func runFilter(cfg *config.GatewayConfig, req *http.Request) (*httptest.ResponseRecorder, *http.Request) {
	var forwarded *http.Request
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		forwarded = r
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	NewAuthFilter(cfg).Middleware(next).ServeHTTP(rec, req)
	return rec, forwarded
}

func TestFilterRejectsMissingToken(t *testing.T) {
	authority := newAuthorityStub(t, approve)
	cfg := gatewayConfig(authority.server.URL, config.CarrierCookie)

	req := httptest.NewRequest("GET", "/api/accounts/balance", nil)
	rec, forwarded := runFilter(cfg, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Nil(t, forwarded)
	require.EqualValues(t, 0, atomic.LoadInt64(&authority.hits))
}

func TestFilterRejectsExpiredWithoutRemoteCall(t *testing.T) {
	authority := newAuthorityStub(t, approve)
	cfg := gatewayConfig(authority.server.URL, config.CarrierCookie)

	token := signTestToken(t, uuid.New(), "jane@example.com", "ACCESS", -time.Minute)
	req := httptest.NewRequest("GET", "/api/accounts/balance", nil)
	req.AddCookie(&http.Cookie{Name: utils.AccessTokenCookieName, Value: token})

	rec, forwarded := runFilter(cfg, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), utils.ErrCodeTokenExpired)
	require.Nil(t, forwarded)

	// Local verification fully screens the authority.
	require.EqualValues(t, 0, atomic.LoadInt64(&authority.hits))
}

func TestFilterRejectsForgedSignatureWithoutRemoteCall(t *testing.T) {
	authority := newAuthorityStub(t, approve)
	cfg := gatewayConfig(authority.server.URL, config.CarrierCookie)

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": uuid.NewString(),
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("wrong-secret-wrong-secret-wrong!"))
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/accounts/balance", nil)
	req.AddCookie(&http.Cookie{Name: utils.AccessTokenCookieName, Value: forged})

	rec, forwarded := runFilter(cfg, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Nil(t, forwarded)
	require.EqualValues(t, 0, atomic.LoadInt64(&authority.hits))
}

func TestFilterRejectsRefreshTokenAtTheEdge(t *testing.T) {
	authority := newAuthorityStub(t, approve)
	cfg := gatewayConfig(authority.server.URL, config.CarrierCookie)

	token := signTestToken(t, uuid.New(), "jane@example.com", "REFRESH", time.Hour)
	req := httptest.NewRequest("GET", "/api/accounts/balance", nil)
	req.AddCookie(&http.Cookie{Name: utils.AccessTokenCookieName, Value: token})

	rec, forwarded := runFilter(cfg, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Nil(t, forwarded)
	require.EqualValues(t, 0, atomic.LoadInt64(&authority.hits))
}

func TestFilterInjectsTrustedHeaders(t *testing.T) {
	authority := newAuthorityStub(t, approve)
	cfg := gatewayConfig(authority.server.URL, config.CarrierCookie)

	userID := uuid.New()
	token := signTestToken(t, userID, "jane@example.com", "ACCESS", time.Hour)
	req := httptest.NewRequest("GET", "/api/accounts/balance", nil)
	req.AddCookie(&http.Cookie{Name: utils.AccessTokenCookieName, Value: token})

	// Spoofed inbound identity must not survive.
	req.Header.Set(HeaderUserID, "attacker")
	req.Header.Set(HeaderUserEmail, "attacker@example.com")

	rec, forwarded := runFilter(cfg, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, forwarded)
	require.Equal(t, userID.String(), forwarded.Header.Get(HeaderUserID))
	require.Equal(t, "jane@example.com", forwarded.Header.Get(HeaderUserEmail))
	require.EqualValues(t, 1, atomic.LoadInt64(&authority.hits))
}

func TestFilterBearerCarrier(t *testing.T) {
	authority := newAuthorityStub(t, approve)
	cfg := gatewayConfig(authority.server.URL, config.CarrierHeader)

	token := signTestToken(t, uuid.New(), "jane@example.com", "ACCESS", time.Hour)
	req := httptest.NewRequest("GET", "/api/accounts/balance", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rec, forwarded := runFilter(cfg, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, forwarded)

	// A cookie is ignored in header-carrier mode.
	cookieOnly := httptest.NewRequest("GET", "/api/accounts/balance", nil)
	cookieOnly.AddCookie(&http.Cookie{Name: utils.AccessTokenCookieName, Value: token})
	rec, forwarded = runFilter(cfg, cookieOnly)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Nil(t, forwarded)
}

func TestFilterRejectsRevokedToken(t *testing.T) {
	authority := newAuthorityStub(t, func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondErrorWithCode(
			w, http.StatusUnauthorized, utils.ErrCodeTokenRevoked, "Token has been revoked", nil,
		)
	})
	cfg := gatewayConfig(authority.server.URL, config.CarrierCookie)

	token := signTestToken(t, uuid.New(), "jane@example.com", "ACCESS", time.Hour)
	req := httptest.NewRequest("GET", "/api/accounts/balance", nil)
	req.AddCookie(&http.Cookie{Name: utils.AccessTokenCookieName, Value: token})

	rec, forwarded := runFilter(cfg, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), utils.ErrCodeTokenRevoked)
	require.Nil(t, forwarded)
}

func TestFilterTreatsForbiddenAsInvalidToken(t *testing.T) {
	authority := newAuthorityStub(t, func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondErrorWithCode(
			w, http.StatusForbidden, utils.ErrCodeUnauthorized, "Token is invalid or blacklisted", nil,
		)
	})
	cfg := gatewayConfig(authority.server.URL, config.CarrierCookie)

	token := signTestToken(t, uuid.New(), "jane@example.com", "ACCESS", time.Hour)
	req := httptest.NewRequest("GET", "/api/accounts/balance", nil)
	req.AddCookie(&http.Cookie{Name: utils.AccessTokenCookieName, Value: token})

	rec, forwarded := runFilter(cfg, req)

	// 403 is an authority verdict on the token, not an outage.
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Nil(t, forwarded)
}

func TestFilterFailsClosedOnAuthorityTimeout(t *testing.T) {
	authority := newAuthorityStub(t, func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(time.Second)
		w.WriteHeader(http.StatusOK)
	})
	cfg := gatewayConfig(authority.server.URL, config.CarrierCookie)

	token := signTestToken(t, uuid.New(), "jane@example.com", "ACCESS", time.Hour)
	req := httptest.NewRequest("GET", "/api/accounts/balance", nil)
	req.AddCookie(&http.Cookie{Name: utils.AccessTokenCookieName, Value: token})

	rec, forwarded := runFilter(cfg, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Contains(t, rec.Body.String(), utils.ErrCodeUpstreamUnavailable)
	require.Nil(t, forwarded)
}

func TestFilterFailsClosedOnAuthorityError(t *testing.T) {
	authority := newAuthorityStub(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	cfg := gatewayConfig(authority.server.URL, config.CarrierCookie)

	token := signTestToken(t, uuid.New(), "jane@example.com", "ACCESS", time.Hour)
	req := httptest.NewRequest("GET", "/api/accounts/balance", nil)
	req.AddCookie(&http.Cookie{Name: utils.AccessTokenCookieName, Value: token})

	rec, forwarded := runFilter(cfg, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Nil(t, forwarded)
}

func TestFilterFailsClosedWhenAuthorityIsDown(t *testing.T) {
	authority := newAuthorityStub(t, approve)
	authority.server.Close()
	cfg := gatewayConfig(authority.server.URL, config.CarrierCookie)

	token := signTestToken(t, uuid.New(), "jane@example.com", "ACCESS", time.Hour)
	req := httptest.NewRequest("GET", "/api/accounts/balance", nil)
	req.AddCookie(&http.Cookie{Name: utils.AccessTokenCookieName, Value: token})

	rec, forwarded := runFilter(cfg, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Nil(t, forwarded)
}

func TestStripTrustedHeaders(t *testing.T) {
	var forwarded *http.Request
	next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		forwarded = r
	})

	req := httptest.NewRequest("POST", "/api/auth/login", nil)
	req.Header.Set(HeaderUserID, "attacker")
	req.Header.Set(HeaderUserEmail, "attacker@example.com")

	stripTrustedHeaders(next).ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, forwarded)
	require.Empty(t, forwarded.Header.Get(HeaderUserID))
	require.Empty(t, forwarded.Header.Get(HeaderUserEmail))
}
