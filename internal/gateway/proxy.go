package gateway

import (
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/gorilla/mux"

	"github.com/Maxiflexy/MonieBank/internal/config"
	"github.com/Maxiflexy/MonieBank/internal/utils"
)

// publicAuthPaths never pass through the auth filter. Refresh and
// logout are open because their access token may already be expired.
var publicAuthPaths = []string{
	"/api/auth/signup",
	"/api/auth/verify-email",
	"/api/auth/resend-verification",
	"/api/auth/login",
	"/api/auth/oauth2",
	"/api/auth/refresh",
	"/api/auth/logout",
}

// NewRouter builds the gateway routing table: one reverse proxy per
// configured upstream, the auth filter on everything that is not
// explicitly public. The validate-token endpoint is internal to the
// gateway/authority pair and is not routed at all.
func NewRouter(cfg *config.GatewayConfig) *mux.Router {
	filter := NewAuthFilter(cfg)

	authProxy := newProxy(cfg.AuthServiceURL)
	accountProxy := newProxy(cfg.AccountServiceURL)
	transactionProxy := newProxy(cfg.TransactionServiceURL)

	router := mux.NewRouter()
	router.Use(stripTrustedHeaders)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "OK"})
	}).Methods("GET")

	// Registration order matters: public prefixes match before the
	// secured catch-alls below.
	for _, p := range publicAuthPaths {
		router.PathPrefix(p).Handler(authProxy)
	}

	secured := router.PathPrefix("/api").Subrouter()
	secured.Use(filter.Middleware)
	secured.PathPrefix("/auth").Handler(authProxy)
	secured.PathPrefix("/accounts").Handler(accountProxy)
	secured.PathPrefix("/transactions").Handler(transactionProxy)

	return router
}

func newProxy(target string) *httputil.ReverseProxy {
	u, err := url.Parse(target)
	if err != nil {
		utils.Logger.WithError(err).Fatalf("Invalid upstream URL: %s", target)
	}

	proxy := httputil.NewSingleHostReverseProxy(u)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		utils.Logger.WithError(err).Errorf("Upstream %s unreachable", u.Host)
		utils.RespondErrorWithCode(
			w, http.StatusBadGateway, utils.ErrCodeUpstreamUnavailable, "Upstream unavailable", nil, err,
		)
	}
	return proxy
}
