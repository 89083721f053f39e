package config

import (
	"time"

	"github.com/Maxiflexy/MonieBank/internal/utils"
)

// GatewayConfig holds the api-gateway configuration. The gateway is
// stateless: it carries the shared token secret for local verification
// and the authority URL for blacklist checks, never a DB connection.
type GatewayConfig struct {
	AppName string
	AppPort string

	TokenSecret  []byte
	TokenCarrier TokenCarrier

	// Base URL of the auth service, also the remote validate authority.
	AuthServiceURL string
	// Bound on the remote blacklist check; exceeding it fails closed.
	ValidateTimeout time.Duration

	AccountServiceURL     string
	TransactionServiceURL string

	AllowedOrigin string
}

const DefaultValidateTimeout = 3 * time.Second

func LoadGatewayConfig(appName string) *GatewayConfig {
	utils.Logger.Info("Loading config for app: ", appName)

	cfg := &GatewayConfig{
		AppName:               appName,
		AppPort:               requireEnv("APP_PORT"),
		TokenSecret:           []byte(requireEnv("TOKEN_SECRET")),
		TokenCarrier:          carrierEnv(),
		AuthServiceURL:        requireEnv("AUTH_SERVICE_URL"),
		ValidateTimeout:       durationEnv("VALIDATE_TIMEOUT", DefaultValidateTimeout),
		AccountServiceURL:     requireEnv("ACCOUNT_SERVICE_URL"),
		TransactionServiceURL: requireEnv("TRANSACTION_SERVICE_URL"),
		AllowedOrigin:         requireEnv("APP_URL"),
	}

	if len(cfg.TokenSecret) < 32 {
		utils.Logger.Fatal("TOKEN_SECRET must be at least 32 bytes for HMAC signing")
	}

	return cfg
}
