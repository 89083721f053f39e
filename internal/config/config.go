package config

import (
	"encoding/base64"
	"os"
	"strings"
	"time"

	"github.com/Maxiflexy/MonieBank/internal/utils"
)

// TokenCarrier selects the one trusted transport for the access token.
// Exactly one carrier is honored per deployment, never both.
type TokenCarrier string

const (
	CarrierCookie TokenCarrier = "cookie"
	CarrierHeader TokenCarrier = "header"
)

// Config holds all auth-service configuration.
type Config struct {
	AppName string
	AppPort string
	AppURL  string

	DBUrl string

	TokenSecret        []byte
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration

	VerificationTokenExpiry time.Duration
	FrontendBaseURL         string

	TokenCarrier TokenCarrier
	CookieSecure bool

	FieldEncryptionKey []byte

	GoogleClientID string

	KafkaBrokers []string
}

const (
	DefaultAccessTokenExpiry       = 15 * time.Minute
	DefaultRefreshTokenExpiry      = 7 * 24 * time.Hour
	DefaultVerificationTokenExpiry = 30 * time.Minute
)

// LoadConfig reads the environment and fails fast on anything missing.
func LoadConfig(appName string) *Config {
	utils.Logger.Info("Loading config for app: ", appName)

	cfg := &Config{
		AppName:                 appName,
		AppPort:                 requireEnv("APP_PORT"),
		AppURL:                  requireEnv("APP_URL"),
		DBUrl:                   requireEnv("DB_URL"),
		TokenSecret:             []byte(requireEnv("TOKEN_SECRET")),
		AccessTokenExpiry:       durationEnv("ACCESS_TOKEN_EXPIRY", DefaultAccessTokenExpiry),
		RefreshTokenExpiry:      durationEnv("REFRESH_TOKEN_EXPIRY", DefaultRefreshTokenExpiry),
		VerificationTokenExpiry: durationEnv("VERIFICATION_TOKEN_EXPIRY", DefaultVerificationTokenExpiry),
		FrontendBaseURL:         requireEnv("FRONTEND_BASE_URL"),
		TokenCarrier:            carrierEnv(),
		CookieSecure:            os.Getenv("COOKIE_SECURE") == "true",
		GoogleClientID:          os.Getenv("GOOGLE_CLIENT_ID"),
	}

	if len(cfg.TokenSecret) < 32 {
		utils.Logger.Fatal("TOKEN_SECRET must be at least 32 bytes for HMAC signing")
	}

	keyBase64 := requireEnv("FIELD_ENCRYPTION_KEY_BASE64")
	key, err := base64.StdEncoding.DecodeString(keyBase64)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to decode FIELD_ENCRYPTION_KEY_BASE64")
	}
	if len(key) != 32 {
		utils.Logger.Fatal("FieldEncryptionKey must be 32 bytes for AES-256 encryption")
	}
	cfg.FieldEncryptionKey = key

	brokers := requireEnv("KAFKA_BROKERS")
	cfg.KafkaBrokers = strings.Split(brokers, ",")

	return cfg
}

func requireEnv(name string) string {
	v := os.Getenv(name)
	if v == "" {
		utils.Logger.Fatalf("%s env var is missing", name)
	}
	return v
}

func durationEnv(name string, fallback time.Duration) time.Duration {
	v := os.Getenv(name)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		utils.Logger.WithError(err).Fatalf("Invalid duration in %s", name)
	}
	return d
}

func carrierEnv() TokenCarrier {
	switch os.Getenv("TOKEN_CARRIER") {
	case "", string(CarrierCookie):
		return CarrierCookie
	case string(CarrierHeader):
		return CarrierHeader
	default:
		utils.Logger.Fatalf("TOKEN_CARRIER must be %q or %q", CarrierCookie, CarrierHeader)
		return ""
	}
}
