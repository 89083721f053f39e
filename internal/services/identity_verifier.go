package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const defaultGoogleTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

// VerifiedIdentity is the result of verifying an identity-provider
// token.
type VerifiedIdentity struct {
	Email      string
	Name       string
	Subject    string
	PictureURL string
}

// IdentityVerifier checks an OAuth identity token with its provider.
// The provider's verification rules are a black box to this service.
type IdentityVerifier interface {
	VerifyIdentityToken(ctx context.Context, rawToken string) (*VerifiedIdentity, error)
}

// GoogleVerifierConfig configures the Google ID-token verifier. The
// endpoint URL is overridable for tests.
type GoogleVerifierConfig struct {
	ClientID     string
	TokenInfoURL string
}

type googleVerifier struct {
	config GoogleVerifierConfig
	client *http.Client
}

func NewGoogleVerifier(config GoogleVerifierConfig) IdentityVerifier {
	if config.TokenInfoURL == "" {
		config.TokenInfoURL = defaultGoogleTokenInfoURL
	}
	return &googleVerifier{
		config: config,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

type googleTokenInfo struct {
	Aud     string `json:"aud"`
	Sub     string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func (v *googleVerifier) VerifyIdentityToken(ctx context.Context, rawToken string) (*VerifiedIdentity, error) {
	endpoint := v.config.TokenInfoURL + "?id_token=" + url.QueryEscape(rawToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create tokeninfo request: %w", err)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tokeninfo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("identity token rejected by provider")
	}

	var info googleTokenInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode tokeninfo response: %w", err)
	}

	if v.config.ClientID != "" && info.Aud != v.config.ClientID {
		return nil, errors.New("identity token audience mismatch")
	}
	if info.Email == "" {
		return nil, errors.New("identity token carries no email")
	}

	return &VerifiedIdentity{
		Email:      info.Email,
		Name:       info.Name,
		Subject:    info.Sub,
		PictureURL: info.Picture,
	}, nil
}
