package utils

import "errors"

// Domain-level errors used by the service layer to provide
// fine-grained failure reasons.
var (
	ErrTokenExpired   = errors.New("token_expired")
	ErrTokenMalformed = errors.New("token_malformed")
	ErrTokenRevoked   = errors.New("token_revoked")
	ErrTokenWrongType = errors.New("token_wrong_type")

	ErrUserNotFound         = errors.New("user_not_found")
	ErrEmailExists          = errors.New("email_exists")
	ErrEmailNotVerified     = errors.New("email_not_verified")
	ErrEmailAlreadyVerified = errors.New("email_already_verified")
	ErrBadCredentials       = errors.New("bad_credentials")
	ErrProviderConflict     = errors.New("provider_conflict")

	// The edge gate could not reach the authority's validate endpoint.
	ErrUpstreamUnavailable = errors.New("upstream_unavailable")

	// The field-cipher collaborator could not decrypt a value.
	ErrDecryptionFailure = errors.New("decryption_failure")
)
