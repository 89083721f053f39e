package utils

import "net/http"

// Negotiation headers for field-level payload encryption. Clients that
// understand encrypted responses send X-Supports-Encryption; clients
// that encrypted their request fields send X-Request-Encrypted.
const (
	HeaderSupportsEncryption       = "X-Supports-Encryption"
	HeaderRequestEncrypted         = "X-Request-Encrypted"
	HeaderServerSupportsEncryption = "X-Server-Supports-Encryption"
	HeaderResponseEncrypted        = "X-Response-Encrypted"
)

// FieldCodec encrypts and decrypts individual DTO fields for one
// request. It is built at request entry from the negotiation headers
// and threaded explicitly through the handler; it holds no process-wide
// state.
type FieldCodec struct {
	key            []byte
	encryptEnabled bool
	decryptEnabled bool
}

// NewFieldCodec inspects the request's negotiation headers and stamps
// the response headers advertising server-side support.
func NewFieldCodec(key []byte, w http.ResponseWriter, r *http.Request) *FieldCodec {
	c := &FieldCodec{
		key:            key,
		encryptEnabled: r.Header.Get(HeaderSupportsEncryption) == "true",
		decryptEnabled: r.Header.Get(HeaderRequestEncrypted) == "true",
	}
	w.Header().Set(HeaderServerSupportsEncryption, "true")
	if c.encryptEnabled {
		w.Header().Set(HeaderResponseEncrypted, "true")
	}
	return c
}

// Encode returns the field encrypted when the client negotiated
// encrypted responses, otherwise the plaintext unchanged.
func (c *FieldCodec) Encode(value string) string {
	if !c.encryptEnabled || value == "" {
		return value
	}
	encrypted, err := EncryptField(c.key, value)
	if err != nil {
		Logger.WithError(err).Warn("field encryption failed; returning plaintext")
		return value
	}
	return encrypted
}

// Decode decrypts an inbound field when the client marked the request
// encrypted. A value that fails to decrypt is passed through as-is: it
// may be an unencrypted value from an older client.
func (c *FieldCodec) Decode(value string) string {
	if !c.decryptEnabled || value == "" {
		return value
	}
	plaintext, err := DecryptField(c.key, value)
	if err != nil {
		Logger.WithError(err).Warn("field decryption failed; passing raw value through")
		return value
	}
	return plaintext
}
