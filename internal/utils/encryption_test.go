package utils

import (
	"encoding/base64"
	"errors"
	"testing"
)

func testKey() []byte {
	key := make([]byte, 32)
	for i := 0; i < 32; i++ {
		key[i] = byte(i)
	}
	return key
}

func TestFieldEncryptionRoundTrip(t *testing.T) {
	plaintext := "jane@example.com"

	ciphertext, err := EncryptField(testKey(), plaintext)
	if err != nil {
		t.Fatalf("EncryptField returned error: %v", err)
	}
	if ciphertext == plaintext {
		t.Fatal("Ciphertext should not equal plaintext")
	}

	decrypted, err := DecryptField(testKey(), ciphertext)
	if err != nil {
		t.Fatalf("DecryptField returned error: %v", err)
	}
	if decrypted != plaintext {
		t.Fatalf("Expected '%s', got '%s'", plaintext, decrypted)
	}
}

func TestFieldEncryptionEmptyPassthrough(t *testing.T) {
	ciphertext, err := EncryptField(testKey(), "")
	if err != nil {
		t.Fatalf("EncryptField returned error on empty string: %v", err)
	}
	if ciphertext != "" {
		t.Fatalf("Expected empty passthrough, got '%s'", ciphertext)
	}

	decrypted, err := DecryptField(testKey(), "")
	if err != nil {
		t.Fatalf("DecryptField returned error on empty string: %v", err)
	}
	if decrypted != "" {
		t.Fatalf("Expected empty passthrough, got '%s'", decrypted)
	}
}

func TestFieldEncryptionInvalidKeyLength(t *testing.T) {
	shortKey := []byte("not-32-bytes")
	if _, err := EncryptField(shortKey, "some text"); err == nil {
		t.Fatal("Expected error with invalid key length, got no error")
	}
	if _, err := DecryptField(shortKey, "some ciphertext"); err == nil {
		t.Fatal("Expected error with invalid key length, got no error")
	}
}

func TestFieldDecryptionTamperedCiphertext(t *testing.T) {
	ciphertext, err := EncryptField(testKey(), "Tamper test")
	if err != nil {
		t.Fatalf("EncryptField returned error: %v", err)
	}

	raw, decodeErr := base64.URLEncoding.DecodeString(ciphertext)
	if decodeErr != nil {
		t.Fatalf("Base64 decode error: %v", decodeErr)
	}
	raw[len(raw)-1] ^= 0xFF
	corrupted := base64.URLEncoding.EncodeToString(raw)

	_, err = DecryptField(testKey(), corrupted)
	if !errors.Is(err, ErrDecryptionFailure) {
		t.Fatalf("Expected ErrDecryptionFailure, got %v", err)
	}
}

func TestFieldDecryptionInvalidBase64(t *testing.T) {
	_, err := DecryptField(testKey(), "!!!NOT-BASE64!!!")
	if !errors.Is(err, ErrDecryptionFailure) {
		t.Fatalf("Expected ErrDecryptionFailure, got %v", err)
	}
}

func TestFieldDecryptionShortCiphertext(t *testing.T) {
	// "Zm9v" -> "foo", shorter than the 12-byte nonce
	_, err := DecryptField(testKey(), "Zm9v")
	if !errors.Is(err, ErrDecryptionFailure) {
		t.Fatalf("Expected ErrDecryptionFailure, got %v", err)
	}
}

func TestFieldDecryptionKeyMismatch(t *testing.T) {
	otherKey := make([]byte, 32)
	for i := 0; i < 32; i++ {
		otherKey[i] = byte(31 - i)
	}

	ciphertext, err := EncryptField(testKey(), "Mismatch test")
	if err != nil {
		t.Fatalf("EncryptField returned error: %v", err)
	}

	_, err = DecryptField(otherKey, ciphertext)
	if !errors.Is(err, ErrDecryptionFailure) {
		t.Fatalf("Expected ErrDecryptionFailure, got %v", err)
	}
}
