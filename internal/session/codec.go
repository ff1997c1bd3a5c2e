package session

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// Codec seals the bearer token before it is written to a client-visible
// medium. XChaCha20-Poly1305 with a random nonce per seal; the sealed form
// is base64url so it survives cookie encoding.
type Codec struct {
	key []byte
}

// SecretLength is the required codec secret size.
const SecretLength = chacha20poly1305.KeySize

// NewCodec creates a codec from a 32-byte secret.
func NewCodec(secret string) (*Codec, error) {
	if len(secret) != SecretLength {
		return nil, fmt.Errorf("session: codec secret must be %d bytes, got %d", SecretLength, len(secret))
	}
	return &Codec{key: []byte(secret)}, nil
}

// Seal encrypts the value and returns its cookie-safe form.
func (c *Codec) Seal(value string) (string, error) {
	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	out := append(nonce, aead.Seal(nil, nonce, []byte(value), nil)...)
	return base64.RawURLEncoding.EncodeToString(out), nil
}

// Open decrypts a sealed value. Tampered or truncated input is an error;
// callers treat it the same as an absent session.
func (c *Codec) Open(sealed string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("session: decode sealed value: %w", err)
	}
	if len(raw) < chacha20poly1305.NonceSizeX {
		return "", errors.New("session: sealed value too short")
	}
	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return "", err
	}
	nonce, ct := raw[:chacha20poly1305.NonceSizeX], raw[chacha20poly1305.NonceSizeX:]
	plain, err := aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return "", fmt.Errorf("session: open sealed value: %w", err)
	}
	return string(plain), nil
}
