package brokerage

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ErrInvalidPrivateKey is returned when the configured key cannot be decoded.
var ErrInvalidPrivateKey = errors.New("invalid private key")

// Signer produces the x-signature header for Robinhood Crypto requests.
type Signer struct {
	apiKey string
	key    ed25519.PrivateKey
	now    func() time.Time
}

// NewSigner decodes a base64 private key. Both the 32-byte seed and the
// 64-byte expanded form are accepted.
func NewSigner(apiKey, privateKeyBase64 string) (*Signer, error) {
	raw, err := base64.StdEncoding.DecodeString(privateKeyBase64)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPrivateKey, err)
	}

	var key ed25519.PrivateKey
	switch len(raw) {
	case ed25519.SeedSize:
		key = ed25519.NewKeyFromSeed(raw)
	case ed25519.PrivateKeySize:
		key = ed25519.PrivateKey(raw)
	default:
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidPrivateKey, len(raw))
	}

	return &Signer{apiKey: apiKey, key: key, now: time.Now}, nil
}

// Headers signs apiKey + timestamp + path + method + body and returns the
// authentication headers. path includes the query string.
func (s *Signer) Headers(method, path, body string) map[string]string {
	timestamp := strconv.FormatInt(s.now().Unix(), 10)
	message := s.apiKey + timestamp + path + method + body
	signature := ed25519.Sign(s.key, []byte(message))

	return map[string]string{
		"x-api-key":   s.apiKey,
		"x-timestamp": timestamp,
		"x-signature": base64.StdEncoding.EncodeToString(signature),
	}
}

// PublicKey returns the verification key.
func (s *Signer) PublicKey() ed25519.PublicKey {
	return s.key.Public().(ed25519.PublicKey)
}
