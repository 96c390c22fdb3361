package session

import (
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/gorilla/securecookie"
	"golang.org/x/crypto/hkdf"
)

// StaticPassphrase is compiled into every client build. Anything encoded
// with it can be decoded by anyone holding a binary, so stored values are
// obfuscated, not confidential.
const StaticPassphrase = "phegon-dev-inventory"

// Codec turns stored values into their at-rest form and back. The name
// binds an encoded value to its key.
type Codec interface {
	Encode(name, value string) (string, error)
	Decode(name, encoded string) (string, error)
}

// Obfuscator is a Codec built on securecookie (AES-CTR + HMAC-SHA256).
type Obfuscator struct {
	sc *securecookie.SecureCookie
}

// NewObfuscator derives the hash and block keys from passphrase.
func NewObfuscator(passphrase string) (*Obfuscator, error) {
	kdf := hkdf.New(sha256.New, []byte(passphrase), nil, []byte("zaloga session storage"))

	hashKey := make([]byte, 32)
	blockKey := make([]byte, 32)
	if _, err := io.ReadFull(kdf, hashKey); err != nil {
		return nil, fmt.Errorf("deriving hash key: %w", err)
	}
	if _, err := io.ReadFull(kdf, blockKey); err != nil {
		return nil, fmt.Errorf("deriving block key: %w", err)
	}

	sc := securecookie.New(hashKey, blockKey)
	// Stored entries live until cleared, like localStorage.
	sc.MaxAge(0)
	sc.MaxLength(0)
	return &Obfuscator{sc: sc}, nil
}

// DefaultObfuscator returns the Obfuscator keyed by StaticPassphrase.
func DefaultObfuscator() *Obfuscator {
	o, err := NewObfuscator(StaticPassphrase)
	if err != nil {
		panic(fmt.Sprintf("session: building default obfuscator: %v", err))
	}
	return o
}

// Encode implements Codec.
func (o *Obfuscator) Encode(name, value string) (string, error) {
	encoded, err := o.sc.Encode(name, value)
	if err != nil {
		return "", fmt.Errorf("encoding %s: %w", name, err)
	}
	return encoded, nil
}

// Decode implements Codec.
func (o *Obfuscator) Decode(name, encoded string) (string, error) {
	var value string
	if err := o.sc.Decode(name, encoded, &value); err != nil {
		return "", fmt.Errorf("decoding %s: %w", name, err)
	}
	return value, nil
}
