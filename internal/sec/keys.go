package sec

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
)

// KeySize is the length in bytes of an AES-256 key.
const KeySize = 32

// Key is the symmetric message encryption key.
type Key [KeySize]byte

// LogValue satisfies [slog.LogValuer] so keys never end up in logs.
func (Key) LogValue() slog.Value { return slog.StringValue("[REDACTED]") }

// KeyProvider supplies the encryption key to a [Cipher]. Implementations must
// be safe for concurrent use.
type KeyProvider interface {
	// EncryptionKey returns the key to use for the current operation.
	EncryptionKey() (Key, error)
}

// ParseKey decodes a hex encoded key. A [KindConfiguration] error is returned
// if the value is empty, is not hex, or does not decode to exactly [KeySize]
// bytes.
func ParseKey(hexKey string) (key Key, err error) {
	if hexKey == "" {
		return key, newError(KindConfiguration, "encryption key is not set", nil)
	}
	raw, err := hex.DecodeString(hexKey)
	if err != nil {
		return key, newError(KindConfiguration, "encryption key is not valid hex", err)
	}
	if len(raw) != KeySize {
		return key, newError(KindConfiguration,
			fmt.Sprintf("encryption key must be %d bytes (%d hex characters), got %d bytes", KeySize, 2*KeySize, len(raw)),
			nil)
	}
	copy(key[:], raw)
	clear(raw)
	return key, nil
}

// GenerateKey returns a new random key, hex encoded.
func GenerateKey() (string, error) {
	var key Key
	if _, err := rand.Read(key[:]); err != nil {
		return "", newError(KindCrypto, "failed to generate key", err)
	}
	return hex.EncodeToString(key[:]), nil
}

// StaticKey is a [KeyProvider] holding a single key validated at startup and
// immutable for the lifetime of the process.
type StaticKey struct {
	key Key
}

// LoadKey parses hexKey and returns a provider for it. This is the startup
// validation step: callers should refuse to serve if it fails.
func LoadKey(hexKey string) (StaticKey, error) {
	key, err := ParseKey(hexKey)
	if err != nil {
		return StaticKey{}, err
	}
	return StaticKey{key: key}, nil
}

// EncryptionKey satisfies [KeyProvider].
func (s StaticKey) EncryptionKey() (Key, error) { return s.key, nil }

// KeyFunc adapts a function to a [KeyProvider].
type KeyFunc func() (Key, error)

// EncryptionKey satisfies [KeyProvider].
func (fn KeyFunc) EncryptionKey() (Key, error) { return fn() }

var (
	_ KeyProvider = StaticKey{}
	_ KeyProvider = KeyFunc(nil)
)
