package sec

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"io"
	"unicode/utf8"
)

// NonceSize is the length of the GCM nonce prefixed to every envelope.
const NonceSize = 12

// Envelope is an encrypted message: the nonce followed by the ciphertext and
// its 16 byte authentication tag.
type Envelope []byte

// Nonce returns the nonce portion of the envelope, or nil if it is too short.
func (e Envelope) Nonce() []byte {
	if len(e) < NonceSize {
		return nil
	}
	return e[:NonceSize]
}

// Ciphertext returns the sealed portion of the envelope, or nil if it is too
// short.
func (e Envelope) Ciphertext() []byte {
	if len(e) < NonceSize {
		return nil
	}
	return e[NonceSize:]
}

// Cipher encrypts and decrypts message envelopes with AES-256-GCM. It holds no
// mutable state and is safe for concurrent use.
type Cipher struct {
	keys KeyProvider
	rand io.Reader
}

// NewCipher returns a Cipher that fetches its key from keys on every call.
func NewCipher(keys KeyProvider) *Cipher {
	return &Cipher{keys: keys, rand: rand.Reader}
}

func (c *Cipher) aead() (cipher.AEAD, error) {
	key, err := c.keys.EncryptionKey()
	if err != nil {
		return nil, newError(KindCrypto, "encryption key unavailable", err)
	}
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, newError(KindCrypto, "failed to initialize cipher", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, newError(KindCrypto, "failed to initialize cipher", err)
	}
	return gcm, nil
}

// Encrypt seals plaintext under a freshly generated random nonce and returns
// the resulting envelope.
func (c *Cipher) Encrypt(plaintext string) (Envelope, error) {
	gcm, err := c.aead()
	if err != nil {
		return nil, err
	}

	out := make([]byte, NonceSize, NonceSize+len(plaintext)+gcm.Overhead())
	if _, err = io.ReadFull(c.rand, out); err != nil {
		return nil, newError(KindCrypto, "message encryption failed", err)
	}
	return gcm.Seal(out, out[:NonceSize], []byte(plaintext), nil), nil
}

// Decrypt opens an envelope produced by [Cipher.Encrypt]. Any authentication
// failure is reported as [KindCrypto]; the plaintext is never returned
// partially.
func (c *Cipher) Decrypt(envelope []byte) (string, error) {
	env := Envelope(envelope)
	if len(env) < NonceSize {
		return "", newError(KindFormat, "invalid encrypted data format", nil)
	}

	gcm, err := c.aead()
	if err != nil {
		return "", err
	}

	plaintext, err := gcm.Open(nil, env.Nonce(), env.Ciphertext(), nil)
	if err != nil {
		return "", newError(KindCrypto, "message decryption failed", err)
	}
	if !utf8.Valid(plaintext) {
		return "", newError(KindEncoding, "decrypted message is not valid UTF-8", nil)
	}
	return string(plaintext), nil
}
