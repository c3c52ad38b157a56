package sec

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"testing"
	"testing/iotest"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCipher(t *testing.T) *Cipher {
	t.Helper()
	hexKey, err := GenerateKey()
	require.NoError(t, err)
	keys, err := LoadKey(hexKey)
	require.NoError(t, err)
	return NewCipher(keys)
}

func TestCipher_RoundTrip(t *testing.T) {
	t.Parallel()

	c := newTestCipher(t)
	faker := gofakeit.New(0)

	plaintexts := []string{
		"",
		"hello",
		"multi\nline\tmessage",
		"héllo wörld ✓ 日本語",
	}
	for range 50 {
		plaintexts = append(plaintexts,
			faker.Sentence(1+faker.IntN(40)),
			faker.Emoji()+faker.Sentence(3),
		)
	}

	for _, pt := range plaintexts {
		env, err := c.Encrypt(pt)
		require.NoError(t, err)
		assert.Len(t, env, NonceSize+len(pt)+16)

		got, err := c.Decrypt(env)
		require.NoError(t, err)
		assert.Equal(t, pt, got)
	}
}

func TestCipher_TamperDetection(t *testing.T) {
	t.Parallel()

	c := newTestCipher(t)
	env, err := c.Encrypt("attack at dawn")
	require.NoError(t, err)

	for i := range env {
		tampered := append(Envelope(nil), env...)
		tampered[i] ^= 0x01

		_, err := c.Decrypt(tampered)
		require.Error(t, err, "byte %d", i)
		assert.Equal(t, KindCrypto, KindOf(err), "byte %d", i)
	}
}

func TestCipher_NonceUniqueness(t *testing.T) {
	t.Parallel()

	c := newTestCipher(t)
	const n = 10_000
	seen := make(map[[NonceSize]byte]struct{}, n)
	for i := range n {
		env, err := c.Encrypt("same plaintext")
		require.NoError(t, err)
		nonce := [NonceSize]byte(env.Nonce())
		_, dup := seen[nonce]
		require.False(t, dup, "nonce reused after %d encryptions", i)
		seen[nonce] = struct{}{}
	}
}

func TestCipher_WrongKey(t *testing.T) {
	t.Parallel()

	env, err := newTestCipher(t).Encrypt("secret")
	require.NoError(t, err)

	_, err = newTestCipher(t).Decrypt(env)
	require.Error(t, err)
	assert.Equal(t, KindCrypto, KindOf(err))
}

func TestCipher_ShortEnvelope(t *testing.T) {
	t.Parallel()

	c := newTestCipher(t)
	for _, size := range []int{0, 1, NonceSize - 1} {
		_, err := c.Decrypt(make([]byte, size))
		require.Error(t, err)
		assert.Equal(t, KindFormat, KindOf(err), "size %d", size)
	}

	// a bare nonce is long enough to parse but fails authentication
	_, err := c.Decrypt(make([]byte, NonceSize))
	assert.Equal(t, KindCrypto, KindOf(err))
}

func TestCipher_InvalidUTF8(t *testing.T) {
	t.Parallel()

	hexKey, err := GenerateKey()
	require.NoError(t, err)
	key, err := ParseKey(hexKey)
	require.NoError(t, err)

	block, err := aes.NewCipher(key[:])
	require.NoError(t, err)
	gcm, err := cipher.NewGCM(block)
	require.NoError(t, err)
	nonce := make([]byte, NonceSize)
	env := gcm.Seal(nonce, nonce, []byte{0xff, 0xfe, 0xfd}, nil)

	c := NewCipher(StaticKey{key: key})
	_, err = c.Decrypt(env)
	require.Error(t, err)
	assert.Equal(t, KindEncoding, KindOf(err))
}

func TestCipher_KeyUnavailable(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	c := NewCipher(KeyFunc(func() (Key, error) { return Key{}, boom }))

	_, err := c.Encrypt("hello")
	require.ErrorIs(t, err, boom)
	assert.Equal(t, KindCrypto, KindOf(err))

	_, err = c.Decrypt(make([]byte, 32))
	require.ErrorIs(t, err, boom)
	assert.Equal(t, KindCrypto, KindOf(err))
}

func TestCipher_RandomSourceFailure(t *testing.T) {
	t.Parallel()

	c := newTestCipher(t)
	c.rand = iotest.ErrReader(errors.New("entropy exhausted"))

	env, err := c.Encrypt("hello")
	require.Error(t, err)
	assert.Nil(t, env)
	assert.Equal(t, KindCrypto, KindOf(err))
}

func TestEnvelope_Accessors(t *testing.T) {
	t.Parallel()

	env := Envelope([]byte("0123456789abPAYLOAD"))
	assert.Equal(t, []byte("0123456789ab"), env.Nonce())
	assert.Equal(t, []byte("PAYLOAD"), env.Ciphertext())

	short := Envelope([]byte("short"))
	assert.Nil(t, short.Nonce())
	assert.Nil(t, short.Ciphertext())
}
