package sec

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKey(t *testing.T) {
	t.Parallel()

	valid := strings.Repeat("ab", KeySize)

	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{name: "valid", input: valid},
		{name: "valid uppercase", input: strings.ToUpper(valid)},
		{name: "empty", input: "", wantErr: "encryption key is not set"},
		{name: "not hex", input: strings.Repeat("zz", KeySize), wantErr: "encryption key is not valid hex"},
		{name: "odd length", input: valid[:63], wantErr: "encryption key is not valid hex"},
		{
			name:    "31 bytes",
			input:   valid[:62],
			wantErr: "encryption key must be 32 bytes (64 hex characters), got 31 bytes",
		},
		{
			name:    "33 bytes",
			input:   valid + "ab",
			wantErr: "encryption key must be 32 bytes (64 hex characters), got 33 bytes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			key, err := ParseKey(tt.input)
			if tt.wantErr != "" {
				require.EqualError(t, err, tt.wantErr)
				assert.Equal(t, KindConfiguration, KindOf(err))
				assert.Equal(t, Key{}, key)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, strings.ToLower(tt.input), hex.EncodeToString(key[:]))
		})
	}
}

func TestGenerateKey(t *testing.T) {
	t.Parallel()

	first, err := GenerateKey()
	require.NoError(t, err)
	assert.Len(t, first, 2*KeySize)

	_, err = ParseKey(first)
	require.NoError(t, err)

	second, err := GenerateKey()
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestLoadKey(t *testing.T) {
	t.Parallel()

	hexKey := strings.Repeat("01", KeySize)
	provider, err := LoadKey(hexKey)
	require.NoError(t, err)

	key, err := provider.EncryptionKey()
	require.NoError(t, err)
	assert.Equal(t, hexKey, hex.EncodeToString(key[:]))

	_, err = LoadKey("abc")
	assert.Equal(t, KindConfiguration, KindOf(err))
}

func TestKey_LogValue(t *testing.T) {
	t.Parallel()

	key, err := ParseKey(strings.Repeat("ff", KeySize))
	require.NoError(t, err)

	var buf strings.Builder
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	logger.Info("loaded", "key", key)
	assert.Contains(t, buf.String(), "[REDACTED]")
	assert.NotContains(t, fmt.Sprint(key.LogValue()), "ff")
}
