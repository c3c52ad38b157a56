package sec

import (
	"encoding/base64"
	"log/slog"
	"strings"
	"unicode/utf8"
)

const basicScheme = "Basic "

// Credential is a username/password pair decoded from a single request. It
// must never be persisted or logged.
type Credential struct {
	Username string
	Password string
}

// LogValue satisfies [slog.LogValuer], omitting the password.
func (c Credential) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("username", c.Username),
		slog.String("password", "[REDACTED]"),
	)
}

// DecodeBasicAuth parses the value of an HTTP Authorization header using the
// Basic scheme. An empty header is treated as absent. Empty usernames and
// passwords are accepted; rejecting them is up to the caller.
func DecodeBasicAuth(header string) (cred Credential, err error) {
	if header == "" {
		return cred, newError(KindUnauthorized, "missing header", nil)
	}
	encoded, ok := strings.CutPrefix(header, basicScheme)
	if !ok {
		return cred, newError(KindUnauthorized, "invalid scheme", nil)
	}
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return cred, newError(KindBadRequest, "invalid encoding", err)
	}
	if !utf8.Valid(decoded) {
		return cred, newError(KindBadRequest, "invalid encoding", nil)
	}
	cred.Username, cred.Password, ok = strings.Cut(string(decoded), ":")
	if !ok {
		return Credential{}, newError(KindBadRequest, "malformed credentials", nil)
	}
	return cred, nil
}

// EncodeBasicAuth is the inverse of [DecodeBasicAuth], producing a complete
// header value.
func EncodeBasicAuth(username, password string) string {
	return basicScheme + base64.StdEncoding.EncodeToString([]byte(username+":"+password))
}
