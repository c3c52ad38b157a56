package sec

import (
	"errors"

	"connectrpc.com/connect"
)

// Kind classifies the failures produced by this package.
type Kind uint8

// Error kinds.
const (
	KindUnknown Kind = iota
	// KindUnauthorized covers missing or invalid credentials, unknown
	// usernames and wrong passwords.
	KindUnauthorized
	// KindBadRequest covers malformed Authorization headers.
	KindBadRequest
	// KindForbidden covers well-formed but non-matching operator credentials.
	KindForbidden
	// KindCrypto covers AEAD failures, including tag verification on decrypt.
	KindCrypto
	// KindFormat covers envelopes shorter than the nonce.
	KindFormat
	// KindConfiguration covers missing or malformed keys and operator secrets.
	KindConfiguration
	// KindEncoding covers decrypted payloads that are not valid UTF-8.
	KindEncoding
	// KindHashing covers bcrypt failures other than a password mismatch.
	KindHashing
)

var kindNames = [...]string{
	KindUnknown:       "unknown",
	KindUnauthorized:  "unauthorized",
	KindBadRequest:    "bad request",
	KindForbidden:     "forbidden",
	KindCrypto:        "crypto",
	KindFormat:        "format",
	KindConfiguration: "configuration",
	KindEncoding:      "encoding",
	KindHashing:       "hashing",
}

// String satisfies [fmt.Stringer].
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return kindNames[KindUnknown]
}

// Code maps the kind to the ConnectRPC code the web layer responds with.
func (k Kind) Code() connect.Code {
	switch k {
	case KindUnauthorized:
		return connect.CodeUnauthenticated
	case KindBadRequest:
		return connect.CodeInvalidArgument
	case KindForbidden:
		return connect.CodePermissionDenied
	default:
		return connect.CodeInternal
	}
}

// Error is the error type returned by this package. The message is safe to
// show to callers; the underlying cause is only reachable via [errors.Unwrap].
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func newError(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, cause: cause}
}

// Error satisfies [error].
func (e *Error) Error() string { return e.Message }

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error { return e.cause }

// KindOf returns the [Kind] of err, or [KindUnknown] if err was not produced
// by this package.
func KindOf(err error) Kind {
	var secErr *Error
	if errors.As(err, &secErr) {
		return secErr.Kind
	}
	return KindUnknown
}

// ConnectError converts err into a ConnectRPC error whose message is only the
// public message. Errors not produced by this package become opaque internal
// errors.
func ConnectError(err error) *connect.Error {
	var secErr *Error
	if !errors.As(err, &secErr) {
		return connect.NewError(connect.CodeInternal, errors.New("internal error"))
	}
	return connect.NewError(secErr.Kind.Code(), secErr)
}

// ConfigurationError returns a [KindConfiguration] error with the given
// message.
func ConfigurationError(msg string) error {
	return newError(KindConfiguration, msg, nil)
}
