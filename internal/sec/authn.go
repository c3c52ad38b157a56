package sec

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"connectrpc.com/authn"
	"connectrpc.com/connect"

	"github.com/stolasapp/whisper/internal/storage"
	"github.com/stolasapp/whisper/internal/storage/db"
)

// invalidCredentials is returned for both unknown users and wrong passwords so
// that responses do not reveal which accounts exist.
const invalidCredentials = "invalid username or password"

// UserLookup resolves a user by name. It must return [storage.ErrNotFound] for
// unknown names.
type UserLookup interface {
	GetUserByName(ctx context.Context, name string) (db.User, error)
}

// Authenticate resolves the user identified by the Basic credentials in the
// Authorization header value.
func Authenticate(ctx context.Context, header string, users UserLookup, hasher *Hasher) (db.User, error) {
	cred, err := DecodeBasicAuth(header)
	if err != nil {
		return db.User{}, err
	}

	user, err := users.GetUserByName(ctx, cred.Username)
	if errors.Is(err, storage.ErrNotFound) {
		return db.User{}, newError(KindUnauthorized, invalidCredentials, nil)
	} else if err != nil {
		return db.User{}, fmt.Errorf("failed to look up user: %w", err)
	}

	ok, err := hasher.Verify(ctx, cred.Password, user.PasswordHash)
	if err != nil {
		return db.User{}, err
	} else if !ok {
		return db.User{}, newError(KindUnauthorized, invalidCredentials, nil)
	}
	return user, nil
}

// AuthorizeAdmin checks the Basic credentials in the Authorization header
// value against the configured operator username and password.
//
// The comparison is a plain string equality and is not constant time.
func AuthorizeAdmin(header, adminUsername, adminPassword string) error {
	cred, err := DecodeBasicAuth(header)
	if err != nil {
		return err
	}
	if cred.Username == adminUsername && cred.Password == adminPassword {
		return nil
	}
	return newError(KindForbidden, "not authorized", nil)
}

// Operator identifies a request authorized with the operator credentials.
type Operator struct {
	Name string
}

// NewUserAuthMiddleware returns a middleware that authenticates end users and
// stores the resolved [db.User] in the request context.
func NewUserAuthMiddleware(users UserLookup, hasher *Hasher, opts ...connect.HandlerOption) *authn.Middleware {
	return authn.NewMiddleware(func(ctx context.Context, req *http.Request) (any, error) {
		user, err := Authenticate(ctx, req.Header.Get("Authorization"), users, hasher)
		if err != nil {
			return nil, ConnectError(err)
		}
		return user, nil
	}, opts...)
}

// NewAdminAuthMiddleware returns a middleware that only admits requests
// carrying the operator credentials, storing an [Operator] in the request
// context.
func NewAdminAuthMiddleware(adminUsername, adminPassword string, opts ...connect.HandlerOption) *authn.Middleware {
	return authn.NewMiddleware(func(_ context.Context, req *http.Request) (any, error) {
		if err := AuthorizeAdmin(req.Header.Get("Authorization"), adminUsername, adminPassword); err != nil {
			return nil, ConnectError(err)
		}
		return Operator{Name: adminUsername}, nil
	}, opts...)
}

// GetAuthenticatedUser returns the user information for the authenticated user.
// Returns a zero-value User if the context has no authenticated user or if
// the stored value is not a User (should only happen if middleware is misconfigured).
func GetAuthenticatedUser(ctx context.Context) db.User {
	if user, ok := authn.GetInfo(ctx).(db.User); ok {
		return user
	}
	return db.User{}
}

// SetAuthenticatedUser sets the user information for an authenticated user. The
// authn.Middleware automatically injects this information; this function is
// provided as a convenience for testing.
func SetAuthenticatedUser(ctx context.Context, user db.User) context.Context {
	return authn.SetInfo(ctx, user)
}

// GetOperator reports whether the context was authorized with the operator
// credentials.
func GetOperator(ctx context.Context) (Operator, bool) {
	op, ok := authn.GetInfo(ctx).(Operator)
	return op, ok
}
