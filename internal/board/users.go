package board

import (
	"context"
	"errors"

	"connectrpc.com/connect"
	"golang.org/x/crypto/bcrypt"

	"github.com/stolasapp/whisper/internal/sec"
	"github.com/stolasapp/whisper/internal/storage"
	"github.com/stolasapp/whisper/internal/storage/db"
)

// Users is a [Service] decorator to handle account creation.
type Users struct {
	Service

	store  storage.Users
	hasher *sec.Hasher
}

// NewUsers wraps inner and uses the provided store to handle user operations.
// Password hashing runs on hasher's worker pool.
func NewUsers(inner Service, store storage.Users, hasher *sec.Hasher) Users {
	return Users{
		Service: inner,
		store:   store,
		hasher:  hasher,
	}
}

// CreateUser satisfies [Service].
func (u Users) CreateUser(ctx context.Context, req CreateUserRequest) (User, error) {
	hash, err := u.hasher.Hash(ctx, req.Password)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return User{}, connect.NewError(connect.CodeInvalidArgument, errors.New(err.Error()))
	} else if err != nil {
		return User{}, sec.ConnectError(err)
	}

	user := db.User{
		Name:         req.Username,
		Role:         db.RoleUser,
		PasswordHash: hash,
	}
	if req.Admin {
		user.Role = db.RoleAdmin
	}
	user, err = u.store.UpsertUser(ctx, user)
	switch {
	case errors.Is(err, storage.ErrAlreadyExists):
		return User{}, connect.NewError(connect.CodeAlreadyExists, errors.New("username already exists"))
	case errors.Is(err, storage.ErrInvalidUsername):
		return User{}, connect.NewError(connect.CodeInvalidArgument, err)
	case err != nil:
		return User{}, connect.NewError(connect.CodeInternal, err)
	}
	return toUser(user), nil
}

var _ Service = Users{}
