// Package storage provides the state management for users and messages.
package storage

import (
	"context"

	"github.com/stolasapp/whisper/internal/storage/db"
)

const (
	// ErrNotFound is returned when a user cannot be found.
	ErrNotFound Error = "not found"
	// ErrAlreadyExists is returned if a unique user already exists.
	ErrAlreadyExists Error = "already exists"
	// ErrInvalidUsername is returned when a username fails validation.
	ErrInvalidUsername Error = "username must be 3-64 characters, alphanumeric and underscores only"
	// ErrInternal is returned for any other type of error.
	ErrInternal Error = "internal error"
)

// Error is an error type returned by the storage implementation.
type Error string

// Error satisfies [error].
func (e Error) Error() string { return string(e) }

// Users are the methods on a storage implementation that are responsible for
// accessing and modifying users.
type Users interface {
	// ListUsers returns the users in a list, paginated by the given name (if
	// provided) up to the given limit of records.
	ListUsers(ctx context.Context, afterName string, limit int32) ([]db.User, error)
	// GetUser returns a single user with the specified ID. An [ErrNotFound] is
	// returned if the user ID does not exist.
	GetUser(ctx context.Context, userID uint64) (db.User, error)
	// GetUserByName returns a single user with the specified name. An
	// [ErrNotFound] is returned if the user name does not exist.
	GetUserByName(ctx context.Context, name string) (db.User, error)
	// UpsertUser creates or updates the user. This is a full PUT-style upsert.
	// A zero ID creates a new user. An [ErrAlreadyExists] error is returned if
	// the username is already in use by another user. The stored user is
	// returned.
	UpsertUser(ctx context.Context, user db.User) (db.User, error)
	// DeleteUser removes a user and all their messages. Note that this is a
	// hard delete; data is not recoverable.
	DeleteUser(ctx context.Context, userID uint64) error
}

// Messages are the methods on a storage implementation that are responsible
// for accessing and modifying messages. Messages are only ever handled in
// their encrypted form.
type Messages interface {
	// ListMessages returns up to limit messages older than beforeID, newest
	// first. A zero beforeID starts from the newest message.
	ListMessages(ctx context.Context, beforeID uint64, limit int32) ([]db.Message, error)
	// CreateMessage stores a new message, assigning its ID and creation time.
	CreateMessage(ctx context.Context, msg db.Message) (db.Message, error)
}

// Store is the combination interface for [Users] and [Messages].
type Store interface {
	Users
	Messages
	// Close releases any resources held by the store. An error is returned if
	// the store cannot be cleanly closed.
	Close() error
}
