package storage

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"math/rand/v2"
	"regexp"
	"time"

	"github.com/influxdata/influxdb/pkg/snowflake"

	"github.com/stolasapp/whisper/internal/storage/db"
)

// Username validation constraints.
const (
	minUsernameLen = 3
	maxUsernameLen = 64
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// validateUsername validates that a username meets the requirements:
// 3-64 characters, alphanumeric and underscores only.
func validateUsername(name string) bool {
	return len(name) >= minUsernameLen &&
		len(name) <= maxUsernameLen &&
		usernameRegex.MatchString(name)
}

// DB is a [Store] backed by a SQLite or Postgres database.
type DB struct {
	ids     *snowflake.Generator
	db      *sql.DB
	queries *db.Queries
	now     func() time.Time
}

// NewDB opens the database identified by driver and dsn and migrates it.
func NewDB(ctx context.Context, logger *slog.Logger, driver db.Driver, dsn string) (*DB, error) {
	handle, err := db.Open(ctx, logger, driver, dsn)
	if err != nil {
		return nil, err
	}
	return &DB{
		ids:     snowflake.New(rand.IntN(1023)), //nolint:gosec,mnd // this isn't for crypto
		db:      handle,
		queries: db.New(handle, driver),
		now:     time.Now,
	}, nil
}

// timestamp returns the current time at the precision stored in the database.
func (d *DB) timestamp() time.Time {
	return time.UnixMicro(d.now().UnixMicro()).UTC()
}

// Close satisfies the [Store] interface.
func (d *DB) Close() error {
	return d.db.Close()
}

// ListUsers satisfies the [Users] interface.
func (d *DB) ListUsers(ctx context.Context, afterName string, limit int32) ([]db.User, error) {
	return d.queries.GetUsers(ctx, db.GetUsersParams{
		AfterName: afterName,
		Limit:     int64(limit),
	})
}

// GetUser satisfies the [Users] interface.
func (d *DB) GetUser(ctx context.Context, userID uint64) (db.User, error) {
	user, err := d.queries.GetUser(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return user, ErrNotFound
	}
	return user, err
}

// GetUserByName satisfies the [Users] interface.
func (d *DB) GetUserByName(ctx context.Context, name string) (db.User, error) {
	user, err := d.queries.GetUserByName(ctx, name)
	if errors.Is(err, sql.ErrNoRows) {
		return user, ErrNotFound
	}
	return user, err
}

// UpsertUser satisfies the [Users] interface.
func (d *DB) UpsertUser(ctx context.Context, user db.User) (db.User, error) {
	if !validateUsername(user.Name) {
		return db.User{}, ErrInvalidUsername
	}
	switch existing, err := d.GetUserByName(ctx, user.Name); {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		return db.User{}, err
	case existing.ID != user.ID:
		return db.User{}, ErrAlreadyExists
	}

	if user.ID == 0 {
		user.ID = d.ids.Next()
	}
	if user.Role == "" {
		user.Role = db.RoleUser
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = d.timestamp()
	}
	return d.queries.UpsertUser(ctx, user)
}

// DeleteUser satisfies the [Users] interface.
func (d *DB) DeleteUser(ctx context.Context, userID uint64) error {
	return d.queries.DeleteUser(ctx, userID)
}

// ListMessages satisfies the [Messages] interface.
func (d *DB) ListMessages(ctx context.Context, beforeID uint64, limit int32) ([]db.Message, error) {
	return d.queries.GetMessages(ctx, db.GetMessagesParams{
		BeforeID: beforeID,
		Limit:    int64(limit),
	})
}

// CreateMessage satisfies the [Messages] interface.
func (d *DB) CreateMessage(ctx context.Context, msg db.Message) (db.Message, error) {
	msg.ID = d.ids.Next()
	msg.CreatedAt = d.timestamp()
	if err := d.queries.InsertMessage(ctx, msg); err != nil {
		return db.Message{}, err
	}
	return msg, nil
}

var _ Store = (*DB)(nil)
