package db

import (
	"context"
	"database/sql"
	"math"
	"strconv"
	"strings"
	"time"
)

// DBTX is the subset of [sql.DB] and [sql.Tx] used by [Queries].
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries executes the statements used by the storage package. Statements are
// written with ? placeholders and rebound for the target driver.
type Queries struct {
	db     DBTX
	driver Driver
}

// New returns Queries over db for the given driver.
func New(db DBTX, driver Driver) *Queries {
	return &Queries{db: db, driver: driver}
}

func (q *Queries) rebind(query string) string {
	if q.driver != DriverPostgres {
		return query
	}
	var (
		out strings.Builder
		n   int
	)
	out.Grow(len(query) + 8) //nolint:mnd // room for a few multi-digit placeholders
	for _, r := range query {
		if r != '?' {
			out.WriteRune(r)
			continue
		}
		n++
		out.WriteByte('$')
		out.WriteString(strconv.Itoa(n))
	}
	return out.String()
}

func fromUnixMicro(us int64) time.Time {
	return time.UnixMicro(us).UTC()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (user User, err error) {
	var created int64
	err = row.Scan(&user.ID, &user.Name, &user.Role, &user.PasswordHash, &created)
	user.CreatedAt = fromUnixMicro(created)
	return user, err
}

func scanMessage(row scanner) (msg Message, err error) {
	var created int64
	err = row.Scan(&msg.ID, &msg.UserID, &msg.Username, &msg.Ciphertext, &created)
	msg.CreatedAt = fromUnixMicro(created)
	return msg, err
}

const userColumns = `id, name, role, password_hash, created_at`

const getUser = `SELECT ` + userColumns + ` FROM users WHERE id = ?`

// GetUser returns the user with the given ID or [sql.ErrNoRows].
func (q *Queries) GetUser(ctx context.Context, id uint64) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, q.rebind(getUser), id))
}

const getUserByName = `SELECT ` + userColumns + ` FROM users WHERE name = ?`

// GetUserByName returns the user with the given name or [sql.ErrNoRows].
func (q *Queries) GetUserByName(ctx context.Context, name string) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, q.rebind(getUserByName), name))
}

const getUsers = `SELECT ` + userColumns + ` FROM users
WHERE name > ?
ORDER BY name
LIMIT ?`

// GetUsersParams are the parameters for [Queries.GetUsers].
type GetUsersParams struct {
	AfterName string
	Limit     int64
}

// GetUsers lists users ordered by name, starting after AfterName.
func (q *Queries) GetUsers(ctx context.Context, arg GetUsersParams) ([]User, error) {
	rows, err := q.db.QueryContext(ctx, q.rebind(getUsers), arg.AfterName, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var users []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

const upsertUser = `INSERT INTO users (id, name, role, password_hash, created_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    name = excluded.name,
    role = excluded.role,
    password_hash = excluded.password_hash
RETURNING ` + userColumns

// UpsertUser creates the user or, if the ID exists, replaces its name, role
// and password hash. CreatedAt is only written on insert.
func (q *Queries) UpsertUser(ctx context.Context, arg User) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, q.rebind(upsertUser),
		arg.ID, arg.Name, arg.Role, arg.PasswordHash, arg.CreatedAt.UnixMicro(),
	))
}

const deleteUser = `DELETE FROM users WHERE id = ?`

// DeleteUser removes a user; their messages are removed by cascade.
func (q *Queries) DeleteUser(ctx context.Context, id uint64) error {
	_, err := q.db.ExecContext(ctx, q.rebind(deleteUser), id)
	return err
}

const insertMessage = `INSERT INTO messages (id, user_id, username, ciphertext, created_at)
VALUES (?, ?, ?, ?, ?)`

// InsertMessage stores an encrypted message.
func (q *Queries) InsertMessage(ctx context.Context, arg Message) error {
	_, err := q.db.ExecContext(ctx, q.rebind(insertMessage),
		arg.ID, arg.UserID, arg.Username, arg.Ciphertext, arg.CreatedAt.UnixMicro(),
	)
	return err
}

const getMessages = `SELECT id, user_id, username, ciphertext, created_at FROM messages
WHERE id < ?
ORDER BY id DESC
LIMIT ?`

// GetMessagesParams are the parameters for [Queries.GetMessages]. A zero
// BeforeID starts from the newest message.
type GetMessagesParams struct {
	BeforeID uint64
	Limit    int64
}

// GetMessages lists messages newest first. IDs are time ordered, so ordering
// by ID matches creation order.
func (q *Queries) GetMessages(ctx context.Context, arg GetMessagesParams) ([]Message, error) {
	before := arg.BeforeID
	if before == 0 {
		before = math.MaxInt64
	}
	rows, err := q.db.QueryContext(ctx, q.rebind(getMessages), before, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var msgs []Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}
