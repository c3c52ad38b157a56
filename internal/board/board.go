// Package board implements the encrypted message board service.
//
// The service uses a decorator (middleware) pattern where each layer wraps the
// previous one, adding specific functionality. Request flow is outside-in;
// response flow is inside-out.
//
// # Decorator Chain
//
// The chain is constructed innermost-first in [Default]:
//
//	Request → Validator → Renderer → Paginator → Users → Messages
//	                                                        ↓
//	Response ← Validator ← Renderer ← Paginator ← Users ← Messages
//
// Each decorator's role:
//
//   - Messages: Encrypts new messages and decrypts stored ones
//   - Users: Hashes passwords and creates accounts
//   - Paginator: Resolves page tokens and clamps page sizes
//   - Renderer: Renders message Markdown to sanitized HTML on request
//   - Validator: Rejects malformed requests before any processing
//
// Message plaintext only exists between the Messages layer and the caller;
// storage only ever sees [sec.Envelope] bytes.
//
// Every error returned by a [Service] is a [*connect.Error].
package board

import (
	"context"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/stolasapp/whisper/internal/sec"
	"github.com/stolasapp/whisper/internal/storage"
	"github.com/stolasapp/whisper/internal/storage/db"
)

// Service is the message board API.
type Service interface {
	// CreateUser registers a new account.
	CreateUser(ctx context.Context, req CreateUserRequest) (User, error)
	// PostMessage stores a message authored by the authenticated user.
	PostMessage(ctx context.Context, req PostMessageRequest) (Message, error)
	// ListMessages returns messages newest first.
	ListMessages(ctx context.Context, req ListMessagesRequest) (ListMessagesResponse, error)
}

// CreateUserRequest is the input to [Service.CreateUser].
type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	// Admin grants the new user the admin role.
	Admin bool `json:"-"`
}

// User is the public view of an account.
type User struct {
	ID       uint64 `json:"id,string"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

func toUser(user db.User) User {
	return User{
		ID:       user.ID,
		Username: user.Name,
		Role:     user.Role,
	}
}

// PostMessageRequest is the input to [Service.PostMessage]. The author is the
// authenticated user on the context.
type PostMessageRequest struct {
	Text string `json:"message_text"`
}

// Message is a decrypted message.
type Message struct {
	ID        uint64    `json:"id,string"`
	UserID    uint64    `json:"user_id,string"`
	Username  string    `json:"username"`
	Text      string    `json:"message_text"`
	HTML      string    `json:"message_html,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ListMessagesRequest is the input to [Service.ListMessages].
type ListMessagesRequest struct {
	// Limit is the page size. Zero selects the configured maximum.
	Limit int32
	// PageToken continues a previous listing.
	PageToken string
	// HTML requests rendered message bodies.
	HTML bool

	// beforeID is resolved from PageToken by the [Paginator].
	beforeID uint64
}

// ListMessagesResponse is the output of [Service.ListMessages].
type ListMessagesResponse struct {
	Messages []Message
	// NextPageToken is empty on the last page.
	NextPageToken string
}

// Unimplemented is the innermost [Service]; every method fails with
// [connect.CodeUnimplemented].
type Unimplemented struct{}

// CreateUser satisfies [Service].
func (Unimplemented) CreateUser(context.Context, CreateUserRequest) (User, error) {
	return User{}, connect.NewError(connect.CodeUnimplemented, nil)
}

// PostMessage satisfies [Service].
func (Unimplemented) PostMessage(context.Context, PostMessageRequest) (Message, error) {
	return Message{}, connect.NewError(connect.CodeUnimplemented, nil)
}

// ListMessages satisfies [Service].
func (Unimplemented) ListMessages(context.Context, ListMessagesRequest) (ListMessagesResponse, error) {
	return ListMessagesResponse{}, connect.NewError(connect.CodeUnimplemented, nil)
}

// Default returns a fully configured service with the standard decorator
// chain. See package documentation for the chain order.
func Default(
	logger *slog.Logger,
	store storage.Store,
	hasher *sec.Hasher,
	cipher *sec.Cipher,
	maxPageSize int32,
) Service {
	var svc Service = Unimplemented{}
	svc = NewMessages(svc, store, cipher)
	svc = NewUsers(svc, store, hasher)
	svc = NewPaginator(svc, maxPageSize)
	svc = NewRenderer(svc)
	svc = NewValidator(svc, logger)
	return svc
}

var _ Service = Unimplemented{}
