package board

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"connectrpc.com/connect"
)

// maxPasswordBytes is the longest password bcrypt accepts.
const maxPasswordBytes = 72

// Validator is a [Service] decorator that rejects malformed requests with
// [connect.CodeInvalidArgument] before any processing occurs.
type Validator struct {
	Service

	logger *slog.Logger
}

// NewValidator wraps inner and validates all requests.
func NewValidator(inner Service, logger *slog.Logger) Validator {
	return Validator{
		Service: inner,
		logger:  logger,
	}
}

// CreateUser satisfies [Service].
func (v Validator) CreateUser(ctx context.Context, req CreateUserRequest) (User, error) {
	switch {
	case req.Username == "" || req.Password == "":
		return User{}, v.invalid(ctx, "CreateUser", "username and password are required")
	case len(req.Password) > maxPasswordBytes:
		return User{}, v.invalid(ctx, "CreateUser", "password must be at most 72 bytes")
	}
	return v.Service.CreateUser(ctx, req)
}

// PostMessage satisfies [Service].
func (v Validator) PostMessage(ctx context.Context, req PostMessageRequest) (Message, error) {
	if strings.TrimSpace(req.Text) == "" {
		return Message{}, v.invalid(ctx, "PostMessage", "message_text is required")
	}
	return v.Service.PostMessage(ctx, req)
}

// ListMessages satisfies [Service].
func (v Validator) ListMessages(ctx context.Context, req ListMessagesRequest) (ListMessagesResponse, error) {
	if req.Limit < 0 {
		return ListMessagesResponse{}, v.invalid(ctx, "ListMessages", "limit must not be negative")
	}
	return v.Service.ListMessages(ctx, req)
}

func (v Validator) invalid(ctx context.Context, method, msg string) error {
	v.logger.DebugContext(ctx, "invalid request",
		slog.String("method", method),
		slog.String("reason", msg),
	)
	return connect.NewError(connect.CodeInvalidArgument, errors.New(msg))
}

var _ Service = Validator{}
