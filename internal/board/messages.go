package board

import (
	"context"

	"connectrpc.com/connect"

	"github.com/stolasapp/whisper/internal/sec"
	"github.com/stolasapp/whisper/internal/storage"
	"github.com/stolasapp/whisper/internal/storage/db"
)

// Messages is a [Service] decorator that seals message text on the way into
// storage and opens it on the way out.
type Messages struct {
	Service

	store  storage.Messages
	cipher *sec.Cipher
}

// NewMessages wraps inner, persisting messages to store encrypted by cipher.
func NewMessages(inner Service, store storage.Messages, cipher *sec.Cipher) Messages {
	return Messages{
		Service: inner,
		store:   store,
		cipher:  cipher,
	}
}

// PostMessage satisfies [Service].
func (m Messages) PostMessage(ctx context.Context, req PostMessageRequest) (Message, error) {
	author := sec.GetAuthenticatedUser(ctx)
	if author.ID == 0 {
		return Message{}, connect.NewError(connect.CodeUnauthenticated, nil)
	}

	envelope, err := m.cipher.Encrypt(req.Text)
	if err != nil {
		return Message{}, sec.ConnectError(err)
	}
	stored, err := m.store.CreateMessage(ctx, db.Message{
		UserID:     author.ID,
		Username:   author.Name,
		Ciphertext: envelope,
	})
	if err != nil {
		return Message{}, connect.NewError(connect.CodeInternal, err)
	}
	return Message{
		ID:        stored.ID,
		UserID:    stored.UserID,
		Username:  stored.Username,
		Text:      req.Text,
		CreatedAt: stored.CreatedAt,
	}, nil
}

// ListMessages satisfies [Service]. A single message that fails to decrypt
// fails the whole listing.
func (m Messages) ListMessages(ctx context.Context, req ListMessagesRequest) (ListMessagesResponse, error) {
	rows, err := m.store.ListMessages(ctx, req.beforeID, req.Limit)
	if err != nil {
		return ListMessagesResponse{}, connect.NewError(connect.CodeInternal, err)
	}

	res := ListMessagesResponse{
		Messages: make([]Message, 0, len(rows)),
	}
	for _, row := range rows {
		text, err := m.cipher.Decrypt(row.Ciphertext)
		if err != nil {
			return ListMessagesResponse{}, sec.ConnectError(err)
		}
		res.Messages = append(res.Messages, Message{
			ID:        row.ID,
			UserID:    row.UserID,
			Username:  row.Username,
			Text:      text,
			CreatedAt: row.CreatedAt,
		})
	}
	return res, nil
}

var _ Service = Messages{}
