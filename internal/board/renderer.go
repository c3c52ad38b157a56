package board

import (
	"context"

	"connectrpc.com/connect"

	"github.com/stolasapp/whisper/internal/content"
)

// Renderer is a [Service] decorator that fills in [Message.HTML] when a
// listing asks for it.
type Renderer struct {
	Service
}

// NewRenderer wraps inner.
func NewRenderer(inner Service) Renderer {
	return Renderer{Service: inner}
}

// ListMessages satisfies [Service].
func (r Renderer) ListMessages(ctx context.Context, req ListMessagesRequest) (ListMessagesResponse, error) {
	res, err := r.Service.ListMessages(ctx, req)
	if err != nil || !req.HTML {
		return res, err
	}
	for i := range res.Messages {
		if res.Messages[i].HTML, err = content.RenderMessage(res.Messages[i].Text); err != nil {
			return ListMessagesResponse{}, connect.NewError(connect.CodeInternal, err)
		}
	}
	return res, nil
}

var _ Service = Renderer{}
