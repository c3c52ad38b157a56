package board

import (
	"context"
	"errors"

	"connectrpc.com/connect"

	"github.com/stolasapp/whisper/internal/pagination"
)

// messagesPageToken is the cursor carried by ListMessages page tokens.
type messagesPageToken struct {
	BeforeID uint64 `json:"before_id,string"`
}

// Validate satisfies [pagination.Cursor].
func (tkn *messagesPageToken) Validate() error {
	if tkn.BeforeID == 0 {
		return errors.New("before_id is required")
	}
	return nil
}

// Paginator is a [Service] decorator that resolves page tokens and bounds page
// sizes.
type Paginator struct {
	Service

	maxPageSize int32
}

// NewPaginator decorates inner, serving at most maxPageSize messages per page.
func NewPaginator(inner Service, maxPageSize int32) Paginator {
	return Paginator{
		Service:     inner,
		maxPageSize: maxPageSize,
	}
}

// ListMessages satisfies [Service].
func (p Paginator) ListMessages(ctx context.Context, req ListMessagesRequest) (ListMessagesResponse, error) {
	if req.PageToken != "" {
		var tkn messagesPageToken
		if err := pagination.FromToken(req.PageToken, &tkn); err != nil {
			return ListMessagesResponse{}, connect.NewError(connect.CodeInvalidArgument, err)
		}
		req.beforeID = tkn.BeforeID
	}

	size := req.Limit
	if size <= 0 || size > p.maxPageSize {
		size = p.maxPageSize
	}
	// fetch one extra to find out whether another page exists
	req.Limit = size + 1

	res, err := p.Service.ListMessages(ctx, req)
	if err != nil {
		return res, err
	}
	if len(res.Messages) <= int(size) {
		return res, nil
	}

	res.Messages = res.Messages[:size]
	res.NextPageToken, err = pagination.ToToken(&messagesPageToken{
		BeforeID: res.Messages[size-1].ID,
	})
	if err != nil {
		return ListMessagesResponse{}, connect.NewError(connect.CodeInternal, err)
	}
	return res, nil
}

var _ Service = Paginator{}
