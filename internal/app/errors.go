package app

import (
	"errors"
	"log/slog"
	"net/http"

	"connectrpc.com/connect"
	"github.com/labstack/echo/v4"

	"github.com/stolasapp/whisper/internal/sec"
)

// errorHandler writes every error as a Connect error body, so failures from
// the auth middleware and from handlers share one shape.
func errorHandler(logger *slog.Logger, writer *connect.ErrorWriter) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		connErr := toConnectError(err)
		if connErr.Code() == connect.CodeInternal || connErr.Code() == connect.CodeUnknown {
			logger.ErrorContext(c.Request().Context(), "request failed",
				slog.String("method", c.Request().Method),
				slog.String("route", c.Path()),
				slog.Any("error", err),
			)
		}
		if werr := writer.Write(c.Response(), c.Request(), connErr); werr != nil {
			logger.WarnContext(c.Request().Context(), "failed to write error response", slog.Any("error", werr))
		}
	}
}

// toConnectError converts an error to a [connect.Error] with a message that is
// safe to return to clients. Echo HTTP errors are mapped from their status;
// unrecognized errors become opaque internal errors.
func toConnectError(err error) *connect.Error {
	var connErr *connect.Error
	if errors.As(err, &connErr) {
		switch connErr.Code() {
		case connect.CodeInternal, connect.CodeUnknown:
			// only messages from sec errors are safe to expose
			return sec.ConnectError(connErr)
		default:
			return connErr
		}
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		msg, ok := httpErr.Message.(string)
		if !ok {
			msg = http.StatusText(httpErr.Code)
		}
		return connect.NewError(httpStatusToConnectCode(httpErr.Code), errors.New(msg))
	}

	return sec.ConnectError(err)
}

// httpStatusToConnectCode maps HTTP status codes to ConnectRPC error codes.
// See: https://connectrpc.com/docs/protocol/#error-codes
func httpStatusToConnectCode(status int) connect.Code {
	switch status {
	case http.StatusBadRequest, http.StatusUnsupportedMediaType:
		return connect.CodeInvalidArgument
	case http.StatusUnauthorized:
		return connect.CodeUnauthenticated
	case http.StatusForbidden:
		return connect.CodePermissionDenied
	case http.StatusNotFound:
		return connect.CodeNotFound
	case http.StatusMethodNotAllowed, http.StatusNotImplemented:
		return connect.CodeUnimplemented
	case http.StatusRequestTimeout:
		return connect.CodeDeadlineExceeded
	case http.StatusConflict:
		return connect.CodeAlreadyExists
	case http.StatusRequestEntityTooLarge, http.StatusTooManyRequests:
		return connect.CodeResourceExhausted
	case http.StatusServiceUnavailable:
		return connect.CodeUnavailable
	default:
		return connect.CodeInternal
	}
}
