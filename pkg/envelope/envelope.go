// Package envelope renders the uniform JSON response shape used by every
// endpoint: {"success": bool, "message": ..., "data": ..., "error": ...}.
package envelope

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinicdesk/clinicdesk/pkg/apperr"
)

// Envelope is the top-level response body.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Fields  []string    `json:"fields,omitempty"`
}

// OK writes a success envelope with the given status.
func OK(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, Envelope{Success: true, Message: message, Data: data})
}

// Fail writes a failure envelope. Handlers normally return errors instead
// and let the central error handler call this.
func Fail(c echo.Context, status int, message string) error {
	return c.JSON(status, Envelope{Success: false, Message: message})
}

// ErrorHandler builds the echo.HTTPErrorHandler that maps apperr kinds to
// status codes and renders the failure envelope. Internal errors are logged
// with the request id; their underlying cause is attached to the body only
// in non-production environments.
func ErrorHandler(logger zerolog.Logger, exposeInternal bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		body := Envelope{Success: false, Message: "Internal server error"}

		var ae *apperr.Error
		var he *echo.HTTPError
		switch {
		case errors.As(err, &ae):
			status = apperr.Status(ae)
			body.Message = ae.Message
			body.Fields = ae.Fields
			if ae.Kind == apperr.KindInternal {
				logInternal(logger, c, err)
				if exposeInternal && ae.Err != nil {
					body.Error = ae.Err.Error()
				}
			}
		case errors.As(err, &he):
			status = he.Code
			if msg, ok := he.Message.(string); ok {
				body.Message = msg
			} else {
				body.Message = http.StatusText(he.Code)
			}
		default:
			logInternal(logger, c, err)
			if exposeInternal {
				body.Error = err.Error()
			}
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, body)
	}
}

func logInternal(logger zerolog.Logger, c echo.Context, err error) {
	reqID, _ := c.Get("request_id").(string)
	logger.Error().
		Err(err).
		Str("request_id", reqID).
		Str("method", c.Request().Method).
		Str("path", c.Request().URL.Path).
		Msg("request failed")
}
