package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
)

// AuditEntry captures who changed what, when, and from where. Entries are
// produced for every mutating request under /api/v1/.
type AuditEntry struct {
	UserID    string
	UserRole  string
	Action    string // create, update, delete
	Path      string
	Method    string
	IPAddress string
	RequestID string
	Status    int
	Timestamp time.Time
}

// AuditRecorder persists audit entries. Decoupling the middleware from the
// storage lets tests provide a mock implementation.
type AuditRecorder interface {
	RecordAction(entry AuditEntry) error
}

// AuditRecorderFunc is a function adapter for AuditRecorder.
type AuditRecorderFunc func(entry AuditEntry) error

func (f AuditRecorderFunc) RecordAction(entry AuditEntry) error {
	return f(entry)
}

// Audit returns middleware that records an audit trail for mutating requests:
// bookings, roster changes, record edits, status transitions. Read-only
// requests pass through unrecorded.
//
// If no AuditRecorder is provided, entries are emitted as structured logs only.
func Audit(logger zerolog.Logger, recorders ...AuditRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			action := methodToAction(req.Method)
			if action == "" || !strings.HasPrefix(req.URL.Path, "/api/v1/") {
				return next(c)
			}

			// Execute the handler first so we capture the response status
			err := next(c)

			entry := AuditEntry{
				Action:    action,
				Path:      req.URL.Path,
				Method:    req.Method,
				IPAddress: c.RealIP(),
				Status:    c.Response().Status,
				Timestamp: time.Now().UTC(),
			}

			ctx := req.Context()
			if id := auth.UserIDFromContext(ctx); id.String() != "00000000-0000-0000-0000-000000000000" {
				entry.UserID = id.String()
			}
			entry.UserRole = auth.RoleFromContext(ctx)

			if rid, ok := c.Get("request_id").(string); ok {
				entry.RequestID = rid
			}

			if len(recorders) > 0 && recorders[0] != nil {
				if recErr := recorders[0].RecordAction(entry); recErr != nil {
					logger.Error().Err(recErr).
						Str("request_id", entry.RequestID).
						Msg("failed to record audit entry")
				}
			}

			logger.Info().
				Str("type", "audit").
				Str("request_id", entry.RequestID).
				Str("user_id", entry.UserID).
				Str("user_role", entry.UserRole).
				Str("action", entry.Action).
				Str("method", entry.Method).
				Str("path", entry.Path).
				Str("remote_ip", entry.IPAddress).
				Int("status", entry.Status).
				Msg("audit")

			return err
		}
	}
}

func methodToAction(method string) string {
	switch method {
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	default:
		return ""
	}
}
