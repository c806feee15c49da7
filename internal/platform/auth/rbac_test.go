package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/clinicdesk/clinicdesk/pkg/apperr"
)

func requestWithRole(t *testing.T, role string, mw echo.MiddlewareFunc) error {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if role != "" {
		ctx := context.WithValue(req.Context(), UserRoleKey, role)
		req = req.WithContext(ctx)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	return handler(c)
}

func TestRequireRole_Allows(t *testing.T) {
	if err := requestWithRole(t, "admin", RequireRole("admin")); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRequireRole_Denies(t *testing.T) {
	err := requestWithRole(t, "doctor", RequireRole("admin"))
	if err == nil {
		t.Fatal("expected error for wrong role")
	}
	if apperr.KindOf(err) != apperr.KindForbidden {
		t.Errorf("kind = %v, want forbidden", apperr.KindOf(err))
	}
}

func TestRequireRole_AdminDoesNotImplyDoctor(t *testing.T) {
	if err := requestWithRole(t, "admin", RequireRole("doctor")); err == nil {
		t.Error("admin should not satisfy doctor-only routes")
	}
}

func TestRequireRole_NoRole(t *testing.T) {
	if err := requestWithRole(t, "", RequireRole("admin", "doctor")); err == nil {
		t.Error("expected error when no role is present")
	}
}

func TestRequireRole_MultipleRoles(t *testing.T) {
	mw := RequireRole("admin", "doctor")
	if err := requestWithRole(t, "doctor", mw); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := requestWithRole(t, "admin", mw); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
