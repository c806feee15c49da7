package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func paramsFor(t *testing.T, query string) Params {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?"+query, nil)
	rec := httptest.NewRecorder()
	return FromContext(e.NewContext(req, rec))
}

func TestFromContext_Defaults(t *testing.T) {
	p := paramsFor(t, "")
	if p.Page != DefaultPage || p.Limit != DefaultLimit {
		t.Errorf("got %+v, want page=%d limit=%d", p, DefaultPage, DefaultLimit)
	}
}

func TestFromContext_Explicit(t *testing.T) {
	p := paramsFor(t, "page=3&limit=25")
	if p.Page != 3 || p.Limit != 25 {
		t.Errorf("got %+v", p)
	}
	if p.Offset() != 50 {
		t.Errorf("Offset() = %d, want 50", p.Offset())
	}
}

func TestFromContext_ClampsLimit(t *testing.T) {
	p := paramsFor(t, "limit=500")
	if p.Limit != MaxLimit {
		t.Errorf("limit = %d, want %d", p.Limit, MaxLimit)
	}
}

func TestFromContext_RejectsGarbage(t *testing.T) {
	p := paramsFor(t, "page=-2&limit=abc")
	if p.Page != DefaultPage || p.Limit != DefaultLimit {
		t.Errorf("got %+v, want defaults", p)
	}
}

func TestNewMeta_RoundsUpPages(t *testing.T) {
	m := NewMeta(Params{Page: 2, Limit: 10}, 21)
	if m.Pages != 3 {
		t.Errorf("pages = %d, want 3", m.Pages)
	}
	if m.Current != 2 || m.Total != 21 {
		t.Errorf("unexpected meta: %+v", m)
	}
}

func TestNewMeta_EmptySet(t *testing.T) {
	m := NewMeta(Params{Page: 1, Limit: 10}, 0)
	if m.Pages != 0 || m.Total != 0 {
		t.Errorf("unexpected meta: %+v", m)
	}
}
