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
	c := e.NewContext(req, httptest.NewRecorder())
	return FromContext(c)
}

func TestFromContextDefaultsUnbounded(t *testing.T) {
	p := paramsFor(t, "")
	if p.Bounded() {
		t.Errorf("params = %+v, want unbounded", p)
	}
	if p.Offset != 0 {
		t.Errorf("offset = %d, want 0", p.Offset)
	}
}

func TestFromContextReadsLimitAndOffset(t *testing.T) {
	p := paramsFor(t, "limit=25&offset=50")
	if p.Limit != 25 || p.Offset != 50 {
		t.Errorf("params = %+v", p)
	}
	if !p.Bounded() {
		t.Error("expected bounded params")
	}
}

func TestFromContextClampsLimit(t *testing.T) {
	p := paramsFor(t, "limit=99999")
	if p.Limit != MaxLimit {
		t.Errorf("limit = %d, want %d", p.Limit, MaxLimit)
	}
}

func TestFromContextIgnoresNegatives(t *testing.T) {
	p := paramsFor(t, "limit=-5&offset=-2")
	if p.Limit != 0 || p.Offset != 0 {
		t.Errorf("params = %+v, want zeros", p)
	}
}

func TestWindow(t *testing.T) {
	cases := []struct {
		name       string
		p          Params
		total      int
		start, end int
	}{
		{"unbounded", Params{}, 10, 0, 10},
		{"first page", Params{Limit: 3}, 10, 0, 3},
		{"middle page", Params{Limit: 3, Offset: 3}, 10, 3, 6},
		{"offset past end", Params{Limit: 3, Offset: 50}, 10, 10, 10},
		{"short tail", Params{Limit: 5, Offset: 8}, 10, 8, 10},
	}
	for _, tc := range cases {
		start, end := tc.p.Window(tc.total)
		if start != tc.start || end != tc.end {
			t.Errorf("%s: window = [%d,%d), want [%d,%d)", tc.name, start, end, tc.start, tc.end)
		}
	}
}
