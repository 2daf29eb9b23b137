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

func TestFromContext(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantLimit  int
		wantOffset int
	}{
		{"defaults", "", DefaultLimit, 0},
		{"explicit", "limit=5&offset=10", 5, 10},
		{"capped", "limit=500", MaxLimit, 0},
		{"negative ignored", "limit=-3&offset=-7", DefaultLimit, 0},
		{"garbage ignored", "limit=abc&offset=xyz", DefaultLimit, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := paramsFor(t, tt.query)
			if got.Limit != tt.wantLimit || got.Offset != tt.wantOffset {
				t.Errorf("got %+v, want limit=%d offset=%d", got, tt.wantLimit, tt.wantOffset)
			}
		})
	}
}

func TestParams_SQL(t *testing.T) {
	p := Params{Limit: 20, Offset: 40}
	if got := p.SQL(); got != "LIMIT 20 OFFSET 40" {
		t.Errorf("SQL() = %q", got)
	}
}

func TestNewResponse_HasMore(t *testing.T) {
	resp := NewResponse([]int{1, 2}, 50, 20, 0)
	if !resp.HasMore {
		t.Error("expected HasMore with 50 total at offset 0")
	}

	resp = NewResponse([]int{1, 2}, 50, 20, 40)
	if resp.HasMore {
		t.Error("did not expect HasMore on final page")
	}
}
