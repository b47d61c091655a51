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
	req := httptest.NewRequest(http.MethodGet, "/api/v1/vocab/aliases"+query, nil)
	rec := httptest.NewRecorder()
	return FromContext(e.NewContext(req, rec))
}

func TestFromContext_Defaults(t *testing.T) {
	p := paramsFor(t, "")
	if p.Limit != DefaultLimit {
		t.Errorf("expected default limit %d, got %d", DefaultLimit, p.Limit)
	}
	if p.Offset != 0 {
		t.Errorf("expected offset 0, got %d", p.Offset)
	}
}

func TestFromContext_ExplicitValues(t *testing.T) {
	p := paramsFor(t, "?limit=50&offset=10")
	if p.Limit != 50 {
		t.Errorf("expected limit 50, got %d", p.Limit)
	}
	if p.Offset != 10 {
		t.Errorf("expected offset 10, got %d", p.Offset)
	}
}

func TestFromContext_ClampsLimit(t *testing.T) {
	p := paramsFor(t, "?limit=10000")
	if p.Limit != MaxLimit {
		t.Errorf("expected limit clamped to %d, got %d", MaxLimit, p.Limit)
	}
}

func TestFromContext_RejectsNegatives(t *testing.T) {
	p := paramsFor(t, "?limit=-5&offset=-3")
	if p.Limit != DefaultLimit {
		t.Errorf("expected default limit for negative input, got %d", p.Limit)
	}
	if p.Offset != 0 {
		t.Errorf("expected offset 0 for negative input, got %d", p.Offset)
	}
}

func TestParams_SQL(t *testing.T) {
	p := Params{Limit: 25, Offset: 50}
	if got := p.SQL(); got != "LIMIT 25 OFFSET 50" {
		t.Errorf("unexpected SQL clause: %q", got)
	}
}

func TestParams_Navigation(t *testing.T) {
	p := Params{Limit: 20, Offset: 20}

	if !p.HasNext(100) {
		t.Error("expected HasNext for total 100")
	}
	if p.HasNext(40) {
		t.Error("expected no next page when offset+limit reaches total")
	}
	if !p.HasPrevious() {
		t.Error("expected HasPrevious for nonzero offset")
	}
	if got := p.NextOffset(); got != 40 {
		t.Errorf("expected next offset 40, got %d", got)
	}
	if got := p.PreviousOffset(); got != 0 {
		t.Errorf("expected previous offset 0, got %d", got)
	}
}

func TestParams_PreviousOffsetClamped(t *testing.T) {
	p := Params{Limit: 20, Offset: 10}
	if got := p.PreviousOffset(); got != 0 {
		t.Errorf("expected previous offset clamped to 0, got %d", got)
	}
}

func TestNewResponse(t *testing.T) {
	resp := NewResponse([]string{"a", "b"}, 10, 2, 0)
	if resp.Total != 10 {
		t.Errorf("expected total 10, got %d", resp.Total)
	}
	if !resp.HasMore {
		t.Error("expected has_more for partial page")
	}

	last := NewResponse([]string{"x"}, 10, 2, 9)
	if last.HasMore {
		t.Error("expected no more pages past the end")
	}
}

func TestPage(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	window, total := Page(items, Params{Limit: 2, Offset: 2})
	if total != 5 {
		t.Errorf("expected total 5, got %d", total)
	}
	if len(window) != 2 || window[0] != 3 || window[1] != 4 {
		t.Errorf("unexpected window: %v", window)
	}

	tail, _ := Page(items, Params{Limit: 10, Offset: 4})
	if len(tail) != 1 || tail[0] != 5 {
		t.Errorf("unexpected tail window: %v", tail)
	}

	empty, total := Page(items, Params{Limit: 10, Offset: 50})
	if total != 5 || len(empty) != 0 {
		t.Errorf("expected empty window past the end, got %v", empty)
	}
}
