package journal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kilianp07/crewroster/core/journal"
)

type memJournal struct{ recs []journal.Record }

func (m *memJournal) Journal(_ context.Context, q journal.Query) ([]journal.Record, error) {
	var out []journal.Record
	for _, r := range m.recs {
		if q.Match(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

func TestHandler_AuthAndFilters(t *testing.T) {
	now := time.Now().UTC()
	src := &memJournal{recs: []journal.Record{
		{RunID: "r1", Kind: journal.KindRoster, Timestamp: now.Add(-time.Hour)},
		{RunID: "r2", Kind: journal.KindConflicts, Timestamp: now},
	}}
	h := NewHandler(src, "tok")

	req := httptest.NewRequest("GET", "/api/journal?kind=roster", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var out []journal.Record
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out) != 1 || out[0].RunID != "r1" {
		t.Fatalf("unexpected records %#v", out)
	}

	req = httptest.NewRequest("GET", "/api/journal?start="+now.Add(-time.Minute).Format(time.RFC3339), nil)
	req.Header.Set("Authorization", "Bearer tok")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	out = nil
	_ = json.Unmarshal(rr.Body.Bytes(), &out)
	if len(out) != 1 || out[0].RunID != "r2" {
		t.Fatalf("start filter bad %#v", out)
	}

	// unauthorized
	req = httptest.NewRequest("GET", "/api/journal", nil)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rr.Code)
	}
}

func TestHandler_Empty(t *testing.T) {
	h := NewHandler(&memJournal{}, "")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/journal", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	if rr.Body.String() != "[]\n" {
		t.Fatalf("expected empty array got %s", rr.Body.String())
	}
}

func TestHandler_Method(t *testing.T) {
	h := NewHandler(&memJournal{}, "")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("POST", "/api/journal", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 got %d", rr.Code)
	}
}
