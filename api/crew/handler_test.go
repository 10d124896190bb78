package crew

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kilianp07/crewroster/core/metrics/workload"
	"github.com/kilianp07/crewroster/core/model"
)

var day0 = time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

type fakeSource struct {
	start, end time.Time
	crewID     int64
}

func (f *fakeSource) Workload(_ context.Context, start, end time.Time, crewID int64) ([]workload.Record, error) {
	f.start, f.end, f.crewID = start, end, crewID
	return []workload.Record{{CrewID: crewID, Date: start, Duties: 2, DutyHours: 5, BlockHours: 3}}, nil
}

func (f *fakeSource) RosterCalendar(_ context.Context, start, end time.Time, crewID int64) ([]model.RosterEntry, error) {
	f.start, f.end, f.crewID = start, end, crewID
	return nil, nil
}

func TestHandler_Workload(t *testing.T) {
	src := &fakeSource{}
	h := NewHandler(src, 10)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/crew/4/workload?start=2025-03-03&end=2025-03-05", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	if src.crewID != 4 || !src.start.Equal(day0) || !src.end.Equal(day0.AddDate(0, 0, 2)) {
		t.Fatalf("unexpected query %#v", src)
	}
	var out []workloadDay
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 1 || out[0].Date != "2025-03-03" || out[0].Utilization != 0.5 {
		t.Fatalf("unexpected output %#v", out)
	}
}

func TestHandler_CalendarDefaultWindow(t *testing.T) {
	src := &fakeSource{}
	h := NewHandler(src, 10)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/crew/1/calendar?end=2025-03-09", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	if !src.start.Equal(day0) {
		t.Fatalf("expected window to start %s got %s", day0, src.start)
	}
	if rr.Body.String() != "[]\n" {
		t.Fatalf("expected empty array got %s", rr.Body.String())
	}
}

func TestHandler_BadRequests(t *testing.T) {
	h := NewHandler(&fakeSource{}, 10)
	cases := map[string]int{
		"/api/crew/x/workload":                http.StatusBadRequest,
		"/api/crew/1/workload?start=tomorrow": http.StatusBadRequest,
		"/api/crew/1/salary":                  http.StatusNotFound,
		"/api/crew/1":                         http.StatusNotFound,
	}
	for path, want := range cases {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest("GET", path, nil))
		if rr.Code != want {
			t.Errorf("%s: expected %d got %d", path, want, rr.Code)
		}
	}
}
