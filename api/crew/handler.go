// Package crew serves per-crew workload and calendar views over HTTP.
package crew

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kilianp07/crewroster/core/metrics/workload"
	"github.com/kilianp07/crewroster/core/model"
)

// DefaultDays is the length of the window served when no start is given.
const DefaultDays = 7

// Source provides the views of one crew member.
type Source interface {
	Workload(ctx context.Context, start, end time.Time, crewID int64) ([]workload.Record, error)
	RosterCalendar(ctx context.Context, start, end time.Time, crewID int64) ([]model.RosterEntry, error)
}

type workloadDay struct {
	Date        string  `json:"date"`
	Duties      int     `json:"duties"`
	DutyHours   float64 `json:"duty_hours"`
	BlockHours  float64 `json:"block_hours"`
	NightDuties int     `json:"night_duties"`
	Utilization float64 `json:"utilization"`
}

// NewHandler exposes GET /api/crew/{id}/workload and GET
// /api/crew/{id}/calendar. The optional start and end query parameters are
// dates; the window defaults to the last DefaultDays days. Utilization is
// computed against limitHours.
func NewHandler(src Source, limitHours float64) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		path := strings.TrimPrefix(r.URL.Path, "/api/crew/")
		parts := strings.Split(path, "/")
		if len(parts) != 2 {
			http.NotFound(w, r)
			return
		}
		id, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil || id <= 0 {
			http.Error(w, "invalid crew id", http.StatusBadRequest)
			return
		}
		start, end, err := window(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		var out any
		switch parts[1] {
		case "workload":
			recs, err := src.Workload(r.Context(), start, end, id)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			days := make([]workloadDay, len(recs))
			for i, rec := range recs {
				days[i] = workloadDay{
					Date:        rec.Date.Format(time.DateOnly),
					Duties:      rec.Duties,
					DutyHours:   rec.DutyHours,
					BlockHours:  rec.BlockHours,
					NightDuties: rec.NightDuties,
					Utilization: rec.Utilization(limitHours),
				}
			}
			out = days
		case "calendar":
			entries, err := src.RosterCalendar(r.Context(), start, end, id)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			if entries == nil {
				entries = []model.RosterEntry{}
			}
			out = entries
		default:
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out)
	})
}

func window(r *http.Request) (time.Time, time.Time, error) {
	end := model.Day(time.Now())
	if s := r.URL.Query().Get("end"); s != "" {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		end = t
	}
	start := end.AddDate(0, 0, -(DefaultDays - 1))
	if s := r.URL.Query().Get("start"); s != "" {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		start = t
	}
	return start, end, nil
}
