// Package journal serves the run journal over HTTP.
package journal

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/kilianp07/crewroster/core/journal"
)

// Querier reads journal records.
type Querier interface {
	Journal(ctx context.Context, q journal.Query) ([]journal.Record, error)
}

// NewHandler returns an HTTP handler exposing journal records via GET
// /api/journal. Requests must include an Authorization header with
// "Bearer <token>" when token is non-empty.
func NewHandler(src Querier, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		q := journal.Query{
			Kind:  journal.Kind(r.URL.Query().Get("kind")),
			RunID: r.URL.Query().Get("run_id"),
		}
		if s := r.URL.Query().Get("start"); s != "" {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				q.Start = t
			}
		}
		if s := r.URL.Query().Get("end"); s != "" {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				q.End = t
			}
		}
		records, err := src.Journal(r.Context(), q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if records == nil {
			records = []journal.Record{}
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(records); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}
