package workload

import (
	"sort"
	"sync"
	"time"

	"github.com/kilianp07/crewroster/core/model"
)

// MemoryStore stores records in memory for testing or lightweight usage.
type MemoryStore struct {
	mu   sync.Mutex
	data map[int64]map[time.Time]*Record
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[int64]map[time.Time]*Record{}}
}

// Add inserts or updates the record aggregated by day and crew member.
func (s *MemoryStore) Add(r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data[r.CrewID] == nil {
		s.data[r.CrewID] = map[time.Time]*Record{}
	}
	d := model.Day(r.Date)
	rec := s.data[r.CrewID][d]
	if rec == nil {
		rec = &Record{CrewID: r.CrewID, Date: d}
		s.data[r.CrewID][d] = rec
	}
	rec.add(r)
	return nil
}

// Clear drops the records dated within [from, to].
func (s *MemoryStore) Clear(from, to time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	from, to = model.Day(from), model.Day(to)
	for _, days := range s.data {
		for d := range days {
			if !d.Before(from) && !d.After(to) {
				delete(days, d)
			}
		}
	}
	return nil
}

// Query returns records between start and end inclusive.
func (s *MemoryStore) Query(crewID int64, start, end time.Time) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	start, end = model.Day(start), model.Day(end)
	var res []Record
	for d, r := range s.data[crewID] {
		if d.Before(start) || d.After(end) {
			continue
		}
		res = append(res, *r)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Date.Before(res[j].Date) })
	return res, nil
}
