package report

import (
	"sync"

	"github.com/named-data/lfq/bench"
)

// MemoryStore is a Store that lives in process memory.
type MemoryStore struct {
	mutex   sync.RWMutex
	reports []*bench.Report
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Put(r *bench.Report) error {
	if _, err := reportKey(r); err != nil {
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	copied := *r
	s.reports = append(s.reports, &copied)
	return nil
}

func (s *MemoryStore) List(kind string, limit int) ([]*bench.Report, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := []*bench.Report{}
	for _, r := range s.reports {
		if kind == "" || r.Kind == kind {
			copied := *r
			out = append(out, &copied)
		}
	}

	sortNewestFirst(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
