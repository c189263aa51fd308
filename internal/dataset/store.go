// Package dataset loads prospect records and serves them read-only for the lifetime of a session.
package dataset

import (
	"sort"
	"strings"

	"sales-assistant/internal/models"
)

// Store is an immutable ordered collection of records.
type Store struct {
	records []models.Record
	columns []string
	byName  map[string]int
}

func NewStore(records []models.Record, columns []string) *Store {
	s := &Store{
		records: records,
		columns: columns,
		byName:  make(map[string]int, len(records)),
	}
	for i, r := range records {
		key := strings.ToLower(r.Name())
		if _, dup := s.byName[key]; !dup {
			s.byName[key] = i
		}
	}
	return s
}

// All returns the records in load order. Callers must not modify them.
func (s *Store) All() []models.Record {
	return s.records
}

func (s *Store) Len() int {
	return len(s.records)
}

func (s *Store) Columns() []string {
	out := make([]string, len(s.columns))
	copy(out, s.columns)
	return out
}

// Column resolves a field name to its canonical column: exact first, then case-insensitive.
func (s *Store) Column(name string) (string, bool) {
	for _, c := range s.columns {
		if c == name {
			return c, true
		}
	}
	for _, c := range s.columns {
		if strings.EqualFold(c, name) {
			return c, true
		}
	}
	return "", false
}

// FindByName is a case-insensitive exact match. The first record wins on duplicates.
func (s *Store) FindByName(name string) (models.Record, bool) {
	idx, ok := s.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return models.Record{}, false
	}
	return s.records[idx], true
}

// PeerGroup returns records sharing category and state, the queried business included.
func (s *Store) PeerGroup(category, state string) []models.Record {
	var peers []models.Record
	for _, r := range s.records {
		if strings.EqualFold(r.PrimaryCategory(), category) && strings.EqualFold(r.State(), state) {
			peers = append(peers, r)
		}
	}
	return peers
}

// CategoryCounts returns the most frequent primary categories, ties broken by name.
func (s *Store) CategoryCounts(limit int) []models.CategoryCount {
	counts := map[string]int{}
	for _, r := range s.records {
		counts[r.PrimaryCategory()]++
	}

	out := make([]models.CategoryCount, 0, len(counts))
	for c, n := range counts {
		out = append(out, models.CategoryCount{Category: c, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Category < out[j].Category
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Names returns every business name in load order.
func (s *Store) Names() []string {
	names := make([]string, len(s.records))
	for i, r := range s.records {
		names[i] = r.Name()
	}
	return names
}
