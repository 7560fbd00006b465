package memory

import (
	"context"
	"sort"

	"careportal/internal/domain"
)

type entryStore struct {
	db     *DB
	userID string
}

func (s *entryStore) ListEntries(ctx context.Context, q domain.EntryQuery) ([]domain.WeightEntry, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	result := make([]domain.WeightEntry, 0, len(s.db.entries[s.userID]))
	for _, e := range s.db.entries[s.userID] {
		if !q.StartDate.IsZero() && e.Date.Before(q.StartDate) {
			continue
		}
		if !q.EndDate.IsZero() && e.Date.After(q.EndDate) {
			continue
		}
		result = append(result, e)
	}

	less := func(a, b domain.WeightEntry) bool { return a.Date.Before(b.Date) }
	if q.SortBy == "weight" {
		less = func(a, b domain.WeightEntry) bool { return a.Weight < b.Weight }
	}
	sort.SliceStable(result, func(i, j int) bool {
		if q.SortOrder == domain.SortAsc {
			return less(result[i], result[j])
		}
		return less(result[j], result[i])
	})

	return paginate(result, q.Page, q.Limit), nil
}

// paginate returns page (1-based) of size limit. A zero limit disables paging.
func paginate[T any](items []T, page, limit int) []T {
	if limit <= 0 {
		return items
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return items[:0]
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func (s *entryStore) GetEntry(ctx context.Context, id string) (*domain.WeightEntry, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, e := range s.db.entries[s.userID] {
		if e.ID == id {
			return &e, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *entryStore) CreateEntry(ctx context.Context, in domain.WeightEntryInput) (*domain.WeightEntry, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	e := domain.WeightEntry{
		ID:     newID(),
		UserID: s.userID,
		Weight: domain.Metric(in.Weight),
		Date:   in.Date,
		Notes:  in.Notes,
	}
	s.db.entries[s.userID] = append(s.db.entries[s.userID], e)
	return &e, nil
}

func (s *entryStore) UpdateEntry(ctx context.Context, id string, in domain.WeightEntryInput) (*domain.WeightEntry, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	list := s.db.entries[s.userID]
	for i := range list {
		if list[i].ID == id {
			list[i].Weight = domain.Metric(in.Weight)
			list[i].Date = in.Date
			list[i].Notes = in.Notes
			e := list[i]
			return &e, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *entryStore) DeleteEntry(ctx context.Context, id string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	list := s.db.entries[s.userID]
	for i, e := range list {
		if e.ID == id {
			s.db.entries[s.userID] = append(list[:i:i], list[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}
