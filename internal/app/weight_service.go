package app

import (
	"context"
	"fmt"
	"math"

	"careportal/internal/domain"
)

// Progress is everything the weight progress view renders for one range.
type Progress struct {
	Range      domain.TimeRange     `json:"range"`
	Entries    []domain.WeightEntry `json:"entries"`
	Stats      *domain.WeightStats  `json:"stats"`
	Display    domain.StatsDisplay  `json:"display"`
	Chart      []domain.ChartPoint  `json:"chart"`
	EnoughData bool                 `json:"enoughData"`
}

// WeightService encapsulates weight-tracking use cases.
type WeightService struct {
	backend domain.Backend
	cfg     domain.StatsConfig
	clock   Clock
}

// NewWeightService creates a WeightService reading through backend.
func NewWeightService(backend domain.Backend, cfg domain.StatsConfig, clock Clock) *WeightService {
	return &WeightService{backend: backend, cfg: cfg, clock: clock}
}

var allEntriesNewestFirst = domain.EntryQuery{SortBy: "date", SortOrder: domain.SortDesc}

// Progress loads the full series and derives stats over all of it and the
// chart over the entries inside r. If ctx is done by the time the fetch
// returns, the result is discarded.
func (s *WeightService) Progress(ctx context.Context, sess *domain.Session, r domain.TimeRange) (*Progress, error) {
	entries, err := s.backend.WeightEntries(sess).ListEntries(ctx, allEntriesNewestFirst)
	if err != nil {
		return nil, fmt.Errorf("list weight entries: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.derive(entries, r), nil
}

func (s *WeightService) derive(entries []domain.WeightEntry, r domain.TimeRange) *Progress {
	now := s.clock.now()
	stats := domain.ComputeStats(entries, now, s.cfg)
	chart := domain.ProjectForChart(domain.FilterByRange(entries, r, now))
	if entries == nil {
		entries = []domain.WeightEntry{}
	}
	return &Progress{
		Range:      r,
		Entries:    entries,
		Stats:      stats,
		Display:    stats.Display(),
		Chart:      chart,
		EnoughData: domain.EnoughForChart(chart),
	}
}

// ListEntries returns one page of entries.
func (s *WeightService) ListEntries(ctx context.Context, sess *domain.Session, q domain.EntryQuery) ([]domain.WeightEntry, error) {
	if q.Page < 0 || q.Limit < 0 {
		return nil, invalid("page", "page and limit must not be negative")
	}
	if q.SortBy != "" && q.SortBy != "date" && q.SortBy != "weight" {
		return nil, invalid("sortBy", `must be "date" or "weight"`)
	}
	if q.SortOrder != "" && q.SortOrder != domain.SortAsc && q.SortOrder != domain.SortDesc {
		return nil, invalid("sortOrder", `must be "asc" or "desc"`)
	}
	if !q.StartDate.IsZero() && !q.EndDate.IsZero() && q.EndDate.Before(q.StartDate) {
		return nil, invalid("endDate", "must not be before startDate")
	}
	return s.backend.WeightEntries(sess).ListEntries(ctx, q)
}

// GetEntry returns a single entry.
func (s *WeightService) GetEntry(ctx context.Context, sess *domain.Session, id string) (*domain.WeightEntry, error) {
	return s.backend.WeightEntries(sess).GetEntry(ctx, id)
}

// CreateEntry validates and stores a new measurement and returns it with the
// recomputed progress for r.
func (s *WeightService) CreateEntry(ctx context.Context, sess *domain.Session, in domain.WeightEntryInput, r domain.TimeRange) (*domain.WeightEntry, *Progress, error) {
	if err := s.validate(in); err != nil {
		return nil, nil, err
	}
	e, err := s.backend.WeightEntries(sess).CreateEntry(ctx, in)
	if err != nil {
		return nil, nil, fmt.Errorf("create weight entry: %w", err)
	}
	p, err := s.Progress(ctx, sess, r)
	return e, p, err
}

// UpdateEntry validates and replaces an entry.
func (s *WeightService) UpdateEntry(ctx context.Context, sess *domain.Session, id string, in domain.WeightEntryInput, r domain.TimeRange) (*domain.WeightEntry, *Progress, error) {
	if err := s.validate(in); err != nil {
		return nil, nil, err
	}
	e, err := s.backend.WeightEntries(sess).UpdateEntry(ctx, id, in)
	if err != nil {
		return nil, nil, fmt.Errorf("update weight entry %s: %w", id, err)
	}
	p, err := s.Progress(ctx, sess, r)
	return e, p, err
}

// DeleteEntry removes an entry and returns the recomputed progress.
func (s *WeightService) DeleteEntry(ctx context.Context, sess *domain.Session, id string, r domain.TimeRange) (*Progress, error) {
	if err := s.backend.WeightEntries(sess).DeleteEntry(ctx, id); err != nil {
		return nil, fmt.Errorf("delete weight entry %s: %w", id, err)
	}
	return s.Progress(ctx, sess, r)
}

func (s *WeightService) validate(in domain.WeightEntryInput) error {
	if math.IsNaN(in.Weight) || math.IsInf(in.Weight, 0) || in.Weight <= 0 {
		return invalid("weight", "must be greater than 0")
	}
	if in.Date.IsZero() {
		return invalid("date", "is required")
	}
	if in.Date.After(domain.DayOf(s.clock.now())) {
		return invalid("date", "cannot be in the future")
	}
	return nil
}
