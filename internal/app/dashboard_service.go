package app

import (
	"context"
	"fmt"

	"careportal/internal/domain"

	"golang.org/x/sync/errgroup"
)

const recentEntryCount = 5

// Overview is the dashboard summary.
type Overview struct {
	Stats          *domain.WeightStats  `json:"stats"`
	Display        domain.StatsDisplay  `json:"display"`
	Chart          []domain.ChartPoint  `json:"chart"`
	EnoughData     bool                 `json:"enoughData"`
	RecentEntries  []domain.WeightEntry `json:"recentEntries"`
	NextShipment   *domain.Shipment     `json:"nextShipment"`
	TotalShipments int                  `json:"totalShipments"`
}

// DashboardService builds the dashboard summary.
type DashboardService struct {
	backend domain.Backend
	cfg     domain.StatsConfig
	clock   Clock
}

// NewDashboardService creates a DashboardService reading through backend.
func NewDashboardService(backend domain.Backend, cfg domain.StatsConfig, clock Clock) *DashboardService {
	return &DashboardService{backend: backend, cfg: cfg, clock: clock}
}

// Overview fetches the weight series and the shipments concurrently. When
// either fetch reports expired credentials that error wins.
func (s *DashboardService) Overview(ctx context.Context, sess *domain.Session) (*Overview, error) {
	var (
		entries              []domain.WeightEntry
		shipments            []domain.Shipment
		entriesErr, shipsErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		entries, entriesErr = s.backend.WeightEntries(sess).ListEntries(gctx, allEntriesNewestFirst)
		if entriesErr != nil {
			entriesErr = fmt.Errorf("list weight entries: %w", entriesErr)
		}
		return entriesErr
	})
	g.Go(func() error {
		shipments, shipsErr = s.backend.Shipments(sess).ListShipments(gctx)
		if shipsErr != nil {
			shipsErr = fmt.Errorf("list shipments: %w", shipsErr)
		}
		return shipsErr
	})
	if err := g.Wait(); err != nil {
		return nil, authFirst(err, entriesErr, shipsErr)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := s.clock.now()
	stats := domain.ComputeStats(entries, now, s.cfg)
	chart := domain.ProjectForChart(entries)
	recent := entries
	if len(recent) > recentEntryCount {
		recent = recent[:recentEntryCount]
	}
	if recent == nil {
		recent = []domain.WeightEntry{}
	}
	return &Overview{
		Stats:          stats,
		Display:        stats.Display(),
		Chart:          chart,
		EnoughData:     domain.EnoughForChart(chart),
		RecentEntries:  recent,
		NextShipment:   domain.NextShipment(shipments),
		TotalShipments: len(shipments),
	}, nil
}
