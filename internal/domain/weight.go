package domain

import (
	"context"
)

// WeightEntry represents a single weight measurement recorded on a date.
// Weight is a Metric so that a malformed value from a backend does not fail
// the whole series.
type WeightEntry struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
	Weight Metric `json:"weight"`
	Date   Day    `json:"date"`
	Notes  string `json:"notes,omitempty"`
}

// WeightEntryInput carries the editable fields of a weight entry.
type WeightEntryInput struct {
	Weight float64 `json:"weight"`
	Date   Day     `json:"date"`
	Notes  string  `json:"notes,omitempty"`
}

// SortOrder is the direction of a listing.
type SortOrder string

// Sort orders.
const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// EntryQuery narrows a weight-entry listing. Zero values mean "no filter";
// a zero Limit means "no limit".
type EntryQuery struct {
	Page      int
	Limit     int
	StartDate Day
	EndDate   Day
	SortBy    string
	SortOrder SortOrder
}

// WeightEntryStore is the port to one user's weight series. A store is bound
// to a session when it is opened, see Backend.
type WeightEntryStore interface {
	ListEntries(ctx context.Context, q EntryQuery) ([]WeightEntry, error)
	GetEntry(ctx context.Context, id string) (*WeightEntry, error)
	CreateEntry(ctx context.Context, in WeightEntryInput) (*WeightEntry, error)
	UpdateEntry(ctx context.Context, id string, in WeightEntryInput) (*WeightEntry, error)
	DeleteEntry(ctx context.Context, id string) error
}
