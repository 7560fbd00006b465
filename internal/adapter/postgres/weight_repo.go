package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"careportal/internal/domain"
)

type entryStore struct {
	db     *DB
	userID string
}

const entryColumns = "id, user_id, weight, entry_date, notes"

var entrySortColumns = map[string]string{
	"":       "entry_date",
	"date":   "entry_date",
	"weight": "weight",
}

// listEntriesQuery builds the listing statement for q. Sort columns come
// from a fixed map so nothing user supplied reaches the SQL text.
func listEntriesQuery(userID string, q domain.EntryQuery) (string, []any, error) {
	col, ok := entrySortColumns[q.SortBy]
	if !ok {
		return "", nil, fmt.Errorf("unsupported sort column %q", q.SortBy)
	}
	dir := "DESC"
	if q.SortOrder == domain.SortAsc {
		dir = "ASC"
	}

	var b strings.Builder
	args := []any{userID}
	b.WriteString("SELECT " + entryColumns + " FROM weight_entries WHERE user_id = $1")
	if !q.StartDate.IsZero() {
		args = append(args, q.StartDate)
		fmt.Fprintf(&b, " AND entry_date >= $%d", len(args))
	}
	if !q.EndDate.IsZero() {
		args = append(args, q.EndDate)
		fmt.Fprintf(&b, " AND entry_date <= $%d", len(args))
	}
	fmt.Fprintf(&b, " ORDER BY %s %s, created_at %s", col, dir, dir)
	if q.Limit > 0 {
		page := q.Page
		if page < 1 {
			page = 1
		}
		args = append(args, q.Limit, (page-1)*q.Limit)
		fmt.Fprintf(&b, " LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}
	return b.String(), args, nil
}

func scanEntry(sc interface{ Scan(...any) error }) (domain.WeightEntry, error) {
	var e domain.WeightEntry
	err := sc.Scan(&e.ID, &e.UserID, &e.Weight, &e.Date, &e.Notes)
	return e, err
}

func (s *entryStore) ListEntries(ctx context.Context, q domain.EntryQuery) ([]domain.WeightEntry, error) {
	query, args, err := listEntriesQuery(s.userID, q)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.sql.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.WeightEntry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *entryStore) GetEntry(ctx context.Context, id string) (*domain.WeightEntry, error) {
	e, err := scanEntry(s.db.sql.QueryRowContext(ctx,
		"SELECT "+entryColumns+" FROM weight_entries WHERE id = $1 AND user_id = $2", id, s.userID))
	if err != nil {
		return nil, notFound(err)
	}
	return &e, nil
}

func (s *entryStore) CreateEntry(ctx context.Context, in domain.WeightEntryInput) (*domain.WeightEntry, error) {
	e, err := scanEntry(s.db.sql.QueryRowContext(ctx,
		"INSERT INTO weight_entries (id, user_id, weight, entry_date, notes, created_at) VALUES ($1, $2, $3, $4, $5, $6) RETURNING "+entryColumns,
		newID(), s.userID, in.Weight, in.Date, in.Notes, time.Now().UTC()))
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *entryStore) UpdateEntry(ctx context.Context, id string, in domain.WeightEntryInput) (*domain.WeightEntry, error) {
	e, err := scanEntry(s.db.sql.QueryRowContext(ctx,
		"UPDATE weight_entries SET weight = $1, entry_date = $2, notes = $3 WHERE id = $4 AND user_id = $5 RETURNING "+entryColumns,
		in.Weight, in.Date, in.Notes, id, s.userID))
	if err != nil {
		return nil, notFound(err)
	}
	return &e, nil
}

func (s *entryStore) DeleteEntry(ctx context.Context, id string) error {
	return affected(s.db.sql.ExecContext(ctx, "DELETE FROM weight_entries WHERE id = $1 AND user_id = $2", id, s.userID))
}
