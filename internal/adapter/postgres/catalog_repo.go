package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"careportal/internal/domain"
)

type medicationStore struct {
	db     *DB
	userID string
}

const medicationColumns = "id, name, dosage, frequency, start_date, end_date"

func scanMedication(sc interface{ Scan(...any) error }) (domain.Medication, error) {
	var m domain.Medication
	err := sc.Scan(&m.ID, &m.Name, &m.Dosage, &m.Frequency, &m.StartDate, &m.EndDate)
	return m, err
}

func (s *medicationStore) ListMedications(ctx context.Context) ([]domain.Medication, error) {
	rows, err := s.db.sql.QueryContext(ctx,
		"SELECT "+medicationColumns+" FROM medications WHERE user_id = $1 ORDER BY start_date DESC NULLS LAST, name", s.userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Medication{}
	for rows.Next() {
		m, err := scanMedication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *medicationStore) GetMedication(ctx context.Context, id string) (*domain.Medication, error) {
	m, err := scanMedication(s.db.sql.QueryRowContext(ctx,
		"SELECT "+medicationColumns+" FROM medications WHERE id = $1 AND user_id = $2", id, s.userID))
	if err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

func (s *medicationStore) CreateMedication(ctx context.Context, in domain.MedicationInput) (*domain.Medication, error) {
	m, err := scanMedication(s.db.sql.QueryRowContext(ctx,
		"INSERT INTO medications (id, user_id, name, dosage, frequency, start_date, end_date) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING "+medicationColumns,
		newID(), s.userID, in.Name, in.Dosage, in.Frequency, in.StartDate, in.EndDate))
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *medicationStore) UpdateMedication(ctx context.Context, id string, in domain.MedicationInput) (*domain.Medication, error) {
	m, err := scanMedication(s.db.sql.QueryRowContext(ctx,
		"UPDATE medications SET name = $1, dosage = $2, frequency = $3, start_date = $4, end_date = $5 WHERE id = $6 AND user_id = $7 RETURNING "+medicationColumns,
		in.Name, in.Dosage, in.Frequency, in.StartDate, in.EndDate, id, s.userID))
	if err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

func (s *medicationStore) DeleteMedication(ctx context.Context, id string) error {
	return affected(s.db.sql.ExecContext(ctx, "DELETE FROM medications WHERE id = $1 AND user_id = $2", id, s.userID))
}

type shipmentStore struct {
	db     *DB
	userID string
}

const shipmentSelect = `SELECT s.id, s.user_id, s.status, s.order_date, s.shipped_date, s.expected_delivery_date,
	s.tracking_number, s.quantity, s.items, s.address,
	COALESCE(m.id, ''), COALESCE(m.name, ''), COALESCE(m.dosage, ''), COALESCE(m.frequency, ''), m.start_date, m.end_date
	FROM shipments s LEFT JOIN medications m ON m.id = s.medication_id`

func scanShipment(sc interface{ Scan(...any) error }) (domain.Shipment, error) {
	var sh domain.Shipment
	var items, addr []byte
	med := &sh.Medication
	err := sc.Scan(&sh.ID, &sh.UserID, &sh.Status, &sh.OrderDate, &sh.ShippedDate, &sh.ExpectedDeliveryDate,
		&sh.TrackingNumber, &sh.Quantity, &items, &addr,
		&med.ID, &med.Name, &med.Dosage, &med.Frequency, &med.StartDate, &med.EndDate)
	if err != nil {
		return sh, err
	}
	if err := json.Unmarshal(items, &sh.Items); err != nil {
		return sh, fmt.Errorf("decode shipment items: %w", err)
	}
	if err := json.Unmarshal(addr, &sh.Address); err != nil {
		return sh, fmt.Errorf("decode shipment address: %w", err)
	}
	return sh, nil
}

func (s *shipmentStore) ListShipments(ctx context.Context) ([]domain.Shipment, error) {
	rows, err := s.db.sql.QueryContext(ctx, shipmentSelect+" WHERE s.user_id = $1 ORDER BY s.order_date DESC NULLS LAST", s.userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Shipment{}
	for rows.Next() {
		sh, err := scanShipment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sh)
	}
	return out, rows.Err()
}

func (s *shipmentStore) get(ctx context.Context, id string) (*domain.Shipment, error) {
	sh, err := scanShipment(s.db.sql.QueryRowContext(ctx, shipmentSelect+" WHERE s.id = $1 AND s.user_id = $2", id, s.userID))
	if err != nil {
		return nil, notFound(err)
	}
	return &sh, nil
}

// encodeShipmentJSON renders the JSONB columns. lib/pq sends []byte as
// bytea, so the documents travel as strings.
func encodeShipmentJSON(in domain.ShipmentInput) (items, addr string, err error) {
	list := in.Items
	if list == nil {
		list = []domain.ShipmentItem{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return "", "", err
	}
	a, err := json.Marshal(in.Address)
	if err != nil {
		return "", "", err
	}
	return string(b), string(a), nil
}

// medicationRef checks that the medication belongs to the user and returns
// the value to store in medication_id.
func (s *shipmentStore) medicationRef(ctx context.Context, id string) (sql.NullString, error) {
	if id == "" {
		return sql.NullString{}, nil
	}
	var found string
	err := s.db.sql.QueryRowContext(ctx, "SELECT id FROM medications WHERE id = $1 AND user_id = $2", id, s.userID).Scan(&found)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("medication %s: %w", id, notFound(err))
	}
	return sql.NullString{String: found, Valid: true}, nil
}

func (s *shipmentStore) CreateShipment(ctx context.Context, in domain.ShipmentInput) (*domain.Shipment, error) {
	med, err := s.medicationRef(ctx, in.MedicationID)
	if err != nil {
		return nil, err
	}
	items, addr, err := encodeShipmentJSON(in)
	if err != nil {
		return nil, err
	}
	id := newID()
	_, err = s.db.sql.ExecContext(ctx,
		`INSERT INTO shipments (id, user_id, medication_id, status, order_date, shipped_date, expected_delivery_date,
		 tracking_number, quantity, items, address) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		id, s.userID, med, string(in.Status), in.OrderDate, in.ShippedDate, in.ExpectedDeliveryDate,
		in.TrackingNumber, in.Quantity, items, addr)
	if err != nil {
		return nil, err
	}
	return s.get(ctx, id)
}

func (s *shipmentStore) UpdateShipment(ctx context.Context, id string, in domain.ShipmentInput) (*domain.Shipment, error) {
	med, err := s.medicationRef(ctx, in.MedicationID)
	if err != nil {
		return nil, err
	}
	items, addr, err := encodeShipmentJSON(in)
	if err != nil {
		return nil, err
	}
	err = affected(s.db.sql.ExecContext(ctx,
		`UPDATE shipments SET medication_id = COALESCE($1, medication_id), status = $2, order_date = $3, shipped_date = $4,
		 expected_delivery_date = $5, tracking_number = $6, quantity = $7, items = $8, address = $9
		 WHERE id = $10 AND user_id = $11`,
		med, string(in.Status), in.OrderDate, in.ShippedDate, in.ExpectedDeliveryDate,
		in.TrackingNumber, in.Quantity, items, addr, id, s.userID))
	if err != nil {
		return nil, err
	}
	return s.get(ctx, id)
}

func (s *shipmentStore) DeleteShipment(ctx context.Context, id string) error {
	return affected(s.db.sql.ExecContext(ctx, "DELETE FROM shipments WHERE id = $1 AND user_id = $2", id, s.userID))
}

type profileStore struct {
	db     *DB
	userID string
}

// GetProfile returns the stored profile, or an empty one enrolled on the
// day the account was created.
func (s *profileStore) GetProfile(ctx context.Context) (*domain.Profile, error) {
	var p domain.Profile
	err := s.db.sql.QueryRowContext(ctx,
		`SELECT u.id, COALESCE(p.email, ''), COALESCE(p.first_name, ''), COALESCE(p.last_name, ''), p.date_of_birth,
		 COALESCE(p.phone, ''), COALESCE(p.enrollment_date, u.created_at::date)
		 FROM users u LEFT JOIN profiles p ON p.user_id = u.id WHERE u.id = $1`, s.userID,
	).Scan(&p.ID, &p.Email, &p.FirstName, &p.LastName, &p.DateOfBirth, &p.Phone, &p.EnrollmentDate)
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (s *profileStore) UpdateProfile(ctx context.Context, in domain.ProfileInput) (*domain.Profile, error) {
	_, err := s.db.sql.ExecContext(ctx,
		`INSERT INTO profiles (user_id, email, first_name, last_name, date_of_birth, phone, enrollment_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (user_id) DO UPDATE SET email = EXCLUDED.email, first_name = EXCLUDED.first_name,
		 last_name = EXCLUDED.last_name, date_of_birth = EXCLUDED.date_of_birth, phone = EXCLUDED.phone,
		 enrollment_date = COALESCE(EXCLUDED.enrollment_date, profiles.enrollment_date)`,
		s.userID, in.Email, in.FirstName, in.LastName, in.DateOfBirth, in.Phone, in.EnrollmentDate)
	if err != nil {
		return nil, err
	}
	return s.GetProfile(ctx)
}
