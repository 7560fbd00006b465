package memory

import (
	"context"
	"fmt"
	"sort"

	"careportal/internal/domain"
)

type shipmentStore struct {
	db     *DB
	userID string
}

func (s *shipmentStore) ListShipments(ctx context.Context) ([]domain.Shipment, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	result := make([]domain.Shipment, len(s.db.shipments[s.userID]))
	copy(result, s.db.shipments[s.userID])
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].OrderDate.After(result[j].OrderDate)
	})
	return result, nil
}

func (s *shipmentStore) CreateShipment(ctx context.Context, in domain.ShipmentInput) (*domain.Shipment, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	sh := domain.Shipment{ID: newID(), UserID: s.userID}
	if err := s.apply(&sh, in); err != nil {
		return nil, err
	}
	s.db.shipments[s.userID] = append(s.db.shipments[s.userID], sh)
	return &sh, nil
}

func (s *shipmentStore) UpdateShipment(ctx context.Context, id string, in domain.ShipmentInput) (*domain.Shipment, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	list := s.db.shipments[s.userID]
	for i := range list {
		if list[i].ID == id {
			if err := s.apply(&list[i], in); err != nil {
				return nil, err
			}
			sh := list[i]
			return &sh, nil
		}
	}
	return nil, domain.ErrNotFound
}

// apply copies in onto sh. An empty MedicationID keeps the current
// medication. Callers hold the lock.
func (s *shipmentStore) apply(sh *domain.Shipment, in domain.ShipmentInput) error {
	if in.MedicationID != "" {
		med, ok := s.db.findMedication(s.userID, in.MedicationID)
		if !ok {
			return fmt.Errorf("medication %s: %w", in.MedicationID, domain.ErrNotFound)
		}
		sh.Medication = med
	}
	sh.Status = in.Status
	sh.OrderDate = in.OrderDate
	sh.ShippedDate = in.ShippedDate
	sh.ExpectedDeliveryDate = in.ExpectedDeliveryDate
	sh.TrackingNumber = in.TrackingNumber
	sh.Quantity = in.Quantity
	sh.Items = append([]domain.ShipmentItem(nil), in.Items...)
	sh.Address = in.Address
	return nil
}

func (s *shipmentStore) DeleteShipment(ctx context.Context, id string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	list := s.db.shipments[s.userID]
	for i, sh := range list {
		if sh.ID == id {
			s.db.shipments[s.userID] = append(list[:i:i], list[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (db *DB) findMedication(userID, id string) (domain.Medication, bool) {
	for _, m := range db.medications[userID] {
		if m.ID == id {
			return m, true
		}
	}
	return domain.Medication{}, false
}

type medicationStore struct {
	db     *DB
	userID string
}

func (s *medicationStore) ListMedications(ctx context.Context) ([]domain.Medication, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	result := make([]domain.Medication, len(s.db.medications[s.userID]))
	copy(result, s.db.medications[s.userID])
	return result, nil
}

func (s *medicationStore) GetMedication(ctx context.Context, id string) (*domain.Medication, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if m, ok := s.db.findMedication(s.userID, id); ok {
		return &m, nil
	}
	return nil, domain.ErrNotFound
}

func (s *medicationStore) CreateMedication(ctx context.Context, in domain.MedicationInput) (*domain.Medication, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	m := domain.Medication{
		ID:        newID(),
		Name:      in.Name,
		Dosage:    in.Dosage,
		Frequency: in.Frequency,
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
	}
	s.db.medications[s.userID] = append(s.db.medications[s.userID], m)
	return &m, nil
}

func (s *medicationStore) UpdateMedication(ctx context.Context, id string, in domain.MedicationInput) (*domain.Medication, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	list := s.db.medications[s.userID]
	for i := range list {
		if list[i].ID == id {
			list[i] = domain.Medication{
				ID:        id,
				Name:      in.Name,
				Dosage:    in.Dosage,
				Frequency: in.Frequency,
				StartDate: in.StartDate,
				EndDate:   in.EndDate,
			}
			m := list[i]
			return &m, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *medicationStore) DeleteMedication(ctx context.Context, id string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	list := s.db.medications[s.userID]
	for i, m := range list {
		if m.ID == id {
			s.db.medications[s.userID] = append(list[:i:i], list[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

type profileStore struct {
	db     *DB
	userID string
}

// GetProfile returns the stored profile. A user without one gets an empty
// profile enrolled on the day the account was created.
func (s *profileStore) GetProfile(ctx context.Context) (*domain.Profile, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	p := s.db.profileOf(s.userID)
	return &p, nil
}

// profileOf returns the stored profile or the default one. Callers hold the lock.
func (db *DB) profileOf(userID string) domain.Profile {
	if p, ok := db.profiles[userID]; ok {
		return p
	}
	p := domain.Profile{ID: userID}
	for _, u := range db.users {
		if u.ID == userID {
			p.EnrollmentDate = domain.DayOf(u.CreatedAt.Local())
		}
	}
	return p
}

func (s *profileStore) UpdateProfile(ctx context.Context, in domain.ProfileInput) (*domain.Profile, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	p := s.db.profileOf(s.userID)
	p.Email = in.Email
	p.FirstName = in.FirstName
	p.LastName = in.LastName
	p.DateOfBirth = in.DateOfBirth
	p.Phone = in.Phone
	if !in.EnrollmentDate.IsZero() {
		p.EnrollmentDate = in.EnrollmentDate
	}
	s.db.profiles[s.userID] = p
	return &p, nil
}
