package app_test

import (
	"context"

	"careportal/internal/domain"
)

type mockEntryStore struct {
	listFn   func(ctx context.Context, q domain.EntryQuery) ([]domain.WeightEntry, error)
	getFn    func(ctx context.Context, id string) (*domain.WeightEntry, error)
	createFn func(ctx context.Context, in domain.WeightEntryInput) (*domain.WeightEntry, error)
	updateFn func(ctx context.Context, id string, in domain.WeightEntryInput) (*domain.WeightEntry, error)
	deleteFn func(ctx context.Context, id string) error
}

func (m *mockEntryStore) ListEntries(ctx context.Context, q domain.EntryQuery) ([]domain.WeightEntry, error) {
	if m.listFn != nil {
		return m.listFn(ctx, q)
	}
	return nil, nil
}

func (m *mockEntryStore) GetEntry(ctx context.Context, id string) (*domain.WeightEntry, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockEntryStore) CreateEntry(ctx context.Context, in domain.WeightEntryInput) (*domain.WeightEntry, error) {
	if m.createFn != nil {
		return m.createFn(ctx, in)
	}
	return &domain.WeightEntry{ID: "new", Weight: domain.Metric(in.Weight), Date: in.Date}, nil
}

func (m *mockEntryStore) UpdateEntry(ctx context.Context, id string, in domain.WeightEntryInput) (*domain.WeightEntry, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, in)
	}
	return &domain.WeightEntry{ID: id, Weight: domain.Metric(in.Weight), Date: in.Date}, nil
}

func (m *mockEntryStore) DeleteEntry(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

type mockShipmentStore struct {
	listFn   func(ctx context.Context) ([]domain.Shipment, error)
	createFn func(ctx context.Context, in domain.ShipmentInput) (*domain.Shipment, error)
	updateFn func(ctx context.Context, id string, in domain.ShipmentInput) (*domain.Shipment, error)
	deleteFn func(ctx context.Context, id string) error
}

func (m *mockShipmentStore) ListShipments(ctx context.Context) ([]domain.Shipment, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockShipmentStore) CreateShipment(ctx context.Context, in domain.ShipmentInput) (*domain.Shipment, error) {
	if m.createFn != nil {
		return m.createFn(ctx, in)
	}
	return &domain.Shipment{ID: "s-new", Status: in.Status, Quantity: in.Quantity}, nil
}

func (m *mockShipmentStore) UpdateShipment(ctx context.Context, id string, in domain.ShipmentInput) (*domain.Shipment, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, in)
	}
	return &domain.Shipment{ID: id, Status: in.Status, Quantity: in.Quantity}, nil
}

func (m *mockShipmentStore) DeleteShipment(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

type mockMedicationStore struct {
	listFn   func(ctx context.Context) ([]domain.Medication, error)
	getFn    func(ctx context.Context, id string) (*domain.Medication, error)
	createFn func(ctx context.Context, in domain.MedicationInput) (*domain.Medication, error)
}

func (m *mockMedicationStore) ListMedications(ctx context.Context) ([]domain.Medication, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockMedicationStore) GetMedication(ctx context.Context, id string) (*domain.Medication, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return &domain.Medication{ID: id}, nil
}

func (m *mockMedicationStore) CreateMedication(ctx context.Context, in domain.MedicationInput) (*domain.Medication, error) {
	if m.createFn != nil {
		return m.createFn(ctx, in)
	}
	return &domain.Medication{ID: "m-new", Name: in.Name}, nil
}

func (m *mockMedicationStore) UpdateMedication(ctx context.Context, id string, in domain.MedicationInput) (*domain.Medication, error) {
	return &domain.Medication{ID: id, Name: in.Name}, nil
}

func (m *mockMedicationStore) DeleteMedication(ctx context.Context, id string) error {
	return nil
}

type mockProfileStore struct {
	getFn    func(ctx context.Context) (*domain.Profile, error)
	updateFn func(ctx context.Context, in domain.ProfileInput) (*domain.Profile, error)
}

func (m *mockProfileStore) GetProfile(ctx context.Context) (*domain.Profile, error) {
	if m.getFn != nil {
		return m.getFn(ctx)
	}
	return nil, domain.ErrNotFound
}

func (m *mockProfileStore) UpdateProfile(ctx context.Context, in domain.ProfileInput) (*domain.Profile, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, in)
	}
	return &domain.Profile{Email: in.Email, FirstName: in.FirstName, LastName: in.LastName}, nil
}

// mockBackend hands out the same stores for every session and records the
// sessions it was asked to open.
type mockBackend struct {
	entries     *mockEntryStore
	shipments   *mockShipmentStore
	medications *mockMedicationStore
	profiles    *mockProfileStore
	opened      []*domain.Session
}

func newMockBackend() *mockBackend {
	return &mockBackend{
		entries:     &mockEntryStore{},
		shipments:   &mockShipmentStore{},
		medications: &mockMedicationStore{},
		profiles:    &mockProfileStore{},
	}
}

func (b *mockBackend) WeightEntries(sess *domain.Session) domain.WeightEntryStore {
	b.opened = append(b.opened, sess)
	return b.entries
}

func (b *mockBackend) Shipments(sess *domain.Session) domain.ShipmentStore {
	return b.shipments
}

func (b *mockBackend) Medications(sess *domain.Session) domain.MedicationStore {
	return b.medications
}

func (b *mockBackend) Profiles(sess *domain.Session) domain.ProfileStore {
	return b.profiles
}
