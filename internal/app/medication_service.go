package app

import (
	"context"
	"strings"

	"careportal/internal/domain"
)

// MedicationService manages the medications of the program.
type MedicationService struct {
	backend domain.Backend
}

// NewMedicationService creates a MedicationService reading through backend.
func NewMedicationService(backend domain.Backend) *MedicationService {
	return &MedicationService{backend: backend}
}

// List returns every medication of the session's user.
func (s *MedicationService) List(ctx context.Context, sess *domain.Session) ([]domain.Medication, error) {
	meds, err := s.backend.Medications(sess).ListMedications(ctx)
	if err != nil {
		return nil, err
	}
	if meds == nil {
		meds = []domain.Medication{}
	}
	return meds, nil
}

// Get returns one medication.
func (s *MedicationService) Get(ctx context.Context, sess *domain.Session, id string) (*domain.Medication, error) {
	return s.backend.Medications(sess).GetMedication(ctx, id)
}

// Create validates and stores a medication.
func (s *MedicationService) Create(ctx context.Context, sess *domain.Session, in domain.MedicationInput) (*domain.Medication, error) {
	if err := validateMedication(in); err != nil {
		return nil, err
	}
	return s.backend.Medications(sess).CreateMedication(ctx, in)
}

// Update validates and replaces a medication.
func (s *MedicationService) Update(ctx context.Context, sess *domain.Session, id string, in domain.MedicationInput) (*domain.Medication, error) {
	if err := validateMedication(in); err != nil {
		return nil, err
	}
	return s.backend.Medications(sess).UpdateMedication(ctx, id, in)
}

// Delete removes a medication.
func (s *MedicationService) Delete(ctx context.Context, sess *domain.Session, id string) error {
	return s.backend.Medications(sess).DeleteMedication(ctx, id)
}

func validateMedication(in domain.MedicationInput) error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return invalid("name", "is required")
	case strings.TrimSpace(in.Dosage) == "":
		return invalid("dosage", "is required")
	case strings.TrimSpace(in.Frequency) == "":
		return invalid("frequency", "is required")
	case !in.StartDate.IsZero() && !in.EndDate.IsZero() && in.EndDate.Before(in.StartDate):
		return invalid("endDate", "must not be before startDate")
	}
	return nil
}
