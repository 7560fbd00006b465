package domain

import "context"

// Medication is a prescribed medication in the program.
type Medication struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Dosage    string `json:"dosage"`
	Frequency string `json:"frequency"`
	StartDate Day    `json:"startDate"`
	EndDate   Day    `json:"endDate"`
}

// MedicationInput carries the editable fields of a medication.
type MedicationInput struct {
	Name      string `json:"name"`
	Dosage    string `json:"dosage"`
	Frequency string `json:"frequency"`
	StartDate Day    `json:"startDate"`
	EndDate   Day    `json:"endDate"`
}

// MedicationStore is the port to one user's medications.
type MedicationStore interface {
	ListMedications(ctx context.Context) ([]Medication, error)
	GetMedication(ctx context.Context, id string) (*Medication, error)
	CreateMedication(ctx context.Context, in MedicationInput) (*Medication, error)
	UpdateMedication(ctx context.Context, id string, in MedicationInput) (*Medication, error)
	DeleteMedication(ctx context.Context, id string) error
}
