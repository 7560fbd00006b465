package memory

import (
	"context"
	"fmt"
	"time"

	"careportal/internal/domain"

	"github.com/brianvoe/gofakeit/v6"
)

// SeedDemo fills the user's records with a plausible six-month program so
// the UI has something to show in development. The same seed always yields
// the same data.
func (db *DB) SeedDemo(ctx context.Context, userID string, seed int64) error {
	f := gofakeit.New(seed)
	sess := &domain.Session{UserID: userID}
	today := domain.DayOf(db.now())
	start := today.Time().AddDate(0, -6, 0)

	weight := f.Float64Range(190, 240)
	for day := start; !day.After(today.Time()); day = day.AddDate(0, 0, 7) {
		_, err := db.WeightEntries(sess).CreateEntry(ctx, domain.WeightEntryInput{
			Weight: float64(int(weight*10)) / 10,
			Date:   domain.DayOf(day),
		})
		if err != nil {
			return fmt.Errorf("seed weight entry: %w", err)
		}
		weight -= f.Float64Range(-0.4, 2.2)
	}

	med, err := db.Medications(sess).CreateMedication(ctx, domain.MedicationInput{
		Name:      "Semaglutide",
		Dosage:    "0.5 mg",
		Frequency: "weekly",
		StartDate: domain.DayOf(start),
	})
	if err != nil {
		return fmt.Errorf("seed medication: %w", err)
	}

	addr := domain.Address{
		Street:  f.Street(),
		City:    f.City(),
		State:   f.StateAbr(),
		ZipCode: f.Zip(),
	}
	for i, status := range []domain.ShipmentStatus{
		domain.ShipmentDelivered, domain.ShipmentDelivered, domain.ShipmentShipped, domain.ShipmentPending,
	} {
		ordered := start.AddDate(0, i*2, 0)
		in := domain.ShipmentInput{
			MedicationID:         med.ID,
			Status:               status,
			OrderDate:            domain.DayOf(ordered),
			ExpectedDeliveryDate: domain.DayOf(ordered.AddDate(0, 0, 7)),
			Quantity:             4,
			Items:                []domain.ShipmentItem{{Name: "Pre-filled pen", Quantity: 4}},
			Address:              addr,
		}
		if status != domain.ShipmentPending {
			in.ShippedDate = domain.DayOf(ordered.AddDate(0, 0, 2))
			in.TrackingNumber = f.Regex("1Z[0-9A-Z]{16}")
		}
		if _, err := db.Shipments(sess).CreateShipment(ctx, in); err != nil {
			return fmt.Errorf("seed shipment: %w", err)
		}
	}

	_, err = db.Profiles(sess).UpdateProfile(ctx, domain.ProfileInput{
		Email:          f.Email(),
		FirstName:      f.FirstName(),
		LastName:       f.LastName(),
		DateOfBirth:    domain.DayOf(f.DateRange(time.Date(1955, 1, 1, 0, 0, 0, 0, time.Local), time.Date(2000, 12, 31, 0, 0, 0, 0, time.Local))),
		Phone:          f.Phone(),
		EnrollmentDate: domain.DayOf(start),
	})
	return err
}
