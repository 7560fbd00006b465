package domain

import (
	"context"
	"math"
	"time"
)

// Profile is the patient's personal information.
type Profile struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	DateOfBirth    Day    `json:"dateOfBirth"`
	Phone          string `json:"phone,omitempty"`
	EnrollmentDate Day    `json:"enrollmentDate"`
}

// ProfileInput carries the editable fields of a profile.
type ProfileInput struct {
	Email          string `json:"email"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	DateOfBirth    Day    `json:"dateOfBirth"`
	Phone          string `json:"phone,omitempty"`
	EnrollmentDate Day    `json:"enrollmentDate"`
}

// ProfileStore is the port to the session user's profile.
type ProfileStore interface {
	GetProfile(ctx context.Context) (*Profile, error)
	UpdateProfile(ctx context.Context, in ProfileInput) (*Profile, error)
}

// Backend opens the stores of the user a session belongs to. Stores never
// read credentials from anywhere but the session they were opened with.
type Backend interface {
	WeightEntries(sess *Session) WeightEntryStore
	Shipments(sess *Session) ShipmentStore
	Medications(sess *Session) MedicationStore
	Profiles(sess *Session) ProfileStore
}

// FullDaysSince returns the number of whole days from local midnight of d to
// now, truncated toward zero.
func FullDaysSince(d Day, now time.Time) (int, bool) {
	if d.IsZero() {
		return 0, false
	}
	y, m, dd := d.Time().Date()
	start := time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)
	ny, nm, nd := now.Date()
	h, mi, s := now.Clock()
	end := time.Date(ny, nm, nd, h, mi, s, 0, time.UTC)
	return int(end.Sub(start).Hours() / 24), true
}

// AgeOn returns whole years lived since the date of birth, counting a year
// as 365.25 days.
func AgeOn(dob Day, now time.Time) (int, bool) {
	days, ok := FullDaysSince(dob, now)
	if !ok {
		return 0, false
	}
	return int(math.Floor(float64(days) / 365.25)), true
}
