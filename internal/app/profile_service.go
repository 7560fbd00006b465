package app

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"careportal/internal/domain"

	"golang.org/x/sync/errgroup"
)

// ProfileView is the profile page: personal details plus the derived age,
// time in the program and the shared weight stats.
type ProfileView struct {
	Profile        *domain.Profile     `json:"profile"`
	Age            *int                `json:"age"`
	EnrollmentDays *int                `json:"enrollmentDays"`
	Stats          *domain.WeightStats `json:"stats"`
	Display        domain.StatsDisplay `json:"display"`
}

// ProfileService reads and edits the patient profile.
type ProfileService struct {
	backend domain.Backend
	cfg     domain.StatsConfig
	clock   Clock
}

// NewProfileService creates a ProfileService reading through backend.
func NewProfileService(backend domain.Backend, cfg domain.StatsConfig, clock Clock) *ProfileService {
	return &ProfileService{backend: backend, cfg: cfg, clock: clock}
}

// View loads the profile and the weight series together.
func (s *ProfileService) View(ctx context.Context, sess *domain.Session) (*ProfileView, error) {
	var (
		profile                *domain.Profile
		entries                []domain.WeightEntry
		profileErr, entriesErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		profile, profileErr = s.backend.Profiles(sess).GetProfile(gctx)
		if profileErr != nil {
			profileErr = fmt.Errorf("get profile: %w", profileErr)
		}
		return profileErr
	})
	g.Go(func() error {
		entries, entriesErr = s.backend.WeightEntries(sess).ListEntries(gctx, allEntriesNewestFirst)
		if entriesErr != nil {
			entriesErr = fmt.Errorf("list weight entries: %w", entriesErr)
		}
		return entriesErr
	})
	if err := g.Wait(); err != nil {
		return nil, authFirst(err, profileErr, entriesErr)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, domain.ErrNotFound
	}
	return s.view(profile, entries), nil
}

func (s *ProfileService) view(p *domain.Profile, entries []domain.WeightEntry) *ProfileView {
	now := s.clock.now()
	v := &ProfileView{Profile: p}
	if age, ok := domain.AgeOn(p.DateOfBirth, now); ok {
		v.Age = &age
	}
	if days, ok := domain.FullDaysSince(p.EnrollmentDate, now); ok {
		v.EnrollmentDays = &days
	}
	v.Stats = domain.ComputeStats(entries, now, s.cfg)
	v.Display = v.Stats.Display()
	return v
}

// Update validates and saves profile edits.
func (s *ProfileService) Update(ctx context.Context, sess *domain.Session, in domain.ProfileInput) (*domain.Profile, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(in.Email))
	if err != nil {
		return nil, invalid("email", "must be a valid email address")
	}
	in.Email = addr.Address
	if strings.TrimSpace(in.FirstName) == "" {
		return nil, invalid("firstName", "is required")
	}
	if strings.TrimSpace(in.LastName) == "" {
		return nil, invalid("lastName", "is required")
	}
	if in.DateOfBirth.After(domain.DayOf(s.clock.now())) {
		return nil, invalid("dateOfBirth", "cannot be in the future")
	}
	return s.backend.Profiles(sess).UpdateProfile(ctx, in)
}
