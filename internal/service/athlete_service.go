package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"spartan/trainer/internal/domain"
	"spartan/trainer/internal/pace"
	"spartan/trainer/internal/repository"
)

// --- Error Definitions ---
var (
	ErrAthleteNotFound  = errors.New("athlete not found")
	ErrValidationFailed = errors.New("validation failed")
)

// Thresholds are the fallback physiology used when an athlete has none set.
type Thresholds struct {
	PaceSecPerKm float64
	HrBpm        int
}

// resolve returns the athlete's thresholds with defaults filled in.
func (d Thresholds) resolve(a *domain.Athlete) Thresholds {
	t := Thresholds{PaceSecPerKm: a.ThresholdPaceSecPerKm, HrBpm: a.ThresholdHrBpm}
	if t.PaceSecPerKm <= 0 {
		t.PaceSecPerKm = d.PaceSecPerKm
	}
	if t.HrBpm <= 0 {
		t.HrBpm = d.HrBpm
	}
	return t
}

// PaceZone is a pace zone with its bounds formatted as M:SS.
type PaceZone struct {
	pace.Zone
	LowDisplay  string `json:"lowDisplay"`
	HighDisplay string `json:"highDisplay"`
}

// AthleteZones is the zone table for an athlete's (possibly defaulted) thresholds.
type AthleteZones struct {
	ThresholdPaceSecPerKm float64     `json:"thresholdPaceSecPerKm"`
	ThresholdPaceDisplay  string      `json:"thresholdPaceDisplay"`
	ThresholdHrBpm        int         `json:"thresholdHrBpm"`
	PaceDefaulted         bool        `json:"paceDefaulted"`
	HrDefaulted           bool        `json:"hrDefaulted"`
	Pace                  []PaceZone  `json:"pace"`
	HR                    []pace.Zone `json:"hr"`
}

// AthleteService manages the profile inputs of plan generation.
type AthleteService interface {
	CreateAthlete(ctx context.Context, athlete *domain.Athlete) (*domain.Athlete, error)
	GetAthlete(ctx context.Context, id primitive.ObjectID) (*domain.Athlete, error)
	UpdateThresholds(ctx context.Context, id primitive.ObjectID, paceSecPerKm float64, hrBpm int) (*domain.Athlete, error)
	UpdateAvailability(ctx context.Context, id primitive.ObjectID, availability domain.AvailabilityProfile) (*domain.Athlete, error)
	SetGoal(ctx context.Context, id primitive.ObjectID, goal domain.TrainingGoal) (*domain.Athlete, error)
	GetZones(ctx context.Context, id primitive.ObjectID) (*AthleteZones, error)
}

type athleteService struct {
	athleteRepo repository.AthleteRepository
	defaults    Thresholds
}

// NewAthleteService creates a new instance of athleteService.
func NewAthleteService(athleteRepo repository.AthleteRepository, defaults Thresholds) AthleteService {
	return &athleteService{athleteRepo: athleteRepo, defaults: defaults}
}

func (s *athleteService) CreateAthlete(ctx context.Context, athlete *domain.Athlete) (*domain.Athlete, error) {
	athlete.Name = strings.TrimSpace(athlete.Name)
	if athlete.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidationFailed)
	}
	if err := validateThresholds(athlete.ThresholdPaceSecPerKm, athlete.ThresholdHrBpm); err != nil {
		return nil, err
	}
	if err := ValidateAvailability(athlete.Availability); err != nil {
		return nil, err
	}
	if athlete.Goal != nil {
		if err := validateGoal(*athlete.Goal); err != nil {
			return nil, err
		}
	}

	if _, err := s.athleteRepo.Create(ctx, athlete); err != nil {
		return nil, err
	}
	return athlete, nil
}

func (s *athleteService) GetAthlete(ctx context.Context, id primitive.ObjectID) (*domain.Athlete, error) {
	athlete, err := s.athleteRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAthleteNotFound
		}
		return nil, err
	}
	return athlete, nil
}

// UpdateThresholds sets threshold pace and HR. Zero clears a value so the
// defaults apply again.
func (s *athleteService) UpdateThresholds(ctx context.Context, id primitive.ObjectID, paceSecPerKm float64, hrBpm int) (*domain.Athlete, error) {
	if err := validateThresholds(paceSecPerKm, hrBpm); err != nil {
		return nil, err
	}
	return s.update(ctx, id, func(a *domain.Athlete) {
		a.ThresholdPaceSecPerKm = paceSecPerKm
		a.ThresholdHrBpm = hrBpm
	})
}

func (s *athleteService) UpdateAvailability(ctx context.Context, id primitive.ObjectID, availability domain.AvailabilityProfile) (*domain.Athlete, error) {
	if err := ValidateAvailability(availability); err != nil {
		return nil, err
	}
	return s.update(ctx, id, func(a *domain.Athlete) { a.Availability = availability })
}

func (s *athleteService) SetGoal(ctx context.Context, id primitive.ObjectID, goal domain.TrainingGoal) (*domain.Athlete, error) {
	if err := validateGoal(goal); err != nil {
		return nil, err
	}
	return s.update(ctx, id, func(a *domain.Athlete) { a.Goal = &goal })
}

// update is read-modify-write on the whole profile.
func (s *athleteService) update(ctx context.Context, id primitive.ObjectID, apply func(*domain.Athlete)) (*domain.Athlete, error) {
	athlete, err := s.GetAthlete(ctx, id)
	if err != nil {
		return nil, err
	}
	apply(athlete)
	if err := s.athleteRepo.Update(ctx, athlete); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAthleteNotFound
		}
		return nil, err
	}
	return athlete, nil
}

// GetZones computes pace and HR zones from the athlete's thresholds, or the
// defaults when unset.
func (s *athleteService) GetZones(ctx context.Context, id primitive.ObjectID) (*AthleteZones, error) {
	athlete, err := s.GetAthlete(ctx, id)
	if err != nil {
		return nil, err
	}
	t := s.defaults.resolve(athlete)
	return ZonesFor(t, athlete.ThresholdPaceSecPerKm <= 0, athlete.ThresholdHrBpm <= 0), nil
}

// ZonesFor builds the zone tables for fixed thresholds.
func ZonesFor(t Thresholds, paceDefaulted, hrDefaulted bool) *AthleteZones {
	z := &AthleteZones{
		ThresholdPaceSecPerKm: t.PaceSecPerKm,
		ThresholdPaceDisplay:  pace.SecPerKmToDisplay(pace.Scale(t.PaceSecPerKm, 1)),
		ThresholdHrBpm:        t.HrBpm,
		PaceDefaulted:         paceDefaulted,
		HrDefaulted:           hrDefaulted,
		HR:                    pace.HRZones(t.HrBpm),
	}
	for _, zone := range pace.PaceZones(t.PaceSecPerKm) {
		z.Pace = append(z.Pace, PaceZone{
			Zone:        zone,
			LowDisplay:  pace.SecPerKmToDisplay(zone.Low),
			HighDisplay: pace.SecPerKmToDisplay(zone.High),
		})
	}
	return z
}

func validateThresholds(paceSecPerKm float64, hrBpm int) error {
	if paceSecPerKm < 0 || hrBpm < 0 {
		return fmt.Errorf("%w: thresholds must not be negative", ErrValidationFailed)
	}
	return nil
}

// ValidateAvailability checks day keys and minute budgets.
func ValidateAvailability(a domain.AvailabilityProfile) error {
	for d := range a.DaysAvailable {
		if !d.Valid() {
			return fmt.Errorf("%w: unknown day %q", ErrValidationFailed, d)
		}
	}
	for d, m := range a.MaxMinutesByDay {
		if !d.Valid() {
			return fmt.Errorf("%w: unknown day %q", ErrValidationFailed, d)
		}
		if m < 0 {
			return fmt.Errorf("%w: negative minutes for %s", ErrValidationFailed, d)
		}
	}
	if a.PreferredLongRunDay != "" && !a.PreferredLongRunDay.Valid() {
		return fmt.Errorf("%w: unknown long run day %q", ErrValidationFailed, a.PreferredLongRunDay)
	}
	return nil
}

func validateGoal(g domain.TrainingGoal) error {
	if _, err := time.Parse(domain.DateLayout, g.RaceDate); err != nil {
		return fmt.Errorf("%w: race date must be yyyy-MM-dd", ErrValidationFailed)
	}
	return nil
}
