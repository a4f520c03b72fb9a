package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"spartan/trainer/internal/domain"
	"spartan/trainer/internal/planner"
	"spartan/trainer/internal/repository"
)

var (
	ErrPlanNotFound    = errors.New("training plan not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrNoRaceGoal      = errors.New("athlete has no race goal")
	ErrInvalidDate     = errors.New("invalid date, expected yyyy-MM-dd")
)

// RegenerateResult describes a plan after its sessions were replaced.
type RegenerateResult struct {
	Plan            *domain.TrainingPlan `json:"plan"`
	SessionCount    int                  `json:"sessionCount"`
	TotalWeeks      int                  `json:"totalWeeks"`
	Layout          planner.DayLayout    `json:"layout"`
	NoAvailableDays bool                 `json:"noAvailableDays"`
	HorizonClamped  bool                 `json:"horizonClamped"`
}

// --- Service Interface ---

type PlanService interface {
	// RegeneratePlan rebuilds the athlete's active plan from startDate
	// (yyyy-MM-dd, empty for today) to the goal race date.
	RegeneratePlan(ctx context.Context, athleteID primitive.ObjectID, startDate string) (*RegenerateResult, error)
	// Preview runs the generator without persisting anything.
	Preview(in planner.Input) planner.Result
	GetPlan(ctx context.Context, planID primitive.ObjectID) (*domain.TrainingPlan, error)
	ListPlans(ctx context.Context, athleteID primitive.ObjectID) ([]domain.TrainingPlan, error)
	GetSessions(ctx context.Context, planID primitive.ObjectID, from, to string) ([]domain.Session, error)
	GetSession(ctx context.Context, sessionID primitive.ObjectID) (*domain.Session, error)
}

// --- Service Implementation ---

type planService struct {
	athleteRepo repository.AthleteRepository
	planRepo    repository.TrainingPlanRepository
	sessionRepo repository.SessionRepository
	defaults    Thresholds
	locks       *keyedLock
	now         func() time.Time
}

func NewPlanService(
	athleteRepo repository.AthleteRepository,
	planRepo repository.TrainingPlanRepository,
	sessionRepo repository.SessionRepository,
	defaults Thresholds,
) PlanService {
	return &planService{
		athleteRepo: athleteRepo,
		planRepo:    planRepo,
		sessionRepo: sessionRepo,
		defaults:    defaults,
		locks:       newKeyedLock(),
		now:         time.Now,
	}
}

func (s *planService) RegeneratePlan(ctx context.Context, athleteID primitive.ObjectID, startDate string) (*RegenerateResult, error) {
	// 1. Load the athlete profile
	athlete, err := s.athleteRepo.GetByID(ctx, athleteID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAthleteNotFound
		}
		return nil, fmt.Errorf("failed to load athlete: %w", err)
	}
	if athlete.Goal == nil || athlete.Goal.RaceDate == "" {
		return nil, ErrNoRaceGoal
	}

	// 2. Resolve dates
	raceDate, err := time.Parse(domain.DateLayout, athlete.Goal.RaceDate)
	if err != nil {
		return nil, fmt.Errorf("%w: race date %q", ErrInvalidDate, athlete.Goal.RaceDate)
	}
	start := s.now().UTC().Truncate(24 * time.Hour)
	if startDate != "" {
		if start, err = time.Parse(domain.DateLayout, startDate); err != nil {
			return nil, fmt.Errorf("%w: start date %q", ErrInvalidDate, startDate)
		}
	}

	// 3. Find or create the active plan
	plan, err := s.activePlan(ctx, athlete)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock("plan:" + plan.ID.Hex())
	defer unlock()

	// 4. Generate
	t := s.defaults.resolve(athlete)
	res := planner.Generate(planner.Input{
		StartDate:             start,
		RaceDate:              raceDate,
		Availability:          athlete.Availability,
		ThresholdPaceSecPerKm: t.PaceSecPerKm,
		ThresholdHrBpm:        t.HrBpm,
	})
	if res.NoAvailableDays {
		log.Printf("WARN: athlete %s has no available days, plan %s will be emptied", athlete.ID.Hex(), plan.ID.Hex())
	}

	// 5. Replace sessions, then move the plan window
	n, err := s.sessionRepo.ReplaceForPlan(ctx, plan.ID, res.Sessions)
	if err != nil {
		return nil, fmt.Errorf("failed to replace sessions for plan %s: %w", plan.ID.Hex(), err)
	}
	plan.StartDate = start.Format(domain.DateLayout)
	plan.EndDate = raceDate.Format(domain.DateLayout)
	if err := s.planRepo.UpdateDates(ctx, plan.ID, plan.StartDate, plan.EndDate); err != nil {
		return nil, fmt.Errorf("failed to update plan dates: %w", err)
	}

	log.Printf("INFO: regenerated plan %s for athlete %s: %d sessions over %d weeks", plan.ID.Hex(), athlete.ID.Hex(), n, res.TotalWeeks)
	return &RegenerateResult{
		Plan:            plan,
		SessionCount:    n,
		TotalWeeks:      res.TotalWeeks,
		Layout:          res.Layout,
		NoAvailableDays: res.NoAvailableDays,
		HorizonClamped:  res.HorizonClamped,
	}, nil
}

// activePlan returns the athlete's active plan, creating it on first use.
// Creation is serialized per athlete so concurrent first regenerations agree
// on one plan.
func (s *planService) activePlan(ctx context.Context, athlete *domain.Athlete) (*domain.TrainingPlan, error) {
	unlock := s.locks.Lock("athlete:" + athlete.ID.Hex())
	defer unlock()

	plan, err := s.planRepo.GetActiveByAthleteID(ctx, athlete.ID)
	if err == nil {
		return plan, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up active plan: %w", err)
	}

	name := "Training plan"
	if athlete.Goal != nil && athlete.Goal.RaceName != "" {
		name = athlete.Goal.RaceName
	}
	plan = &domain.TrainingPlan{
		AthleteID: athlete.ID,
		Name:      name,
		Status:    domain.PlanActive,
	}
	if _, err := s.planRepo.Create(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to create plan: %w", err)
	}
	return plan, nil
}

func (s *planService) Preview(in planner.Input) planner.Result {
	if in.ThresholdPaceSecPerKm <= 0 {
		in.ThresholdPaceSecPerKm = s.defaults.PaceSecPerKm
	}
	if in.ThresholdHrBpm <= 0 {
		in.ThresholdHrBpm = s.defaults.HrBpm
	}
	return planner.Generate(in)
}

func (s *planService) GetPlan(ctx context.Context, planID primitive.ObjectID) (*domain.TrainingPlan, error) {
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return plan, nil
}

func (s *planService) ListPlans(ctx context.Context, athleteID primitive.ObjectID) ([]domain.TrainingPlan, error) {
	if _, err := s.athleteRepo.GetByID(ctx, athleteID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAthleteNotFound
		}
		return nil, err
	}
	return s.planRepo.GetByAthleteID(ctx, athleteID)
}

func (s *planService) GetSessions(ctx context.Context, planID primitive.ObjectID, from, to string) ([]domain.Session, error) {
	for _, d := range []string{from, to} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(domain.DateLayout, d); err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidDate, d)
		}
	}
	if _, err := s.GetPlan(ctx, planID); err != nil {
		return nil, err
	}
	return s.sessionRepo.GetByPlanID(ctx, planID, from, to)
}

func (s *planService) GetSession(ctx context.Context, sessionID primitive.ObjectID) (*domain.Session, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}
