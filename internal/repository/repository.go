package repository

import (
	"context" // Standard for request-scoped deadlines, cancellation signals, etc.

	"go.mongodb.org/mongo-driver/bson/primitive" // For using ObjectIDs

	"spartan/trainer/internal/domain"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
	ErrInvalidInput = RepositoryError("invalid input")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// AthleteRepository stores athlete profiles (thresholds, availability, goal).
type AthleteRepository interface {
	Create(ctx context.Context, athlete *domain.Athlete) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Athlete, error)
	Update(ctx context.Context, athlete *domain.Athlete) error
}

// TrainingPlanRepository defines the interface for interacting with training plan data.
type TrainingPlanRepository interface {
	Create(ctx context.Context, plan *domain.TrainingPlan) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.TrainingPlan, error)
	GetByAthleteID(ctx context.Context, athleteID primitive.ObjectID) ([]domain.TrainingPlan, error)
	// GetActiveByAthleteID returns ErrNotFound when the athlete has no active plan.
	GetActiveByAthleteID(ctx context.Context, athleteID primitive.ObjectID) (*domain.TrainingPlan, error)
	UpdateDates(ctx context.Context, id primitive.ObjectID, startDate, endDate string) error
}

// SessionRepository stores sessions and their steps. Steps are always read
// back attached to their session, ordered by step_order.
type SessionRepository interface {
	// ReplaceForPlan deletes every session (and step) of the plan, then
	// inserts sessions with their steps. It returns the number inserted.
	ReplaceForPlan(ctx context.Context, planID primitive.ObjectID, sessions []domain.Session) (int, error)
	// GetByPlanID returns sessions ordered by date. Empty from/to leave that
	// side of the range open; both bounds are inclusive yyyy-MM-dd dates.
	GetByPlanID(ctx context.Context, planID primitive.ObjectID, from, to string) ([]domain.Session, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Session, error)
}

// ExportJobRepository logs rendered exports.
type ExportJobRepository interface {
	Create(ctx context.Context, job *domain.ExportJob) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ExportJob, error)
	GetByAthleteID(ctx context.Context, athleteID primitive.ObjectID) ([]domain.ExportJob, error)
}
