// internal/domain/training_plan.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanStatus tracks the lifecycle of a plan.
type PlanStatus string

const (
	PlanActive   PlanStatus = "active"
	PlanArchived PlanStatus = "archived"
)

// TrainingPlan groups generated sessions under a date range. Its content is
// replaced wholesale on every regeneration.
type TrainingPlan struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AthleteID primitive.ObjectID `bson:"athleteId" json:"athleteId"`
	Name      string             `bson:"name" json:"name"`
	StartDate string             `bson:"startDate" json:"startDate"` // yyyy-MM-dd
	EndDate   string             `bson:"endDate" json:"endDate"`     // race date
	Status    PlanStatus         `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
