package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DateLayout is the ISO calendar-date format used for session and plan dates.
// Lexicographic order of formatted dates equals chronological order.
const DateLayout = "2006-01-02"

// SessionType classifies a workout session.
type SessionType string

const (
	SessionEasy     SessionType = "easy"
	SessionInterval SessionType = "interval"
	SessionTempo    SessionType = "tempo"
	SessionLong     SessionType = "long"
	SessionRecovery SessionType = "recovery"
	SessionRaceSim  SessionType = "race_sim"
	SessionStrength SessionType = "strength"
)

var sessionTypeLabels = map[SessionType]string{
	SessionEasy:     "Easy Run",
	SessionInterval: "Intervals",
	SessionTempo:    "Tempo",
	SessionLong:     "Long Run",
	SessionRecovery: "Recovery",
	SessionRaceSim:  "Race Sim",
	SessionStrength: "Strength",
}

func (t SessionType) Label() string { return sessionTypeLabels[t] }

func (t SessionType) Valid() bool {
	_, ok := sessionTypeLabels[t]
	return ok
}

// PrimaryTarget says which target dimension drives a session.
type PrimaryTarget string

const (
	TargetPace PrimaryTarget = "pace"
	TargetHR   PrimaryTarget = "hr"
)

// StepType labels one segment of a session.
type StepType string

const (
	StepWarmup   StepType = "warmup"
	StepWork     StepType = "work"
	StepRecover  StepType = "recover"
	StepCooldown StepType = "cooldown"
)

// DurationType says whether a step's duration is seconds or meters.
type DurationType string

const (
	DurationTime     DurationType = "time"
	DurationDistance DurationType = "distance"
)

// Session is one workout on the calendar. The generator fills only the
// content fields; ID, PlanID and timestamps are assigned by persistence.
// Steps live in their own collection/table and are attached on read.
type Session struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitzero"`
	PlanID        primitive.ObjectID `bson:"plan_id,omitempty" json:"plan_id,omitzero"`
	SessionDate   string             `bson:"session_date" json:"session_date"`
	Title         string             `bson:"title" json:"title"`
	SessionType   SessionType        `bson:"session_type" json:"session_type"`
	PrimaryTarget PrimaryTarget      `bson:"primary_target" json:"primary_target"`
	Notes         string             `bson:"notes" json:"notes"`
	Steps         []Step             `bson:"-" json:"steps"`
	CreatedAt     *time.Time         `bson:"created_at,omitempty" json:"created_at,omitempty"`
	UpdatedAt     *time.Time         `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// Step is one ordered segment of a session. DurationValue is seconds for
// time steps and meters for distance steps. In practice at most one target
// dimension (pace or HR) is set, but both are allowed.
type Step struct {
	ID                     primitive.ObjectID `bson:"_id,omitempty" json:"id,omitzero"`
	SessionID              primitive.ObjectID `bson:"session_id,omitempty" json:"session_id,omitzero"`
	StepOrder              int                `bson:"step_order" json:"step_order"`
	StepType               StepType           `bson:"step_type" json:"step_type"`
	DurationType           DurationType       `bson:"duration_type" json:"duration_type"`
	DurationValue          int                `bson:"duration_value" json:"duration_value"`
	TargetPaceLowSecPerKm  *int               `bson:"target_pace_low_sec_per_km" json:"target_pace_low_sec_per_km"`
	TargetPaceHighSecPerKm *int               `bson:"target_pace_high_sec_per_km" json:"target_pace_high_sec_per_km"`
	TargetHrLowBpm         *int               `bson:"target_hr_low_bpm" json:"target_hr_low_bpm"`
	TargetHrHighBpm        *int               `bson:"target_hr_high_bpm" json:"target_hr_high_bpm"`
	StepNotes              *string            `bson:"step_notes" json:"step_notes"`
}

// HasPaceTarget reports whether a pace band is set.
func (s Step) HasPaceTarget() bool {
	return s.TargetPaceLowSecPerKm != nil || s.TargetPaceHighSecPerKm != nil
}

// HasHRTarget reports whether a heart-rate band is set.
func (s Step) HasHRTarget() bool {
	return s.TargetHrLowBpm != nil || s.TargetHrHighBpm != nil
}
