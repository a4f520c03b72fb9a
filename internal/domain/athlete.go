package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DayKey identifies a weekday in availability maps.
type DayKey string

const (
	Mon DayKey = "mon"
	Tue DayKey = "tue"
	Wed DayKey = "wed"
	Thu DayKey = "thu"
	Fri DayKey = "fri"
	Sat DayKey = "sat"
	Sun DayKey = "sun"
)

// Days lists the day keys in canonical weekly order (Monday first).
var Days = []DayKey{Mon, Tue, Wed, Thu, Fri, Sat, Sun}

var dayLabels = map[DayKey]string{
	Mon: "Monday", Tue: "Tuesday", Wed: "Wednesday", Thu: "Thursday",
	Fri: "Friday", Sat: "Saturday", Sun: "Sunday",
}

// Index returns the position of d in Days, or -1 for an unknown key.
func (d DayKey) Index() int {
	for i, k := range Days {
		if k == d {
			return i
		}
	}
	return -1
}

func (d DayKey) Valid() bool { return d.Index() >= 0 }

func (d DayKey) IsWeekend() bool { return d == Sat || d == Sun }

// Label returns the full English day name.
func (d DayKey) Label() string { return dayLabels[d] }

// DayKeyOf maps a calendar date to its day key.
func DayKeyOf(t time.Time) DayKey {
	// time.Weekday starts on Sunday.
	return Days[(int(t.Weekday())+6)%7]
}

// AvailabilityProfile describes when and how long an athlete can train.
type AvailabilityProfile struct {
	DaysAvailable       map[DayKey]bool `bson:"days_available" json:"daysAvailable"`
	MaxMinutesByDay     map[DayKey]int  `bson:"max_minutes_by_day" json:"maxMinutesByDay"`
	PreferredLongRunDay DayKey          `bson:"preferred_long_run_day" json:"preferredLongRunDay"`
	WeekendLongRunAvoid bool            `bson:"weekend_long_run_avoid" json:"weekendLongRunAvoid"`
}

// HasAvailableDay reports whether at least one day is flagged available.
func (a AvailabilityProfile) HasAvailableDay() bool {
	for _, v := range a.DaysAvailable {
		if v {
			return true
		}
	}
	return false
}

// TrainingGoal holds the race the plan builds towards. RaceDate is yyyy-MM-dd.
type TrainingGoal struct {
	RaceDate string `bson:"race_date" json:"raceDate"`
	RaceName string `bson:"race_name,omitempty" json:"raceName,omitempty"`
}

// Athlete is the profile the generator reads. Zero thresholds mean "not set".
type Athlete struct {
	ID                    primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name                  string              `bson:"name" json:"name"`
	Email                 string              `bson:"email,omitempty" json:"email,omitempty"`
	ThresholdPaceSecPerKm float64             `bson:"threshold_pace_sec_per_km,omitempty" json:"thresholdPaceSecPerKm,omitempty"`
	ThresholdHrBpm        int                 `bson:"threshold_hr_bpm,omitempty" json:"thresholdHrBpm,omitempty"`
	Availability          AvailabilityProfile `bson:"availability" json:"availability"`
	Goal                  *TrainingGoal       `bson:"goal,omitempty" json:"goal,omitempty"`
	CreatedAt             time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt             time.Time           `bson:"updatedAt" json:"updatedAt"`
}
