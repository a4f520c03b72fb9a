package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"spartan/trainer/internal/domain"
	"spartan/trainer/internal/pace"
)

// athleteFile is the YAML athlete profile read by `plangen generate`.
//
//	name: Ana
//	threshold_pace: "5:30"
//	threshold_hr_bpm: 165
//	availability:
//	  days: [tue, thu, sat]
//	  max_minutes: {tue: 50, sat: 100}
//	  preferred_long_run_day: sat
//	goal:
//	  race_date: "2025-03-09"
//	  race_name: Spring Half
type athleteFile struct {
	ID                    string  `yaml:"id,omitempty"`
	Name                  string  `yaml:"name"`
	Email                 string  `yaml:"email,omitempty"`
	ThresholdPace         string  `yaml:"threshold_pace,omitempty"`
	ThresholdPaceSecPerKm float64 `yaml:"threshold_pace_sec_per_km,omitempty"`
	ThresholdHrBpm        int     `yaml:"threshold_hr_bpm,omitempty"`
	Availability          struct {
		Days                []domain.DayKey       `yaml:"days"`
		MaxMinutes          map[domain.DayKey]int `yaml:"max_minutes"`
		PreferredLongRunDay domain.DayKey         `yaml:"preferred_long_run_day"`
		WeekendLongRunAvoid bool                  `yaml:"weekend_long_run_avoid"`
	} `yaml:"availability"`
	Goal *struct {
		RaceDate string `yaml:"race_date"`
		RaceName string `yaml:"race_name"`
	} `yaml:"goal"`
}

func readAthleteFile(path string) (*athleteFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f athleteFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &f, nil
}

// athlete converts the file into a domain profile. An "M:SS" threshold_pace
// takes precedence over threshold_pace_sec_per_km.
func (f *athleteFile) athlete() (*domain.Athlete, error) {
	a := &domain.Athlete{
		Name:                  f.Name,
		Email:                 f.Email,
		ThresholdPaceSecPerKm: f.ThresholdPaceSecPerKm,
		ThresholdHrBpm:        f.ThresholdHrBpm,
		Availability: domain.AvailabilityProfile{
			DaysAvailable:       make(map[domain.DayKey]bool, len(f.Availability.Days)),
			MaxMinutesByDay:     f.Availability.MaxMinutes,
			PreferredLongRunDay: f.Availability.PreferredLongRunDay,
			WeekendLongRunAvoid: f.Availability.WeekendLongRunAvoid,
		},
	}
	if f.ThresholdPace != "" {
		p := pace.ParseSecPerKm(f.ThresholdPace)
		if !p.Parsed {
			return nil, fmt.Errorf("threshold_pace %q is not M:SS", f.ThresholdPace)
		}
		a.ThresholdPaceSecPerKm = float64(p.Seconds)
	}
	for _, d := range f.Availability.Days {
		a.Availability.DaysAvailable[d] = true
	}
	if f.Goal != nil {
		a.Goal = &domain.TrainingGoal{RaceDate: f.Goal.RaceDate, RaceName: f.Goal.RaceName}
	}
	return a, nil
}
