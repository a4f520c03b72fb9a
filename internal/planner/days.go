package planner

import "spartan/trainer/internal/domain"

// Minute budgets assumed for days whose entry is missing or zero.
const (
	fallbackLongRunMinutes = 90
	fallbackQualityMinutes = 45
	fallbackEasyMinutes    = 30
)

const (
	minQualityMinutes = 45
	maxQualityDays    = 2
)

// DayLayout is the weekly slot assignment the generator repeats every week.
// LongRunDay is empty when no day is available.
type DayLayout struct {
	LongRunDay  domain.DayKey   `json:"longRunDay"`
	QualityDays []domain.DayKey `json:"qualityDays"`
	EasyDays    []domain.DayKey `json:"easyDays"`
}

// Empty reports whether the layout has no training days at all.
func (l DayLayout) Empty() bool { return l.LongRunDay == "" }

// ClassifyDays splits the available days into one long-run day, up to two
// quality days and the remaining easy days. Quality days are picked in
// weekly order, not by budget.
func ClassifyDays(a domain.AvailabilityProfile) DayLayout {
	var available []domain.DayKey
	for _, d := range domain.Days {
		if a.DaysAvailable[d] {
			available = append(available, d)
		}
	}
	if len(available) == 0 {
		return DayLayout{}
	}

	longRun := available[len(available)-1]
	if contains(available, a.PreferredLongRunDay) {
		longRun = a.PreferredLongRunDay
	}
	// Weekend avoidance is best effort: keep the weekend day if nothing else is free.
	if a.WeekendLongRunAvoid && longRun.IsWeekend() {
		for i := len(available) - 1; i >= 0; i-- {
			if !available[i].IsWeekend() {
				longRun = available[i]
				break
			}
		}
	}

	layout := DayLayout{LongRunDay: longRun}
	for _, d := range available {
		if d == longRun {
			continue
		}
		if minutesFor(a, d, fallbackQualityMinutes) >= minQualityMinutes && len(layout.QualityDays) < maxQualityDays {
			layout.QualityDays = append(layout.QualityDays, d)
		} else {
			layout.EasyDays = append(layout.EasyDays, d)
		}
	}
	return layout
}

// minutesFor returns the day's budget, or fallback when it is unset.
func minutesFor(a domain.AvailabilityProfile, d domain.DayKey, fallback int) int {
	if m := a.MaxMinutesByDay[d]; m > 0 {
		return m
	}
	return fallback
}

func contains(days []domain.DayKey, d domain.DayKey) bool {
	for _, x := range days {
		if x == d {
			return true
		}
	}
	return false
}
