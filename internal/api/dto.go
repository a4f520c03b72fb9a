package api

import (
	"time"

	"spartan/trainer/internal/domain"
	"spartan/trainer/internal/export"
	"spartan/trainer/internal/planner"
)

// --- Athlete DTOs ---

// ThresholdsRequest accepts the threshold pace either as seconds per km or
// as an "M:SS" string; the string wins when both are given.
type ThresholdsRequest struct {
	ThresholdPaceSecPerKm float64 `json:"thresholdPaceSecPerKm" binding:"omitempty,min=0"`
	ThresholdPace         string  `json:"thresholdPace"`
	ThresholdHrBpm        int     `json:"thresholdHrBpm" binding:"omitempty,min=0,max=250"`
}

type CreateAthleteRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"omitempty,email"`
	ThresholdsRequest
	Availability domain.AvailabilityProfile `json:"availability"`
	Goal         *domain.TrainingGoal       `json:"goal"`
}

// UpdateAthleteRequest changes only the sections that are present.
type UpdateAthleteRequest struct {
	Thresholds   *ThresholdsRequest          `json:"thresholds"`
	Availability *domain.AvailabilityProfile `json:"availability"`
	Goal         *domain.TrainingGoal        `json:"goal"`
}

// --- Plan DTOs ---

type RegeneratePlanRequest struct {
	StartDate string `json:"startDate"` // yyyy-MM-dd, defaults to today
}

// PreviewRequest mirrors the generator input.
type PreviewRequest struct {
	StartDate             string                 `json:"startDate" binding:"required"`
	RaceDate              string                 `json:"raceDate" binding:"required"`
	DaysAvailable         map[domain.DayKey]bool `json:"daysAvailable"`
	MaxMinutes            map[domain.DayKey]int  `json:"maxMinutes"`
	PreferredLongRunDay   domain.DayKey          `json:"preferredLongRunDay"`
	WeekendLongRunAvoid   bool                   `json:"weekendLongRunAvoid"`
	ThresholdPaceSecPerKm float64                `json:"thresholdPaceSecPerKm" binding:"omitempty,min=0"`
	ThresholdHrBpm        int                    `json:"thresholdHrBpm" binding:"omitempty,min=0"`
}

type PreviewResponse struct {
	TotalWeeks            int               `json:"totalWeeks"`
	Layout                planner.DayLayout `json:"layout"`
	NoAvailableDays       bool              `json:"noAvailableDays"`
	HorizonClamped        bool              `json:"horizonClamped"`
	ThresholdPaceSecPerKm float64           `json:"thresholdPaceSecPerKm"`
	ThresholdHrBpm        int               `json:"thresholdHrBpm"`
	Sessions              []SessionResponse `json:"sessions"`
}

// StepResponse adds display strings to a stored step.
type StepResponse struct {
	domain.Step
	DurationDisplay       string  `json:"duration_display"`
	TargetPaceLowDisplay  *string `json:"target_pace_low_display"`
	TargetPaceHighDisplay *string `json:"target_pace_high_display"`
}

// SessionResponse keeps the snake_case session vocabulary and adds labels.
type SessionResponse struct {
	domain.Session
	TypeLabel string         `json:"type_label"`
	DayLabel  string         `json:"day_label"`
	Steps     []StepResponse `json:"steps"`
}

func MapSessionToResponse(s *domain.Session) SessionResponse {
	resp := SessionResponse{
		Session:   *s,
		TypeLabel: s.SessionType.Label(),
		Steps:     make([]StepResponse, len(s.Steps)),
	}
	if d, err := time.Parse(domain.DateLayout, s.SessionDate); err == nil {
		resp.DayLabel = domain.DayKeyOf(d).Label()
	}
	for i, st := range s.Steps {
		resp.Steps[i] = StepResponse{
			Step:                  st,
			DurationDisplay:       export.DurationDisplay(st),
			TargetPaceLowDisplay:  export.PaceDisplay(st.TargetPaceLowSecPerKm),
			TargetPaceHighDisplay: export.PaceDisplay(st.TargetPaceHighSecPerKm),
		}
	}
	return resp
}

func MapSessionsToResponse(sessions []domain.Session) []SessionResponse {
	responses := make([]SessionResponse, len(sessions))
	for i := range sessions {
		responses[i] = MapSessionToResponse(&sessions[i])
	}
	return responses
}

// --- Export DTOs ---

type ExportRequest struct {
	PlanID     string             `json:"planId" binding:"required"`
	Range      domain.ExportRange `json:"range"`
	ExportType domain.ExportType  `json:"exportType"`
}

type ExportJobResponse struct {
	*domain.ExportJob
	DownloadURL string `json:"downloadUrl,omitempty"`
}
