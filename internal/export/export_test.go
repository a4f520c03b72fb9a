package export

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"spartan/trainer/internal/domain"
	"spartan/trainer/internal/planner"
)

func intp(v int) *int { return &v }
func strp(s string) *string { return &s }

var exportedAt = time.Date(2025, 1, 6, 7, 30, 0, 0, time.UTC)

func sampleSessions() []domain.Session {
	return []domain.Session{
		{
			SessionDate:   "2025-01-07",
			Title:         "Tempo Run",
			SessionType:   domain.SessionTempo,
			PrimaryTarget: domain.TargetPace,
			Notes:         "Comfortably hard.",
			Steps: []domain.Step{
				{StepOrder: 0, StepType: domain.StepWarmup, DurationType: domain.DurationTime, DurationValue: 600, StepNotes: strp("Easy warmup")},
				{StepOrder: 1, StepType: domain.StepWork, DurationType: domain.DurationTime, DurationValue: 1260,
					TargetPaceLowSecPerKm: intp(300), TargetPaceHighSecPerKm: intp(330)},
				{StepOrder: 2, StepType: domain.StepRecover, DurationType: domain.DurationDistance, DurationValue: 400,
					TargetHrLowBpm: intp(124), TargetHrHighBpm: intp(140)},
				{StepOrder: 3, StepType: domain.StepCooldown, DurationType: domain.DurationDistance, DurationValue: 1500},
			},
		},
		{
			SessionDate:   "2025-01-09",
			Title:         "7x2min  Intervals",
			SessionType:   domain.SessionInterval,
			PrimaryTarget: domain.TargetPace,
			Steps:         []domain.Step{},
		},
	}
}

func TestToJSONShape(t *testing.T) {
	data, err := ToJSON(sampleSessions(), exportedAt)
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if raw["format"] != FormatTag {
		t.Errorf("format: got %v", raw["format"])
	}
	if raw["exportedAt"] != "2025-01-06T07:30:00Z" {
		t.Errorf("exportedAt: got %v", raw["exportedAt"])
	}

	sessions := raw["sessions"].([]any)
	second := sessions[1].(map[string]any)
	if second["notes"] != nil {
		t.Errorf("empty notes should be null, got %v", second["notes"])
	}

	steps := sessions[0].(map[string]any)["steps"].([]any)
	work := steps[1].(map[string]any)
	for key, want := range map[string]any{
		"step_order":                 float64(1),
		"duration_display":           "21min",
		"target_pace_low_sec_per_km": float64(300),
		"target_pace_low_display":    "5:00",
		"target_pace_high_display":   "5:30",
		"target_hr_low_bpm":          nil,
		"step_notes":                 nil,
	} {
		if work[key] != want {
			t.Errorf("%s: got %v, want %v", key, work[key], want)
		}
	}
	if got := steps[3].(map[string]any)["duration_display"]; got != "1.5km" {
		t.Errorf("distance display: got %v", got)
	}
	if !strings.Contains(string(data), "\n  \"format\"") {
		t.Errorf("expected two-space indentation")
	}
}

func TestJSONRoundTripPreservesNumbers(t *testing.T) {
	start := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	sessions := planner.GeneratePlan(planner.Input{
		StartDate: start,
		RaceDate:  start.AddDate(0, 0, 56),
		Availability: domain.AvailabilityProfile{
			DaysAvailable:       map[domain.DayKey]bool{domain.Tue: true, domain.Thu: true, domain.Sat: true, domain.Sun: true},
			MaxMinutesByDay:     map[domain.DayKey]int{domain.Tue: 60, domain.Thu: 50, domain.Sat: 30, domain.Sun: 120},
			PreferredLongRunDay: domain.Sun,
		},
	})
	sessions = append(sessions, sampleSessions()...)

	data, err := ToJSON(sessions, exportedAt)
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	doc, err := ParseJSON(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if !doc.ExportedAt.Equal(exportedAt) {
		t.Errorf("exportedAt: got %v", doc.ExportedAt)
	}
	got := doc.ToSessions()
	if !reflect.DeepEqual(got, sessions) {
		t.Fatalf("round trip changed sessions")
	}
}

func TestParseJSONRejectsOtherFormats(t *testing.T) {
	_, err := ParseJSON(strings.NewReader(`{"format":"something-else","sessions":[]}`))
	if !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("got %v, want ErrUnknownFormat", err)
	}
	if _, err := ParseJSON(strings.NewReader(`{not json`)); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestToFITWorkouts(t *testing.T) {
	workouts := ToFITWorkouts(sampleSessions())
	if len(workouts) != 2 {
		t.Fatalf("got %d workouts", len(workouts))
	}
	w := workouts[0]
	if w.WorkoutName != "2025-01-07_Tempo_Run" || w.SubSport != "STREET" || w.Sport != "RUNNING" || w.FileType != "WORKOUT" {
		t.Errorf("workout header: %+v", w)
	}
	if w.NumValidSteps != 4 {
		t.Errorf("numValidSteps: got %d", w.NumValidSteps)
	}
	if workouts[1].WorkoutName != "2025-01-09_7x2min_Intervals" || workouts[1].SubSport != "TRACK" {
		t.Errorf("interval workout: %+v", workouts[1])
	}

	want := []FITStep{
		{MessageIndex: 0, WorkoutStepName: "Easy warmup", DurationType: "TIME", DurationValue: 600000, TargetType: "OPEN", Intensity: "WARMUP"},
		{MessageIndex: 1, WorkoutStepName: "work", DurationType: "TIME", DurationValue: 1260000, TargetType: "SPEED",
			CustomTargetLow: 3030, CustomTargetHigh: 3333, Intensity: "ACTIVE"},
		{MessageIndex: 2, WorkoutStepName: "recover", DurationType: "DISTANCE", DurationValue: 40000, TargetType: "HEART_RATE",
			CustomTargetLow: 124, CustomTargetHigh: 140, Intensity: "REST"},
		{MessageIndex: 3, WorkoutStepName: "cooldown", DurationType: "DISTANCE", DurationValue: 150000, TargetType: "OPEN", Intensity: "WARMUP"},
	}
	if !reflect.DeepEqual(w.Steps, want) {
		t.Fatalf("steps:\n got %+v\nwant %+v", w.Steps, want)
	}
}

func TestFITStepMissingPaceBound(t *testing.T) {
	st := toFITStep(domain.Step{StepType: domain.StepWork, DurationType: domain.DurationTime, TargetPaceLowSecPerKm: intp(250)})
	if st.TargetType != "SPEED" || st.CustomTargetLow != 4000 || st.CustomTargetHigh != 4000 {
		t.Fatalf("got %+v", st)
	}
}

func TestToFITArchive(t *testing.T) {
	data, err := ToFITArchive(sampleSessions(), exportedAt)
	if err != nil {
		t.Fatalf("ToFITArchive: %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("zip: %v", err)
	}
	var names, wktNames []string
	for _, f := range zr.File {
		names = append(names, f.Name)
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(rc); err != nil {
			t.Fatalf("read %s: %v", f.Name, err)
		}
		rc.Close()
		wf := decodeWorkout(t, buf.Bytes())
		wktNames = append(wktNames, wf.Workout.WktName)
	}
	want := []string{"2025-01-07_Tempo_Run.fit", "2025-01-09_7x2min_Intervals.fit"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("entries: got %v, want %v", names, want)
	}
	if want := []string{"0107 Tempo", "0109 Intervals"}; !reflect.DeepEqual(wktNames, want) {
		t.Errorf("workout names: got %v, want %v", wktNames, want)
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		typ  domain.ExportType
		rng  domain.ExportRange
		want string
	}{
		{domain.ExportJSON, domain.RangeWeek, "spartan-plan-week-2025-01-06.json"},
		{domain.ExportJSON, domain.RangeMonth, "spartan-plan-month-2025-01-06.json"},
		{domain.ExportFITStub, domain.RangeWeek, "spartan-workouts-week-2025-01-06.fit.json"},
		{domain.ExportFITBinary, domain.RangeMonth, "spartan-workouts-month-2025-01-06.fit.zip"},
		{domain.ExportJSON, domain.ExportRange("fortnight"), "spartan-plan-week-2025-01-06.json"},
	}
	for _, tt := range tests {
		if got := FileName(tt.typ, tt.rng, "2025-01-06"); got != tt.want {
			t.Errorf("FileName(%s, %s): got %q, want %q", tt.typ, tt.rng, got, tt.want)
		}
	}
}

func TestRenderUnsupported(t *testing.T) {
	_, err := Render(domain.ExportType("csv"), domain.RangeWeek, "2025-01-06", nil, exportedAt)
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("got %v", err)
	}
	r, err := Render(domain.ExportFITStub, domain.RangeWeek, "2025-01-06", sampleSessions(), exportedAt)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if r.ContentType != "application/json" || r.FileName != "spartan-workouts-week-2025-01-06.fit.json" || len(r.Data) == 0 {
		t.Errorf("unexpected rendered doc: %s %s", r.ContentType, r.FileName)
	}
}
