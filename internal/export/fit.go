package export

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tormoder/fit"

	"spartan/trainer/internal/domain"
)

// FIT custom heart-rate targets are offset by 100; values up to 100 mean
// percent of max HR.
const fitHeartRateOffset = 100

// Usable bytes of the FIT profile string fields (one byte is the terminator).
const (
	fitNameBytes  = 15 // wkt_name, wkt_step_name
	fitNotesBytes = 49 // workout_step notes
)

var stepTypeLabels = map[domain.StepType]string{
	domain.StepWarmup:   "Warmup",
	domain.StepWork:     "Work",
	domain.StepRecover:  "Recover",
	domain.StepCooldown: "Cooldown",
}

// EncodeWorkout encodes one session as a binary FIT workout file.
func EncodeWorkout(s domain.Session, created time.Time) ([]byte, error) {
	f, err := fit.NewFile(fit.FileTypeWorkout, fit.NewHeader(fit.V20, false))
	if err != nil {
		return nil, fmt.Errorf("fit file: %w", err)
	}
	f.FileId.Manufacturer = fit.ManufacturerDevelopment
	f.FileId.TimeCreated = created.UTC()

	wf, err := f.Workout()
	if err != nil {
		return nil, fmt.Errorf("fit workout: %w", err)
	}

	msg := fit.NewWorkoutMsg()
	msg.WktName = DeviceWorkoutName(s)
	msg.Sport = fit.SportRunning
	msg.SubSport = fit.SubSportStreet
	if s.SessionType == domain.SessionInterval {
		msg.SubSport = fit.SubSportTrack
	}
	msg.NumValidSteps = uint16(len(s.Steps))
	wf.Workout = msg

	for _, st := range s.Steps {
		wf.WorkoutSteps = append(wf.WorkoutSteps, workoutStepMsg(st))
	}

	var buf bytes.Buffer
	if err := fit.Encode(&buf, f, binary.LittleEndian); err != nil {
		return nil, fmt.Errorf("encode fit workout %q: %w", msg.WktName, err)
	}
	return buf.Bytes(), nil
}

func workoutStepMsg(st domain.Step) *fit.WorkoutStepMsg {
	fs := toFITStep(st)

	m := fit.NewWorkoutStepMsg()
	m.MessageIndex = fit.MessageIndex(fs.MessageIndex)
	m.WktStepName = deviceStepName(st)
	if st.StepNotes != nil {
		m.Notes = truncateUTF8(*st.StepNotes, fitNotesBytes)
	}
	m.DurationType = fit.WktStepDurationTime
	if fs.DurationType == fitDurationDistance {
		m.DurationType = fit.WktStepDurationDistance
	}
	m.DurationValue = uint32(max(0, fs.DurationValue))
	m.TargetValue = 0

	switch fs.TargetType {
	case fitTargetSpeed:
		m.TargetType = fit.WktStepTargetSpeed
		m.CustomTargetValueLow = uint32(fs.CustomTargetLow)
		m.CustomTargetValueHigh = uint32(fs.CustomTargetHigh)
	case fitTargetHeartRate:
		m.TargetType = fit.WktStepTargetHeartRate
		m.CustomTargetValueLow = uint32(fs.CustomTargetLow + fitHeartRateOffset)
		m.CustomTargetValueHigh = uint32(fs.CustomTargetHigh + fitHeartRateOffset)
	default:
		m.TargetType = fit.WktStepTargetOpen
	}

	switch st.StepType {
	case domain.StepWarmup:
		m.Intensity = fit.IntensityWarmup
	case domain.StepCooldown:
		m.Intensity = fit.IntensityCooldown
	case domain.StepRecover:
		m.Intensity = fit.IntensityRest
	default:
		m.Intensity = fit.IntensityActive
	}
	return m
}

// DeviceWorkoutName is the name shown on the watch, e.g. "0107 Tempo". FIT
// keeps at most 15 bytes, so the date is shortened to MMDD and the session
// type label is used instead of the title.
func DeviceWorkoutName(s domain.Session) string {
	label := s.SessionType.Label()
	if label == "" {
		label = s.Title
	}
	prefix := ""
	if d, err := time.Parse(domain.DateLayout, s.SessionDate); err == nil {
		prefix = d.Format("0102") + " "
	}
	return truncateUTF8(prefix+label, fitNameBytes)
}

// deviceStepName uses the step note when it fits, otherwise the step type.
func deviceStepName(st domain.Step) string {
	if st.StepNotes != nil && *st.StepNotes != "" && len(*st.StepNotes) <= fitNameBytes && utf8.ValidString(*st.StepNotes) {
		return *st.StepNotes
	}
	if label, ok := stepTypeLabels[st.StepType]; ok {
		return label
	}
	return truncateUTF8(string(st.StepType), fitNameBytes)
}

// truncateUTF8 drops invalid bytes and cuts s to at most n bytes without
// splitting a rune.
func truncateUTF8(s string, n int) string {
	s = strings.ToValidUTF8(s, "")
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// ToFITArchive encodes every session as its own FIT workout and bundles
// them into a zip archive, one "<workout name>.fit" entry per session.
func ToFITArchive(sessions []domain.Session, created time.Time) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	seen := make(map[string]int, len(sessions))
	for _, s := range sessions {
		data, err := EncodeWorkout(s, created)
		if err != nil {
			return nil, err
		}
		name := WorkoutName(s)
		if n := seen[name]; n > 0 {
			name = fmt.Sprintf("%s_%d", name, n+1)
		}
		seen[WorkoutName(s)]++

		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     name + ".fit",
			Method:   zip.Deflate,
			Modified: created,
		})
		if err != nil {
			return nil, fmt.Errorf("zip entry %q: %w", name, err)
		}
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("zip entry %q: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close fit archive: %w", err)
	}
	return buf.Bytes(), nil
}
