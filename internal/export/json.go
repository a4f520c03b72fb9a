// Package export renders stored sessions into downloadable documents: the
// spartan-trainer-v1 JSON interchange format, a FIT-shaped JSON stub and
// binary FIT workout files.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"spartan/trainer/internal/domain"
	"spartan/trainer/internal/pace"
)

// FormatTag identifies the interchange document version.
const FormatTag = "spartan-trainer-v1"

var ErrUnknownFormat = errors.New("export: unknown document format")

// Document is the JSON interchange envelope.
type Document struct {
	ExportedAt time.Time         `json:"exportedAt"`
	Format     string            `json:"format"`
	Sessions   []DocumentSession `json:"sessions"`
}

type DocumentSession struct {
	SessionDate   string               `json:"session_date"`
	Title         string               `json:"title"`
	SessionType   domain.SessionType   `json:"session_type"`
	PrimaryTarget domain.PrimaryTarget `json:"primary_target"`
	Notes         *string              `json:"notes"`
	Steps         []DocumentStep       `json:"steps"`
}

// DocumentStep carries every numeric field verbatim; the *_display fields
// are derived and ignored on import.
type DocumentStep struct {
	StepOrder              int                 `json:"step_order"`
	StepType               domain.StepType     `json:"step_type"`
	DurationType           domain.DurationType `json:"duration_type"`
	DurationValue          int                 `json:"duration_value"`
	DurationDisplay        string              `json:"duration_display"`
	TargetPaceLowSecPerKm  *int                `json:"target_pace_low_sec_per_km"`
	TargetPaceHighSecPerKm *int                `json:"target_pace_high_sec_per_km"`
	TargetPaceLowDisplay   *string             `json:"target_pace_low_display"`
	TargetPaceHighDisplay  *string             `json:"target_pace_high_display"`
	TargetHrLowBpm         *int                `json:"target_hr_low_bpm"`
	TargetHrHighBpm        *int                `json:"target_hr_high_bpm"`
	StepNotes              *string             `json:"step_notes"`
}

// NewDocument maps sessions (with steps attached in order) to the
// interchange shape.
func NewDocument(sessions []domain.Session, exportedAt time.Time) Document {
	doc := Document{
		ExportedAt: exportedAt.UTC(),
		Format:     FormatTag,
		Sessions:   make([]DocumentSession, 0, len(sessions)),
	}
	for _, s := range sessions {
		ds := DocumentSession{
			SessionDate:   s.SessionDate,
			Title:         s.Title,
			SessionType:   s.SessionType,
			PrimaryTarget: s.PrimaryTarget,
			Notes:         optionalString(s.Notes),
			Steps:         make([]DocumentStep, 0, len(s.Steps)),
		}
		for _, st := range s.Steps {
			ds.Steps = append(ds.Steps, DocumentStep{
				StepOrder:              st.StepOrder,
				StepType:               st.StepType,
				DurationType:           st.DurationType,
				DurationValue:          st.DurationValue,
				DurationDisplay:        DurationDisplay(st),
				TargetPaceLowSecPerKm:  copyInt(st.TargetPaceLowSecPerKm),
				TargetPaceHighSecPerKm: copyInt(st.TargetPaceHighSecPerKm),
				TargetPaceLowDisplay:   PaceDisplay(st.TargetPaceLowSecPerKm),
				TargetPaceHighDisplay:  PaceDisplay(st.TargetPaceHighSecPerKm),
				TargetHrLowBpm:         copyInt(st.TargetHrLowBpm),
				TargetHrHighBpm:        copyInt(st.TargetHrHighBpm),
				StepNotes:              copyString(st.StepNotes),
			})
		}
		doc.Sessions = append(doc.Sessions, ds)
	}
	return doc
}

// ToJSON renders the interchange document, indented by two spaces.
func ToJSON(sessions []domain.Session, exportedAt time.Time) ([]byte, error) {
	return json.MarshalIndent(NewDocument(sessions, exportedAt), "", "  ")
}

// ParseJSON reads an interchange document back. Documents with another
// format tag are rejected with ErrUnknownFormat.
func ParseJSON(r io.Reader) (Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("decode export document: %w", err)
	}
	if doc.Format != FormatTag {
		return Document{}, fmt.Errorf("%w: %q", ErrUnknownFormat, doc.Format)
	}
	return doc, nil
}

// Sessions converts the document back into unsaved domain sessions.
func (d Document) ToSessions() []domain.Session {
	out := make([]domain.Session, 0, len(d.Sessions))
	for _, ds := range d.Sessions {
		s := domain.Session{
			SessionDate:   ds.SessionDate,
			Title:         ds.Title,
			SessionType:   ds.SessionType,
			PrimaryTarget: ds.PrimaryTarget,
			Steps:         make([]domain.Step, 0, len(ds.Steps)),
		}
		if ds.Notes != nil {
			s.Notes = *ds.Notes
		}
		for _, st := range ds.Steps {
			s.Steps = append(s.Steps, domain.Step{
				StepOrder:              st.StepOrder,
				StepType:               st.StepType,
				DurationType:           st.DurationType,
				DurationValue:          st.DurationValue,
				TargetPaceLowSecPerKm:  copyInt(st.TargetPaceLowSecPerKm),
				TargetPaceHighSecPerKm: copyInt(st.TargetPaceHighSecPerKm),
				TargetHrLowBpm:         copyInt(st.TargetHrLowBpm),
				TargetHrHighBpm:        copyInt(st.TargetHrHighBpm),
				StepNotes:              copyString(st.StepNotes),
			})
		}
		out = append(out, s)
	}
	return out
}

// DurationDisplay renders a step duration as time or distance text.
func DurationDisplay(st domain.Step) string {
	if st.DurationType == domain.DurationDistance {
		return pace.MetersToDisplay(st.DurationValue)
	}
	return pace.SecondsToDisplay(st.DurationValue)
}

// PaceDisplay renders an optional pace bound as M:SS.
func PaceDisplay(sec *int) *string {
	if sec == nil {
		return nil
	}
	s := pace.SecPerKmToDisplay(*sec)
	return &s
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
