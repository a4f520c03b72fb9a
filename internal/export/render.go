package export

import (
	"errors"
	"fmt"
	"time"

	"spartan/trainer/internal/domain"
)

var ErrUnsupportedType = errors.New("export: unsupported export type")

// Rendered is a finished export document ready for download.
type Rendered struct {
	Data        []byte
	FileName    string
	ContentType string
}

// FileName follows the download naming convention, e.g.
// "spartan-plan-week-2025-01-06.json".
func FileName(t domain.ExportType, r domain.ExportRange, rangeStart string) string {
	label := domain.RangeWeek
	if r == domain.RangeMonth {
		label = domain.RangeMonth
	}
	switch t {
	case domain.ExportFITStub:
		return fmt.Sprintf("spartan-workouts-%s-%s.fit.json", label, rangeStart)
	case domain.ExportFITBinary:
		return fmt.Sprintf("spartan-workouts-%s-%s.fit.zip", label, rangeStart)
	default:
		return fmt.Sprintf("spartan-plan-%s-%s.json", label, rangeStart)
	}
}

func ContentType(t domain.ExportType) string {
	if t == domain.ExportFITBinary {
		return "application/zip"
	}
	return "application/json"
}

// Render produces the document for t. now stamps exportedAt and the FIT
// creation time.
func Render(t domain.ExportType, r domain.ExportRange, rangeStart string, sessions []domain.Session, now time.Time) (*Rendered, error) {
	var (
		data []byte
		err  error
	)
	switch t {
	case domain.ExportJSON:
		data, err = ToJSON(sessions, now)
	case domain.ExportFITStub:
		data, err = ToFITStub(sessions)
	case domain.ExportFITBinary:
		data, err = ToFITArchive(sessions, now)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, t)
	}
	if err != nil {
		return nil, fmt.Errorf("render %s export: %w", t, err)
	}
	return &Rendered{
		Data:        data,
		FileName:    FileName(t, r, rangeStart),
		ContentType: ContentType(t),
	}, nil
}
