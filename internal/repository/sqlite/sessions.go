package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"spartan/trainer/internal/domain"
	"spartan/trainer/internal/repository"
)

type sessionRepo struct {
	db *sql.DB
}

const (
	sessionColumns = `id, plan_id, session_date, title, session_type, primary_target, notes, created_at, updated_at`
	stepColumns    = `id, session_id, step_order, step_type, duration_type, duration_value,
  target_pace_low_sec_per_km, target_pace_high_sec_per_km, target_hr_low_bpm, target_hr_high_bpm, step_notes`
)

// ReplaceForPlan swaps the plan's sessions in a single transaction.
func (r *sessionRepo) ReplaceForPlan(ctx context.Context, planID primitive.ObjectID, sessions []domain.Session) (int, error) {
	if planID == primitive.NilObjectID {
		return 0, repository.ErrInvalidInput
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback()

	plan := planID.Hex()
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM session_steps WHERE session_id IN (SELECT id FROM sessions WHERE plan_id = ?)`, plan); err != nil {
		return 0, fmt.Errorf("delete steps: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE plan_id = ?`, plan); err != nil {
		return 0, fmt.Errorf("delete sessions: %w", err)
	}

	insertSession, err := tx.PrepareContext(ctx, `INSERT INTO sessions (`+sessionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare session insert: %w", err)
	}
	defer insertSession.Close()
	insertStep, err := tx.PrepareContext(ctx, `INSERT INTO session_steps (`+stepColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare step insert: %w", err)
	}
	defer insertStep.Close()

	now := time.Now().UTC()
	stamp := now.Format(timeLayout)
	for i := range sessions {
		s := &sessions[i]
		s.ID = primitive.NewObjectID()
		s.PlanID = planID
		s.CreatedAt, s.UpdatedAt = &now, &now
		if _, err := insertSession.ExecContext(ctx, s.ID.Hex(), plan, s.SessionDate, s.Title,
			string(s.SessionType), string(s.PrimaryTarget), s.Notes, stamp, stamp); err != nil {
			return 0, fmt.Errorf("insert session %s: %w", s.SessionDate, err)
		}
		for j := range s.Steps {
			st := &s.Steps[j]
			st.ID = primitive.NewObjectID()
			st.SessionID = s.ID
			if _, err := insertStep.ExecContext(ctx, st.ID.Hex(), s.ID.Hex(), st.StepOrder,
				string(st.StepType), string(st.DurationType), st.DurationValue,
				nullableInt(st.TargetPaceLowSecPerKm), nullableInt(st.TargetPaceHighSecPerKm),
				nullableInt(st.TargetHrLowBpm), nullableInt(st.TargetHrHighBpm),
				nullableString(st.StepNotes)); err != nil {
				return 0, fmt.Errorf("insert step %d of %s: %w", st.StepOrder, s.SessionDate, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit replace: %w", err)
	}
	return len(sessions), nil
}

func (r *sessionRepo) GetByPlanID(ctx context.Context, planID primitive.ObjectID, from, to string) ([]domain.Session, error) {
	q := `SELECT ` + sessionColumns + ` FROM sessions WHERE plan_id = ?`
	args := []any{planID.Hex()}
	if from != "" {
		q += ` AND session_date >= ?`
		args = append(args, from)
	}
	if to != "" {
		q += ` AND session_date <= ?`
		args = append(args, to)
	}
	q += ` ORDER BY session_date, rowid`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	sessions := []domain.Session{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachSteps(ctx, sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *sessionRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Session, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id.Hex())
	s, err := scanSession(row)
	if err != nil {
		return nil, err
	}
	one := []domain.Session{*s}
	if err := r.attachSteps(ctx, one); err != nil {
		return nil, err
	}
	return &one[0], nil
}

// attachSteps loads steps for all sessions with one IN query. The rows
// cursor is closed before this runs; the pool holds a single connection.
func (r *sessionRepo) attachSteps(ctx context.Context, sessions []domain.Session) error {
	if len(sessions) == 0 {
		return nil
	}
	placeholders := make([]string, len(sessions))
	args := make([]any, len(sessions))
	index := make(map[primitive.ObjectID]int, len(sessions))
	for i, s := range sessions {
		placeholders[i] = "?"
		args[i] = s.ID.Hex()
		index[s.ID] = i
		sessions[i].Steps = []domain.Step{}
	}

	q := `SELECT ` + stepColumns + ` FROM session_steps WHERE session_id IN (` +
		strings.Join(placeholders, ", ") + `) ORDER BY session_id, step_order`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("query steps: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		st, err := scanStep(rows)
		if err != nil {
			return err
		}
		if i, ok := index[st.SessionID]; ok {
			sessions[i].Steps = append(sessions[i].Steps, *st)
		}
	}
	return rows.Err()
}

func scanSession(row scanner) (*domain.Session, error) {
	var (
		s                    domain.Session
		id, planID           string
		typ, target          string
		createdAt, updatedAt string
	)
	if err := row.Scan(&id, &planID, &s.SessionDate, &s.Title, &typ, &target, &s.Notes, &createdAt, &updatedAt); err != nil {
		return nil, notFound(err)
	}
	var err error
	if s.ID, err = parseID(id); err != nil {
		return nil, err
	}
	if s.PlanID, err = parseID(planID); err != nil {
		return nil, err
	}
	s.SessionType = domain.SessionType(typ)
	s.PrimaryTarget = domain.PrimaryTarget(target)
	created, updated := parseTime(createdAt), parseTime(updatedAt)
	s.CreatedAt, s.UpdatedAt = &created, &updated
	return &s, nil
}

func scanStep(row scanner) (*domain.Step, error) {
	var (
		st                domain.Step
		id, sessionID     string
		typ, durationType string
		paceLow, paceHigh sql.NullInt64
		hrLow, hrHigh     sql.NullInt64
		notes             sql.NullString
	)
	if err := row.Scan(&id, &sessionID, &st.StepOrder, &typ, &durationType, &st.DurationValue,
		&paceLow, &paceHigh, &hrLow, &hrHigh, &notes); err != nil {
		return nil, fmt.Errorf("scan step: %w", err)
	}
	var err error
	if st.ID, err = parseID(id); err != nil {
		return nil, err
	}
	if st.SessionID, err = parseID(sessionID); err != nil {
		return nil, err
	}
	st.StepType = domain.StepType(typ)
	st.DurationType = domain.DurationType(durationType)
	st.TargetPaceLowSecPerKm, st.TargetPaceHighSecPerKm = intPtr(paceLow), intPtr(paceHigh)
	st.TargetHrLowBpm, st.TargetHrHighBpm = intPtr(hrLow), intPtr(hrHigh)
	st.StepNotes = stringPtr(notes)
	return &st, nil
}
