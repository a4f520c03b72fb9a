package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"spartan/trainer/internal/domain"
	"spartan/trainer/internal/repository"
)

// athleteRepo keeps availability and goal as JSON columns.
type athleteRepo struct {
	db *sql.DB
}

func (r *athleteRepo) Create(ctx context.Context, a *domain.Athlete) (primitive.ObjectID, error) {
	if a.Name == "" {
		return primitive.NilObjectID, errors.New("athlete name is required")
	}
	availability, goal, err := encodeProfile(a)
	if err != nil {
		return primitive.NilObjectID, err
	}
	a.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now

	const stmt = `
INSERT INTO athletes (id, name, email, threshold_pace_sec_per_km, threshold_hr_bpm, availability, goal, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, stmt,
		a.ID.Hex(), a.Name, a.Email, a.ThresholdPaceSecPerKm, a.ThresholdHrBpm,
		availability, goal, now.Format(timeLayout), now.Format(timeLayout))
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("insert athlete: %w", err)
	}
	return a.ID, nil
}

func (r *athleteRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Athlete, error) {
	const q = `
SELECT name, email, threshold_pace_sec_per_km, threshold_hr_bpm, availability, goal, created_at, updated_at
FROM athletes WHERE id = ?`
	a := domain.Athlete{ID: id}
	var (
		email, goal          sql.NullString
		availability         string
		createdAt, updatedAt string
	)
	err := r.db.QueryRowContext(ctx, q, id.Hex()).Scan(
		&a.Name, &email, &a.ThresholdPaceSecPerKm, &a.ThresholdHrBpm, &availability, &goal, &createdAt, &updatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	a.Email = email.String
	if err := json.Unmarshal([]byte(availability), &a.Availability); err != nil {
		return nil, fmt.Errorf("decode availability: %w", err)
	}
	if goal.Valid {
		a.Goal = &domain.TrainingGoal{}
		if err := json.Unmarshal([]byte(goal.String), a.Goal); err != nil {
			return nil, fmt.Errorf("decode goal: %w", err)
		}
	}
	a.CreatedAt, a.UpdatedAt = parseTime(createdAt), parseTime(updatedAt)
	return &a, nil
}

func (r *athleteRepo) Update(ctx context.Context, a *domain.Athlete) error {
	if a.ID == primitive.NilObjectID {
		return errors.New("athlete ID is required for update")
	}
	availability, goal, err := encodeProfile(a)
	if err != nil {
		return err
	}
	a.UpdatedAt = time.Now().UTC()

	const stmt = `
UPDATE athletes SET name = ?, email = ?, threshold_pace_sec_per_km = ?, threshold_hr_bpm = ?,
  availability = ?, goal = ?, updated_at = ?
WHERE id = ?`
	res, err := r.db.ExecContext(ctx, stmt,
		a.Name, a.Email, a.ThresholdPaceSecPerKm, a.ThresholdHrBpm, availability, goal,
		a.UpdatedAt.Format(timeLayout), a.ID.Hex())
	if err != nil {
		return fmt.Errorf("update athlete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func encodeProfile(a *domain.Athlete) (availability string, goal any, err error) {
	b, err := json.Marshal(a.Availability)
	if err != nil {
		return "", nil, fmt.Errorf("encode availability: %w", err)
	}
	if a.Goal != nil {
		g, err := json.Marshal(a.Goal)
		if err != nil {
			return "", nil, fmt.Errorf("encode goal: %w", err)
		}
		goal = string(g)
	}
	return string(b), goal, nil
}
