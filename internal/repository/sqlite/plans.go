package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"spartan/trainer/internal/domain"
	"spartan/trainer/internal/repository"
)

type planRepo struct {
	db *sql.DB
}

const planColumns = `id, athlete_id, name, start_date, end_date, status, created_at, updated_at`

func (r *planRepo) Create(ctx context.Context, p *domain.TrainingPlan) (primitive.ObjectID, error) {
	if p.AthleteID == primitive.NilObjectID || p.Name == "" {
		return primitive.NilObjectID, errors.New("plan requires athleteId and name")
	}
	p.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	if p.Status == "" {
		p.Status = domain.PlanActive
	}

	_, err := r.db.ExecContext(ctx, `INSERT INTO plans (`+planColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID.Hex(), p.AthleteID.Hex(), p.Name, p.StartDate, p.EndDate, string(p.Status),
		now.Format(timeLayout), now.Format(timeLayout))
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("insert plan: %w", err)
	}
	return p.ID, nil
}

func (r *planRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.TrainingPlan, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+planColumns+` FROM plans WHERE id = ?`, id.Hex())
	return scanPlan(row)
}

func (r *planRepo) GetByAthleteID(ctx context.Context, athleteID primitive.ObjectID) ([]domain.TrainingPlan, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+planColumns+` FROM plans WHERE athlete_id = ? ORDER BY created_at DESC`, athleteID.Hex())
	if err != nil {
		return nil, fmt.Errorf("query plans: %w", err)
	}
	defer rows.Close()

	plans := []domain.TrainingPlan{}
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, *p)
	}
	return plans, rows.Err()
}

func (r *planRepo) GetActiveByAthleteID(ctx context.Context, athleteID primitive.ObjectID) (*domain.TrainingPlan, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+planColumns+` FROM plans WHERE athlete_id = ? AND status = ? ORDER BY created_at DESC LIMIT 1`,
		athleteID.Hex(), string(domain.PlanActive))
	return scanPlan(row)
}

func (r *planRepo) UpdateDates(ctx context.Context, id primitive.ObjectID, startDate, endDate string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE plans SET start_date = ?, end_date = ?, updated_at = ? WHERE id = ?`,
		startDate, endDate, time.Now().UTC().Format(timeLayout), id.Hex())
	if err != nil {
		return fmt.Errorf("update plan dates: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPlan(row scanner) (*domain.TrainingPlan, error) {
	var (
		p                    domain.TrainingPlan
		id, athleteID        string
		status               string
		createdAt, updatedAt string
	)
	if err := row.Scan(&id, &athleteID, &p.Name, &p.StartDate, &p.EndDate, &status, &createdAt, &updatedAt); err != nil {
		return nil, notFound(err)
	}
	var err error
	if p.ID, err = parseID(id); err != nil {
		return nil, err
	}
	if p.AthleteID, err = parseID(athleteID); err != nil {
		return nil, err
	}
	p.Status = domain.PlanStatus(status)
	p.CreatedAt, p.UpdatedAt = parseTime(createdAt), parseTime(updatedAt)
	return &p, nil
}
