package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"spartan/trainer/internal/domain"
)

type exportJobRepo struct {
	db *sql.DB
}

const exportJobColumns = `id, athlete_id, plan_id, range_start, range_end, export_type, status,
  file_name, content_type, size, object_key, created_at`

func (r *exportJobRepo) Create(ctx context.Context, job *domain.ExportJob) (primitive.ObjectID, error) {
	if job.AthleteID == primitive.NilObjectID || job.PlanID == primitive.NilObjectID || job.ExportType == "" {
		return primitive.NilObjectID, errors.New("export job requires athleteId, planId and exportType")
	}
	job.ID = primitive.NewObjectID()
	job.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO export_jobs (`+exportJobColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID.Hex(), job.AthleteID.Hex(), job.PlanID.Hex(), job.RangeStart, job.RangeEnd,
		string(job.ExportType), string(job.Status), job.FileName, job.ContentType, job.Size,
		job.ObjectKey, job.CreatedAt.Format(timeLayout))
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("insert export job: %w", err)
	}
	return job.ID, nil
}

func (r *exportJobRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ExportJob, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+exportJobColumns+` FROM export_jobs WHERE id = ?`, id.Hex())
	return scanExportJob(row)
}

func (r *exportJobRepo) GetByAthleteID(ctx context.Context, athleteID primitive.ObjectID) ([]domain.ExportJob, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+exportJobColumns+` FROM export_jobs WHERE athlete_id = ? ORDER BY created_at DESC`, athleteID.Hex())
	if err != nil {
		return nil, fmt.Errorf("query export jobs: %w", err)
	}
	defer rows.Close()

	jobs := []domain.ExportJob{}
	for rows.Next() {
		job, err := scanExportJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

func scanExportJob(row scanner) (*domain.ExportJob, error) {
	var (
		job                   domain.ExportJob
		id, athleteID, planID string
		exportType, status    string
		createdAt             string
	)
	err := row.Scan(&id, &athleteID, &planID, &job.RangeStart, &job.RangeEnd, &exportType, &status,
		&job.FileName, &job.ContentType, &job.Size, &job.ObjectKey, &createdAt)
	if err != nil {
		return nil, notFound(err)
	}
	if job.ID, err = parseID(id); err != nil {
		return nil, err
	}
	if job.AthleteID, err = parseID(athleteID); err != nil {
		return nil, err
	}
	if job.PlanID, err = parseID(planID); err != nil {
		return nil, err
	}
	job.ExportType = domain.ExportType(exportType)
	job.Status = domain.ExportJobStatus(status)
	job.CreatedAt = parseTime(createdAt)
	return &job, nil
}
