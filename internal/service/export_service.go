package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"

	"spartan/trainer/internal/domain"
	"spartan/trainer/internal/export"
	"spartan/trainer/internal/repository"
	"spartan/trainer/internal/storage"
)

var (
	ErrNoSessionsInRange = errors.New("no sessions in the selected range")
	ErrInvalidExportType = errors.New("invalid export type")
	ErrInvalidRange      = errors.New("invalid export range")
	ErrExportNotFound    = errors.New("export not found")
	ErrExportNotStored   = errors.New("export was not uploaded to object storage")
)

// ExportRequest selects what to render. Empty Range means a week and empty
// Type means JSON.
type ExportRequest struct {
	PlanID primitive.ObjectID
	Range  domain.ExportRange
	Type   domain.ExportType
}

// ExportResult carries the rendered document and its job record.
// DownloadURL is set only when object storage is enabled.
type ExportResult struct {
	Job         *domain.ExportJob
	Document    *export.Rendered
	DownloadURL string
}

type ExportService interface {
	Export(ctx context.Context, req ExportRequest) (*ExportResult, error)
	GetExport(ctx context.Context, jobID primitive.ObjectID) (*domain.ExportJob, error)
	// GetDownloadURL presigns a GET for an uploaded export.
	GetDownloadURL(ctx context.Context, jobID primitive.ObjectID) (string, error)
	ListExports(ctx context.Context, athleteID primitive.ObjectID) ([]domain.ExportJob, error)
}

type exportService struct {
	planRepo    repository.TrainingPlanRepository
	sessionRepo repository.SessionRepository
	jobRepo     repository.ExportJobRepository
	fileStorage storage.FileStorage // nil when uploads are disabled
	urlExpiry   time.Duration
	now         func() time.Time
}

// NewExportService creates the export service. fileStorage may be nil.
func NewExportService(
	planRepo repository.TrainingPlanRepository,
	sessionRepo repository.SessionRepository,
	jobRepo repository.ExportJobRepository,
	fileStorage storage.FileStorage,
	urlExpiry time.Duration,
) ExportService {
	if urlExpiry <= 0 {
		urlExpiry = storage.DefaultPresignedURLExpiry
	}
	return &exportService{
		planRepo:    planRepo,
		sessionRepo: sessionRepo,
		jobRepo:     jobRepo,
		fileStorage: fileStorage,
		urlExpiry:   urlExpiry,
		now:         time.Now,
	}
}

func (s *exportService) Export(ctx context.Context, req ExportRequest) (*ExportResult, error) {
	// 1. Validate Input
	if req.Range == "" {
		req.Range = domain.RangeWeek
	}
	if req.Range != domain.RangeWeek && req.Range != domain.RangeMonth {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRange, req.Range)
	}
	if req.Type == "" {
		req.Type = domain.ExportJSON
	}
	if !req.Type.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidExportType, req.Type)
	}

	// 2. Range runs from today through today + N days, inclusive
	now := s.now().UTC()
	today := now.Truncate(24 * time.Hour)
	rangeStart := today.Format(domain.DateLayout)
	rangeEnd := today.AddDate(0, 0, req.Range.Days()).Format(domain.DateLayout)

	// 3. Fetch plan and sessions concurrently
	var (
		plan     *domain.TrainingPlan
		sessions []domain.Session
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.planRepo.GetByID(gctx, req.PlanID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrPlanNotFound
			}
			return fmt.Errorf("failed to load plan: %w", err)
		}
		plan = p
		return nil
	})
	g.Go(func() error {
		ss, err := s.sessionRepo.GetByPlanID(gctx, req.PlanID, rangeStart, rangeEnd)
		if err != nil {
			return fmt.Errorf("failed to load sessions: %w", err)
		}
		sessions = ss
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, ErrNoSessionsInRange
	}

	// 4. Render
	doc, err := export.Render(req.Type, req.Range, rangeStart, sessions, now)
	if err != nil {
		return nil, err
	}

	job := &domain.ExportJob{
		AthleteID:   plan.AthleteID,
		PlanID:      plan.ID,
		RangeStart:  rangeStart,
		RangeEnd:    rangeEnd,
		ExportType:  req.Type,
		Status:      domain.ExportDone,
		FileName:    doc.FileName,
		ContentType: doc.ContentType,
		Size:        int64(len(doc.Data)),
	}

	// 5. Upload when object storage is configured
	if s.fileStorage != nil {
		key := storage.ExportObjectKey(plan.AthleteID.Hex(), doc.FileName)
		if err := s.fileStorage.PutObject(ctx, key, doc.ContentType, doc.Data); err != nil {
			return nil, fmt.Errorf("failed to upload export: %w", err)
		}
		job.ObjectKey = key
	}

	// 6. Record the job, removing the upload if that fails
	if _, err := s.jobRepo.Create(ctx, job); err != nil {
		if job.ObjectKey != "" {
			if delErr := s.fileStorage.DeleteObject(ctx, job.ObjectKey); delErr != nil {
				log.Printf("ERROR: failed to clean up export object %s: %v", job.ObjectKey, delErr)
			}
		}
		return nil, fmt.Errorf("failed to record export job: %w", err)
	}

	result := &ExportResult{Job: job, Document: doc}
	if job.ObjectKey != "" {
		url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, job.ObjectKey, s.urlExpiry)
		if err != nil {
			// The export itself succeeded; the caller still has the document.
			log.Printf("WARN: failed to presign export %s: %v", job.ID.Hex(), err)
		}
		result.DownloadURL = url
	}

	log.Printf("INFO: exported %d sessions of plan %s as %s (%s)", len(sessions), plan.ID.Hex(), req.Type, doc.FileName)
	return result, nil
}

func (s *exportService) GetExport(ctx context.Context, jobID primitive.ObjectID) (*domain.ExportJob, error) {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExportNotFound
		}
		return nil, err
	}
	return job, nil
}

func (s *exportService) GetDownloadURL(ctx context.Context, jobID primitive.ObjectID) (string, error) {
	job, err := s.GetExport(ctx, jobID)
	if err != nil {
		return "", err
	}
	if job.ObjectKey == "" || s.fileStorage == nil {
		return "", ErrExportNotStored
	}
	return s.fileStorage.GeneratePresignedDownloadURL(ctx, job.ObjectKey, s.urlExpiry)
}

func (s *exportService) ListExports(ctx context.Context, athleteID primitive.ObjectID) ([]domain.ExportJob, error) {
	return s.jobRepo.GetByAthleteID(ctx, athleteID)
}
