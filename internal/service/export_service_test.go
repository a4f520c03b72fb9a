package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"spartan/trainer/internal/domain"
	"spartan/trainer/internal/export"
)

type exportFixture struct {
	plan    *planFixture
	planID  primitive.ObjectID
	jobs    *memJobs
	storage *memStorage
}

// newExportFixture regenerates a plan starting 2025-01-06 and returns an
// export service whose clock reads that same day.
func newExportFixture(t *testing.T, withStorage bool) (*exportFixture, ExportService) {
	t.Helper()
	pf := newPlanFixture(t)
	res, err := pf.svc.RegeneratePlan(context.Background(), pf.athlete.ID, "")
	if err != nil {
		t.Fatal(err)
	}
	f := &exportFixture{plan: pf, planID: res.Plan.ID, jobs: newMemJobs()}

	var svc ExportService
	if withStorage {
		f.storage = newMemStorage()
		svc = NewExportService(pf.plans, pf.sessions, f.jobs, f.storage, 10*time.Minute)
	} else {
		svc = NewExportService(pf.plans, pf.sessions, f.jobs, nil, 0)
	}
	svc.(*exportService).now = fixedClock("2025-01-06")
	return f, svc
}

func TestExportWeekJSON(t *testing.T) {
	f, svc := newExportFixture(t, false)
	res, err := svc.Export(context.Background(), ExportRequest{PlanID: f.planID})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	job := res.Job
	if job.RangeStart != "2025-01-06" || job.RangeEnd != "2025-01-13" {
		t.Errorf("range %s..%s", job.RangeStart, job.RangeEnd)
	}
	if job.ExportType != domain.ExportJSON || job.Status != domain.ExportDone || job.AthleteID != f.plan.athlete.ID {
		t.Errorf("unexpected job %+v", job)
	}
	if job.ObjectKey != "" || res.DownloadURL != "" {
		t.Errorf("nothing should be uploaded without storage: %+v", job)
	}
	if res.Document.FileName != "spartan-plan-week-2025-01-06.json" {
		t.Errorf("file name %q", res.Document.FileName)
	}

	doc, err := export.ParseJSON(bytes.NewReader(res.Document.Data))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if len(doc.Sessions) != 3 {
		t.Fatalf("want the 3 sessions of the first week, got %d", len(doc.Sessions))
	}
	for _, s := range doc.Sessions {
		if s.SessionDate < job.RangeStart || s.SessionDate > job.RangeEnd {
			t.Errorf("session %s outside range", s.SessionDate)
		}
	}

	if _, err := svc.GetDownloadURL(context.Background(), job.ID); !errors.Is(err, ErrExportNotStored) {
		t.Errorf("GetDownloadURL without storage: got %v", err)
	}
}

func TestExportUploadsWhenStorageEnabled(t *testing.T) {
	f, svc := newExportFixture(t, true)
	ctx := context.Background()
	res, err := svc.Export(ctx, ExportRequest{PlanID: f.planID, Range: domain.RangeMonth, Type: domain.ExportFITBinary})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if res.Job.RangeEnd != "2025-02-05" {
		t.Errorf("month range end %s", res.Job.RangeEnd)
	}
	if res.Document.ContentType != "application/zip" {
		t.Errorf("content type %q", res.Document.ContentType)
	}
	body, ok := f.storage.objects[res.Job.ObjectKey]
	if !ok || !bytes.Equal(body, res.Document.Data) {
		t.Fatalf("document not uploaded under %q", res.Job.ObjectKey)
	}
	if !strings.HasPrefix(res.Job.ObjectKey, "exports/"+f.plan.athlete.ID.Hex()+"/") {
		t.Errorf("object key %q", res.Job.ObjectKey)
	}
	if !strings.Contains(res.DownloadURL, "expires=10m0s") {
		t.Errorf("download URL %q", res.DownloadURL)
	}

	url, err := svc.GetDownloadURL(ctx, res.Job.ID)
	if err != nil || url == "" {
		t.Fatalf("GetDownloadURL: %q, %v", url, err)
	}
	jobs, err := svc.ListExports(ctx, f.plan.athlete.ID)
	if err != nil || len(jobs) != 1 {
		t.Errorf("ListExports: %v, %d jobs", err, len(jobs))
	}
}

func TestExportRemovesUploadWhenJobFails(t *testing.T) {
	f, svc := newExportFixture(t, true)
	f.jobs.createErr = errors.New("write concern timeout")
	if _, err := svc.Export(context.Background(), ExportRequest{PlanID: f.planID}); err == nil {
		t.Fatal("expected error")
	}
	if len(f.storage.objects) != 0 {
		t.Errorf("orphaned upload left behind: %d objects", len(f.storage.objects))
	}
}

func TestExportErrors(t *testing.T) {
	f, svc := newExportFixture(t, false)

	emptyPlan := &domain.TrainingPlan{AthleteID: f.plan.athlete.ID, Status: domain.PlanArchived}
	if _, err := f.plan.plans.Create(context.Background(), emptyPlan); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		req  ExportRequest
		want error
	}{
		{"bad type", ExportRequest{PlanID: f.planID, Type: "pdf"}, ErrInvalidExportType},
		{"bad range", ExportRequest{PlanID: f.planID, Range: "year"}, ErrInvalidRange},
		{"unknown plan", ExportRequest{PlanID: primitive.NewObjectID()}, ErrPlanNotFound},
		{"no sessions", ExportRequest{PlanID: emptyPlan.ID}, ErrNoSessionsInRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Export(context.Background(), tt.req); !errors.Is(err, tt.want) {
				t.Fatalf("want %v, got %v", tt.want, err)
			}
		})
	}

	if _, err := svc.GetExport(context.Background(), primitive.NewObjectID()); !errors.Is(err, ErrExportNotFound) {
		t.Errorf("GetExport: got %v", err)
	}
}
