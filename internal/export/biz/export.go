package biz

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	invtypes "github.com/nestkeep/nestkeep-backend/internal/inventory/types"
	apperrors "github.com/nestkeep/nestkeep-backend/internal/pkg/errors"
	"github.com/nestkeep/nestkeep-backend/internal/pkg/logger"
	"go.uber.org/zap"
)

// Job states.
const (
	JobPending   = "pending"
	JobRunning   = "running"
	JobCompleted = "completed"
	JobFailed    = "failed"
)

// JobTTL is how long a finished job and its file stay downloadable.
const JobTTL = 24 * time.Hour

// jobTimeout bounds one export run.
const jobTimeout = 5 * time.Minute

// downloadURLExpiry bounds the presigned CSV link.
const downloadURLExpiry = 15 * time.Minute

// Job is one CSV export request.
type Job struct {
	ID          string     `json:"id"`
	HouseholdID string     `json:"household_id"`
	Status      string     `json:"status"`
	ObjectKey   string     `json:"-"`
	Error       string     `json:"error,omitempty"`
	ItemCount   int        `json:"item_count"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// MembershipResolver resolves a caller to their single active household.
type MembershipResolver interface {
	ResolveActiveHousehold(ctx context.Context, userID string) (string, error)
}

// ItemSource streams every exportable item of a household, location
// names already resolved.
type ItemSource interface {
	ListForExport(ctx context.Context, householdID string) ([]*ExportItem, error)
}

// ExportItem is one CSV row's worth of data.
type ExportItem struct {
	Item         invtypes.Item
	LocationName string
}

// JobStore persists job state with a TTL.
type JobStore interface {
	Save(ctx context.Context, job *Job) error
	Get(ctx context.Context, jobID string) (*Job, error)
}

// FileStore holds the generated CSV files.
type FileStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	PresignedGetURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// WorkerPool runs export jobs off the request path.
type WorkerPool interface {
	Submit(fn func() error) error
}

// ExportUseCase contains business logic for CSV exports.
type ExportUseCase struct {
	guard  MembershipResolver
	source ItemSource
	jobs   JobStore
	files  FileStore
	pool   WorkerPool
	logger *logger.Logger
}

// NewExportUseCase creates the export use case
func NewExportUseCase(
	guard MembershipResolver,
	source ItemSource,
	jobs JobStore,
	files FileStore,
	pool WorkerPool,
	log *logger.Logger,
) *ExportUseCase {
	return &ExportUseCase{
		guard:  guard,
		source: source,
		jobs:   jobs,
		files:  files,
		pool:   pool,
		logger: log,
	}
}

// StartExport accepts a job and hands it to the pool. The caller polls
// GetJob for completion.
func (uc *ExportUseCase) StartExport(ctx context.Context, userID string) (*Job, error) {
	householdID, err := uc.guard.ResolveActiveHousehold(ctx, userID)
	if err != nil {
		return nil, err
	}

	job := &Job{
		ID:          uuid.New().String(),
		HouseholdID: householdID,
		Status:      JobPending,
		ObjectKey:   fmt.Sprintf("exports/%s/%s.csv", householdID, uuid.New().String()),
		CreatedAt:   time.Now().UTC(),
	}
	if err := uc.jobs.Save(ctx, job); err != nil {
		return nil, err
	}

	// The worker gets its own copy. The returned Job is being marshaled
	// by the handler while the worker mutates status fields.
	queued := *job
	if err := uc.pool.Submit(func() error {
		uc.run(&queued)
		return nil
	}); err != nil {
		job.Status = JobFailed
		job.Error = "export queue is full"
		_ = uc.jobs.Save(ctx, job)
		return nil, apperrors.Wrap(err, apperrors.ErrExportFailed)
	}
	return job, nil
}

// GetJob returns job status for the caller's household.
func (uc *ExportUseCase) GetJob(ctx context.Context, userID, jobID string) (*Job, error) {
	householdID, err := uc.guard.ResolveActiveHousehold(ctx, userID)
	if err != nil {
		return nil, err
	}

	job, err := uc.jobs.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil || job.HouseholdID != householdID {
		return nil, apperrors.New(apperrors.ErrExportJobNotFound)
	}
	return job, nil
}

// DownloadURL returns a short-lived link to a completed export.
func (uc *ExportUseCase) DownloadURL(ctx context.Context, userID, jobID string) (string, error) {
	job, err := uc.GetJob(ctx, userID, jobID)
	if err != nil {
		return "", err
	}
	if job.Status != JobCompleted {
		return "", apperrors.New(apperrors.ErrExportNotReady)
	}
	return uc.files.PresignedGetURL(ctx, job.ObjectKey, downloadURLExpiry)
}

// run executes one job. It uses a background context: the job must not
// die with the HTTP request that started it.
func (uc *ExportUseCase) run(job *Job) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	job.Status = JobRunning
	if err := uc.jobs.Save(ctx, job); err != nil {
		uc.logger.Error("export job save failed",
			zap.String("job_id", job.ID),
			zap.Error(err),
		)
		return
	}

	if err := uc.generate(ctx, job); err != nil {
		uc.logger.Error("export job failed",
			zap.String("job_id", job.ID),
			zap.String("household_id", job.HouseholdID),
			zap.Error(err),
		)
		job.Status = JobFailed
		job.Error = "export failed"
	} else {
		now := time.Now().UTC()
		job.Status = JobCompleted
		job.CompletedAt = &now
	}
	if err := uc.jobs.Save(ctx, job); err != nil {
		uc.logger.Error("export job save failed",
			zap.String("job_id", job.ID),
			zap.Error(err),
		)
	}
}

func (uc *ExportUseCase) generate(ctx context.Context, job *Job) error {
	items, err := uc.source.ListForExport(ctx, job.HouseholdID)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := []string{
		"id", "name", "description", "quantity", "value", "status",
		"tags", "location", "purchase_date", "created_at", "updated_at",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, row := range items {
		if err := w.Write(csvRow(row)); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	data := buf.Bytes()
	if err := uc.files.Put(ctx, job.ObjectKey, bytes.NewReader(data), int64(len(data)), "text/csv"); err != nil {
		return err
	}
	job.ItemCount = len(items)
	return nil
}

func csvRow(row *ExportItem) []string {
	item := row.Item
	purchaseDate := ""
	if item.PurchaseDate != nil {
		purchaseDate = item.PurchaseDate.Format("2006-01-02")
	}
	return []string{
		item.ID,
		item.Name,
		item.Description,
		strconv.Itoa(item.Quantity),
		strconv.FormatFloat(item.Value, 'f', 2, 64),
		item.Status,
		strings.Join(item.Tags, ";"),
		row.LocationName,
		purchaseDate,
		item.CreatedAt.Format(time.RFC3339),
		item.UpdatedAt.Format(time.RFC3339),
	}
}
