package biz

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"sync"
	"testing"
	"time"

	invtypes "github.com/nestkeep/nestkeep-backend/internal/inventory/types"
	apperrors "github.com/nestkeep/nestkeep-backend/internal/pkg/errors"
	"github.com/nestkeep/nestkeep-backend/internal/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGuard struct {
	households map[string]string
}

func (f fakeGuard) ResolveActiveHousehold(_ context.Context, userID string) (string, error) {
	if h, ok := f.households[userID]; ok {
		return h, nil
	}
	return "", apperrors.New(apperrors.ErrHouseholdNoMembership)
}

type fakeSource struct {
	items map[string][]*ExportItem // household id -> items
}

func (f *fakeSource) ListForExport(_ context.Context, householdID string) ([]*ExportItem, error) {
	return f.items[householdID], nil
}

type fakeJobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
}

func newFakeJobStore() *fakeJobStore {
	return &fakeJobStore{jobs: map[string]*Job{}}
}

func (f *fakeJobStore) Save(_ context.Context, job *Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *job
	f.jobs[job.ID] = &clone
	return nil
}

func (f *fakeJobStore) Get(_ context.Context, jobID string) (*Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[jobID]
	if !ok {
		return nil, nil
	}
	clone := *job
	return &clone, nil
}

type fakeFileStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeFileStore() *fakeFileStore {
	return &fakeFileStore{objects: map[string][]byte{}}
}

func (f *fakeFileStore) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	return nil
}

func (f *fakeFileStore) PresignedGetURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://example.com/" + key, nil
}

// syncPool runs jobs inline, so tests never race the worker.
type syncPool struct{}

func (syncPool) Submit(fn func() error) error {
	return fn()
}

func newExportFixture(t *testing.T, items map[string][]*ExportItem) (*ExportUseCase, *fakeJobStore, *fakeFileStore) {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "console"})
	require.NoError(t, err)

	guard := fakeGuard{households: map[string]string{
		"alice": "house-a",
		"bob":   "house-b",
	}}
	jobs := newFakeJobStore()
	files := newFakeFileStore()
	uc := NewExportUseCase(guard, &fakeSource{items: items}, jobs, files, syncPool{}, log)
	return uc, jobs, files
}

func exportItems() map[string][]*ExportItem {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	purchase := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	return map[string][]*ExportItem{
		"house-a": {
			{
				Item: invtypes.Item{
					ID:           "item-1",
					Name:         "Cordless Drill",
					Description:  "18V",
					Quantity:     1,
					Value:        129.99,
					Status:       invtypes.StatusActive,
					Tags:         []string{"tools", "power"},
					PurchaseDate: &purchase,
					CreatedAt:    now,
					UpdatedAt:    now,
				},
				LocationName: "Garage",
			},
			{
				Item: invtypes.Item{
					ID:        "item-2",
					Name:      "Ladder",
					Quantity:  1,
					Status:    invtypes.StatusLent,
					CreatedAt: now,
					UpdatedAt: now,
				},
			},
		},
	}
}

func TestStartExportProducesCSV(t *testing.T) {
	uc, jobs, files := newExportFixture(t, exportItems())
	ctx := context.Background()

	job, err := uc.StartExport(ctx, "alice")
	require.NoError(t, err)

	// The sync pool already finished the job.
	done, err := jobs.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, JobCompleted, done.Status)
	assert.Equal(t, 2, done.ItemCount)
	require.NotNil(t, done.CompletedAt)

	data, ok := files.objects[done.ObjectKey]
	require.True(t, ok)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3) // header + 2 rows
	assert.Equal(t, "name", records[0][1])
	assert.Equal(t, "Cordless Drill", records[1][1])
	assert.Equal(t, "tools;power", records[1][6])
	assert.Equal(t, "Garage", records[1][7])
	assert.Equal(t, "2025-06-15", records[1][8])
	assert.Equal(t, "", records[2][7])
}

func TestGetJobIsHouseholdScoped(t *testing.T) {
	uc, _, _ := newExportFixture(t, exportItems())
	ctx := context.Background()

	job, err := uc.StartExport(ctx, "alice")
	require.NoError(t, err)

	_, err = uc.GetJob(ctx, "bob", job.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrExportJobNotFound),
		"another household's job must look like it does not exist")
}

func TestDownloadRequiresCompletion(t *testing.T) {
	uc, jobs, _ := newExportFixture(t, exportItems())
	ctx := context.Background()

	job, err := uc.StartExport(ctx, "alice")
	require.NoError(t, err)

	// Force the job back to running to simulate an in-flight export.
	stored, err := jobs.Get(ctx, job.ID)
	require.NoError(t, err)
	stored.Status = JobRunning
	require.NoError(t, jobs.Save(ctx, stored))

	_, err = uc.DownloadURL(ctx, "alice", job.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrExportNotReady))

	stored.Status = JobCompleted
	require.NoError(t, jobs.Save(ctx, stored))
	url, err := uc.DownloadURL(ctx, "alice", job.ID)
	require.NoError(t, err)
	assert.Contains(t, url, stored.ObjectKey)
}

// asyncPool runs submissions on goroutines the way the real pool does.
type asyncPool struct {
	wg sync.WaitGroup
}

func (p *asyncPool) Submit(fn func() error) error {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		_ = fn()
	}()
	return nil
}

func TestStartExportReturnsStableSnapshot(t *testing.T) {
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "console"})
	require.NoError(t, err)

	guard := fakeGuard{households: map[string]string{"alice": "house-a"}}
	jobs := newFakeJobStore()
	files := newFakeFileStore()
	pool := &asyncPool{}
	uc := NewExportUseCase(guard, &fakeSource{items: exportItems()}, jobs, files, pool, log)
	ctx := context.Background()

	job, err := uc.StartExport(ctx, "alice")
	require.NoError(t, err)
	pool.wg.Wait()

	// The worker operates on its own copy; the job handed back to the
	// caller keeps the state it had when the request was accepted.
	assert.Equal(t, JobPending, job.Status)
	assert.Zero(t, job.ItemCount)
	assert.Nil(t, job.CompletedAt)

	done, err := jobs.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, JobCompleted, done.Status)
	assert.Equal(t, 2, done.ItemCount)
}

func TestGetJobUnknownID(t *testing.T) {
	uc, _, _ := newExportFixture(t, exportItems())

	_, err := uc.GetJob(context.Background(), "alice", "no-such-job")
	assert.True(t, apperrors.Is(err, apperrors.ErrExportJobNotFound))
}
