package data

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nestkeep/nestkeep-backend/internal/export/biz"
	"github.com/nestkeep/nestkeep-backend/internal/pkg/redis"
)

// JobStore keeps export job state in Redis. Jobs expire with their
// files, so stale state cleans itself up.
type JobStore struct {
	client *redis.Client
}

// NewJobStore creates the export job store
func NewJobStore(client *redis.Client) biz.JobStore {
	return &JobStore{client: client}
}

func jobKey(jobID string) string {
	return fmt.Sprintf("export:job:%s", jobID)
}

func (s *JobStore) Save(ctx context.Context, job *biz.Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	// ObjectKey is excluded from the JSON shape, persist it separately.
	key := jobKey(job.ID)
	if err := s.client.HSet(ctx, key,
		"state", string(data),
		"object_key", job.ObjectKey,
	); err != nil {
		return err
	}
	return s.client.Expire(ctx, key, biz.JobTTL)
}

func (s *JobStore) Get(ctx context.Context, jobID string) (*biz.Job, error) {
	fields, err := s.client.HGetAll(ctx, jobKey(jobID))
	if err != nil {
		return nil, err
	}
	state, ok := fields["state"]
	if !ok {
		return nil, nil
	}

	var job biz.Job
	if err := json.Unmarshal([]byte(state), &job); err != nil {
		return nil, err
	}
	job.ObjectKey = fields["object_key"]
	return &job, nil
}
