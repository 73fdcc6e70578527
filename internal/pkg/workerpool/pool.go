package workerpool

import (
	"errors"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"
	"github.com/nestkeep/nestkeep-backend/internal/pkg/logger"
	"go.uber.org/zap"
)

var ErrPoolClosed = errors.New("worker pool is closed")

// Config defines the worker pool configuration
type Config struct {
	Workers   int `mapstructure:"workers"`
	QueueSize int `mapstructure:"queue_size"`
}

// DefaultConfig returns the default worker pool configuration
func DefaultConfig() *Config {
	return &Config{
		Workers:   8,
		QueueSize: 64,
	}
}

// Statistics holds task counters
type Statistics struct {
	Submitted int64
	Completed int64
	Failed    int64
}

// Pool is a bounded goroutine pool for background jobs
type Pool struct {
	pool   *ants.Pool
	logger *logger.Logger

	submitted atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
}

// New creates a worker pool
func New(cfg *Config, log *logger.Logger) (*Pool, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultConfig().Workers
	}

	p, err := ants.NewPool(cfg.Workers,
		ants.WithMaxBlockingTasks(cfg.QueueSize),
		ants.WithPanicHandler(func(v interface{}) {
			log.Error("worker panic recovered", zap.Any("panic", v))
		}),
	)
	if err != nil {
		return nil, err
	}

	log.Info("worker pool started", zap.Int("workers", cfg.Workers))

	return &Pool{
		pool:   p,
		logger: log,
	}, nil
}

// Submit schedules fn on the pool. The returned error reports a
// scheduling failure only; fn's own failure is reported via its result
// callback (export jobs record status themselves).
func (p *Pool) Submit(fn func() error) error {
	if p.pool.IsClosed() {
		return ErrPoolClosed
	}

	p.submitted.Add(1)

	return p.pool.Submit(func() {
		if err := fn(); err != nil {
			p.failed.Add(1)
			p.logger.Error("background task failed", zap.Error(err))
			return
		}
		p.completed.Add(1)
	})
}

// Stats returns a snapshot of task counters
func (p *Pool) Stats() Statistics {
	return Statistics{
		Submitted: p.submitted.Load(),
		Completed: p.completed.Load(),
		Failed:    p.failed.Load(),
	}
}

// Running returns the number of in-flight workers
func (p *Pool) Running() int {
	return p.pool.Running()
}

// Release shuts the pool down
func (p *Pool) Release() {
	p.pool.Release()
	p.logger.Info("worker pool released")
}
