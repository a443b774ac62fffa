// Package drafting follows server-side drafting jobs until they finish.
package drafting

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ShabiDHM/advocatus-sub001/application/ports"
	pkgerrors "github.com/ShabiDHM/advocatus-sub001/pkg/errors"
)

// JobState is the lifecycle state of a drafting job
type JobState string

const (
	StatePending    JobState = "pending"
	StateProcessing JobState = "processing"
	StateCompleted  JobState = "completed"
	StateFailed     JobState = "failed"
)

// ParseJobState normalizes a status reported by the server. Unknown values
// are treated as still pending.
func ParseJobState(s string) JobState {
	switch st := JobState(strings.ToLower(strings.TrimSpace(s))); st {
	case StateProcessing, StateCompleted, StateFailed:
		return st
	case "success", "succeeded", "done":
		return StateCompleted
	case "failure", "error":
		return StateFailed
	default:
		return StatePending
	}
}

// Terminal reports whether polling stops at this state
func (s JobState) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

const (
	DefaultInterval             = 2 * time.Second
	DefaultMaxConsecutiveErrors = 5
)

// Config configures a Poller
type Config struct {
	Interval             time.Duration
	MaxConsecutiveErrors int

	// OnUpdate, when set, is called from the polling goroutine after every
	// successful fetch
	OnUpdate func(ports.JobStatus)
}

// Poller polls job status on a fixed interval, without backoff
type Poller struct {
	fetcher ports.JobStatusFetcher
	cfg     Config
	logger  *zap.Logger
}

// NewPoller creates a poller, filling unset config with defaults
func NewPoller(fetcher ports.JobStatusFetcher, cfg Config, logger *zap.Logger) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.MaxConsecutiveErrors <= 0 {
		cfg.MaxConsecutiveErrors = DefaultMaxConsecutiveErrors
	}
	return &Poller{fetcher: fetcher, cfg: cfg, logger: logger}
}

// Task is one running poll loop
type Task struct {
	jobID  string
	cancel context.CancelFunc
	done   chan struct{}

	mu     sync.Mutex
	status ports.JobStatus
	err    error
}

// Start polls jobID in its own goroutine until the job reaches a terminal
// state, ctx ends or the task is cancelled. The first fetch happens
// immediately.
func (p *Poller) Start(ctx context.Context, jobID string) *Task {
	ctx, cancel := context.WithCancel(ctx)
	t := &Task{
		jobID:  jobID,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go p.run(ctx, t)
	return t
}

// Wait polls jobID until it finishes and returns the final status
func (p *Poller) Wait(ctx context.Context, jobID string) (ports.JobStatus, error) {
	t := p.Start(ctx, jobID)
	<-t.Done()
	return t.Result()
}

func (p *Poller) run(ctx context.Context, t *Task) {
	defer close(t.done)
	defer t.cancel()

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	failures := 0
	for {
		status, err := p.fetcher.FetchJobStatus(ctx, t.jobID)
		switch {
		case ctx.Err() != nil:
			t.finish(t.lastStatus(), ctx.Err())
			return
		case err != nil:
			failures++
			p.logger.Warn("Failed to fetch drafting job status",
				zap.String("jobID", t.jobID),
				zap.Int("consecutiveFailures", failures),
				zap.Error(err))
			if failures >= p.cfg.MaxConsecutiveErrors {
				t.finish(t.lastStatus(), pkgerrors.Wrap(pkgerrors.ErrDraftJobUnreachable, err.Error()))
				return
			}
		default:
			failures = 0
			t.record(status)
			if p.cfg.OnUpdate != nil {
				p.cfg.OnUpdate(status)
			}

			switch ParseJobState(status.Status) {
			case StateCompleted:
				p.logger.Info("Drafting job completed", zap.String("jobID", t.jobID))
				t.finish(status, nil)
				return
			case StateFailed:
				p.logger.Warn("Drafting job failed",
					zap.String("jobID", t.jobID),
					zap.String("error", status.Error))
				t.finish(status, pkgerrors.Wrapf(pkgerrors.ErrDraftJobFailed, "job %s: %s", t.jobID, status.Error))
				return
			}
		}

		select {
		case <-ctx.Done():
			t.finish(t.lastStatus(), ctx.Err())
			return
		case <-ticker.C:
		}
	}
}

// Cancel stops polling and waits for the goroutine to exit. No further
// request is sent once Cancel returns.
func (t *Task) Cancel() {
	t.cancel()
	<-t.done
}

// Done is closed when polling has stopped
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// JobID returns the polled job
func (t *Task) JobID() string {
	return t.jobID
}

// Result returns the last status seen and why polling stopped. A job that
// completed returns a nil error. Before Done is closed the error is nil and
// the status is the latest one fetched.
func (t *Task) Result() (ports.JobStatus, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status, t.err
}

func (t *Task) lastStatus() ports.JobStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

func (t *Task) record(status ports.JobStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = status
}

func (t *Task) finish(status ports.JobStatus, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = status
	t.err = err
}
