// Package worker runs the asynchronous monthly aggregation jobs that are
// enqueued after every work-record mutation.
package worker

import (
	"context"
	"log/slog"
)

// Func performs one aggregation pass for a person's month.
type Func func(ctx context.Context, personID uint, yymm string) error

type job struct {
	personID uint
	yymm     string
}

// Queue is a buffered fire-and-forget job queue drained by a single
// goroutine. Handlers never wait on a job's completion.
type Queue struct {
	log  *slog.Logger
	fn   Func
	jobs chan job
}

func NewQueue(log *slog.Logger, fn Func, size int) *Queue {
	return &Queue{
		log:  log,
		fn:   fn,
		jobs: make(chan job, size),
	}
}

// Enqueue schedules an aggregation pass for (personID, yymm). It never
// blocks: when the queue is full the job is dropped with a warning, and the
// next mutation or a manual refresh re-enqueues the same month.
func (q *Queue) Enqueue(personID uint, yymm string) {
	select {
	case q.jobs <- job{personID: personID, yymm: yymm}:
	default:
		q.log.Warn("aggregation queue full, dropping job",
			slog.Uint64("person_id", uint64(personID)),
			slog.String("yymm", yymm))
	}
}

// Run drains the queue until ctx is cancelled.
func (q *Queue) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case j := <-q.jobs:
			if err := q.fn(ctx, j.personID, j.yymm); err != nil {
				q.log.Error("aggregation job failed",
					slog.Uint64("person_id", uint64(j.personID)),
					slog.String("yymm", j.yymm),
					slog.Any("error", err))
			}
		}
	}
}
