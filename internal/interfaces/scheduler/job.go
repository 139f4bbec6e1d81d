package scheduler

import "context"

// Job is a unit of work executed by the worker pool.
type Job interface {
	// Execute runs the job. The context carries the per-job timeout.
	Execute(ctx context.Context) error

	// UserID is the user whose data the job touches, for logs and spans.
	UserID() int64

	Description() string
}
