package workers

import (
	"chat-hub/contract"
	"context"
	"log/slog"
)

// JobsWorker gives the application one long-running task with access to
// every adapter.
type JobsWorker struct {
	log      *slog.Logger
	handler  contract.Handler
	adapters []contract.Adapter
}

func NewJobsWorker(log *slog.Logger, handler contract.Handler, adapters []contract.Adapter) *JobsWorker {
	return &JobsWorker{log: log, handler: handler, adapters: adapters}
}

// Run does not restart failed jobs: the error is logged and the worker ends.
func (w *JobsWorker) Run(ctx context.Context) error {
	w.log.Info("Starting jobs", "adapters", len(w.adapters))
	if err := w.handler.RunJobs(ctx, w.adapters); err != nil && ctx.Err() == nil {
		w.log.Error("Jobs failed", "error", err)
	}
	return nil
}
