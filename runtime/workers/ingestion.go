package workers

import (
	"chat-hub/contract"
	"context"
	"fmt"
	"log/slog"
)

// IngestionWorker runs one adapter's ingestion loop. The adapter closes its
// queue when the loop ends, so the stream of that adapter is over for good:
// errors and panics are logged and never lead to a restart.
type IngestionWorker struct {
	log     *slog.Logger
	adapter contract.Adapter
}

func NewIngestionWorker(log *slog.Logger, adapter contract.Adapter) *IngestionWorker {
	return &IngestionWorker{log: log.With("adapter", adapter.Name()), adapter: adapter}
}

func (w *IngestionWorker) Name() string {
	return fmt.Sprintf("IngestionWorker[%s]", w.adapter.Name())
}

func (w *IngestionWorker) Run(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("Adapter ingestion panicked, stream ended", "panic", fmt.Sprint(r))
		}
	}()

	w.log.Info("Starting adapter ingestion")
	if err := w.adapter.Run(ctx); err != nil {
		w.log.Error("Adapter ingestion failed, stream ended", "error", err)
		return nil
	}
	w.log.Info("Adapter ingestion stopped")
	return nil
}
