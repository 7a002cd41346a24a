package workers

import (
	"chat-hub/contract"
	"chat-hub/observability"
	"context"
	"log/slog"
	"time"
)

// QueueCapacityWorker periodically samples each adapter's queue fill level.
// Reading the level never blocks the adapter. Adapters that do not report
// their queue are skipped.
type QueueCapacityWorker struct {
	log            *slog.Logger
	adapters       []contract.Adapter
	monitor        *observability.Monitor
	metricInterval time.Duration
}

func NewQueueCapacityWorker(log *slog.Logger, adapters []contract.Adapter,
	monitor *observability.Monitor, metricInterval time.Duration) *QueueCapacityWorker {
	return &QueueCapacityWorker{
		log:            log,
		adapters:       adapters,
		monitor:        monitor,
		metricInterval: metricInterval,
	}
}

func (w *QueueCapacityWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping queue sampling")
			return nil
		case <-ticker.C:
			w.sample()
		}
	}
}

func (w *QueueCapacityWorker) sample() {
	for _, adapter := range w.adapters {
		reporter, ok := adapter.(contract.QueueReporter)
		if !ok {
			continue
		}
		length, capacity := reporter.QueueLen(), reporter.QueueCap()
		w.monitor.UpdateQueue(adapter.Name(), length, capacity)
		if capacity > 0 && length >= capacity {
			w.log.Debug("Adapter queue saturated", "adapter", adapter.Name(), "length", length)
		}
	}
}
