// Package runtime fans several adapters into one application handler.
// It owns the adapter set for the whole process lifetime and contains no
// platform or business logic.
package runtime

import (
	"chat-hub/contract"
	"chat-hub/errors"
	"chat-hub/observability"
	"chat-hub/runtime/workers"
	"context"
	"log/slog"
	"sync"
	"time"
)

// Multiplexer runs, for every adapter, its ingestion loop and a drain loop
// feeding the handler, plus one jobs task seeing the whole adapter set.
// One adapter's stream ending stops only that adapter's drain loop.
type Multiplexer struct {
	mu             sync.Mutex
	log            *slog.Logger
	supervisor     contract.ISupervisor
	registry       *Registry
	handler        contract.Handler
	monitor        *observability.Monitor
	metricInterval time.Duration
	started        bool
}

func NewMultiplexer(log *slog.Logger, supervisor *workers.Supervisor, registry *Registry,
	handler contract.Handler, monitor *observability.Monitor, metricInterval time.Duration) *Multiplexer {
	return &Multiplexer{
		log:            log,
		supervisor:     supervisor,
		registry:       registry,
		handler:        handler,
		monitor:        monitor,
		metricInterval: metricInterval,
	}
}

// Add registers adapters. The set is fixed once Start has been called.
func (m *Multiplexer) Add(adapters ...contract.Adapter) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return errors.ErrAlreadyStarted
	}
	for _, adapter := range adapters {
		if err := m.registry.Register(adapter); err != nil {
			return err
		}
		m.log.Info("Adapter registered", "adapter", adapter.Name())
	}
	return nil
}

func (m *Multiplexer) Adapters() []contract.Adapter {
	return m.registry.All()
}

// Start registers every worker with the supervisor and blocks until ctx is
// done and all of them have returned.
func (m *Multiplexer) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return errors.ErrAlreadyStarted
	}
	adapters := m.registry.All()
	if len(adapters) == 0 {
		m.mu.Unlock()
		return errors.ErrNoAdapters
	}
	m.started = true
	for _, w := range m.prepareWorkers(adapters) {
		m.supervisor.Add(w)
	}
	m.mu.Unlock()

	m.log.Info("Starting multiplexer", "adapters", len(adapters))
	m.supervisor.Run(ctx)
	m.log.Info("Multiplexer stopped")
	return nil
}

func (m *Multiplexer) prepareWorkers(adapters []contract.Adapter) []contract.Worker {
	var res []contract.Worker
	for _, adapter := range adapters {
		res = append(res,
			workers.NewIngestionWorker(m.log, adapter),
			workers.NewDrainWorker(m.log, adapter, m.handler, m.monitor),
		)
	}
	res = append(res, workers.NewJobsWorker(m.log, m.handler, adapters))

	if m.metricInterval > 0 {
		res = append(res,
			workers.NewQueueCapacityWorker(m.log, adapters, m.monitor, m.metricInterval),
			workers.NewHeartbeatWorker(m.log, m.monitor, m.metricInterval),
		)
	}
	return res
}

// Stop cancels every worker; Start returns once they are done.
func (m *Multiplexer) Stop() {
	m.log.Info("Requesting multiplexer shutdown")
	m.supervisor.Stop()
}
