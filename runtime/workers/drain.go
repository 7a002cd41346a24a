package workers

import (
	"chat-hub/contract"
	"chat-hub/domain"
	"chat-hub/observability"
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// DrainWorker pulls one adapter's events in arrival order and hands each
// message to its own handler goroutine. There is no cap on in-flight
// handlers, so completion order is unspecified.
type DrainWorker struct {
	log     *slog.Logger
	adapter contract.Adapter
	handler contract.Handler
	monitor *observability.Monitor
}

func NewDrainWorker(log *slog.Logger, adapter contract.Adapter,
	handler contract.Handler, monitor *observability.Monitor) *DrainWorker {
	return &DrainWorker{
		log:     log.With("adapter", adapter.Name()),
		adapter: adapter,
		handler: handler,
		monitor: monitor,
	}
}

func (w *DrainWorker) Name() string {
	return fmt.Sprintf("DrainWorker[%s]", w.adapter.Name())
}

// Run returns once the adapter stream ends or ctx is done, after the
// handlers already started have returned.
func (w *DrainWorker) Run(ctx context.Context) error {
	name := w.adapter.Name()
	var inFlight sync.WaitGroup
	defer inFlight.Wait()

	for {
		evt, ok := w.adapter.NextEvent(ctx)
		if !ok {
			if ctx.Err() == nil {
				w.log.Info("Adapter stream ended")
			}
			return nil
		}

		msg, isMessage := evt.Message()
		if !isMessage {
			w.monitor.IncrOther(name)
			w.log.Debug("Ignoring event", "event", evt.String())
			continue
		}

		w.monitor.IncrReceived(name)
		inFlight.Add(1)
		go func(msg domain.Message) {
			defer inFlight.Done()
			w.handle(ctx, msg)
		}(msg)
	}
}

func (w *DrainWorker) handle(ctx context.Context, msg domain.Message) {
	name := w.adapter.Name()
	defer func() {
		if r := recover(); r != nil {
			w.monitor.IncrFailed(name)
			w.log.Error("Handler panicked", "message_id", msg.ID(), "panic", fmt.Sprint(r))
		}
	}()

	if err := w.handler.HandleMessage(ctx, msg); err != nil {
		w.monitor.IncrFailed(name)
		w.log.Error("Handler failed", "message_id", msg.ID(), "chat", msg.Chat().String(), "error", err)
		return
	}
	w.monitor.IncrHandled(name)
}
