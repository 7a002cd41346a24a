//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-hub/domain"
	"context"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// Named lets several workers of the same type be told apart in logs.
type Named interface {
	Name() string
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// Workers implementing Named are reported under their own name instead.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	if n, ok := w.(Named); ok {
		return n.Name()
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// Adapter binds one chat platform connection.
// Every Chat built from its events carries the adapter itself as domain.Bot.
type Adapter interface {
	domain.Bot

	// Name identifies this adapter instance in logs and in the registry.
	Name() string

	// Run is the ingestion loop. It returns only on shutdown and closes the
	// adapter queue on its way out.
	Run(ctx context.Context) error

	// NextEvent pulls one event from the capacity-1 queue.
	// It returns false once the queue is closed.
	NextEvent(ctx context.Context) (domain.Event, bool)
}

// QueueReporter is implemented by adapters exposing their queue fill level.
type QueueReporter interface {
	QueueLen() int
	QueueCap() int
}

// Handler is the application logic the runtime dispatches to.
type Handler interface {
	HandleMessage(ctx context.Context, msg domain.Message) error
	RunJobs(ctx context.Context, adapters []Adapter) error
}
