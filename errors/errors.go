package errors

import "fmt"

var (
	ErrWorkerPanic          = fmt.Errorf("worker panic")
	ErrQueueClosed          = fmt.Errorf("event queue is closed")
	ErrEmptyResponse        = fmt.Errorf("api returned empty data")
	ErrNoBot                = fmt.Errorf("chat has no adapter attached")
	ErrInvalidUTF16Boundary = fmt.Errorf("utf-16 slice splits a surrogate pair")
	ErrEntityOutOfRange     = fmt.Errorf("entity lies outside the message text")
	ErrAlreadyStarted       = fmt.Errorf("multiplexer already started")
	ErrNoAdapters           = fmt.Errorf("no adapter registered")
	ErrDuplicateAdapter     = fmt.Errorf("adapter name already registered")
	ErrUnknownRole          = fmt.Errorf("unknown group member role")
	ErrUnsupportedSchema    = fmt.Errorf("unsupported message schema")
	ErrMissingGroupID       = fmt.Errorf("group message without group id")
)

// APIError is a failure envelope returned by a platform for one outbound call.
// It is surfaced to the caller and never retried.
type APIError struct {
	Platform string
	Method   string
	Code     int
	Message  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s api %s returned failed, retcode: %d, error: %q",
		e.Platform, e.Method, e.Code, e.Message)
}
