// Package mock is an in-process adapter for tests: events are injected by
// the test and outbound sends are recorded instead of delivered.
package mock

import (
	"chat-hub/adapters"
	"chat-hub/contract"
	"chat-hub/domain"
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultName           = "mock"
	DefaultBotID          = "mock"
	DefaultSenderID       = "0"
	DefaultSenderNickname = "tester"
	// DefaultActionsWait is how long Actions lets in-flight handlers finish.
	DefaultActionsWait = 200 * time.Millisecond
)

var _ contract.Adapter = (*Mock)(nil)

type ActionKind int

const (
	ActionSendMessage ActionKind = iota
)

// Action is one outbound call the adapter received.
type Action struct {
	Kind    ActionKind
	Message domain.Message
	ReplyTo string
}

// SentMessage returns the message for send actions.
func (a Action) SentMessage() (domain.Message, bool) {
	return a.Message, a.Kind == ActionSendMessage
}

type Mock struct {
	log     *slog.Logger
	name    string
	self    domain.User
	queue   *adapters.EventQueue
	mu      sync.Mutex
	actions []Action
	admins  map[adminKey]bool
}

type adminKey struct {
	group string
	user  string
}

func New(log *slog.Logger) *Mock {
	return NewNamed(log, DefaultName)
}

// NewNamed builds a mock registered under name, for runtimes holding several.
func NewNamed(log *slog.Logger, name string) *Mock {
	return &Mock{
		log:    log.With("adapter", name),
		name:   name,
		self:   domain.NewUser(DefaultBotID).WithNickname(name),
		queue:  adapters.NewEventQueue(),
		admins: make(map[adminKey]bool),
	}
}

// Tester is the default sender of SimpleMessage and SimpleText.
func Tester() domain.User {
	return domain.NewUser(DefaultSenderID).WithNickname(DefaultSenderNickname)
}

func (m *Mock) Name() string { return m.name }

func (m *Mock) SelfUser() domain.User { return m.self }

func (m *Mock) QueueLen() int { return m.queue.Len() }

func (m *Mock) QueueCap() int { return m.queue.Cap() }

// Run has no ingestion of its own. It waits for ctx and then ends the stream.
func (m *Mock) Run(ctx context.Context) error {
	<-ctx.Done()
	m.queue.Close()
	return nil
}

func (m *Mock) NextEvent(ctx context.Context) (domain.Event, bool) {
	return m.queue.Pull(ctx)
}

// Close ends the event stream. Pending injections are dropped.
func (m *Mock) Close() {
	m.queue.Close()
}

// Happen injects evt without waiting for it to be pulled.
func (m *Mock) Happen(evt domain.Event) {
	go func() {
		if err := m.queue.Push(context.Background(), evt); err != nil {
			m.log.Debug("Injected event dropped", "event", evt.String(), "error", err)
		}
	}()
}

// SimpleMessage injects a private message from Tester.
func (m *Mock) SimpleMessage(contents domain.MessageContents) {
	sender := Tester()
	m.Happen(domain.NewMessageEvent(domain.NewMessage(
		uuid.NewString(),
		contents,
		domain.NewPrivateChat(m, sender),
		sender,
	)))
}

func (m *Mock) SimpleText(text string) {
	m.SimpleMessage(domain.Contents(domain.Text(text)))
}

func (m *Mock) SendMessage(_ context.Context, contents domain.MessageContents, chat domain.Chat, replyTo *domain.Message) (string, error) {
	sent := domain.NewMessage(uuid.NewString(), contents, chat, m.self)
	action := Action{Kind: ActionSendMessage, Message: sent}
	if replyTo != nil {
		action.ReplyTo = replyTo.ID()
	}

	m.mu.Lock()
	m.actions = append(m.actions, action)
	m.mu.Unlock()
	return sent.ID(), nil
}

// SetAdmin makes IsGroupAdmin answer true for user in group.
func (m *Mock) SetAdmin(user domain.User, group domain.Group) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.admins[adminKey{group: group.ID, user: user.ID}] = true
}

func (m *Mock) IsGroupAdmin(_ context.Context, user domain.User, group domain.Group) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.admins[adminKey{group: group.ID, user: user.ID}], nil
}

// Actions waits DefaultActionsWait and returns what was recorded since the
// previous call.
func (m *Mock) Actions() []Action {
	return m.ActionsWithin(DefaultActionsWait)
}

func (m *Mock) ActionsWithin(wait time.Duration) []Action {
	time.Sleep(wait)
	m.mu.Lock()
	defer m.mu.Unlock()
	actions := m.actions
	m.actions = nil
	return actions
}
