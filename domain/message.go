// Package domain contains core concepts of the chat system.
// This file defines Message and the Event wrapper adapters emit.
// Messages are immutable and live only while they are handled.
package domain

import (
	"chat-hub/errors"
	"context"
	"fmt"

	"github.com/samber/lo"
)

type Message struct {
	id       string
	contents MessageContents
	chat     Chat
	sender   User
}

func NewMessage(id string, contents MessageContents, chat Chat, sender User) Message {
	return Message{
		id:       id,
		contents: append(MessageContents(nil), contents...),
		chat:     chat,
		sender:   sender,
	}
}

func (m Message) ID() string { return m.id }

// Contents returns a copy, the message itself never changes.
func (m Message) Contents() MessageContents {
	return append(MessageContents(nil), m.contents...)
}

func (m Message) Chat() Chat { return m.chat }

func (m Message) Sender() User { return m.sender }

// Mentions reports whether a mention segment targets user.
func (m Message) Mentions(user User) bool {
	return lo.ContainsBy(m.contents.Mentions(), func(u User) bool {
		return u.ID == user.ID
	})
}

// Reply answers this message through the adapter that received it.
func (m Message) Reply(ctx context.Context, contents MessageContents) (string, error) {
	bot := m.chat.Bot()
	if bot == nil {
		return "", fmt.Errorf("message %s: %w", m.id, errors.ErrNoBot)
	}
	return bot.SendMessage(ctx, contents, m.chat, &m)
}

func (m Message) String() string {
	return fmt.Sprintf("message %s in %s from %s: %s", m.id, m.chat, m.sender.DisplayName(), m.contents)
}

type EventKind int

const (
	EventMessage EventKind = iota
	EventOther
)

// Event is what an adapter emits: a Message, or a diagnostic for anything
// the model does not represent (notices, requests, meta events).
type Event struct {
	kind    EventKind
	message Message
	other   string
}

func NewMessageEvent(m Message) Event {
	return Event{kind: EventMessage, message: m}
}

func NewOtherEvent(diagnostic string) Event {
	return Event{kind: EventOther, other: diagnostic}
}

func (e Event) Kind() EventKind { return e.kind }

func (e Event) Message() (Message, bool) {
	return e.message, e.kind == EventMessage
}

func (e Event) Diagnostic() string { return e.other }

func (e Event) String() string {
	if e.kind == EventMessage {
		return e.message.String()
	}
	return "other: " + e.other
}
