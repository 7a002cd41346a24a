package domain

import (
	"chat-hub/errors"
	"context"
	"fmt"
)

type ChatKind int

const (
	ChatPrivate ChatKind = iota
	ChatGroup
)

func (k ChatKind) String() string {
	switch k {
	case ChatPrivate:
		return "private"
	case ChatGroup:
		return "group"
	default:
		return fmt.Sprintf("ChatKind(%d)", int(k))
	}
}

// Chat is either a private conversation with a User or a Group, bound to the
// adapter instance that decoded it.
type Chat struct {
	kind  ChatKind
	user  User
	group Group
	bot   Bot
}

func NewPrivateChat(bot Bot, user User) Chat {
	return Chat{kind: ChatPrivate, user: user, bot: bot}
}

func NewGroupChat(bot Bot, group Group) Chat {
	return Chat{kind: ChatGroup, group: group, bot: bot}
}

func (c Chat) Kind() ChatKind { return c.kind }

func (c Chat) IsPrivate() bool { return c.kind == ChatPrivate }

func (c Chat) IsGroup() bool { return c.kind == ChatGroup }

// User returns the peer of a private chat.
func (c Chat) User() (User, bool) {
	return c.user, c.kind == ChatPrivate
}

// Group returns the group of a group chat.
func (c Chat) Group() (Group, bool) {
	return c.group, c.kind == ChatGroup
}

// ID is the platform id of the peer or of the group.
func (c Chat) ID() string {
	if c.kind == ChatGroup {
		return c.group.ID
	}
	return c.user.ID
}

func (c Chat) Bot() Bot { return c.bot }

// Send posts contents to this chat through the owning adapter.
func (c Chat) Send(ctx context.Context, contents MessageContents) (string, error) {
	if c.bot == nil {
		return "", errors.ErrNoBot
	}
	return c.bot.SendMessage(ctx, contents, c, nil)
}

func (c Chat) String() string {
	return fmt.Sprintf("%s:%s", c.kind, c.ID())
}
