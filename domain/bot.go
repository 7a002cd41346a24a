package domain

import "context"

// Bot is the outbound half of an adapter. Chats keep one so replies travel
// back over the connection that produced them.
type Bot interface {
	SendMessage(ctx context.Context, contents MessageContents, chat Chat, replyTo *Message) (string, error)
	IsGroupAdmin(ctx context.Context, user User, group Group) (bool, error)
	SelfUser() User
}
