package domain_test

import (
	"chat-hub/domain"
	"chat-hub/errors"
	"chat-hub/mocks"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestMessage_ReplyRoutesToOwningAdapter(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	owner := mocks.NewMockAdapter(ctrl)
	other := mocks.NewMockAdapter(ctrl)

	chat := domain.NewGroupChat(owner, domain.NewGroup("300"))
	msg := domain.NewMessage("55", domain.Contents(domain.Text("ping")), chat, domain.NewUser("7"))
	reply := domain.Contents(domain.Text("pong"))

	// Only the adapter that produced the message may be called
	owner.EXPECT().
		SendMessage(gomock.Any(), reply, chat, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ domain.MessageContents, _ domain.Chat, replyTo *domain.Message) (string, error) {
			req.Equal("55", replyTo.ID())
			return "56", nil
		})
	other.EXPECT().SendMessage(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	id, err := msg.Reply(context.Background(), reply)
	req.NoError(err)
	req.Equal("56", id)
}

func TestChat_SendHasNoReplyReference(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	owner := mocks.NewMockAdapter(ctrl)
	chat := domain.NewPrivateChat(owner, domain.NewUser("7"))

	owner.EXPECT().
		SendMessage(gomock.Any(), gomock.Any(), chat, gomock.Nil()).
		Return("1", nil)

	_, err := chat.Send(context.Background(), domain.Contents(domain.Text("hi")))
	req.NoError(err)
}

func TestMessage_ReplyWithoutAdapter(t *testing.T) {
	msg := domain.NewMessage("1", nil, domain.NewPrivateChat(nil, domain.NewUser("7")), domain.NewUser("7"))
	_, err := msg.Reply(context.Background(), domain.Contents(domain.Text("x")))
	require.ErrorIs(t, err, errors.ErrNoBot)
}

func TestMessage_Mentions(t *testing.T) {
	req := require.New(t)
	self := domain.NewUser("42").WithNickname("maid")
	msg := domain.NewMessage("1", domain.Contents(
		domain.Text("hey "),
		domain.Mention(domain.NewUser("42")),
	), domain.NewPrivateChat(nil, domain.NewUser("7")), domain.NewUser("7"))

	// Matching is by id only
	req.True(msg.Mentions(self))
	req.False(msg.Mentions(domain.NewUser("7")))
}
