package services

import (
	"bytes"
	"chat-hub/adapters/mock"
	"chat-hub/contract"
	"chat-hub/domain"
	"chat-hub/errors"
	"chat-hub/mocks"
	"chat-hub/observability"
	"context"
	stderrors "errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newEchoService() *EchoService {
	return NewEchoService(slog.Default(), observability.NewMonitor(slog.Default()), 0)
}

func TestEchoService_RepliesWhenMentioned(t *testing.T) {
	req := require.New(t)
	bot := mock.New(slog.Default())
	sender := mock.Tester()
	msg := domain.NewMessage("1", domain.Contents(
		domain.Mention(bot.SelfUser()),
		domain.Text(" hello there "),
	), domain.NewPrivateChat(bot, sender), sender)

	req.NoError(newEchoService().HandleMessage(context.Background(), msg))

	actions := bot.ActionsWithin(0)
	req.Len(actions, 1)
	req.Equal("1", actions[0].ReplyTo)
	req.Equal(domain.Contents(domain.Mention(sender), domain.Text(" hello there")), actions[0].Message.Contents())
}

func TestEchoService_IgnoresMessagesWithoutMention(t *testing.T) {
	req := require.New(t)
	bot := mock.New(slog.Default())
	msg := domain.NewMessage("1", domain.Contents(domain.Text("just chatting")),
		domain.NewPrivateChat(bot, mock.Tester()), mock.Tester())

	req.NoError(newEchoService().HandleMessage(context.Background(), msg))
	req.Empty(bot.ActionsWithin(0))
}

func TestEchoService_AdminCommand(t *testing.T) {
	req := require.New(t)
	bot := mock.New(slog.Default())
	group := domain.NewGroup("300")
	sender := mock.Tester()
	ask := func() domain.MessageContents {
		msg := domain.NewMessage("1", domain.Contents(
			domain.Mention(bot.SelfUser()),
			domain.Text(" !admin"),
		), domain.NewGroupChat(bot, group), sender)
		req.NoError(newEchoService().HandleMessage(context.Background(), msg))
		actions := bot.ActionsWithin(0)
		req.Len(actions, 1)
		return actions[0].Message.Contents()
	}

	req.Equal(" is not an admin here", ask().PlainText())

	bot.SetAdmin(sender, group)
	req.Equal(" is an admin here", ask().PlainText())
}

func TestEchoService_AdminCheckFailureIsReturned(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	bot := mocks.NewMockAdapter(ctrl)
	self := domain.NewUser("42")
	bot.EXPECT().SelfUser().Return(self)
	bot.EXPECT().IsGroupAdmin(gomock.Any(), gomock.Any(), domain.NewGroup("300")).
		Return(false, &errors.APIError{Platform: "onebot", Method: "get_group_member_info", Code: 100})

	msg := domain.NewMessage("1", domain.Contents(domain.Mention(self), domain.Text("!admin")),
		domain.NewGroupChat(bot, domain.NewGroup("300")), domain.NewUser("7"))

	err := newEchoService().HandleMessage(context.Background(), msg)
	var apiErr *errors.APIError
	req.True(stderrors.As(err, &apiErr))
}

func TestEchoService_NoBot(t *testing.T) {
	msg := domain.NewMessage("1", nil, domain.NewPrivateChat(nil, domain.NewUser("7")), domain.NewUser("7"))
	require.ErrorIs(t, newEchoService().HandleMessage(context.Background(), msg), errors.ErrNoBot)
}

func TestRenderStatus(t *testing.T) {
	req := require.New(t)
	monitor := observability.NewMonitor(slog.Default())
	bot := mock.NewNamed(slog.Default(), "qa")
	monitor.IncrReceived("qa")
	monitor.IncrHandled("qa")
	monitor.UpdateQueue("qa", 0, 1)

	var buf bytes.Buffer
	RenderStatus(&buf, []contract.Adapter{bot}, monitor)

	out := buf.String()
	req.Contains(out, "ADAPTER")
	req.Contains(out, "qa")
	req.Contains(out, "qa (mock)")
	req.Contains(out, "0/1")
}

func TestEchoService_RunJobsStopsWithContext(t *testing.T) {
	req := require.New(t)
	svc := NewEchoService(slog.Default(), observability.NewMonitor(slog.Default()), 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req.NoError(svc.RunJobs(ctx, []contract.Adapter{mock.New(slog.Default())}))
}
