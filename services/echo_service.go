package services

import (
	"bytes"
	"chat-hub/contract"
	"chat-hub/domain"
	"chat-hub/errors"
	"chat-hub/observability"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

const adminCommand = "!admin"

var _ contract.Handler = (*EchoService)(nil)

// EchoService answers messages that mention the bot by mentioning the
// sender back with the rest of the text. "!admin" reports whether the sender
// administers the group.
type EchoService struct {
	log            *slog.Logger
	monitor        *observability.Monitor
	statusInterval time.Duration
}

func NewEchoService(log *slog.Logger, monitor *observability.Monitor, statusInterval time.Duration) *EchoService {
	return &EchoService{log: log, monitor: monitor, statusInterval: statusInterval}
}

func (s *EchoService) HandleMessage(ctx context.Context, msg domain.Message) error {
	bot := msg.Chat().Bot()
	if bot == nil {
		return fmt.Errorf("message %s: %w", msg.ID(), errors.ErrNoBot)
	}
	if !msg.Mentions(bot.SelfUser()) {
		return nil
	}

	text := strings.TrimSpace(msg.Contents().PlainText())
	if text == adminCommand {
		return s.answerAdmin(ctx, bot, msg)
	}

	reply := domain.Contents(domain.Mention(msg.Sender()))
	if text != "" {
		reply.AppendText(" " + text)
	}
	_, err := msg.Reply(ctx, reply)
	return err
}

func (s *EchoService) answerAdmin(ctx context.Context, bot domain.Bot, msg domain.Message) error {
	group, isGroup := msg.Chat().Group()
	if !isGroup {
		_, err := msg.Reply(ctx, domain.Contents(domain.Text("admin checks only work in groups")))
		return err
	}

	isAdmin, err := bot.IsGroupAdmin(ctx, msg.Sender(), group)
	if err != nil {
		return fmt.Errorf("admin check for %s in %s failed: %w", msg.Sender().ID, group.ID, err)
	}
	verdict := " is not an admin here"
	if isAdmin {
		verdict = " is an admin here"
	}
	_, err = msg.Reply(ctx, domain.Contents(domain.Mention(msg.Sender()), domain.Text(verdict)))
	return err
}

// RunJobs logs the adapter status table every status interval until ctx
// ends. A zero interval disables the report.
func (s *EchoService) RunJobs(ctx context.Context, adapters []contract.Adapter) error {
	if s.statusInterval <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(s.statusInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			var buf bytes.Buffer
			RenderStatus(&buf, adapters, s.monitor)
			s.log.Info("Adapter status\n" + buf.String())
		}
	}
}
