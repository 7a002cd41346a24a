// Package telegram binds the Telegram Bot API through long polling.
//
// The adapter discovers the newest pending update once at startup and
// discards that backlog, then repeatedly asks for updates strictly after the
// last one seen. Every update is decoded and queued by its own goroutine.
package telegram

import (
	"chat-hub/adapters"
	"chat-hub/contract"
	"chat-hub/domain"
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"golang.org/x/time/rate"
)

var _ contract.Adapter = (*Telegram)(nil)

// pollGrace is added to the long-poll timeout for the HTTP deadline.
const pollGrace = 10 * time.Second

type Telegram struct {
	log              *slog.Logger
	name             string
	client           *client
	queue            *adapters.EventQueue
	self             domain.User
	pollTimeout      time.Duration
	bootstrapTimeout time.Duration
	retryDelay       time.Duration
	requestTimeout   time.Duration
	limiter          *rate.Limiter
	offset           atomic.Int64
}

// New resolves the bot identity with getMe and returns a ready adapter.
func New(ctx context.Context, log *slog.Logger, cfg Config) (*Telegram, error) {
	cfg = cfg.withDefaults()
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid telegram config: %w", err)
	}

	a := &Telegram{
		log:              log.With("adapter", cfg.Name),
		name:             cfg.Name,
		client:           newClient(cfg.HTTPClient, cfg.Endpoint, cfg.Token),
		queue:            adapters.NewEventQueue(),
		pollTimeout:      cfg.PollTimeout,
		bootstrapTimeout: cfg.BootstrapTimeout,
		retryDelay:       cfg.RetryDelay,
		requestTimeout:   cfg.RequestTimeout,
	}
	if cfg.SendRate > 0 {
		a.limiter = rate.NewLimiter(rate.Limit(cfg.SendRate), 1)
	}

	reqCtx, cancel := context.WithTimeout(ctx, a.requestTimeout)
	defer cancel()
	me, err := callAPI[user](reqCtx, a.client, "getMe", struct{}{})
	if err != nil {
		return nil, fmt.Errorf("telegram getMe failed: %w", err)
	}
	a.self = domain.NewUser(strconv.FormatInt(me.ID, 10)).WithNickname(me.Username)
	a.log.Info("Telegram bot identified", "id", a.self.ID, "username", a.self.Nickname)
	return a, nil
}

func (a *Telegram) Name() string { return a.name }

func (a *Telegram) SelfUser() domain.User { return a.self }

// Offset is the last acknowledged update id.
func (a *Telegram) Offset() int64 { return a.offset.Load() }

func (a *Telegram) QueueLen() int { return a.queue.Len() }

func (a *Telegram) QueueCap() int { return a.queue.Cap() }

func (a *Telegram) NextEvent(ctx context.Context) (domain.Event, bool) {
	return a.queue.Pull(ctx)
}

// Run bootstraps the offset, then long-polls until ctx ends.
// A failed poll is retried with the same offset after the fixed delay, so
// updates are delivered at least once.
func (a *Telegram) Run(ctx context.Context) error {
	defer a.queue.Close()

	for !a.bootstrap(ctx) {
		if !sleep(ctx, a.retryDelay) {
			return nil
		}
	}

	for ctx.Err() == nil {
		offset := a.offset.Load()
		updates, err := a.getUpdates(ctx, offset+1, a.pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			a.log.Warn("Telegram poll failed, retrying", "offset", offset, "delay", a.retryDelay, "error", err)
			if !sleep(ctx, a.retryDelay) {
				break
			}
			continue
		}

		for _, u := range updates {
			if u.UpdateID > offset {
				offset = u.UpdateID
			}
			go a.dispatch(ctx, u)
		}
		a.offset.Store(offset)
	}

	a.log.Info("Telegram polling stopped", "offset", a.offset.Load())
	return nil
}

// bootstrap discovers the highest pending update id. The updates it sees are
// backlog and are dropped on purpose.
func (a *Telegram) bootstrap(ctx context.Context) bool {
	updates, err := a.getUpdates(ctx, -1, a.bootstrapTimeout)
	if err != nil {
		if ctx.Err() == nil {
			a.log.Warn("Telegram bootstrap failed", "error", err)
		}
		return false
	}
	offset := lo.Reduce(updates, func(acc int64, u update, _ int) int64 {
		return max(acc, u.UpdateID)
	}, a.offset.Load())
	a.offset.Store(offset)
	a.log.Info("Telegram backlog skipped", "updates", len(updates), "offset", offset)
	return true
}

func (a *Telegram) getUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]update, error) {
	reqCtx, cancel := context.WithTimeout(ctx, timeout+pollGrace)
	defer cancel()
	return callAPI[[]update](reqCtx, a.client, "getUpdates", getUpdatesRequest{
		Offset:  offset,
		Timeout: int(timeout / time.Second),
	})
}

// dispatch decodes one update and queues it. A decode failure drops only
// this update.
func (a *Telegram) dispatch(ctx context.Context, u update) {
	evt, err := a.decodeUpdate(u)
	if err != nil {
		a.log.Warn("Dropping undecodable update", "update_id", u.UpdateID, "error", err)
		return
	}
	if err := a.queue.Push(ctx, evt); err != nil {
		a.log.Debug("Update not queued", "update_id", u.UpdateID, "error", err)
	}
}

func (a *Telegram) decodeUpdate(u update) (domain.Event, error) {
	msg := u.anyMessage()
	if msg == nil {
		return domain.NewOtherEvent(fmt.Sprintf("telegram update %d carries no message", u.UpdateID)), nil
	}

	text, entities := msg.Text, msg.Entities
	if text == "" {
		text, entities = msg.Caption, msg.CaptionEntities
	}
	if text == "" {
		return domain.NewOtherEvent(fmt.Sprintf("telegram message %d has no text", msg.MessageID)), nil
	}

	contents, err := decodeContents(text, entities, a.self)
	if err != nil {
		return domain.Event{}, err
	}

	return domain.NewMessageEvent(domain.NewMessage(
		strconv.FormatInt(msg.MessageID, 10),
		contents,
		a.toChat(msg.Chat),
		toDomainUser(msg.From),
	)), nil
}

func (a *Telegram) toChat(c *chat) domain.Chat {
	if c == nil {
		return domain.NewPrivateChat(a, domain.NewUser(""))
	}
	id := strconv.FormatInt(c.ID, 10)
	if c.Type == chatTypePrivate {
		return domain.NewPrivateChat(a, domain.NewUser(id))
	}
	return domain.NewGroupChat(a, domain.NewGroup(id))
}

func (a *Telegram) SendMessage(ctx context.Context, contents domain.MessageContents, chat domain.Chat, replyTo *domain.Message) (string, error) {
	a.log.Info("Sending message", "chat", chat.String(), "contents", contents.String())

	chatID, err := strconv.ParseInt(chat.ID(), 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid telegram chat id %q: %w", chat.ID(), err)
	}
	text, entities := encodeContents(contents)
	req := sendMessageRequest{ChatID: chatID, Text: text, Entities: entities}
	if replyTo != nil {
		replyID, err := strconv.ParseInt(replyTo.ID(), 10, 64)
		if err != nil {
			return "", fmt.Errorf("invalid telegram message id %q: %w", replyTo.ID(), err)
		}
		req.ReplyParameters = &replyParameters{MessageID: replyID}
	}

	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}
	reqCtx, cancel := context.WithTimeout(ctx, a.requestTimeout)
	defer cancel()
	sent, err := callAPI[message](reqCtx, a.client, "sendMessage", req)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(sent.MessageID, 10), nil
}

func (a *Telegram) IsGroupAdmin(ctx context.Context, u domain.User, g domain.Group) (bool, error) {
	chatID, err := strconv.ParseInt(g.ID, 10, 64)
	if err != nil {
		return false, fmt.Errorf("invalid telegram group id %q: %w", g.ID, err)
	}
	userID, err := strconv.ParseInt(u.ID, 10, 64)
	if err != nil {
		return false, fmt.Errorf("invalid telegram user id %q: %w", u.ID, err)
	}
	reqCtx, cancel := context.WithTimeout(ctx, a.requestTimeout)
	defer cancel()
	member, err := callAPI[chatMember](reqCtx, a.client, "getChatMember", getChatMemberRequest{
		ChatID: chatID,
		UserID: userID,
	})
	if err != nil {
		return false, err
	}
	return member.Status == statusCreator || member.Status == statusAdministrator, nil
}

// sleep waits d and reports false if ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
