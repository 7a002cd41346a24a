// Package onebot binds a OneBot 11 implementation: events arrive over a
// WebSocket stream and actions go out as HTTP RPC calls.
package onebot

import (
	"chat-hub/adapters"
	"chat-hub/contract"
	"chat-hub/domain"
	"chat-hub/errors"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"
)

var _ contract.Adapter = (*OneBot)(nil)

type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// adminRoles maps every role a member can hold to its admin status.
var adminRoles = map[string]bool{
	"owner":  true,
	"admin":  true,
	"member": false,
}

type OneBot struct {
	log            *slog.Logger
	name           string
	client         *client
	eventURL       string
	schema         Schema
	reconnectDelay time.Duration
	queue          *adapters.EventQueue
	self           domain.User
	state          atomic.Int32
	connects       atomic.Int64
}

// New checks the configuration and asks the implementation who we are.
func New(ctx context.Context, log *slog.Logger, cfg Config) (*OneBot, error) {
	cfg = cfg.withDefaults()
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid onebot config: %w", err)
	}

	a := &OneBot{
		log:            log.With("adapter", cfg.Name),
		name:           cfg.Name,
		client:         newClient(cfg.HTTPClient, cfg.APIURL, cfg.AccessToken),
		eventURL:       cfg.EventURL,
		schema:         cfg.Schema,
		reconnectDelay: cfg.ReconnectDelay,
		queue:          adapters.NewEventQueue(),
	}

	info, err := callAPI[loginInfo](ctx, a.client, "get_login_info", struct{}{})
	if err != nil {
		return nil, fmt.Errorf("onebot get_login_info failed: %w", err)
	}
	a.self = domain.NewUser(strconv.FormatInt(info.UserID, 10)).WithNickname(info.Nickname)
	a.log.Info("OneBot account identified", "id", a.self.ID, "nickname", a.self.Nickname, "schema", a.schema)
	return a, nil
}

func (a *OneBot) Name() string { return a.name }

func (a *OneBot) SelfUser() domain.User { return a.self }

func (a *OneBot) State() State { return State(a.state.Load()) }

// Connects counts successful stream connections since start.
func (a *OneBot) Connects() int64 { return a.connects.Load() }

func (a *OneBot) QueueLen() int { return a.queue.Len() }

func (a *OneBot) QueueCap() int { return a.queue.Cap() }

func (a *OneBot) NextEvent(ctx context.Context) (domain.Event, bool) {
	return a.queue.Pull(ctx)
}

func (a *OneBot) setState(s State) {
	if State(a.state.Swap(int32(s))) != s {
		a.log.Debug("OneBot stream state changed", "state", s.String())
	}
}

// Run keeps the event stream connected until ctx ends. A failed dial or a
// dropped stream goes back to Disconnected and is retried after the fixed
// delay, forever.
func (a *OneBot) Run(ctx context.Context) error {
	defer a.queue.Close()
	defer a.setState(StateDisconnected)

	for ctx.Err() == nil {
		a.setState(StateConnecting)
		conn, err := a.dial(ctx)
		if err != nil {
			a.setState(StateDisconnected)
			if ctx.Err() != nil {
				break
			}
			a.log.Warn("OneBot connect failed, retrying", "url", a.eventURL, "delay", a.reconnectDelay, "error", err)
			if !sleep(ctx, a.reconnectDelay) {
				break
			}
			continue
		}

		a.setState(StateConnected)
		a.connects.Add(1)
		a.log.Info("OneBot event stream connected", "url", a.eventURL)

		err = a.consume(ctx, conn)
		_ = conn.Close()
		a.setState(StateDisconnected)
		if ctx.Err() != nil {
			break
		}
		a.log.Warn("OneBot event stream ended, reconnecting", "delay", a.reconnectDelay, "error", err)
		if !sleep(ctx, a.reconnectDelay) {
			break
		}
	}

	a.log.Info("OneBot stream stopped")
	return nil
}

func (a *OneBot) dial(ctx context.Context) (*websocket.Conn, error) {
	header := http.Header{}
	a.client.authorize(header)
	dialer := *websocket.DefaultDialer
	conn, resp, err := dialer.DialContext(ctx, a.eventURL, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	return conn, err
}

// consume reads frames until the stream breaks. Each text frame is decoded
// and queued by its own goroutine.
func (a *OneBot) consume(ctx context.Context, conn *websocket.Conn) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		kind, frame, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if kind != websocket.TextMessage {
			a.log.Debug("Ignoring non-text frame", "type", kind)
			continue
		}
		go a.dispatch(ctx, frame)
	}
}

func (a *OneBot) dispatch(ctx context.Context, frame []byte) {
	evt, err := a.decodeFrame(frame)
	if err != nil {
		a.log.Warn("Dropping undecodable frame", "frame", string(frame), "error", err)
		return
	}
	if err := a.queue.Push(ctx, evt); err != nil {
		a.log.Debug("Frame not queued", "error", err)
	}
}

func (a *OneBot) decodeFrame(frame []byte) (domain.Event, error) {
	if !gjson.ValidBytes(frame) {
		return domain.Event{}, fmt.Errorf("frame is not valid json")
	}
	triage := gjson.GetManyBytes(frame, "post_type", "notice_type", "request_type", "meta_event_type")
	postType := triage[0].String()
	if postType != postTypeMessage {
		return domain.NewOtherEvent(fmt.Sprintf("onebot %s %s%s%s",
			postType, triage[1].String(), triage[2].String(), triage[3].String())), nil
	}

	var raw messageEvent
	if err := json.Unmarshal(frame, &raw); err != nil {
		return domain.Event{}, fmt.Errorf("failed to decode message event: %w", err)
	}
	contents, err := decodeMessage(a.schema, raw.Message)
	if err != nil {
		return domain.Event{}, err
	}

	sender := domain.NewUser(strconv.FormatInt(raw.UserID, 10)).WithNickname(raw.Sender.Nickname)
	var chat domain.Chat
	switch raw.MessageType {
	case messageTypePrivate:
		chat = domain.NewPrivateChat(a, sender)
	case messageTypeGroup:
		if raw.GroupID == nil {
			return domain.Event{}, fmt.Errorf("message %d: %w", raw.MessageID, errors.ErrMissingGroupID)
		}
		chat = domain.NewGroupChat(a, domain.NewGroup(strconv.FormatInt(*raw.GroupID, 10)))
	default:
		return domain.NewOtherEvent(fmt.Sprintf("onebot message of type %q", raw.MessageType)), nil
	}

	return domain.NewMessageEvent(domain.NewMessage(
		strconv.FormatInt(raw.MessageID, 10), contents, chat, sender,
	)), nil
}

func (a *OneBot) SendMessage(ctx context.Context, contents domain.MessageContents, chat domain.Chat, replyTo *domain.Message) (string, error) {
	a.log.Info("Sending message", "chat", chat.String(), "contents", contents.String())

	id, err := strconv.ParseInt(chat.ID(), 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid onebot chat id %q: %w", chat.ID(), err)
	}
	message, err := encodeMessage(a.schema, contents, chat, replyTo)
	if err != nil {
		return "", err
	}

	req := sendMsgRequest{Message: message}
	if chat.IsGroup() {
		req.MessageType, req.GroupID = messageTypeGroup, id
	} else {
		req.MessageType, req.UserID = messageTypePrivate, id
	}

	sent, err := callAPI[sendMsgData](ctx, a.client, "send_msg", req)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(sent.MessageID, 10), nil
}

func (a *OneBot) IsGroupAdmin(ctx context.Context, u domain.User, g domain.Group) (bool, error) {
	groupID, err := strconv.ParseInt(g.ID, 10, 64)
	if err != nil {
		return false, fmt.Errorf("invalid onebot group id %q: %w", g.ID, err)
	}
	userID, err := strconv.ParseInt(u.ID, 10, 64)
	if err != nil {
		return false, fmt.Errorf("invalid onebot user id %q: %w", u.ID, err)
	}

	info, err := callAPI[groupMemberInfo](ctx, a.client, "get_group_member_info", getGroupMemberInfoRequest{
		GroupID: groupID,
		UserID:  userID,
	})
	if err != nil {
		return false, err
	}
	isAdmin, known := adminRoles[info.Role]
	if !known {
		return false, fmt.Errorf("role %q: %w", info.Role, errors.ErrUnknownRole)
	}
	return isAdmin, nil
}

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
