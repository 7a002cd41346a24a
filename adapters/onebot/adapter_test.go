package onebot

import (
	"chat-hub/domain"
	"chat-hub/errors"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	stderrors "errors"

	"github.com/gorilla/websocket"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

// fakeOneBot serves the RPC actions and the event stream from one server.
type fakeOneBot struct {
	mu      sync.Mutex
	token   string
	bodies  map[string][]byte
	replies map[string]string
	conns   chan *websocket.Conn
}

func newFakeOneBot() *fakeOneBot {
	return &fakeOneBot{
		bodies: make(map[string][]byte),
		replies: map[string]string{
			"get_login_info": `{"status":"ok","retcode":0,"data":{"user_id":10001,"nickname":"maid"},"message":""}`,
		},
		conns: make(chan *websocket.Conn, 10),
	}
}

func (f *fakeOneBot) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if f.token != "" && r.Header.Get("Authorization") != "Bearer "+f.token {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if r.URL.Path == "/event" {
		upgrader := websocket.Upgrader{}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		f.conns <- conn
		return
	}

	action := strings.TrimPrefix(r.URL.Path, "/")
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.bodies[action] = body
	reply, ok := f.replies[action]
	f.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	_, _ = w.Write([]byte(reply))
}

func (f *fakeOneBot) reply(action, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies[action] = body
}

func (f *fakeOneBot) body(action string) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bodies[action]
}

func (f *fakeOneBot) nextConn(t *testing.T) *websocket.Conn {
	t.Helper()
	select {
	case conn := <-f.conns:
		t.Cleanup(func() { _ = conn.Close() })
		return conn
	case <-time.After(3 * time.Second):
		t.Fatal("adapter did not connect to the event stream")
		return nil
	}
}

func newTestAdapter(t *testing.T, fake *fakeOneBot, schema Schema) *OneBot {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	a, err := New(context.Background(), logs.GetLoggerFromLevel(slog.LevelDebug), Config{
		APIURL:         srv.URL,
		EventURL:       "ws" + strings.TrimPrefix(srv.URL, "http") + "/event",
		AccessToken:    fake.token,
		Schema:         schema,
		ReconnectDelay: 50 * time.Millisecond,
	})
	require.NoError(t, err)
	return a
}

func runAdapter(t *testing.T, a *OneBot) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = a.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func nextEvent(t *testing.T, a *OneBot) domain.Event {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	evt, ok := a.NextEvent(ctx)
	require.True(t, ok, "no event delivered")
	return evt
}

const groupFrame = `{"post_type":"message","message_type":"group","message_id":555,"group_id":300,"user_id":7,
	"message":[{"type":"at","data":{"qq":"10001"}},{"type":"text","data":{"text":" ping"}}],
	"sender":{"nickname":"Ada"}}`

func TestNew_ResolvesSelfUser(t *testing.T) {
	req := require.New(t)
	a := newTestAdapter(t, newFakeOneBot(), SchemaArray)

	req.Equal(domain.NewUser("10001").WithNickname("maid"), a.SelfUser())
	req.Equal(StateDisconnected, a.State())
}

func TestNew_RequiresSchema(t *testing.T) {
	_, err := New(context.Background(), slog.Default(), Config{
		APIURL:   "http://127.0.0.1:5700",
		EventURL: "ws://127.0.0.1:6700/event",
	})
	require.Error(t, err)
}

func TestRun_DecodesGroupMessage(t *testing.T) {
	req := require.New(t)
	fake := newFakeOneBot()
	a := newTestAdapter(t, fake, SchemaArray)
	runAdapter(t, a)

	conn := fake.nextConn(t)
	req.NoError(conn.WriteMessage(websocket.TextMessage, []byte(groupFrame)))

	msg, ok := nextEvent(t, a).Message()
	req.True(ok)
	req.Equal("555", msg.ID())
	req.Equal(domain.NewUser("7").WithNickname("Ada"), msg.Sender())
	req.True(msg.Mentions(a.SelfUser()))
	req.Equal(" ping", msg.Contents().PlainText())

	group, isGroup := msg.Chat().Group()
	req.True(isGroup)
	req.Equal("300", group.ID)
	req.Same(a, msg.Chat().Bot())
	req.Equal(StateConnected, a.State())
}

func TestRun_NonMessageFramesBecomeOther(t *testing.T) {
	req := require.New(t)
	fake := newFakeOneBot()
	a := newTestAdapter(t, fake, SchemaArray)
	runAdapter(t, a)

	conn := fake.nextConn(t)
	req.NoError(conn.WriteMessage(websocket.TextMessage,
		[]byte(`{"post_type":"meta_event","meta_event_type":"heartbeat","interval":5000}`)))

	evt := nextEvent(t, a)
	req.Equal(domain.EventOther, evt.Kind())
	req.Contains(evt.Diagnostic(), "heartbeat")
}

func TestRun_DropsBadFrameAndKeepsReading(t *testing.T) {
	req := require.New(t)
	fake := newFakeOneBot()
	a := newTestAdapter(t, fake, SchemaArray)
	runAdapter(t, a)

	conn := fake.nextConn(t)
	// Given a broken frame, a group message without group id and a binary frame
	req.NoError(conn.WriteMessage(websocket.TextMessage, []byte(`{not json`)))
	req.NoError(conn.WriteMessage(websocket.TextMessage,
		[]byte(`{"post_type":"message","message_type":"group","message_id":1,"user_id":7,"message":[],"sender":{}}`)))
	req.NoError(conn.WriteMessage(websocket.BinaryMessage, []byte{0x1}))
	// When a valid frame follows
	req.NoError(conn.WriteMessage(websocket.TextMessage, []byte(groupFrame)))

	// Then only the valid message is delivered
	msg, ok := nextEvent(t, a).Message()
	req.True(ok)
	req.Equal("555", msg.ID())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, ok = a.NextEvent(ctx)
	req.False(ok)
}

func TestRun_ReconnectsAfterStreamDrop(t *testing.T) {
	req := require.New(t)
	fake := newFakeOneBot()
	a := newTestAdapter(t, fake, SchemaArray)
	runAdapter(t, a)

	// Given a first connection that delivers one message
	first := fake.nextConn(t)
	req.NoError(first.WriteMessage(websocket.TextMessage, []byte(groupFrame)))
	nextEvent(t, a)

	// When the server drops the stream
	dropped := time.Now()
	req.NoError(first.Close())

	// Then the adapter dials again after the delay and delivery resumes
	second := fake.nextConn(t)
	req.GreaterOrEqual(time.Since(dropped), 50*time.Millisecond)
	req.NoError(second.WriteMessage(websocket.TextMessage, []byte(
		`{"post_type":"message","message_type":"private","message_id":556,"user_id":8,"message":[{"type":"text","data":{"text":"back"}}],"sender":{"nickname":"Bob"}}`)))

	msg, ok := nextEvent(t, a).Message()
	req.True(ok)
	req.Equal("556", msg.ID())
	peer, isPrivate := msg.Chat().User()
	req.True(isPrivate)
	req.Equal("8", peer.ID)
	req.Equal(int64(2), a.Connects())
	req.Eventually(func() bool { return a.State() == StateConnected }, time.Second, 10*time.Millisecond)
}

func TestRun_RetriesFailedDial(t *testing.T) {
	req := require.New(t)
	fake := newFakeOneBot()
	srv := httptest.NewServer(fake)
	defer srv.Close()

	a, err := New(context.Background(), logs.GetLoggerFromLevel(slog.LevelDebug), Config{
		APIURL:         srv.URL,
		EventURL:       "ws" + strings.TrimPrefix(srv.URL, "http") + "/missing",
		Schema:         SchemaArray,
		ReconnectDelay: 20 * time.Millisecond,
	})
	req.NoError(err)
	runAdapter(t, a)

	time.Sleep(150 * time.Millisecond)
	req.Equal(int64(0), a.Connects())
	req.NotEqual(StateConnected, a.State())
}

func TestRun_StringSchema(t *testing.T) {
	req := require.New(t)
	fake := newFakeOneBot()
	a := newTestAdapter(t, fake, SchemaString)
	runAdapter(t, a)

	conn := fake.nextConn(t)
	req.NoError(conn.WriteMessage(websocket.TextMessage, []byte(
		`{"post_type":"message","message_type":"group","message_id":9,"group_id":300,"user_id":7,"message":"[CQ:at,qq=10001] hi","sender":{"nickname":"Ada"}}`)))

	msg, ok := nextEvent(t, a).Message()
	req.True(ok)
	req.True(msg.Mentions(a.SelfUser()))
	req.Equal(" hi", msg.Contents().PlainText())
}

func TestRun_SendsBearerToken(t *testing.T) {
	req := require.New(t)
	fake := newFakeOneBot()
	fake.token = "s3cret"
	a := newTestAdapter(t, fake, SchemaArray)
	runAdapter(t, a)

	conn := fake.nextConn(t)
	req.NotNil(conn)
	req.Equal("10001", a.SelfUser().ID)
}

func TestSendMessage_GroupReply(t *testing.T) {
	req := require.New(t)
	fake := newFakeOneBot()
	fake.reply("send_msg", `{"status":"ok","retcode":0,"data":{"message_id":901},"message":""}`)
	a := newTestAdapter(t, fake, SchemaArray)

	chat := domain.NewGroupChat(a, domain.NewGroup("300"))
	original := domain.NewMessage("555", nil, chat, domain.NewUser("7"))
	id, err := original.Reply(context.Background(), domain.Contents(
		domain.Mention(domain.NewUser("7")),
		domain.Text("pong"),
	))
	req.NoError(err)
	req.Equal("901", id)

	var sent struct {
		MessageType string       `json:"message_type"`
		GroupID     int64        `json:"group_id"`
		UserID      int64        `json:"user_id"`
		Message     []outSegment `json:"message"`
	}
	req.NoError(json.Unmarshal(fake.body("send_msg"), &sent))
	req.Equal("group", sent.MessageType)
	req.Equal(int64(300), sent.GroupID)
	req.Zero(sent.UserID)
	req.Equal("reply", sent.Message[0].Type)
	req.Equal("555", sent.Message[0].Data["id"])
	req.Equal("at", sent.Message[1].Type)
}

func TestSendMessage_PrivateStringSchema(t *testing.T) {
	req := require.New(t)
	fake := newFakeOneBot()
	fake.reply("send_msg", `{"status":"ok","retcode":0,"data":{"message_id":902},"message":""}`)
	a := newTestAdapter(t, fake, SchemaString)

	_, err := domain.NewPrivateChat(a, domain.NewUser("8")).Send(context.Background(), domain.Contents(domain.Text("a&b")))
	req.NoError(err)

	var sent map[string]any
	req.NoError(json.Unmarshal(fake.body("send_msg"), &sent))
	req.Equal("private", sent["message_type"])
	req.Equal(float64(8), sent["user_id"])
	req.Equal("a&amp;b", sent["message"])
}

func TestSendMessage_Envelopes(t *testing.T) {
	t.Run("failed status carries retcode", func(t *testing.T) {
		req := require.New(t)
		fake := newFakeOneBot()
		fake.reply("send_msg", `{"status":"failed","retcode":100,"data":null,"message":"group not found"}`)
		a := newTestAdapter(t, fake, SchemaArray)

		_, err := a.SendMessage(context.Background(), domain.Contents(domain.Text("x")), domain.NewGroupChat(a, domain.NewGroup("1")), nil)

		var apiErr *errors.APIError
		req.True(stderrors.As(err, &apiErr))
		req.Equal(100, apiErr.Code)
		req.Equal("group not found", apiErr.Message)
	})

	t.Run("async without data is empty", func(t *testing.T) {
		req := require.New(t)
		fake := newFakeOneBot()
		fake.reply("send_msg", `{"status":"async","retcode":1,"message":""}`)
		a := newTestAdapter(t, fake, SchemaArray)

		_, err := a.SendMessage(context.Background(), domain.Contents(domain.Text("x")), domain.NewGroupChat(a, domain.NewGroup("1")), nil)
		req.ErrorIs(err, errors.ErrEmptyResponse)
	})

	t.Run("data wins over status", func(t *testing.T) {
		req := require.New(t)
		fake := newFakeOneBot()
		fake.reply("send_msg", `{"status":"failed","retcode":0,"data":{"message_id":3},"message":""}`)
		a := newTestAdapter(t, fake, SchemaArray)

		id, err := a.SendMessage(context.Background(), domain.Contents(domain.Text("x")), domain.NewGroupChat(a, domain.NewGroup("1")), nil)
		req.NoError(err)
		req.Equal("3", id)
	})
}

func TestIsGroupAdmin_MapsRole(t *testing.T) {
	cases := map[string]bool{"owner": true, "admin": true, "member": false}
	for role, expected := range cases {
		t.Run(role, func(t *testing.T) {
			req := require.New(t)
			fake := newFakeOneBot()
			fake.reply("get_group_member_info", `{"status":"ok","retcode":0,"data":{"role":"`+role+`"},"message":""}`)
			a := newTestAdapter(t, fake, SchemaArray)

			isAdmin, err := a.IsGroupAdmin(context.Background(), domain.NewUser("7"), domain.NewGroup("300"))
			req.NoError(err)
			req.Equal(expected, isAdmin)
			req.JSONEq(`{"group_id":300,"user_id":7}`, string(fake.body("get_group_member_info")))
		})
	}
}

func TestIsGroupAdmin_UnknownRole(t *testing.T) {
	req := require.New(t)
	fake := newFakeOneBot()
	fake.reply("get_group_member_info", `{"status":"ok","retcode":0,"data":{"role":"guest"},"message":""}`)
	a := newTestAdapter(t, fake, SchemaArray)

	_, err := a.IsGroupAdmin(context.Background(), domain.NewUser("7"), domain.NewGroup("300"))
	req.ErrorIs(err, errors.ErrUnknownRole)
}
