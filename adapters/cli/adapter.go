// Package cli is a local debug adapter: each stdin line is a private message
// from the current OS user and every reply is printed to stdout.
package cli

import (
	"bufio"
	"chat-hub/adapters"
	"chat-hub/contract"
	"chat-hub/domain"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gookit/color"
	"github.com/shirou/gopsutil/process"
)

var _ contract.Adapter = (*CLI)(nil)

type CLI struct {
	log    *slog.Logger
	name   string
	self   domain.User
	input  io.Reader
	color  bool
	outMu  sync.Mutex
	output io.Writer
	queue  *adapters.EventQueue
	owner  func() (domain.User, error)
	euid   func() (int32, error)
}

func New(log *slog.Logger, cfg Config) (*CLI, error) {
	cfg = cfg.withDefaults()
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid cli config: %w", err)
	}
	return &CLI{
		log:    log.With("adapter", cfg.Name),
		name:   cfg.Name,
		self:   domain.NewUser(cfg.SelfID),
		input:  cfg.Input,
		color:  cfg.Color,
		output: cfg.Output,
		queue:  adapters.NewEventQueue(),
		owner:  processOwner,
		euid:   effectiveUID,
	}, nil
}

func (a *CLI) Name() string { return a.name }

func (a *CLI) SelfUser() domain.User { return a.self }

func (a *CLI) QueueLen() int { return a.queue.Len() }

func (a *CLI) QueueCap() int { return a.queue.Cap() }

func (a *CLI) NextEvent(ctx context.Context) (domain.Event, bool) {
	return a.queue.Pull(ctx)
}

// Run reads lines until EOF, a read error or ctx ends. The queue is closed
// on return so the drain side sees the end of the stream.
func (a *CLI) Run(ctx context.Context) error {
	defer a.queue.Close()

	sender, err := a.owner()
	if err != nil {
		a.log.Warn("Could not resolve the process owner", "error", err)
		sender = domain.NewUser(strconv.Itoa(os.Getuid()))
	}

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(a.input)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			if err != nil {
				a.log.Error("Reading input failed", "error", err)
				return err
			}
			a.log.Info("Input closed")
			return nil
		case line := <-lines:
			msg := domain.NewMessage(nowAsID(), a.parseLine(line), domain.NewPrivateChat(a, sender), sender)
			if err := a.queue.Push(ctx, domain.NewMessageEvent(msg)); err != nil {
				return nil
			}
		}
	}
}

// parseLine turns every "@<self id> " into a mention of the bot.
func (a *CLI) parseLine(line string) domain.MessageContents {
	marker := "@" + a.self.ID + " "
	var contents domain.MessageContents
	for {
		pos := strings.Index(line, marker)
		if pos < 0 {
			break
		}
		if pos > 0 {
			contents.AppendText(line[:pos])
		}
		contents.AppendMention(a.self)
		line = line[pos+len(marker):]
	}
	if line != "" {
		contents.AppendText(line)
	}
	return contents
}

func (a *CLI) SendMessage(_ context.Context, contents domain.MessageContents, chat domain.Chat, _ *domain.Message) (string, error) {
	a.log.Debug("Sending message", "chat", chat.String(), "contents", contents.String())

	fence := "```"
	if a.color {
		fence = color.New(color.FgGreen).Render(fence)
	}

	a.outMu.Lock()
	defer a.outMu.Unlock()
	if _, err := fmt.Fprintf(a.output, "%s\n%s\n%s\n", fence, contents, fence); err != nil {
		return "", fmt.Errorf("failed to write cli output: %w", err)
	}
	return nowAsID(), nil
}

// IsGroupAdmin answers with whether this process runs as root.
func (a *CLI) IsGroupAdmin(_ context.Context, _ domain.User, _ domain.Group) (bool, error) {
	euid, err := a.euid()
	if err != nil {
		return false, fmt.Errorf("failed to read effective uid: %w", err)
	}
	return euid == 0, nil
}

func nowAsID() string {
	return strconv.FormatInt(time.Now().UnixMilli(), 10)
}

func processOwner() (domain.User, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return domain.User{}, err
	}
	uids, err := p.Uids()
	if err != nil {
		return domain.User{}, err
	}
	if len(uids) == 0 {
		return domain.User{}, fmt.Errorf("no uid reported for pid %d", p.Pid)
	}
	username, err := p.Username()
	if err != nil {
		return domain.User{}, err
	}
	return domain.NewUser(strconv.Itoa(int(uids[0]))).WithNickname(username), nil
}

func effectiveUID() (int32, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0, err
	}
	uids, err := p.Uids()
	if err != nil {
		return 0, err
	}
	if len(uids) < 2 {
		return 0, fmt.Errorf("effective uid not reported for pid %d", p.Pid)
	}
	return uids[1], nil
}
