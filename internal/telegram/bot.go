// Package telegram runs the configuration dialogue over the Telegram Bot
// API using long polling.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"signal-trading-bot/internal/api"
	"signal-trading-bot/internal/dialogue"
	"signal-trading-bot/internal/interfaces"
	"signal-trading-bot/internal/logger"
)

const (
	DefaultBaseURL = "https://api.telegram.org"

	welcomeText = "Welcome to the Signal Trading Bot!\n" +
		"Use /set to configure a ticker for automated trading.\n" +
		"Use /list to show configured tickers.\n" +
		"Use /cancel to abort configuration at any time."
)

var ErrMissingToken = errors.New("telegram bot token is not set")

type Options struct {
	Token          string
	BaseURL        string
	PollTimeout    time.Duration
	AllowedChatIDs []int64
	// RetryWait is the pause after a failed poll.
	RetryWait time.Duration
}

type Bot struct {
	client   *api.Client
	token    string
	updater  *dialogue.Updater
	sessions *dialogue.Manager
	store    interfaces.ConfigStore

	allowed     map[int64]bool
	pollTimeout time.Duration
	retryWait   time.Duration
	offset      int64
}

func New(opts Options, updater *dialogue.Updater, store interfaces.ConfigStore) (*Bot, error) {
	if opts.Token == "" {
		return nil, ErrMissingToken
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.PollTimeout <= 0 {
		opts.PollTimeout = 30 * time.Second
	}
	if opts.RetryWait <= 0 {
		opts.RetryWait = 2 * time.Second
	}

	b := &Bot{
		client: api.NewClient(
			api.WithBaseURL(strings.TrimRight(opts.BaseURL, "/")+"/bot"+opts.Token),
			api.WithTimeout(opts.PollTimeout+10*time.Second),
			api.WithLogging(true),
			api.WithRedactedSecret(opts.Token),
		),
		token:       opts.Token,
		updater:     updater,
		sessions:    dialogue.NewManager(),
		store:       store,
		pollTimeout: opts.PollTimeout,
		retryWait:   opts.RetryWait,
	}
	if len(opts.AllowedChatIDs) > 0 {
		b.allowed = make(map[int64]bool, len(opts.AllowedChatIDs))
		for _, id := range opts.AllowedChatIDs {
			b.allowed[id] = true
		}
	}
	return b, nil
}

// Run polls for updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	logger.Info(ctx, "Telegram bot started, waiting for commands", "poll_timeout_s", int(b.pollTimeout.Seconds()))
	for {
		if err := b.poll(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.ErrorWithErr(ctx, "Telegram poll failed", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(b.retryWait):
			}
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

func (b *Bot) poll(ctx context.Context) error {
	q := url.Values{}
	q.Set("timeout", strconv.Itoa(int(b.pollTimeout.Seconds())))
	q.Set("allowed_updates", `["message"]`)
	if b.offset > 0 {
		q.Set("offset", strconv.FormatInt(b.offset, 10))
	}

	resp, err := b.client.GET(ctx, "/getUpdates?"+q.Encode())
	if err != nil {
		return b.requestError("getUpdates", err)
	}
	var out apiResponse[[]Update]
	if err := resp.ParseJSON(&out); err != nil {
		return err
	}
	if !out.OK {
		return fmt.Errorf("getUpdates: %s", out.Description)
	}

	for _, u := range out.Result {
		if u.UpdateID >= b.offset {
			b.offset = u.UpdateID + 1
		}
		if u.Message == nil || u.Message.Text == "" {
			continue
		}
		b.handle(ctx, *u.Message)
	}
	return nil
}

func (b *Bot) handle(ctx context.Context, msg Message) {
	if b.allowed != nil && !b.allowed[msg.Chat.ID] {
		logger.Warn(ctx, "Ignoring message from unlisted chat", "chat_id", msg.Chat.ID)
		return
	}
	reply := b.Respond(ctx, strconv.FormatInt(msg.Chat.ID, 10), msg.Text)
	if reply == "" {
		return
	}
	if err := b.send(ctx, msg.Chat.ID, reply); err != nil {
		logger.ErrorWithErr(ctx, "Failed to send Telegram reply", err, "chat_id", msg.Chat.ID)
	}
}

// Respond runs one line of chat input through the dialogue and returns the
// reply text.
func (b *Bot) Respond(ctx context.Context, chatKey, text string) string {
	text = strings.TrimSpace(text)

	if cmd, ok := command(text); ok {
		switch cmd {
		case "start":
			return welcomeText
		case "set":
			b.sessions.Begin(chatKey)
			return dialogue.PromptSymbol
		case "cancel":
			if b.sessions.Cancel(chatKey) {
				return dialogue.ReplyCancel
			}
			return "Nothing to cancel."
		case "list":
			return b.list()
		default:
			return "Unknown command. Use /set, /list or /cancel."
		}
	}

	s, ok := b.sessions.Active(chatKey)
	if !ok {
		return "Use /set to configure a ticker."
	}
	reply, err := b.updater.Feed(ctx, s, text)
	if err != nil {
		logger.Debug(ctx, "Dialogue input rejected", "chat", chatKey, "state", s.State().String(), "error", err)
	}
	if s.Done() {
		b.sessions.End(chatKey, s)
	}
	return reply
}

func (b *Bot) list() string {
	cfgs := b.store.All()
	if len(cfgs) == 0 {
		return "No tickers configured. Use /set to add one."
	}
	var sb strings.Builder
	sb.WriteString("Configured tickers:")
	for _, c := range cfgs {
		fmt.Fprintf(&sb, "\n • %s: size %s, min profit %s%%", c.Symbol, c.OrderSize.String(), c.MinProfitPct.String())
	}
	return sb.String()
}

func (b *Bot) send(ctx context.Context, chatID int64, text string) error {
	resp, err := b.client.POST(ctx, "/sendMessage", sendMessageRequest{ChatID: chatID, Text: text})
	if err != nil {
		return b.requestError("sendMessage", err)
	}
	var out apiResponse[Message]
	if err := resp.ParseJSON(&out); err != nil {
		return err
	}
	if !out.OK {
		return fmt.Errorf("sendMessage: %s", out.Description)
	}
	return nil
}

// command extracts the bot command from text, dropping any @botname suffix.
func command(text string) (string, bool) {
	if !strings.HasPrefix(text, "/") {
		return "", false
	}
	cmd := strings.Fields(text)[0][1:]
	if i := strings.IndexByte(cmd, '@'); i >= 0 {
		cmd = cmd[:i]
	}
	return strings.ToLower(cmd), true
}

// requestError drops the request URL from transport failures since it
// embeds the bot token.
func (b *Bot) requestError(method string, err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return fmt.Errorf("%s: %s failed: %w", method, ue.Op, ue.Err)
	}
	if b.token != "" && strings.Contains(err.Error(), b.token) {
		return fmt.Errorf("%s: %s", method, strings.ReplaceAll(err.Error(), b.token, "<redacted>"))
	}
	return fmt.Errorf("%s: %w", method, err)
}
