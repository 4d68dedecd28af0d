package twitch

import (
	"context"
	"sort"
	"strings"
	"sync"

	twitchirc "github.com/gempir/go-twitch-irc/v4"
	log "github.com/sirupsen/logrus"

	"twitch-chat-overlay/config"
)

// LineHandler принимает сырые строки IRC в том виде, в каком их прислал Twitch.
type LineHandler interface {
	HandleLine(ctx context.Context, raw string)
}

// ircClient — часть go-twitch-irc, которой пользуется Client.
type ircClient interface {
	Join(channels ...string)
	Depart(channel string)
	Connect() error
	Disconnect() error
}

// Client оборачивает go-twitch-irc и пересылает все строки в LineHandler.
type Client struct {
	client  ircClient
	handler LineHandler
	baseCtx context.Context

	mu       sync.Mutex
	channels map[string]struct{}
}

// NewClient инициализирует IRC-клиент и регистрирует колбэки.
// Без учётных данных используется анонимное подключение (только чтение).
func NewClient(cfg config.TwitchConfig, handler LineHandler) *Client {
	var client *twitchirc.Client
	if cfg.Anonymous() {
		client = twitchirc.NewAnonymousClient()
	} else {
		client = twitchirc.NewClient(cfg.Username, cfg.OAuthToken)
	}

	c := newClient(client, handler, cfg.Channels)

	client.OnPrivateMessage(func(m twitchirc.PrivateMessage) { c.forward(m.Raw) })
	client.OnUserNoticeMessage(func(m twitchirc.UserNoticeMessage) { c.forward(m.Raw) })
	client.OnRoomStateMessage(func(m twitchirc.RoomStateMessage) { c.forward(m.Raw) })
	client.OnNoticeMessage(func(m twitchirc.NoticeMessage) { c.forward(m.Raw) })
	client.OnClearChatMessage(func(m twitchirc.ClearChatMessage) { c.forward(m.Raw) })
	client.OnClearMessage(func(m twitchirc.ClearMessage) { c.forward(m.Raw) })
	client.OnUserStateMessage(func(m twitchirc.UserStateMessage) { c.forward(m.Raw) })
	client.OnGlobalUserStateMessage(func(m twitchirc.GlobalUserStateMessage) { c.forward(m.Raw) })
	client.OnWhisperMessage(func(m twitchirc.WhisperMessage) { c.forward(m.Raw) })
	client.OnUserJoinMessage(func(m twitchirc.UserJoinMessage) { c.forward(m.Raw) })
	client.OnUserPartMessage(func(m twitchirc.UserPartMessage) { c.forward(m.Raw) })
	client.OnNamesMessage(func(m twitchirc.NamesMessage) { c.forward(m.Raw) })
	client.OnUnsetMessage(func(m twitchirc.RawMessage) { c.forward(m.Raw) })

	client.OnConnect(func() {
		channels := c.Channels()
		log.WithFields(log.Fields{
			"channels":  channels,
			"anonymous": cfg.Anonymous(),
		}).Info("twitch: подключено, подписка на каналы")
		c.client.Join(channels...)
	})

	client.OnReconnectMessage(func(message twitchirc.ReconnectMessage) {
		log.WithField("raw", message.Raw).Warn("twitch: сервер запросил RECONNECT")
	})

	return c
}

func newClient(client ircClient, handler LineHandler, channels []string) *Client {
	c := &Client{
		client:   client,
		handler:  handler,
		channels: make(map[string]struct{}, len(channels)),
	}
	for _, ch := range channels {
		if ch = normalizeChannel(ch); ch != "" {
			c.channels[ch] = struct{}{}
		}
	}
	return c
}

// Run подключает клиента и блокируется до отмены контекста или ошибки.
func (c *Client) Run(ctx context.Context) error {
	c.baseCtx = ctx
	errCh := make(chan error, 1)

	go func() {
		errCh <- c.client.Connect()
	}()

	select {
	case <-ctx.Done():
		c.client.Disconnect()
		<-errCh
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// Channels возвращает отсортированный список каналов.
func (c *Client) Channels() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]string, 0, len(c.channels))
	for ch := range c.channels {
		out = append(out, ch)
	}
	sort.Strings(out)
	return out
}

// SetChannels заходит в новые каналы и выходит из лишних.
func (c *Client) SetChannels(channels []string) {
	wanted := make(map[string]struct{}, len(channels))
	for _, ch := range channels {
		if ch = normalizeChannel(ch); ch != "" {
			wanted[ch] = struct{}{}
		}
	}

	c.mu.Lock()
	var join, depart []string
	for ch := range wanted {
		if _, ok := c.channels[ch]; !ok {
			join = append(join, ch)
		}
	}
	for ch := range c.channels {
		if _, ok := wanted[ch]; !ok {
			depart = append(depart, ch)
		}
	}
	c.channels = wanted
	c.mu.Unlock()

	sort.Strings(join)
	sort.Strings(depart)

	if len(join) > 0 {
		log.WithField("channels", join).Info("twitch: вход в каналы")
		c.client.Join(join...)
	}
	for _, ch := range depart {
		log.WithField("channel", ch).Info("twitch: выход из канала")
		c.client.Depart(ch)
	}
}

func (c *Client) forward(raw string) {
	if raw == "" {
		return
	}
	c.handler.HandleLine(c.context(), raw)
}

func normalizeChannel(ch string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ch), "#"))
}

func (c *Client) context() context.Context {
	if c.baseCtx != nil {
		return c.baseCtx
	}
	return context.Background()
}
