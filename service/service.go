package service

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"twitch-chat-overlay/config"
	"twitch-chat-overlay/filter"
	"twitch-chat-overlay/metrics"
	"twitch-chat-overlay/model"
	"twitch-chat-overlay/parser"
	"twitch-chat-overlay/storage"
	"twitch-chat-overlay/twitch"
)

// Service управляет жизненным циклом Twitch клиента.
type Service struct {
	client *twitch.Client
	ignore *filter.Ignore
}

// New создаёт Service с уже собранным Twitch клиентом.
func New(client *twitch.Client, ignore *filter.Ignore) *Service {
	return &Service{client: client, ignore: ignore}
}

// Run подключает Twitch клиент и блокируется до отмены контекста или ошибки.
func (s *Service) Run(ctx context.Context) error {
	return s.client.Run(ctx)
}

// Reload применяет изменённые каналы и список игнорирования без переподключения.
func (s *Service) Reload(cfg config.Config) {
	s.client.SetChannels(cfg.Twitch.Channels)
	if err := s.ignore.Set(cfg.Overlay.IgnoreUsers); err != nil {
		log.WithError(err).Error("service: список игнорирования не обновлён")
	}
}

// Sink получает записи, прошедшие фильтр.
type Sink interface {
	Line(ctx context.Context, line storage.Line)
	RoomState(ctx context.Context, msg model.RoomStateMessage)
}

// Handler реализует twitch.LineHandler: разбирает строку и передаёт записи в Sink.
type Handler struct {
	parser *parser.Parser
	ignore *filter.Ignore
	sink   Sink
}

// NewHandler собирает Handler, используемый Twitch колбэками.
func NewHandler(p *parser.Parser, ignore *filter.Ignore, sink Sink) *Handler {
	return &Handler{parser: p, ignore: ignore, sink: sink}
}

// HandleLine разбирает одну строку. Ошибка разбора логируется и не мешает следующим строкам.
func (h *Handler) HandleLine(ctx context.Context, raw string) {
	res, err := h.parser.Parse(raw)
	if err != nil {
		metrics.Inc(metrics.LinesUnhandled)
		log.WithError(err).Warn("service: строка пропущена")
		return
	}
	metrics.ObserveLine(res.Command.String())

	for _, msg := range res.Messages {
		if !h.ignore.Allow(msg) {
			metrics.Inc(metrics.RecordsFiltered)
			continue
		}
		metrics.ObserveRecord(msg.Kind().String())

		if rs, ok := msg.(model.RoomStateMessage); ok {
			h.sink.RoomState(ctx, rs)
			continue
		}
		h.sink.Line(ctx, storage.NewLine(msg))
	}
}

// PostgresSink пишет строки через батчер, а статус канала сразу через пул.
type PostgresSink struct {
	batcher      *storage.Batcher
	db           storage.Execer
	flushTimeout time.Duration
}

// NewPostgresSink собирает Sink поверх хранилища.
func NewPostgresSink(batcher *storage.Batcher, db storage.Execer, flushTimeout time.Duration) *PostgresSink {
	return &PostgresSink{batcher: batcher, db: db, flushTimeout: flushTimeout}
}

// Line помещает строку в очередь батчера.
func (s *PostgresSink) Line(_ context.Context, line storage.Line) {
	if ok := s.batcher.Enqueue(line); !ok {
		log.WithField("channel", line.Message.Channel()).Debug("батчер: строка отброшена")
	}
}

// RoomState заменяет строку статуса канала.
func (s *PostgresSink) RoomState(ctx context.Context, msg model.RoomStateMessage) {
	if err := storage.SaveRoomState(ctx, s.db, msg, s.flushTimeout); err != nil {
		log.WithError(err).Error("ошибка сохранения ROOMSTATE")
	}
}

// LogSink только логирует записи; используется без Postgres.
type LogSink struct{}

func (LogSink) Line(_ context.Context, line storage.Line) {
	entry := log.WithFields(log.Fields{
		"channel": line.Message.Channel(),
		"kind":    line.Message.Kind().String(),
	})
	if user, ok := line.Message.(model.UserMessage); ok {
		entry = entry.WithFields(log.Fields{
			"user":   user.Username,
			"color":  user.Color,
			"action": user.Action,
		})
	}
	entry.Info(line.Message.Content())
}

func (LogSink) RoomState(_ context.Context, msg model.RoomStateMessage) {
	log.WithField("channel", msg.Channel()).Infof("статус: %q", msg.Content())
}
