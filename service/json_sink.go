package service

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"twitch-chat-overlay/model"
	"twitch-chat-overlay/storage"
)

// record — JSON-представление одной записи оверлея.
type record struct {
	ID         string    `json:"id,omitempty"`
	Kind       string    `json:"kind"`
	Channel    string    `json:"channel"`
	Content    string    `json:"content"`
	Username   string    `json:"username,omitempty"`
	Color      string    `json:"color,omitempty"`
	Badges     []string  `json:"badges,omitempty"`
	Emotes     []string  `json:"emotes,omitempty"`
	Action     bool      `json:"action,omitempty"`
	ReceivedAt time.Time `json:"received_at"`
}

// JSONSink пишет каждую запись отдельной строкой JSON.
type JSONSink struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func NewJSONSink(w io.Writer) *JSONSink {
	return &JSONSink{enc: json.NewEncoder(w)}
}

func (s *JSONSink) Line(_ context.Context, line storage.Line) {
	rec := record{
		ID:         line.ID.String(),
		Kind:       line.Message.Kind().String(),
		Channel:    line.Message.Channel(),
		Content:    line.Message.Content(),
		ReceivedAt: line.ReceivedAt,
	}
	if user, ok := line.Message.(model.UserMessage); ok {
		rec.Username = user.Username
		rec.Color = user.Color
		rec.Badges = user.Badges
		rec.Emotes = user.Emotes
		rec.Action = user.Action
	}
	s.write(rec)
}

func (s *JSONSink) RoomState(_ context.Context, msg model.RoomStateMessage) {
	s.write(record{
		Kind:       msg.Kind().String(),
		Channel:    msg.Channel(),
		Content:    msg.Content(),
		ReceivedAt: time.Now().UTC(),
	})
}

func (s *JSONSink) write(rec record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enc.Encode(rec); err != nil {
		log.WithError(err).Error("json sink: запись не выведена")
	}
}
