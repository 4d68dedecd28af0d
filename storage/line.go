package storage

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"twitch-chat-overlay/model"
)

// Line — запись оверлея, подготовленная к сохранению.
type Line struct {
	ID         uuid.UUID
	Message    model.Message
	ReceivedAt time.Time
}

// NewLine присваивает записи идентификатор и время получения.
func NewLine(msg model.Message) Line {
	return Line{
		ID:         uuid.New(),
		Message:    msg,
		ReceivedAt: time.Now().UTC(),
	}
}

const insertLineSQL = `
insert into chat_lines (
  line_id, channel, kind, username, color, badges, emotes, action, content, received_at
) values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
on conflict (line_id) do nothing;`

// args раскладывает запись по колонкам chat_lines.
func (l Line) args() []any {
	var (
		username *string
		color    *string
		badges   []byte
		emotes   []byte
		action   bool
	)

	if user, ok := l.Message.(model.UserMessage); ok {
		username = ptr(user.Username)
		color = ptr(user.Color)
		badges, _ = json.Marshal(nonNil(user.Badges))
		emotes, _ = json.Marshal(nonNil(user.Emotes))
		action = user.Action
	}

	return []any{
		l.ID.String(),
		l.Message.Channel(),
		l.Message.Kind().String(),
		username,
		color,
		badges,
		emotes,
		action,
		l.Message.Content(),
		l.ReceivedAt.UTC(),
	}
}

func ptr[T any](v T) *T { return &v }

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
