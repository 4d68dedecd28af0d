package storage

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"

	"twitch-chat-overlay/model"
)

// Execer — часть pgxpool.Pool, нужная для одиночных запросов.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// SaveRoomState заменяет строку статуса канала с учётом заданного таймаута.
func SaveRoomState(ctx context.Context, db Execer, msg model.RoomStateMessage, timeout time.Duration) error {
	dbCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	_, err := db.Exec(dbCtx, `
insert into room_states (channel, status, updated_at)
values ($1, $2, $3)
on conflict (channel) do update set status = excluded.status, updated_at = excluded.updated_at;
`, msg.Channel(), msg.Content(), time.Now().UTC())

	return errors.Wrapf(err, "save room state for #%s", msg.Channel())
}
