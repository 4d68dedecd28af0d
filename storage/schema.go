package storage

import (
	"context"
	_ "embed"

	"github.com/pkg/errors"
)

//go:embed schema.sql
var schemaSQL string

// EnsureSchema создаёт таблицы, если их ещё нет. Безопасно вызывать повторно.
func EnsureSchema(ctx context.Context, db Execer) error {
	if _, err := db.Exec(ctx, schemaSQL); err != nil {
		return errors.Wrap(err, "ensure schema")
	}
	return nil
}
