package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mchasew/newsroom/internal/newsroom"
)

func (r Repo) Setting(ctx context.Context, key string) (string, error) {
	const q = `SELECT value FROM settings WHERE key = ?;`

	var value string
	err := r.db.GetContext(ctx, &value, q, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", newsroom.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("error fetching setting: %s", err)
	}

	return value, nil
}

func (r Repo) SetSetting(ctx context.Context, key string, value string) error {
	const q = `INSERT INTO settings (key, value) VALUES (?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value;`

	if _, err := r.db.ExecContext(ctx, q, key, value); err != nil {
		return fmt.Errorf("error upserting setting: %s", err)
	}

	return nil
}
