package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"
)

// SettingsRepo persists user settings as a flat key-value table. Saves are
// whole-object replacements triggered by an explicit user action, so the
// write path simply swaps the table contents in one transaction.
type SettingsRepo struct {
	db *sql.DB
}

func NewSettingsRepo(db *sql.DB) *SettingsRepo {
	return &SettingsRepo{db: db}
}

func (r *SettingsRepo) Load(ctx context.Context) (map[string]string, error) {
	sqlStr, args, err := builder.BuildSelect("settings", nil, []string{"key", "value"})
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	values := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		values[key] = value
	}
	return values, rows.Err()
}

func (r *SettingsRepo) Save(ctx context.Context, values map[string]string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM settings"); err != nil {
		return err
	}
	if len(values) > 0 {
		data := make([]map[string]interface{}, 0, len(values))
		for key, value := range values {
			data = append(data, map[string]interface{}{"key": key, "value": value})
		}
		sqlStr, args, err := builder.BuildInsert("settings", data)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, sqlStr, args...); err != nil {
			return err
		}
	}
	return tx.Commit()
}
