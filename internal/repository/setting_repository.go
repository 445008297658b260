package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/iliyamo/club-ledger/internal/model"
)

// SettingRepo is the key/value configuration store.  Values are read
// fresh on every call; nothing is cached.
type SettingRepo struct {
	db *sql.DB
}

// NewSettingRepo returns a SettingRepo bound to db.
func NewSettingRepo(db *sql.DB) *SettingRepo { return &SettingRepo{db: db} }

// Get returns the setting stored under key or ErrNotFound.
func (r *SettingRepo) Get(ctx context.Context, key string) (model.Setting, error) {
	var s model.Setting
	err := r.db.QueryRowContext(ctx,
		`SELECT setting_key, setting_value, updated_at FROM settings WHERE setting_key = ?`, key).
		Scan(&s.Key, &s.Value, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Setting{}, ErrNotFound
	}
	return s, err
}

// GetMany returns the values of the requested keys.  Missing keys are
// simply absent from the map.
func (r *SettingRepo) GetMany(ctx context.Context, keys []string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT setting_key, setting_value FROM settings WHERE setting_key IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}

// List returns every setting ordered by key.
func (r *SettingRepo) List(ctx context.Context) ([]model.Setting, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT setting_key, setting_value, updated_at FROM settings ORDER BY setting_key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Setting{}
	for rows.Next() {
		var s model.Setting
		if err := rows.Scan(&s.Key, &s.Value, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// SetMany upserts every entry in one transaction.  If any single upsert
// fails the whole batch is rolled back and no key changes.
func (r *SettingRepo) SetMany(ctx context.Context, entries map[string]string) error {
	if len(entries) == 0 {
		return nil
	}
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC().Truncate(time.Second)
	for _, k := range keys {
		if err := upsertSettingTx(ctx, tx, k, entries[k], now); err != nil {
			return fmt.Errorf("set %s: %w", k, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// upsertSettingTx updates the row for key and inserts it when no row
// matched.  MySQL connections use clientFoundRows so an unchanged value
// still counts as a match.
func upsertSettingTx(ctx context.Context, tx *sql.Tx, key, value string, now time.Time) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE settings SET setting_value = ?, updated_at = ? WHERE setting_key = ?`, value, now, key)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO settings (setting_key, setting_value, updated_at) VALUES (?, ?, ?)`, key, value, now)
	return err
}

// Delete removes a key.
func (r *SettingRepo) Delete(ctx context.Context, key string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM settings WHERE setting_key = ?`, key)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
