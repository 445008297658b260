package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/club-ledger/internal/model"
)

// MatchRepo is the narrow match store the ledger depends on: existence
// checks for new bookings plus the listings used by the dashboard.
type MatchRepo struct {
	db *sql.DB
}

// NewMatchRepo returns a MatchRepo bound to db.
func NewMatchRepo(db *sql.DB) *MatchRepo { return &MatchRepo{db: db} }

const matchColumns = `id, opponent, match_date, venue, competition, is_home`

func scanMatch(s rowScanner, m *model.Match) error {
	return s.Scan(&m.ID, &m.Opponent, &m.MatchDate, &m.Venue, &m.Competition, &m.IsHome)
}

// Exists reports whether a match with id is stored.
func (r *MatchRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM matches WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// GetByID returns a match or ErrNotFound.
func (r *MatchRepo) GetByID(ctx context.Context, id uint64) (*model.Match, error) {
	var m model.Match
	err := scanMatch(r.db.QueryRowContext(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = ?`, id), &m)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// List returns all matches, most recent first.
func (r *MatchRepo) List(ctx context.Context) ([]model.Match, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+matchColumns+` FROM matches ORDER BY match_date DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Match{}
	for rows.Next() {
		var m model.Match
		if err := scanMatch(rows, &m); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Create inserts m and populates its ID.
func (r *MatchRepo) Create(ctx context.Context, m *model.Match) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO matches (opponent, match_date, venue, competition, is_home, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		m.Opponent, m.MatchDate.UTC(), m.Venue, m.Competition, m.IsHome, time.Now().UTC().Truncate(time.Second))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return nil
}

// Delete removes a match; its bookings are removed by the foreign key
// cascade.
func (r *MatchRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM matches WHERE id = ?`, id)
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
