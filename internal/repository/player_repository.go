package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/club-ledger/internal/model"
)

// PlayerRepo lists and adds squad members.
type PlayerRepo struct {
	db *sql.DB
}

// NewPlayerRepo returns a PlayerRepo bound to db.
func NewPlayerRepo(db *sql.DB) *PlayerRepo { return &PlayerRepo{db: db} }

// List returns every player ordered by jersey number, then name.
func (r *PlayerRepo) List(ctx context.Context) ([]model.Player, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, position, jersey_number, nationality FROM players
		 ORDER BY CASE WHEN jersey_number IS NULL THEN 1 ELSE 0 END, jersey_number, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Player{}
	for rows.Next() {
		var (
			p   model.Player
			num sql.NullInt64
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Position, &num, &p.Nationality); err != nil {
			return nil, err
		}
		if num.Valid {
			n := uint32(num.Int64)
			p.JerseyNumber = &n
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Create inserts p and populates its ID.
func (r *PlayerRepo) Create(ctx context.Context, p *model.Player) error {
	var num any
	if p.JerseyNumber != nil {
		num = *p.JerseyNumber
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO players (name, position, jersey_number, nationality, created_at) VALUES (?, ?, ?, ?, ?)`,
		p.Name, p.Position, num, p.Nationality, time.Now().UTC().Truncate(time.Second))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}
