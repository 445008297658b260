package repository

import (
    "context"
    "database/sql"
    "errors"
    "strings"
    "time"

    "github.com/shopspring/decimal"

    "github.com/iliyamo/club-ledger/internal/model"
    "github.com/iliyamo/club-ledger/internal/utils"
)

// RevenueRepo manages manually recorded revenue entries.
type RevenueRepo struct {
    db *sql.DB
}

// NewRevenueRepo returns a RevenueRepo bound to db.
func NewRevenueRepo(db *sql.DB) *RevenueRepo { return &RevenueRepo{db: db} }

// RevenueFilter narrows List and the aggregate queries.  Dates are
// canonical YYYY-MM-DD strings and both bounds are inclusive.
type RevenueFilter struct {
    From   string
    To     string
    Source string
    Limit  int
    Offset int
}

func (f RevenueFilter) where() (string, []any) {
    var (
        conds []string
        args  []any
    )
    if f.From != "" {
        conds = append(conds, "transaction_date >= ?")
        args = append(args, f.From)
    }
    if f.To != "" {
        conds = append(conds, "transaction_date <= ?")
        args = append(args, f.To)
    }
    if f.Source != "" {
        conds = append(conds, "source = ?")
        args = append(args, f.Source)
    }
    if len(conds) == 0 {
        return "", nil
    }
    return " WHERE " + strings.Join(conds, " AND "), args
}

const revenueColumns = `id, source, amount, description, transaction_date, created_at`

func scanRevenue(s rowScanner, e *model.RevenueEntry) error {
    return s.Scan(&e.ID, &e.Source, &e.Amount, &e.Description, &e.TransactionDate, &e.CreatedAt)
}

// Create inserts e and reads the stored row back into it.
func (r *RevenueRepo) Create(ctx context.Context, e *model.RevenueEntry) error {
    now := time.Now().UTC().Truncate(time.Second)
    res, err := r.db.ExecContext(ctx,
        `INSERT INTO revenue (source, amount, description, transaction_date, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
        e.Source, e.Amount.String(), e.Description, string(e.TransactionDate), now, now)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    return scanRevenue(r.db.QueryRowContext(ctx, `SELECT `+revenueColumns+` FROM revenue WHERE id = ?`, id), e)
}

// GetByID returns one entry or ErrNotFound.
func (r *RevenueRepo) GetByID(ctx context.Context, id uint64) (*model.RevenueEntry, error) {
    var e model.RevenueEntry
    err := scanRevenue(r.db.QueryRowContext(ctx, `SELECT `+revenueColumns+` FROM revenue WHERE id = ?`, id), &e)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrNotFound
    }
    if err != nil {
        return nil, err
    }
    return &e, nil
}

// Update overwrites every mutable column of the entry identified by e.ID.
func (r *RevenueRepo) Update(ctx context.Context, e *model.RevenueEntry) error {
    res, err := r.db.ExecContext(ctx,
        `UPDATE revenue SET source = ?, amount = ?, description = ?, transaction_date = ?, updated_at = ? WHERE id = ?`,
        e.Source, e.Amount.String(), e.Description, string(e.TransactionDate), time.Now().UTC().Truncate(time.Second), e.ID)
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
    return scanRevenue(r.db.QueryRowContext(ctx, `SELECT `+revenueColumns+` FROM revenue WHERE id = ?`, e.ID), e)
}

// Delete removes an entry.
func (r *RevenueRepo) Delete(ctx context.Context, id uint64) error {
    res, err := r.db.ExecContext(ctx, `DELETE FROM revenue WHERE id = ?`, id)
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

// List returns entries matching f, most recent transaction date first.
func (r *RevenueRepo) List(ctx context.Context, f RevenueFilter) ([]model.RevenueEntry, error) {
    where, args := f.where()
    q := `SELECT ` + revenueColumns + ` FROM revenue` + where + ` ORDER BY transaction_date DESC, id DESC`
    if f.Limit > 0 {
        q += " LIMIT ? OFFSET ?"
        args = append(args, f.Limit, f.Offset)
    }
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := []model.RevenueEntry{}
    for rows.Next() {
        var e model.RevenueEntry
        if err := scanRevenue(rows, &e); err != nil {
            return nil, err
        }
        out = append(out, e)
    }
    return out, rows.Err()
}

// Sums run over integer ten-thousandths so SQLite's REAL arithmetic adds
// exactly; MySQL's DECIMAL is exact either way.
const exactAmountSum = `COALESCE(SUM(ROUND(amount * 10000)), 0)`

// TotalsBySource groups the entries matching f by source.  Totals are
// unrounded; callers round once.
func (r *RevenueRepo) TotalsBySource(ctx context.Context, f RevenueFilter) ([]model.SourceTotal, error) {
    where, args := f.where()
    q := `SELECT source, ` + exactAmountSum + `, COUNT(*) FROM revenue` + where + ` GROUP BY source ORDER BY source`
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := []model.SourceTotal{}
    for rows.Next() {
        var (
            st    model.SourceTotal
            units decimal.Decimal
        )
        if err := rows.Scan(&st.Source, &units, &st.Count); err != nil {
            return nil, err
        }
        st.Total = units.Shift(-utils.StoragePlaces)
        out = append(out, st)
    }
    return out, rows.Err()
}

// TotalsByDay groups the entries matching f by transaction date, in
// ascending date order.
func (r *RevenueRepo) TotalsByDay(ctx context.Context, f RevenueFilter) ([]model.DayTotal, error) {
    where, args := f.where()
    q := `SELECT transaction_date, ` + exactAmountSum + `, COUNT(*) FROM revenue` + where +
        ` GROUP BY transaction_date ORDER BY transaction_date`
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := []model.DayTotal{}
    for rows.Next() {
        var (
            day   utils.Date
            units decimal.Decimal
            dt    model.DayTotal
        )
        if err := rows.Scan(&day, &units, &dt.Count); err != nil {
            return nil, err
        }
        dt.Date = string(day)
        dt.Total = units.Shift(-utils.StoragePlaces)
        out = append(out, dt)
    }
    return out, rows.Err()
}
