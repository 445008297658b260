package repository

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/club-ledger/internal/database/dbtest"
	"github.com/iliyamo/club-ledger/internal/model"
	"github.com/iliyamo/club-ledger/internal/utils"
)

func seedMatch(t *testing.T, db *sql.DB, opponent string, at time.Time) uint64 {
	t.Helper()
	m := &model.Match{Opponent: opponent, MatchDate: utils.Timestamp{Time: at}, Venue: "Home Ground"}
	require.NoError(t, NewMatchRepo(db).Create(context.Background(), m))
	return m.ID
}

func insertBooking(t *testing.T, repo *BookingRepo, b *model.Booking) error {
	t.Helper()
	ctx := context.Background()
	tx, err := repo.DB().BeginTx(ctx, nil)
	require.NoError(t, err)
	if err := repo.CreateTx(ctx, tx, b); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func newBooking(matchID uint64, ref, ticket string, qty int, total string, status string) *model.Booking {
	return &model.Booking{
		BookingReference: ref,
		MatchID:          matchID,
		CustomerName:     "Ada",
		CustomerEmail:    "ada@example.com",
		CustomerPhone:    "555-0100",
		TicketType:       ticket,
		Quantity:         qty,
		TotalAmount:      utils.NewMoney(decimal.RequireFromString(total)),
		PaymentStatus:    status,
	}
}

func TestBookingCreateAndRead(t *testing.T) {
	db := dbtest.New(t)
	repo := NewBookingRepo(db)
	ctx := context.Background()
	matchID := seedMatch(t, db, "Rovers", time.Date(2025, 5, 1, 18, 0, 0, 0, time.UTC))

	b := newBooking(matchID, "BK20250101AAAAAAAAAA", model.TicketRegular, 2, "80.00", model.PaymentPaid)
	require.NoError(t, insertBooking(t, repo, b))
	assert.NotZero(t, b.ID)
	assert.Equal(t, "80.00", b.TotalAmount.String())
	assert.False(t, b.CreatedAt.IsZero())

	got, err := repo.GetByReference(ctx, "BK20250101AAAAAAAAAA")
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)
	assert.Equal(t, model.PaymentPaid, got.PaymentStatus)

	byEmail, err := repo.ListByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Len(t, byEmail, 1)

	byMatch, err := repo.ListByMatch(ctx, matchID)
	require.NoError(t, err)
	assert.Len(t, byMatch, 1)

	_, err = repo.GetByID(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)

	listed, err := repo.List(ctx, BookingFilter{MatchID: matchID, PaymentStatus: model.PaymentPaid})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "Rovers", listed[0].Opponent)
}

func TestBookingDuplicateReference(t *testing.T) {
	db := dbtest.New(t)
	repo := NewBookingRepo(db)
	matchID := seedMatch(t, db, "Rovers", time.Now().UTC())

	require.NoError(t, insertBooking(t, repo, newBooking(matchID, "BK20250101ABCDEF0123", model.TicketVIP, 1, "100", model.PaymentPaid)))
	err := insertBooking(t, repo, newBooking(matchID, "BK20250101ABCDEF0123", model.TicketVIP, 1, "100", model.PaymentPaid))
	assert.ErrorIs(t, err, ErrDuplicateReference)
}

func TestBookingOtherConstraintIsNotDuplicate(t *testing.T) {
	db := dbtest.New(t)
	repo := NewBookingRepo(db)

	// unknown match violates the foreign key, not the reference index
	err := insertBooking(t, repo, newBooking(424242, "BK20250101FFFFFFFFFF", model.TicketVIP, 1, "100", model.PaymentPaid))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDuplicateReference)
}

func TestBookingTransitionStatus(t *testing.T) {
	db := dbtest.New(t)
	repo := NewBookingRepo(db)
	ctx := context.Background()
	matchID := seedMatch(t, db, "Rovers", time.Now().UTC())
	b := newBooking(matchID, "BK20250101000000000A", model.TicketStudent, 3, "60", model.PaymentPending)
	require.NoError(t, insertBooking(t, repo, b))

	got, err := repo.TransitionStatus(ctx, b.ID, []string{model.PaymentPending}, model.PaymentPaid)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPaid, got.PaymentStatus)

	_, err = repo.TransitionStatus(ctx, b.ID, []string{model.PaymentPending}, model.PaymentPaid)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = repo.TransitionStatus(ctx, 777, []string{model.PaymentPending}, model.PaymentPaid)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.UpdateStatus(ctx, b.ID, model.PaymentCancelled))
	assert.ErrorIs(t, repo.UpdateStatus(ctx, 777, model.PaymentPaid), ErrNotFound)

	require.NoError(t, repo.Delete(ctx, b.ID))
	assert.ErrorIs(t, repo.Delete(ctx, b.ID), ErrNotFound)
}

func TestBookingStatsAndRevenueByMatch(t *testing.T) {
	db := dbtest.New(t)
	repo := NewBookingRepo(db)
	ctx := context.Background()
	older := seedMatch(t, db, "Old Town", time.Date(2025, 1, 10, 15, 0, 0, 0, time.UTC))
	newer := seedMatch(t, db, "New City", time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC))
	empty := seedMatch(t, db, "Nobody", time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC))

	require.NoError(t, insertBooking(t, repo, newBooking(older, "BK20250101000000000B", model.TicketVIP, 1, "100.00", model.PaymentPaid)))
	require.NoError(t, insertBooking(t, repo, newBooking(older, "BK20250101000000000C", model.TicketRegular, 2, "80.00", model.PaymentPending)))
	require.NoError(t, insertBooking(t, repo, newBooking(newer, "BK20250101000000000D", model.TicketStudent, 4, "80.00", model.PaymentPaid)))
	require.NoError(t, insertBooking(t, repo, newBooking(newer, "BK20250101000000000E", model.TicketVIP, 1, "100.00", model.PaymentCancelled)))

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 4, stats.TotalBookings)
	assert.EqualValues(t, 8, stats.TotalTickets)
	assert.Equal(t, "360.00", stats.GrossRevenue.String())
	assert.Equal(t, "180.00", stats.PaidRevenue.String())
	assert.EqualValues(t, 1, stats.PendingCount)
	assert.EqualValues(t, 1, stats.CancelledCount)
	assert.Equal(t, model.TicketCounts{VIP: 2, Regular: 2, Student: 4}, stats.TicketsByType)

	rows, err := repo.RevenueByMatch(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []uint64{newer, empty, older}, []uint64{rows[0].MatchID, rows[1].MatchID, rows[2].MatchID})

	// cancelled booking excluded
	assert.EqualValues(t, 1, rows[0].TotalBookings)
	assert.Equal(t, "80.00", rows[0].TotalRevenue.String())
	assert.Equal(t, "0.00", rows[0].VIPRevenue.String())

	zero := rows[1]
	assert.Equal(t, "Nobody", zero.Opponent)
	assert.Zero(t, zero.TotalBookings)
	assert.Zero(t, zero.TotalTickets)
	assert.Equal(t, model.TicketCounts{}, zero.TicketsByType)
	assert.True(t, zero.TotalRevenue.IsZero())

	assert.Equal(t, "180.00", rows[2].TotalRevenue.String())
	assert.EqualValues(t, 2, rows[2].TicketsByType.Regular)
}

func TestBookingPaidTotals(t *testing.T) {
	db := dbtest.New(t)
	repo := NewBookingRepo(db)
	ctx := context.Background()
	matchID := seedMatch(t, db, "Rovers", time.Now().UTC())
	require.NoError(t, insertBooking(t, repo, newBooking(matchID, "BK20250101000000000F", model.TicketRegular, 2, "80.00", model.PaymentPaid)))
	require.NoError(t, insertBooking(t, repo, newBooking(matchID, "BK20250101000000001F", model.TicketRegular, 1, "40.00", model.PaymentPending)))

	total, tickets, err := repo.PaidTotals(ctx, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, "80", total.String())
	assert.EqualValues(t, 2, tickets)

	future := time.Now().UTC().Add(48 * time.Hour)
	total, tickets, err = repo.PaidTotals(ctx, future, time.Time{})
	require.NoError(t, err)
	assert.True(t, total.IsZero())
	assert.Zero(t, tickets)
}

func TestMatchDeleteCascadesBookings(t *testing.T) {
	db := dbtest.New(t)
	repo := NewBookingRepo(db)
	matches := NewMatchRepo(db)
	ctx := context.Background()
	matchID := seedMatch(t, db, "Rovers", time.Now().UTC())
	b := newBooking(matchID, "BK20250101000000002F", model.TicketRegular, 1, "40", model.PaymentPaid)
	require.NoError(t, insertBooking(t, repo, b))

	ok, err := matches.Exists(ctx, matchID)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, matches.Delete(ctx, matchID))
	_, err = repo.GetByID(ctx, b.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	ok, err = matches.Exists(ctx, matchID)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.ErrorIs(t, matches.Delete(ctx, matchID), ErrNotFound)
}

func TestSettingsSetManyIsAtomic(t *testing.T) {
	db := dbtest.New(t)
	repo := NewSettingRepo(db)
	ctx := context.Background()

	err := repo.SetMany(ctx, map[string]string{
		model.KeyTicketPriceRegular: "55",
		strings.Repeat("z", 101):    "too long",
	})
	require.Error(t, err)

	s, err := repo.Get(ctx, model.KeyTicketPriceRegular)
	require.NoError(t, err)
	assert.Equal(t, "40", s.Value)

	require.NoError(t, repo.SetMany(ctx, map[string]string{
		model.KeyTicketPriceRegular: "55",
		"club_motto":                "Up the club",
	}))
	got, err := repo.GetMany(ctx, []string{model.KeyTicketPriceRegular, "club_motto", "missing"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{model.KeyTicketPriceRegular: "55", "club_motto": "Up the club"}, got)

	// writing the same value again is still an update, not a duplicate insert
	require.NoError(t, repo.SetMany(ctx, map[string]string{"club_motto": "Up the club"}))

	require.NoError(t, repo.Delete(ctx, "club_motto"))
	_, err = repo.Get(ctx, "club_motto")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "club_motto"), ErrNotFound)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, all)
}

func TestSettingKeysAreCaseSensitive(t *testing.T) {
	db := dbtest.New(t)
	repo := NewSettingRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.SetMany(ctx, map[string]string{"club_name": "Rovers FC"}))
	require.NoError(t, repo.SetMany(ctx, map[string]string{"Club_Name": "Other FC"}))

	lower, err := repo.Get(ctx, "club_name")
	require.NoError(t, err)
	assert.Equal(t, "Rovers FC", lower.Value)
	mixed, err := repo.Get(ctx, "Club_Name")
	require.NoError(t, err)
	assert.Equal(t, "Other FC", mixed.Value)

	_, err = repo.Get(ctx, "CLUB_NAME")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.Delete(ctx, "Club_Name"))
	lower, err = repo.Get(ctx, "club_name")
	require.NoError(t, err)
	assert.Equal(t, "Rovers FC", lower.Value)
}

func TestRevenueTotalsAreExact(t *testing.T) {
	db := dbtest.New(t)
	repo := NewRevenueRepo(db)
	ctx := context.Background()

	add := func(source, amount, date string) *model.RevenueEntry {
		e := &model.RevenueEntry{Source: source, Amount: decimal.RequireFromString(amount), TransactionDate: utils.Date(date)}
		require.NoError(t, repo.Create(ctx, e))
		return e
	}
	add(model.SourceTickets, "100.005", "2025-02-01")
	add(model.SourceTickets, "50.005", "2025-02-03")
	add(model.SourceMerchandise, "19.99", "2025-03-15")

	totals, err := repo.TotalsBySource(ctx, RevenueFilter{})
	require.NoError(t, err)
	require.Len(t, totals, 2)
	assert.Equal(t, model.SourceMerchandise, totals[0].Source)
	assert.True(t, decimal.RequireFromString("150.01").Equal(totals[1].Total), totals[1].Total.String())
	assert.EqualValues(t, 2, totals[1].Count)

	feb, err := repo.TotalsBySource(ctx, RevenueFilter{From: "2025-02-01", To: "2025-02-01"})
	require.NoError(t, err)
	require.Len(t, feb, 1)
	assert.Equal(t, "100.005", feb[0].Total.String())

	days, err := repo.TotalsByDay(ctx, RevenueFilter{From: "2025-01-01", To: "2025-12-31"})
	require.NoError(t, err)
	require.Len(t, days, 3)
	assert.Equal(t, "2025-02-01", days[0].Date)
	assert.Equal(t, "2025-03-15", days[2].Date)
}

func TestRevenueCRUD(t *testing.T) {
	db := dbtest.New(t)
	repo := NewRevenueRepo(db)
	ctx := context.Background()

	e := &model.RevenueEntry{Source: model.SourceSponsorship, Amount: decimal.NewFromInt(500), Description: "Kit deal", TransactionDate: "2025-04-01"}
	require.NoError(t, repo.Create(ctx, e))
	assert.NotZero(t, e.ID)
	assert.Equal(t, utils.Date("2025-04-01"), e.TransactionDate)

	e.Amount = decimal.RequireFromString("750.5")
	require.NoError(t, repo.Update(ctx, e))
	got, err := repo.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "750.5", got.Amount.String())

	list, err := repo.List(ctx, RevenueFilter{Source: model.SourceSponsorship})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	list, err = repo.List(ctx, RevenueFilter{Source: model.SourceOther})
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, repo.Delete(ctx, e.ID))
	assert.ErrorIs(t, repo.Delete(ctx, e.ID), ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, e), ErrNotFound)
	_, err = repo.GetByID(ctx, e.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserEnsureAdmin(t *testing.T) {
	db := dbtest.New(t)
	repo := NewUserRepo(db)
	ctx := context.Background()

	created, err := repo.EnsureAdmin(ctx, "Admin@Club.test", "pw", 4)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.EnsureAdmin(ctx, "admin@club.test", "pw", 4)
	require.NoError(t, err)
	assert.False(t, created)

	u, err := repo.GetByEmail(ctx, "ADMIN@club.test")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, u.Role)
	assert.True(t, utils.VerifyPassword(u.PasswordHash, "pw"))

	_, err = repo.Create(ctx, "admin@club.test", "x", model.RoleAdmin, 4)
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestPlayers(t *testing.T) {
	db := dbtest.New(t)
	repo := NewPlayerRepo(db)
	ctx := context.Background()
	nine := uint32(9)
	require.NoError(t, repo.Create(ctx, &model.Player{Name: "Sub", Position: "DF"}))
	require.NoError(t, repo.Create(ctx, &model.Player{Name: "Striker", Position: "FW", JerseyNumber: &nine}))

	ps, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, ps, 2)
	assert.Equal(t, "Striker", ps[0].Name)
	assert.Nil(t, ps[1].JerseyNumber)
}
