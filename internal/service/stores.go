package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/club-ledger/internal/model"
	"github.com/iliyamo/club-ledger/internal/queue"
	"github.com/iliyamo/club-ledger/internal/repository"
)

// BookingStore is the persistence the booking ledger needs.
// *repository.BookingRepo implements it.
type BookingStore interface {
	Create(ctx context.Context, b *model.Booking) error
	GetByID(ctx context.Context, id uint64) (*model.Booking, error)
	GetByReference(ctx context.Context, ref string) (*model.Booking, error)
	ListByMatch(ctx context.Context, matchID uint64) ([]model.Booking, error)
	ListByEmail(ctx context.Context, email string) ([]model.Booking, error)
	List(ctx context.Context, f repository.BookingFilter) ([]model.BookingWithMatch, error)
	UpdateStatus(ctx context.Context, id uint64, status string) error
	TransitionStatus(ctx context.Context, id uint64, from []string, to string) (*model.Booking, error)
	Delete(ctx context.Context, id uint64) error
	Stats(ctx context.Context) (model.BookingStats, error)
	RevenueByMatch(ctx context.Context) ([]model.MatchRevenue, error)
}

// MatchLookup answers whether a match exists.
type MatchLookup interface {
	Exists(ctx context.Context, id uint64) (bool, error)
}

// SettingStore is the key/value configuration store.
type SettingStore interface {
	Get(ctx context.Context, key string) (model.Setting, error)
	GetMany(ctx context.Context, keys []string) (map[string]string, error)
	List(ctx context.Context) ([]model.Setting, error)
	SetMany(ctx context.Context, entries map[string]string) error
	Delete(ctx context.Context, key string) error
}

// RevenueStore persists and aggregates manual revenue entries.
type RevenueStore interface {
	Create(ctx context.Context, e *model.RevenueEntry) error
	GetByID(ctx context.Context, id uint64) (*model.RevenueEntry, error)
	Update(ctx context.Context, e *model.RevenueEntry) error
	Delete(ctx context.Context, id uint64) error
	List(ctx context.Context, f repository.RevenueFilter) ([]model.RevenueEntry, error)
	TotalsBySource(ctx context.Context, f repository.RevenueFilter) ([]model.SourceTotal, error)
	TotalsByDay(ctx context.Context, f repository.RevenueFilter) ([]model.DayTotal, error)
}

// TicketSales reports paid booking revenue in a created_at window.
type TicketSales interface {
	PaidTotals(ctx context.Context, from, to time.Time) (decimal.Decimal, int64, error)
}

// EventPublisher hands booking events to the broker.
type EventPublisher interface {
	PublishBookingCreated(ctx context.Context, ev queue.BookingCreatedEvent) error
}

var (
	_ BookingStore   = (*repository.BookingRepo)(nil)
	_ MatchLookup    = (*repository.MatchRepo)(nil)
	_ SettingStore   = (*repository.SettingRepo)(nil)
	_ RevenueStore   = (*repository.RevenueRepo)(nil)
	_ TicketSales    = (*repository.BookingRepo)(nil)
	_ EventPublisher = (*queue.Publisher)(nil)
)
