package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/club-ledger/internal/model"
	"github.com/iliyamo/club-ledger/internal/utils"
)

type statsReader interface {
	Stats(ctx context.Context) (model.BookingStats, error)
}

type summaryReader interface {
	Summary(ctx context.Context, start, end string) (RevenueSummary, error)
}

type priceReader interface {
	TicketPrices(ctx context.Context) (model.TicketPrices, error)
	MembershipFee(ctx context.Context) (utils.Money, error)
}

// PlayerLister lists the squad.
type PlayerLister interface {
	List(ctx context.Context) ([]model.Player, error)
}

// MatchLister lists fixtures.
type MatchLister interface {
	List(ctx context.Context) ([]model.Match, error)
}

// Dashboard is the composed admin overview.
type Dashboard struct {
	Bookings      model.BookingStats `json:"bookings"`
	Revenue       RevenueSummary     `json:"revenue"`
	TicketPrices  model.TicketPrices `json:"ticket_prices"`
	MembershipFee utils.Money        `json:"membership_fee"`
	Players       []model.Player     `json:"players"`
	Matches       []model.Match      `json:"matches"`
}

// ReportService composes the ledger, the aggregator and the
// configuration store into dashboard views.
type ReportService struct {
	bookings statsReader
	revenue  summaryReader
	settings priceReader
	players  PlayerLister
	matches  MatchLister
}

// NewReportService returns a ReportService.
func NewReportService(bookings *BookingService, revenue *RevenueService, settings *SettingsService, players PlayerLister, matches MatchLister) *ReportService {
	return &ReportService{bookings: bookings, revenue: revenue, settings: settings, players: players, matches: matches}
}

// Dashboard reads every part concurrently.  The first failure cancels the
// remaining reads and fails the whole call.
func (s *ReportService) Dashboard(ctx context.Context) (*Dashboard, error) {
	var d Dashboard
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		d.Bookings, err = s.bookings.Stats(ctx)
		return err
	})
	g.Go(func() (err error) {
		d.Revenue, err = s.revenue.Summary(ctx, "", "")
		return err
	})
	g.Go(func() (err error) {
		d.TicketPrices, err = s.settings.TicketPrices(ctx)
		return err
	})
	g.Go(func() (err error) {
		d.MembershipFee, err = s.settings.MembershipFee(ctx)
		return err
	})
	g.Go(func() (err error) {
		d.Players, err = s.players.List(ctx)
		return err
	})
	g.Go(func() (err error) {
		d.Matches, err = s.matches.List(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &d, nil
}
