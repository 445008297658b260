package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/club-ledger/internal/model"
	"github.com/iliyamo/club-ledger/internal/monitoring"
	"github.com/iliyamo/club-ledger/internal/repository"
	"github.com/iliyamo/club-ledger/internal/utils"
)

// Bounds for revenue reporting windows and entry descriptions.
const (
	MinReportYear        = 1970
	MaxReportYear        = 3000
	MaxDescriptionLength = 1000
)

// RevenueService is the revenue aggregator over manual entries and paid
// ticket sales.
type RevenueService struct {
	entries RevenueStore
	sales   TicketSales
	log     zerolog.Logger
}

// NewRevenueService returns a RevenueService.  sales may be nil, in which
// case summaries carry no ticket sales.
func NewRevenueService(entries RevenueStore, sales TicketSales, log zerolog.Logger) *RevenueService {
	return &RevenueService{entries: entries, sales: sales, log: log}
}

// RevenueInput is an untrusted create or update request.  Amount accepts
// anything NormalizeMoney does; TransactionDate anything NormalizeDate does.
type RevenueInput struct {
	Source          string
	Amount          any
	Description     string
	TransactionDate any
}

// SourceSummary is the rounded total for one source.
type SourceSummary struct {
	Source string      `json:"source"`
	Total  utils.Money `json:"total"`
	Count  int64       `json:"count"`
}

// RevenueSummary groups manual entries by source.  TotalRevenue is the
// unrounded per-source totals summed and rounded once.
type RevenueSummary struct {
	StartDate     string          `json:"start_date,omitempty"`
	EndDate       string          `json:"end_date,omitempty"`
	BySource      []SourceSummary `json:"by_source"`
	TotalRevenue  utils.Money     `json:"total_revenue"`
	EntryCount    int64           `json:"entry_count"`
	TicketSales   utils.Money     `json:"ticket_sales"`
	TicketsSold   int64           `json:"tickets_sold"`
	CombinedTotal utils.Money     `json:"combined_total"`

	manual decimal.Decimal
}

// MonthTotal is one month of a yearly report.
type MonthTotal struct {
	Month int         `json:"month"`
	Total utils.Money `json:"total"`
	Count int64       `json:"count"`
}

// YearlyRevenue is the summary of a calendar year with its monthly split.
type YearlyRevenue struct {
	Year int `json:"year"`
	RevenueSummary
	Months []MonthTotal `json:"months"`
}

// Summarize merges rows by source and rounds each total once.  Known
// sources come first in their canonical order, unknown ones after them
// alphabetically.
func Summarize(rows []model.SourceTotal) RevenueSummary {
	merged := map[string]*model.SourceTotal{}
	for _, r := range rows {
		m, ok := merged[r.Source]
		if !ok {
			m = &model.SourceTotal{Source: r.Source, Total: decimal.Zero}
			merged[r.Source] = m
		}
		m.Total = m.Total.Add(r.Total)
		m.Count += r.Count
	}

	order := make([]string, 0, len(merged))
	for _, src := range model.RevenueSources {
		if _, ok := merged[src]; ok {
			order = append(order, src)
		}
	}
	var extra []string
	for src := range merged {
		if !slices.Contains(model.RevenueSources, src) {
			extra = append(extra, src)
		}
	}
	sort.Strings(extra)
	order = append(order, extra...)

	sum := RevenueSummary{BySource: make([]SourceSummary, 0, len(order)), manual: decimal.Zero}
	for _, src := range order {
		m := merged[src]
		sum.BySource = append(sum.BySource, SourceSummary{Source: src, Total: utils.NewMoney(m.Total), Count: m.Count})
		sum.manual = sum.manual.Add(m.Total)
		sum.EntryCount += m.Count
	}
	sum.TotalRevenue = utils.NewMoney(sum.manual)
	sum.CombinedTotal = sum.TotalRevenue
	return sum
}

func (s *RevenueService) validate(in RevenueInput) (*model.RevenueEntry, error) {
	src := strings.ToLower(strings.TrimSpace(in.Source))
	if src == "" {
		return nil, invalid("source", "is required", model.RevenueSources...)
	}
	if !slices.Contains(model.RevenueSources, src) {
		return nil, invalid("source", "must be one of the allowed values", model.RevenueSources...)
	}
	if isAbsent(in.Amount) {
		return nil, invalid("amount", "is required")
	}
	amount, err := utils.ParseAmount(in.Amount)
	if err != nil {
		return nil, amountError("amount", err)
	}
	if !amount.IsPositive() {
		return nil, invalid("amount", "must be greater than zero")
	}
	if isAbsent(in.TransactionDate) {
		return nil, invalid("transaction_date", "is required")
	}
	date, err := utils.NormalizeDate(in.TransactionDate)
	if err != nil {
		return nil, invalid("transaction_date", "must be a date (YYYY-MM-DD)")
	}
	desc := strings.TrimSpace(in.Description)
	if utf8.RuneCountInString(desc) > MaxDescriptionLength {
		return nil, invalid("description", fmt.Sprintf("must be at most %d characters", MaxDescriptionLength))
	}
	return &model.RevenueEntry{
		Source:          src,
		Amount:          amount,
		Description:     desc,
		TransactionDate: utils.Date(date),
	}, nil
}

func isAbsent(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case json.Number:
		return t == ""
	}
	return false
}

func mapRevenueErr(id uint64, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return notFound("revenue entry", id)
	}
	return err
}

// Create records a manual revenue entry.
func (s *RevenueService) Create(ctx context.Context, in RevenueInput) (*model.RevenueEntry, error) {
	e, err := s.validate(in)
	if err != nil {
		return nil, err
	}
	if err := s.entries.Create(ctx, e); err != nil {
		return nil, err
	}
	monitoring.RevenueEntryChanged(e.Source, "create")
	s.log.Info().Uint64("revenue_id", e.ID).Str("source", e.Source).Str("amount", e.Amount.String()).Msg("revenue entry recorded")
	return e, nil
}

// Update replaces every field of an existing entry.
func (s *RevenueService) Update(ctx context.Context, id uint64, in RevenueInput) (*model.RevenueEntry, error) {
	e, err := s.validate(in)
	if err != nil {
		return nil, err
	}
	e.ID = id
	if err := s.entries.Update(ctx, e); err != nil {
		return nil, mapRevenueErr(id, err)
	}
	monitoring.RevenueEntryChanged(e.Source, "update")
	return e, nil
}

// Delete removes an entry.
func (s *RevenueService) Delete(ctx context.Context, id uint64) error {
	e, err := s.entries.GetByID(ctx, id)
	if err != nil {
		return mapRevenueErr(id, err)
	}
	if err := s.entries.Delete(ctx, id); err != nil {
		return mapRevenueErr(id, err)
	}
	monitoring.RevenueEntryChanged(e.Source, "delete")
	return nil
}

// Get returns one entry.
func (s *RevenueService) Get(ctx context.Context, id uint64) (*model.RevenueEntry, error) {
	e, err := s.entries.GetByID(ctx, id)
	return e, mapRevenueErr(id, err)
}

// List returns entries within an optional inclusive date window and
// source, newest transaction date first.
func (s *RevenueService) List(ctx context.Context, start, end, source string, limit, offset int) ([]model.RevenueEntry, error) {
	from, to, err := dateWindow(start, end)
	if err != nil {
		return nil, err
	}
	source = strings.ToLower(strings.TrimSpace(source))
	if source != "" && !slices.Contains(model.RevenueSources, source) {
		return nil, invalid("source", "must be one of the allowed values", model.RevenueSources...)
	}
	return s.entries.List(ctx, repository.RevenueFilter{From: from, To: to, Source: source, Limit: limit, Offset: offset})
}

// dateWindow normalizes optional inclusive bounds.
func dateWindow(start, end string) (string, string, error) {
	var from, to string
	var err error
	if strings.TrimSpace(start) != "" {
		if from, err = utils.NormalizeDate(start); err != nil {
			return "", "", invalid("start_date", "must be a date (YYYY-MM-DD)")
		}
	}
	if strings.TrimSpace(end) != "" {
		if to, err = utils.NormalizeDate(end); err != nil {
			return "", "", invalid("end_date", "must be a date (YYYY-MM-DD)")
		}
	}
	if from != "" && to != "" && from > to {
		return "", "", invalid("start_date", "must not be after end_date")
	}
	return from, to, nil
}

// Summary groups the entries in the optional inclusive window by source
// and adds paid ticket sales created in the same window.
func (s *RevenueService) Summary(ctx context.Context, start, end string) (RevenueSummary, error) {
	from, to, err := dateWindow(start, end)
	if err != nil {
		return RevenueSummary{}, err
	}
	return s.summary(ctx, from, to)
}

func (s *RevenueService) summary(ctx context.Context, from, to string) (RevenueSummary, error) {
	rows, err := s.entries.TotalsBySource(ctx, repository.RevenueFilter{From: from, To: to})
	if err != nil {
		return RevenueSummary{}, err
	}
	sum := Summarize(rows)
	sum.StartDate, sum.EndDate = from, to
	if err := s.addTicketSales(ctx, &sum, from, to); err != nil {
		return RevenueSummary{}, err
	}
	return sum, nil
}

func (s *RevenueService) addTicketSales(ctx context.Context, sum *RevenueSummary, from, to string) error {
	if s.sales == nil {
		return nil
	}
	var lo, hi time.Time
	if from != "" {
		lo, _ = utils.ParseDate(from)
	}
	if to != "" {
		d, _ := utils.ParseDate(to)
		hi = d.AddDate(0, 0, 1)
	}
	paid, tickets, err := s.sales.PaidTotals(ctx, lo, hi)
	if err != nil {
		return err
	}
	sum.TicketSales = utils.NewMoney(paid)
	sum.TicketsSold = tickets
	sum.CombinedTotal = utils.NewMoney(sum.manual.Add(paid))
	return nil
}

func checkYear(year int) error {
	if year < MinReportYear || year > MaxReportYear {
		return invalid("year", fmt.Sprintf("must be between %d and %d", MinReportYear, MaxReportYear))
	}
	return nil
}

// Monthly summarizes one calendar month.
func (s *RevenueService) Monthly(ctx context.Context, year, month int) (RevenueSummary, error) {
	if err := checkYear(year); err != nil {
		return RevenueSummary{}, err
	}
	if month < 1 || month > 12 {
		return RevenueSummary{}, invalid("month", "must be between 1 and 12")
	}
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return s.summary(ctx, first.Format(utils.DateLayout), last.Format(utils.DateLayout))
}

// Yearly summarizes one calendar year with a twelve-month breakdown of
// the manual entries.
func (s *RevenueService) Yearly(ctx context.Context, year int) (YearlyRevenue, error) {
	if err := checkYear(year); err != nil {
		return YearlyRevenue{}, err
	}
	from := fmt.Sprintf("%04d-01-01", year)
	to := fmt.Sprintf("%04d-12-31", year)
	sum, err := s.summary(ctx, from, to)
	if err != nil {
		return YearlyRevenue{}, err
	}
	days, err := s.entries.TotalsByDay(ctx, repository.RevenueFilter{From: from, To: to})
	if err != nil {
		return YearlyRevenue{}, err
	}

	totals := make([]decimal.Decimal, 12)
	counts := make([]int64, 12)
	for _, d := range days {
		t, err := utils.ParseDate(d.Date)
		if err != nil {
			return YearlyRevenue{}, fmt.Errorf("revenue day %q: %w", d.Date, err)
		}
		i := int(t.Month()) - 1
		totals[i] = totals[i].Add(d.Total)
		counts[i] += d.Count
	}
	months := make([]MonthTotal, 12)
	for i := range months {
		months[i] = MonthTotal{Month: i + 1, Total: utils.NewMoney(totals[i]), Count: counts[i]}
	}
	return YearlyRevenue{Year: year, RevenueSummary: sum, Months: months}, nil
}
