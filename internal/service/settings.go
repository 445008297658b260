package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/club-ledger/internal/model"
	"github.com/iliyamo/club-ledger/internal/repository"
	"github.com/iliyamo/club-ledger/internal/utils"
)

// MaxSettingKeyLength bounds configuration keys.
const MaxSettingKeyLength = 100

// MaxTicketPrice keeps the largest order (MaxQuantity tickets) inside the
// bookings.total_amount column.
const MaxTicketPrice = 1_000_000

// SettingsService is the configuration store: generic key/value access
// plus the ticket price and membership fee helpers.
type SettingsService struct {
	store SettingStore
}

// NewSettingsService returns a SettingsService over store.
func NewSettingsService(store SettingStore) *SettingsService {
	return &SettingsService{store: store}
}

// TicketPricesInput carries a full price update.  All three prices are
// required.
type TicketPricesInput struct {
	VIP     *decimal.Decimal `json:"vip"`
	Regular *decimal.Decimal `json:"regular"`
	Student *decimal.Decimal `json:"student"`
}

func validateKey(key string) error {
	switch {
	case strings.TrimSpace(key) == "":
		return invalid("key", "is required")
	case utf8.RuneCountInString(key) > MaxSettingKeyLength:
		return invalid("key", fmt.Sprintf("must be at most %d characters", MaxSettingKeyLength))
	}
	return nil
}

// Get returns the value stored under key.
func (s *SettingsService) Get(ctx context.Context, key string) (model.Setting, error) {
	if err := validateKey(key); err != nil {
		return model.Setting{}, err
	}
	st, err := s.store.Get(ctx, key)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Setting{}, notFound("setting", key)
	}
	return st, err
}

// GetMany returns the stored values among keys; missing keys are absent.
func (s *SettingsService) GetMany(ctx context.Context, keys []string) (map[string]string, error) {
	return s.store.GetMany(ctx, keys)
}

// List returns every setting.
func (s *SettingsService) List(ctx context.Context) ([]model.Setting, error) {
	return s.store.List(ctx)
}

// Set writes a single key.
func (s *SettingsService) Set(ctx context.Context, key, value string) error {
	return s.SetMany(ctx, map[string]string{key: value})
}

// SetMany writes every entry or none of them.
func (s *SettingsService) SetMany(ctx context.Context, entries map[string]string) error {
	if len(entries) == 0 {
		return invalid("settings", "must contain at least one entry")
	}
	for k := range entries {
		if err := validateKey(k); err != nil {
			return err
		}
	}
	return s.store.SetMany(ctx, entries)
}

// Delete removes a key.
func (s *SettingsService) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	err := s.store.Delete(ctx, key)
	if errors.Is(err, repository.ErrNotFound) {
		return notFound("setting", key)
	}
	return err
}

// TicketPrices returns the three prices for display.  Absent or
// unparsable values read as 0; booking creation never uses this view.
func (s *SettingsService) TicketPrices(ctx context.Context) (model.TicketPrices, error) {
	vals, err := s.store.GetMany(ctx, []string{model.KeyTicketPriceVIP, model.KeyTicketPriceRegular, model.KeyTicketPriceStudent})
	if err != nil {
		return model.TicketPrices{}, err
	}
	return model.TicketPrices{
		VIP:     displayMoney(vals[model.KeyTicketPriceVIP]),
		Regular: displayMoney(vals[model.KeyTicketPriceRegular]),
		Student: displayMoney(vals[model.KeyTicketPriceStudent]),
	}, nil
}

func displayMoney(raw string) utils.Money {
	m, err := utils.NormalizeMoney(raw)
	if err != nil || m.IsNegative() {
		return utils.Money{}
	}
	return m
}

// SetTicketPrices validates that all three prices are present
// non-negative integers and writes them in one transaction.
func (s *SettingsService) SetTicketPrices(ctx context.Context, in TicketPricesInput) (model.TicketPrices, error) {
	fields := []struct {
		name string
		key  string
		v    *decimal.Decimal
	}{
		{"vip", model.KeyTicketPriceVIP, in.VIP},
		{"regular", model.KeyTicketPriceRegular, in.Regular},
		{"student", model.KeyTicketPriceStudent, in.Student},
	}
	entries := make(map[string]string, len(fields))
	for _, f := range fields {
		if f.v == nil {
			return model.TicketPrices{}, invalid(f.name, "is required")
		}
		if err := utils.CheckAmount(*f.v); err != nil {
			return model.TicketPrices{}, amountError(f.name, err)
		}
		switch {
		case f.v.IsNegative():
			return model.TicketPrices{}, invalid(f.name, "must not be negative")
		case !f.v.IsInteger():
			return model.TicketPrices{}, invalid(f.name, "must be a whole number")
		case f.v.GreaterThan(decimal.NewFromInt(MaxTicketPrice)):
			return model.TicketPrices{}, invalid(f.name, fmt.Sprintf("must be at most %d", MaxTicketPrice))
		}
		entries[f.key] = f.v.String()
	}
	if err := s.store.SetMany(ctx, entries); err != nil {
		return model.TicketPrices{}, err
	}
	return s.TicketPrices(ctx)
}

// MembershipFee returns the configured fee for display, 0 when unset.
func (s *SettingsService) MembershipFee(ctx context.Context) (utils.Money, error) {
	vals, err := s.store.GetMany(ctx, []string{model.KeyMembershipFee})
	if err != nil {
		return utils.Money{}, err
	}
	return displayMoney(vals[model.KeyMembershipFee]), nil
}

// SetMembershipFee stores a non-negative fee with two decimals.
func (s *SettingsService) SetMembershipFee(ctx context.Context, fee *decimal.Decimal) (utils.Money, error) {
	if fee == nil {
		return utils.Money{}, invalid("fee", "is required")
	}
	m, err := utils.NormalizeMoney(*fee)
	if err != nil {
		return utils.Money{}, amountError("fee", err)
	}
	if m.IsNegative() {
		return utils.Money{}, invalid("fee", "must not be negative")
	}
	if err := s.store.SetMany(ctx, map[string]string{model.KeyMembershipFee: m.String()}); err != nil {
		return utils.Money{}, err
	}
	return m, nil
}

// unitPrice reads the price for ticketType straight from storage.  Any
// absent, unparsable, negative or oversized value is ErrPricingUnavailable;
// there is no zero fallback.
func (s *SettingsService) unitPrice(ctx context.Context, ticketType string) (decimal.Decimal, error) {
	key, ok := model.TicketPriceKey[ticketType]
	if !ok {
		return decimal.Zero, invalid("ticket_type", "is not supported", model.TicketTypes...)
	}
	st, err := s.store.Get(ctx, key)
	if errors.Is(err, repository.ErrNotFound) {
		return decimal.Zero, fmt.Errorf("%s: %w", key, ErrPricingUnavailable)
	}
	if err != nil {
		return decimal.Zero, err
	}
	price, err := utils.NormalizeMoney(st.Value)
	if err != nil || price.IsNegative() || price.GreaterThan(decimal.NewFromInt(MaxTicketPrice)) {
		return decimal.Zero, fmt.Errorf("%s=%q: %w", key, st.Value, ErrPricingUnavailable)
	}
	return price.Decimal, nil
}
