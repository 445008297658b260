package model

import (
    "encoding/json"

    "github.com/shopspring/decimal"

    "github.com/iliyamo/club-ledger/internal/utils"
)

// Revenue sources accepted for manual entries.
const (
    SourceTickets     = "tickets"
    SourceMerchandise = "merchandise"
    SourceMembership  = "membership"
    SourceSponsorship = "sponsorship"
    SourceOther       = "other"
)

// RevenueSources lists the valid sources.
var RevenueSources = []string{SourceTickets, SourceMerchandise, SourceMembership, SourceSponsorship, SourceOther}

// RevenueEntry is a manually recorded money movement.
//
// Fields:
//  ID              – primary key identifier.
//  Source          – one of RevenueSources.
//  Amount          – positive amount, kept at four decimals in storage.
//  Description     – free text, may be empty.
//  TransactionDate – calendar date the money moved (YYYY-MM-DD).
//  CreatedAt       – creation timestamp.
type RevenueEntry struct {
    ID              uint64          `json:"id"`
    Source          string          `json:"source"`
    Amount          decimal.Decimal `json:"-"`
    Description     string          `json:"description"`
    TransactionDate utils.Date      `json:"transaction_date"`
    CreatedAt       utils.Timestamp `json:"created_at"`
}

// MarshalJSON renders Amount as a bare JSON number at storage precision.
func (e RevenueEntry) MarshalJSON() ([]byte, error) {
    type alias RevenueEntry
    return json.Marshal(struct {
        alias
        Amount json.Number `json:"amount"`
    }{alias(e), json.Number(e.Amount.String())})
}

// SourceTotal is a per-source aggregate before rounding.
type SourceTotal struct {
    Source string
    Total  decimal.Decimal
    Count  int64
}

// DayTotal is the unrounded total for a single transaction date.
type DayTotal struct {
    Date  string
    Total decimal.Decimal
    Count int64
}
