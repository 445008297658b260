package model

import "github.com/iliyamo/club-ledger/internal/utils"

// Match is a fixture tickets can be booked for.  Deleting a match deletes
// its bookings.
type Match struct {
    ID          uint64          `json:"id"`
    Opponent    string          `json:"opponent"`
    MatchDate   utils.Timestamp `json:"match_date"`
    Venue       string          `json:"venue"`
    Competition string          `json:"competition"`
    IsHome      bool            `json:"is_home"`
}

// Player is a squad member shown on the dashboard.
type Player struct {
    ID           uint64  `json:"id"`
    Name         string  `json:"name"`
    Position     string  `json:"position"`
    JerseyNumber *uint32 `json:"jersey_number,omitempty"`
    Nationality  string  `json:"nationality"`
}
