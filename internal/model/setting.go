package model

import "github.com/iliyamo/club-ledger/internal/utils"

// Well-known configuration keys.
const (
    KeyTicketPriceVIP     = "ticket_price_vip"
    KeyTicketPriceRegular = "ticket_price_regular"
    KeyTicketPriceStudent = "ticket_price_student"
    KeyMembershipFee      = "membership_fee"
)

// TicketPriceKey maps a ticket type to the setting holding its price.
var TicketPriceKey = map[string]string{
    TicketVIP:     KeyTicketPriceVIP,
    TicketRegular: KeyTicketPriceRegular,
    TicketStudent: KeyTicketPriceStudent,
}

// Setting is one key/value configuration entry.
type Setting struct {
    Key       string          `json:"key"`
    Value     string          `json:"value"`
    UpdatedAt utils.Timestamp `json:"updated_at"`
}

// TicketPrices is the fixed-shape price view.
type TicketPrices struct {
    VIP     utils.Money `json:"vip"`
    Regular utils.Money `json:"regular"`
    Student utils.Money `json:"student"`
}
