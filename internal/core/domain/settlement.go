package domain

import "time"

// Settlement is the outcome of simplifying an event's debts.
type Settlement struct {
	SettlementID string                  `json:"settlementID"`
	BaseCurrency string                  `json:"baseCurrency"`
	Payments     []Debt                  `json:"payments"`
	Balances     map[ParticipantID]Money `json:"balances"` // positive = is owed, negative = owes
	CreatedAt    time.Time               `json:"createdAt"`
}
