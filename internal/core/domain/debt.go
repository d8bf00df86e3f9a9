package domain

import (
	"fmt"
	"sort"

	"github.com/SscSPs/debt_settlement_app/internal/apperrors"
)

// ParticipantID is an opaque participant handle. Its string order is the fixed
// ordering used for deterministic tie-breaks.
type ParticipantID string

// SortParticipants sorts ids in place by their identity order.
func SortParticipants(ids []ParticipantID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}

// Debt is a directed edge: From owes To the given Amount.
type Debt struct {
	From   ParticipantID `json:"from"`
	To     ParticipantID `json:"to"`
	Amount Money         `json:"amount"`
}

// NewDebt builds a validated debt.
func NewDebt(from, to ParticipantID, amount Money) (Debt, error) {
	d := Debt{From: from, To: to, Amount: amount}
	if err := d.Validate(); err != nil {
		return Debt{}, err
	}
	return d, nil
}

// Validate checks the debt invariants: distinct, non-empty parties and a strictly positive amount.
func (d Debt) Validate() error {
	if d.From == "" || d.To == "" {
		return fmt.Errorf("%w: debt parties are required", apperrors.ErrValidation)
	}
	if d.From == d.To {
		return fmt.Errorf("%w: participant '%s' cannot owe themselves", apperrors.ErrValidation, d.From)
	}
	if !d.Amount.IsPositive() {
		return fmt.Errorf("%w: debt amount must be positive, got %s", apperrors.ErrValidation, d.Amount)
	}
	return nil
}

// Equal reports whether both debts have the same parties and amount.
func (d Debt) Equal(o Debt) bool {
	return d.From == o.From && d.To == o.To && d.Amount.Equal(o.Amount)
}

func (d Debt) String() string {
	return fmt.Sprintf("%s -> %s: %s", d.From, d.To, d.Amount)
}
