package domain

import (
	"fmt"
	"time"

	"github.com/SscSPs/debt_settlement_app/internal/apperrors"
)

// TransactionKind indicates whether a transaction is a shared expense or a payoff.
type TransactionKind string

const (
	Expense TransactionKind = "EXPENSE"
	Payoff  TransactionKind = "PAYOFF"
)

// Transaction is a dated monetary event of an event's ledger.
// An expense is paid by Payer and shared by Debtors; a payoff is a transfer from Payer to Receiver.
type Transaction struct {
	TransactionID int64           `json:"transactionID"` // monotonically increasing
	Kind          TransactionKind `json:"kind"`
	Title         string          `json:"title"`
	Payer         ParticipantID   `json:"payer"`
	Debtors       []ParticipantID `json:"debtors,omitempty"`  // EXPENSE only
	Receiver      ParticipantID   `json:"receiver,omitempty"` // PAYOFF only
	Amount        Money           `json:"amount"`
	Date          time.Time       `json:"date"`
}

// Validate checks the transaction is structurally usable. Participant membership is
// checked later against the settlement session.
func (t Transaction) Validate() error {
	if t.Payer == "" {
		return fmt.Errorf("%w: transaction %d has no payer", apperrors.ErrValidation, t.TransactionID)
	}
	if err := ValidateCurrencyCode(t.Amount.Currency); err != nil {
		return fmt.Errorf("transaction %d: %w", t.TransactionID, err)
	}
	if !t.Amount.IsPositive() {
		return fmt.Errorf("%w: transaction %d amount must be positive", apperrors.ErrValidation, t.TransactionID)
	}
	if t.Date.IsZero() {
		return fmt.Errorf("%w: transaction %d has no date", apperrors.ErrValidation, t.TransactionID)
	}

	switch t.Kind {
	case Expense:
		if len(t.Debtors) == 0 {
			return fmt.Errorf("%w: expense %d has no debtors", apperrors.ErrValidation, t.TransactionID)
		}
	case Payoff:
		if t.Receiver == "" {
			return fmt.Errorf("%w: payoff %d has no receiver", apperrors.ErrValidation, t.TransactionID)
		}
		if t.Receiver == t.Payer {
			return fmt.Errorf("%w: payoff %d pays the payer", apperrors.ErrValidation, t.TransactionID)
		}
	default:
		return fmt.Errorf("%w: unknown transaction kind '%s'", apperrors.ErrValidation, t.Kind)
	}
	return nil
}

// IsPayoff reports whether t moves money between two participants instead of sharing an expense.
func (t Transaction) IsPayoff() bool {
	return t.Kind == Payoff
}
