package domain_test

import (
	"testing"
	"time"

	"github.com/SscSPs/debt_settlement_app/internal/apperrors"
	"github.com/SscSPs/debt_settlement_app/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDebt_Validate(t *testing.T) {
	ten := domain.NewMoney(decimal.NewFromInt(10), "EUR")

	tests := []struct {
		name    string
		debt    domain.Debt
		wantErr bool
		errMsg  string
	}{
		{name: "valid debt", debt: domain.Debt{From: "alice", To: "bob", Amount: ten}},
		{name: "self debt", debt: domain.Debt{From: "alice", To: "alice", Amount: ten}, wantErr: true, errMsg: "cannot owe themselves"},
		{name: "zero amount", debt: domain.Debt{From: "alice", To: "bob", Amount: domain.ZeroMoney("EUR")}, wantErr: true, errMsg: "must be positive"},
		{name: "negative amount", debt: domain.Debt{From: "alice", To: "bob", Amount: ten.Neg()}, wantErr: true, errMsg: "must be positive"},
		{name: "missing party", debt: domain.Debt{From: "", To: "bob", Amount: ten}, wantErr: true, errMsg: "parties are required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.NewDebt(tt.debt.From, tt.debt.To, tt.debt.Amount)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrValidation)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDebt_EqualComparesAllFields(t *testing.T) {
	a := domain.Debt{From: "alice", To: "bob", Amount: domain.NewMoney(decimal.NewFromInt(5), "EUR")}
	b := domain.Debt{From: "alice", To: "bob", Amount: domain.NewMoney(decimal.RequireFromString("5.00"), "EUR")}
	c := domain.Debt{From: "alice", To: "bob", Amount: domain.NewMoney(decimal.NewFromInt(5), "USD")}

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestTransaction_Validate(t *testing.T) {
	now := time.Now()
	amount := domain.NewMoney(decimal.NewFromInt(30), "EUR")

	tests := []struct {
		name    string
		tx      domain.Transaction
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid expense",
			tx:   domain.Transaction{TransactionID: 1, Kind: domain.Expense, Payer: "alice", Debtors: []domain.ParticipantID{"alice", "bob"}, Amount: amount, Date: now},
		},
		{
			name: "valid payoff",
			tx:   domain.Transaction{TransactionID: 2, Kind: domain.Payoff, Payer: "bob", Receiver: "alice", Amount: amount, Date: now},
		},
		{
			name:    "expense without debtors",
			tx:      domain.Transaction{TransactionID: 3, Kind: domain.Expense, Payer: "alice", Amount: amount, Date: now},
			wantErr: true,
			errMsg:  "has no debtors",
		},
		{
			name:    "payoff to self",
			tx:      domain.Transaction{TransactionID: 4, Kind: domain.Payoff, Payer: "bob", Receiver: "bob", Amount: amount, Date: now},
			wantErr: true,
			errMsg:  "pays the payer",
		},
		{
			name:    "missing date",
			tx:      domain.Transaction{TransactionID: 5, Kind: domain.Payoff, Payer: "bob", Receiver: "alice", Amount: amount},
			wantErr: true,
			errMsg:  "has no date",
		},
		{
			name:    "unknown kind",
			tx:      domain.Transaction{TransactionID: 6, Kind: "REFUND", Payer: "bob", Receiver: "alice", Amount: amount, Date: now},
			wantErr: true,
			errMsg:  "unknown transaction kind",
		},
		{
			name:    "zero amount",
			tx:      domain.Transaction{TransactionID: 7, Kind: domain.Payoff, Payer: "bob", Receiver: "alice", Amount: domain.ZeroMoney("EUR"), Date: now},
			wantErr: true,
			errMsg:  "must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tx.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrValidation)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
