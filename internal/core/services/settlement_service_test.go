package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/debt_settlement_app/internal/apperrors"
	"github.com/SscSPs/debt_settlement_app/internal/core/domain"
	"github.com/SscSPs/debt_settlement_app/internal/core/services"
	"github.com/SscSPs/debt_settlement_app/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSettlementStore(t *testing.T) *services.ExchangeRateStore {
	t.Helper()
	store := services.NewExchangeRateStore("USD")
	r, err := domain.NewExchangeRate(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), "EUR", "USD", decimal.RequireFromString("1.25"))
	require.NoError(t, err)
	store.Add(r)
	return store
}

func TestSettlementService_Settle(t *testing.T) {
	service := services.NewSettlementService(newSettlementStore(t))
	req := dto.CreateSettlementRequest{
		BaseCurrency: "EUR",
		Participants: []string{"alice", "bob", "carol"},
		Transactions: []dto.TransactionRequest{
			{TransactionID: 1, Kind: "EXPENSE", Title: "Dinner", Payer: "alice", Debtors: []string{"alice", "bob", "carol"}, Amount: decimal.RequireFromString("30.00"), Currency: "EUR", Date: "2024-03-02"},
			{TransactionID: 2, Kind: "EXPENSE", Title: "Taxi", Payer: "bob", Debtors: []string{"alice", "bob", "carol"}, Amount: decimal.RequireFromString("15.00"), Currency: "USD", Date: "2024-03-02"},
			{TransactionID: 3, Kind: "PAYOFF", Payer: "carol", Receiver: "alice", Amount: decimal.RequireFromString("5.00"), Currency: "EUR", Date: "2024-03-03"},
		},
	}

	settlement, err := service.Settle(context.Background(), req)

	require.NoError(t, err)
	_, err = uuid.Parse(settlement.SettlementID)
	assert.NoError(t, err)
	assert.Equal(t, "EUR", settlement.BaseCurrency)

	// taxi is 12.00 EUR: 4.00 each
	assert.Equal(t, "11.00 EUR", settlement.Balances["alice"].String())
	assert.Equal(t, "-2.00 EUR", settlement.Balances["bob"].String())
	assert.Equal(t, "-9.00 EUR", settlement.Balances["carol"].String())

	require.Len(t, settlement.Payments, 2)
	total := decimal.Zero
	for _, p := range settlement.Payments {
		assert.Equal(t, domain.ParticipantID("alice"), p.To)
		total = total.Add(p.Amount.Amount)
	}
	assert.True(t, decimal.NewFromInt(11).Equal(total))
}

func TestSettlementService_SettleErrors(t *testing.T) {
	service := services.NewSettlementService(newSettlementStore(t))

	tests := []struct {
		name    string
		req     dto.CreateSettlementRequest
		wantErr error
	}{
		{
			name:    "no participants",
			req:     dto.CreateSettlementRequest{BaseCurrency: "EUR"},
			wantErr: apperrors.ErrInvalidConfiguration,
		},
		{
			name: "unknown participant",
			req: dto.CreateSettlementRequest{
				BaseCurrency: "EUR",
				Participants: []string{"alice", "bob"},
				Transactions: []dto.TransactionRequest{
					{TransactionID: 1, Kind: "EXPENSE", Payer: "alice", Debtors: []string{"bob", "zoe"}, Amount: decimal.NewFromInt(10), Currency: "EUR", Date: "2024-03-02"},
				},
			},
			wantErr: apperrors.ErrUnknownParticipant,
		},
		{
			name: "missing exchange rate",
			req: dto.CreateSettlementRequest{
				BaseCurrency: "EUR",
				Participants: []string{"alice", "bob"},
				Transactions: []dto.TransactionRequest{
					{TransactionID: 1, Kind: "PAYOFF", Payer: "alice", Receiver: "bob", Amount: decimal.NewFromInt(1000), Currency: "JPY", Date: "2024-03-02"},
				},
			},
			wantErr: apperrors.ErrNoExchangeRate,
		},
		{
			name: "bad date",
			req: dto.CreateSettlementRequest{
				BaseCurrency: "EUR",
				Participants: []string{"alice", "bob"},
				Transactions: []dto.TransactionRequest{
					{TransactionID: 1, Kind: "PAYOFF", Payer: "alice", Receiver: "bob", Amount: decimal.NewFromInt(1), Currency: "EUR", Date: "02/03/2024"},
				},
			},
			wantErr: apperrors.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settlement, err := service.Settle(context.Background(), tt.req)
			assert.Nil(t, settlement)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
