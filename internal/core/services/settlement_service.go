package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/SscSPs/debt_settlement_app/internal/core/domain"
	portssvc "github.com/SscSPs/debt_settlement_app/internal/core/ports/services"
	"github.com/SscSPs/debt_settlement_app/internal/dto"
	"github.com/SscSPs/debt_settlement_app/internal/utils/mapping"
	"github.com/google/uuid"
)

type settlementService struct {
	BaseService
	rates RateConverter
}

// NewSettlementService creates a settlement service converting amounts with rates.
func NewSettlementService(rates RateConverter) portssvc.SettlementSvc {
	return &settlementService{rates: rates}
}

// Settle runs one settlement session for the event described by req. Each call uses a
// fresh DebtSimplifier so concurrent requests never share session state.
func (s *settlementService) Settle(ctx context.Context, req dto.CreateSettlementRequest) (*domain.Settlement, error) {
	txs, err := mapping.ToDomainTransactions(req.Transactions)
	if err != nil {
		return nil, err
	}

	simplifier := NewDebtSimplifier(s.rates)
	if err := simplifier.Setup(req.BaseCurrency, mapping.ToParticipantIDs(req.Participants)); err != nil {
		return nil, err
	}
	if err := simplifier.AddTransactions(txs); err != nil {
		s.LogDebug(ctx, "Settlement rejected", slog.String("error", err.Error()))
		return nil, err
	}

	balances, err := simplifier.NetBalances()
	if err != nil {
		return nil, err
	}
	payments, err := simplifier.Simplify()
	if err != nil {
		return nil, err
	}

	settlement := &domain.Settlement{
		SettlementID: uuid.NewString(),
		BaseCurrency: simplifier.BaseCurrency(),
		Payments:     payments,
		Balances:     balances,
		CreatedAt:    time.Now(),
	}
	s.LogInfo(ctx, "Settlement computed",
		slog.String("settlement_id", settlement.SettlementID),
		slog.String("base_currency", settlement.BaseCurrency),
		slog.Int("transactions", len(txs)),
		slog.Int("payments", len(payments)))
	return settlement, nil
}
