package services

import (
	"context"

	"github.com/SscSPs/debt_settlement_app/internal/core/domain"
	"github.com/SscSPs/debt_settlement_app/internal/dto"
)

// SettlementSvc computes the minimal payment set settling an event.
type SettlementSvc interface {
	Settle(ctx context.Context, req dto.CreateSettlementRequest) (*domain.Settlement, error)
}
