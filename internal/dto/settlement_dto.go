package dto

import (
	"github.com/SscSPs/debt_settlement_app/internal/core/domain"
	"github.com/SscSPs/debt_settlement_app/internal/utils"
	"github.com/shopspring/decimal"
)

// TransactionRequest is one expense or payoff of an event.
type TransactionRequest struct {
	TransactionID int64           `json:"transactionID" binding:"gte=0"`
	Kind          string          `json:"kind" binding:"required,oneof=EXPENSE PAYOFF"`
	Title         string          `json:"title"`
	Payer         string          `json:"payer" binding:"required"`
	Debtors       []string        `json:"debtors" binding:"dive,required"`
	Receiver      string          `json:"receiver"`
	Amount        decimal.Decimal `json:"amount" binding:"required,decimal_positive" swaggertype:"string" example:"25.00"`
	Currency      string          `json:"currency" binding:"required,len=3,uppercase"`
	Date          string          `json:"date" binding:"required,datetime=2006-01-02" example:"2024-03-02"`
}

// CreateSettlementRequest carries everything needed to settle one event.
type CreateSettlementRequest struct {
	BaseCurrency string               `json:"baseCurrency" binding:"required,len=3,uppercase"`
	Participants []string             `json:"participants" binding:"required,min=1,dive,required"`
	Transactions []TransactionRequest `json:"transactions" binding:"dive"`
}

// PaymentResponse is one settlement payment.
type PaymentResponse struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

// BalanceResponse is a participant's net balance in the base currency.
type BalanceResponse struct {
	Participant string `json:"participant"`
	Amount      string `json:"amount"`
}

// SettlementResponse defines the structure returned after settling an event.
type SettlementResponse struct {
	SettlementID string            `json:"settlementID"`
	BaseCurrency string            `json:"baseCurrency"`
	Payments     []PaymentResponse `json:"payments"`
	Balances     []BalanceResponse `json:"balances"`
}

// ToSettlementResponse converts a domain.Settlement to SettlementResponse DTO.
// Balances are listed in participant order.
func ToSettlementResponse(s *domain.Settlement) SettlementResponse {
	base := domain.LookupCurrency(s.BaseCurrency)

	payments := make([]PaymentResponse, len(s.Payments))
	for i, p := range s.Payments {
		payments[i] = PaymentResponse{
			From:     string(p.From),
			To:       string(p.To),
			Amount:   utils.FormatWithCurrencyPrecision(p.Amount.Amount, base),
			Currency: p.Amount.Currency,
		}
	}

	ids := make([]domain.ParticipantID, 0, len(s.Balances))
	for id := range s.Balances {
		ids = append(ids, id)
	}
	domain.SortParticipants(ids)

	balances := make([]BalanceResponse, len(ids))
	for i, id := range ids {
		balances[i] = BalanceResponse{
			Participant: string(id),
			Amount:      utils.FormatWithCurrencyPrecision(s.Balances[id].Amount, base),
		}
	}

	return SettlementResponse{
		SettlementID: s.SettlementID,
		BaseCurrency: s.BaseCurrency,
		Payments:     payments,
		Balances:     balances,
	}
}
