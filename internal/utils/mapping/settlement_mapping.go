package mapping

import (
	"fmt"

	"github.com/SscSPs/debt_settlement_app/internal/core/domain"
	"github.com/SscSPs/debt_settlement_app/internal/dto"
)

// ToParticipantIDs converts raw participant identifiers to domain handles
func ToParticipantIDs(ids []string) []domain.ParticipantID {
	out := make([]domain.ParticipantID, len(ids))
	for i, id := range ids {
		out[i] = domain.ParticipantID(id)
	}
	return out
}

// ToDomainTransaction converts a transaction request DTO to a validated domain Transaction
func ToDomainTransaction(req dto.TransactionRequest) (domain.Transaction, error) {
	date, err := domain.ParseDate(req.Date)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("transaction %d: %w", req.TransactionID, err)
	}

	tx := domain.Transaction{
		TransactionID: req.TransactionID,
		Kind:          domain.TransactionKind(req.Kind),
		Title:         req.Title,
		Payer:         domain.ParticipantID(req.Payer),
		Receiver:      domain.ParticipantID(req.Receiver),
		Amount:        domain.NewMoney(req.Amount, req.Currency),
		Date:          date,
	}
	if len(req.Debtors) > 0 {
		tx.Debtors = ToParticipantIDs(req.Debtors)
	}

	if err := tx.Validate(); err != nil {
		return domain.Transaction{}, err
	}
	return tx, nil
}

// ToDomainTransactions converts a slice of transaction request DTOs, failing on the first invalid one
func ToDomainTransactions(reqs []dto.TransactionRequest) ([]domain.Transaction, error) {
	txs := make([]domain.Transaction, 0, len(reqs))
	for _, req := range reqs {
		tx, err := ToDomainTransaction(req)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, nil
}
