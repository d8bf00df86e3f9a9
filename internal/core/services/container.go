package services

import (
	portsrepo "github.com/SscSPs/debt_settlement_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/debt_settlement_app/internal/core/ports/services"
)

// NewContainer wires every service around one shared rate store.
// supplier may be nil when no rate provider is configured.
func NewContainer(repos *portsrepo.RepositoryProvider, store *ExchangeRateStore, supplier portssvc.RateSupplier, vendorBase string) *portssvc.ServiceContainer {
	return &portssvc.ServiceContainer{
		ExchangeRate: NewExchangeRateService(store, repos.ExchangeRateRepo, supplier, vendorBase),
		Settlement:   NewSettlementService(store),
	}
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.ExchangeRateSvcFacade = (*exchangeRateService)(nil)
	_ portssvc.SettlementSvc         = (*settlementService)(nil)
)
