package ratefile

import (
	portsrepo "github.com/SscSPs/debt_settlement_app/internal/core/ports/repositories"
	"github.com/spf13/afero"
)

// NewRepositoryProvider builds the repositories backed by the rate directory dir on fs.
func NewRepositoryProvider(fs afero.Fs, dir string) *portsrepo.RepositoryProvider {
	return &portsrepo.RepositoryProvider{
		ExchangeRateRepo: NewFileRateRepository(fs, dir),
	}
}
