// Package ratefile persists exchange rates as a directory of one-line text files,
// one file per (date, from, to) fact, e.g. "2024-03-02.EUR.USD.txt" holding "1.0832".
package ratefile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/SscSPs/debt_settlement_app/internal/core/domain"
	portsrepo "github.com/SscSPs/debt_settlement_app/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
	"github.com/spf13/afero"
)

const fileExt = ".txt"

var fileNamePattern = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})\.([A-Z]{3})\.([A-Z]{3})\.txt$`)

// FileRateRepository reads and writes rate files under a directory of fs.
type FileRateRepository struct {
	fs  afero.Fs
	dir string
	mu  sync.Mutex
}

var _ portsrepo.ExchangeRateRepositoryFacade = (*FileRateRepository)(nil)

// NewFileRateRepository creates a repository rooted at dir on fs.
func NewFileRateRepository(fs afero.Fs, dir string) *FileRateRepository {
	return &FileRateRepository{fs: fs, dir: dir}
}

// NewOsFileRateRepository creates a repository rooted at dir on the local disk.
func NewOsFileRateRepository(dir string) *FileRateRepository {
	return NewFileRateRepository(afero.NewOsFs(), dir)
}

// FileName returns the file name storing rate.
func FileName(rate domain.ExchangeRate) string {
	return rate.Key().String() + fileExt
}

// SaveExchangeRates writes one file per rate, replacing existing files for the same key.
// Each file is written to a temporary name first and renamed into place.
func (r *FileRateRepository) SaveExchangeRates(ctx context.Context, rates []domain.ExchangeRate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.fs.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create rate directory %s: %w", r.dir, err)
	}
	for _, rate := range rates {
		if err := ctx.Err(); err != nil {
			return err
		}
		path := filepath.Join(r.dir, FileName(rate))
		tmp := path + ".tmp"
		if err := afero.WriteFile(r.fs, tmp, []byte(rate.Rate.String()+"\n"), 0o644); err != nil {
			return fmt.Errorf("failed to write rate file %s: %w", tmp, err)
		}
		if err := r.fs.Rename(tmp, path); err != nil {
			return fmt.Errorf("failed to move rate file into place %s: %w", path, err)
		}
	}
	return nil
}

// ListExchangeRates reads every rate file in the directory in name order, so older
// dates come first. Files whose names do not follow the rate pattern are ignored.
// A missing directory holds no rates.
func (r *FileRateRepository) ListExchangeRates(ctx context.Context) ([]domain.ExchangeRate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := afero.ReadDir(r.fs, r.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read rate directory %s: %w", r.dir, err)
	}

	rates := make([]domain.ExchangeRate, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := fileNamePattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rate, err := r.readRate(entry.Name(), m[1], m[2], m[3])
		if err != nil {
			return nil, err
		}
		rates = append(rates, rate)
	}
	return rates, nil
}

func (r *FileRateRepository) readRate(name, date, from, to string) (domain.ExchangeRate, error) {
	content, err := afero.ReadFile(r.fs, filepath.Join(r.dir, name))
	if err != nil {
		return domain.ExchangeRate{}, fmt.Errorf("failed to read rate file %s: %w", name, err)
	}
	value, err := decimal.NewFromString(strings.TrimSpace(firstLine(string(content))))
	if err != nil {
		return domain.ExchangeRate{}, fmt.Errorf("rate file %s does not hold a decimal: %w", name, err)
	}
	day, err := domain.ParseDate(date)
	if err != nil {
		return domain.ExchangeRate{}, fmt.Errorf("rate file %s: %w", name, err)
	}
	rate, err := domain.NewExchangeRate(day, from, to, value)
	if err != nil {
		return domain.ExchangeRate{}, fmt.Errorf("rate file %s: %w", name, err)
	}
	return rate, nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
