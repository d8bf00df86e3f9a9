package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/SscSPs/debt_settlement_app/internal/adapters/ratefile"
	"github.com/SscSPs/debt_settlement_app/internal/adapters/ratesupply"
	"github.com/SscSPs/debt_settlement_app/internal/core/domain"
	"github.com/SscSPs/debt_settlement_app/internal/core/services"
	"github.com/SscSPs/debt_settlement_app/internal/dto"
	"github.com/SscSPs/debt_settlement_app/internal/middleware"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

const (
	formatText = "text"
	formatJSON = "json"
)

type cliOptions struct {
	verbose  bool
	timeout  time.Duration
	ratesDir string
	pivot    string
}

func newRootCmd(fs afero.Fs) *cobra.Command {
	opts := &cliOptions{}

	rootCmd := &cobra.Command{
		Use:   "settle",
		Short: "Settle shared expenses with a minimal set of payments",
		Long: `settle turns the expenses and payoffs of an event into the smallest set of
payments that squares everybody up, converting every amount into one base
currency with a local exchange rate cache.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 2*time.Minute, "Operation timeout")
	rootCmd.PersistentFlags().StringVar(&opts.ratesDir, "rates", "./data/rates", "Exchange rate cache directory")
	rootCmd.PersistentFlags().StringVar(&opts.pivot, "pivot", "USD", "Currency used to interpolate missing cross rates")

	rootCmd.AddCommand(newSimplifyCmd(fs, opts))
	rootCmd.AddCommand(newRatesCmd(fs, opts))
	return rootCmd
}

func newSimplifyCmd(fs afero.Fs, opts *cliOptions) *cobra.Command {
	var eventPath, base, format string

	cmd := &cobra.Command{
		Use:   "simplify",
		Short: "Compute the settlement payments of an event file",
		Long: `Reads an event (participants and transactions, in the same JSON shape the
REST API accepts on POST /api/v1/settlements) and prints the payments settling it.

Example:
  settle simplify --event trip.json --rates ./data/rates --base EUR`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != formatText && format != formatJSON {
				return fmt.Errorf("unknown output format '%s'", format)
			}
			ctx, cancel := opts.context()
			defer cancel()

			raw, err := afero.ReadFile(fs, eventPath)
			if err != nil {
				return fmt.Errorf("failed to read event file: %w", err)
			}
			var req dto.CreateSettlementRequest
			if err := json.Unmarshal(raw, &req); err != nil {
				return fmt.Errorf("failed to parse event file %s: %w", eventPath, err)
			}
			if base != "" {
				req.BaseCurrency = strings.ToUpper(base)
			}

			store := services.NewExchangeRateStore(opts.pivot)
			if _, err := store.Load(ctx, ratefile.NewFileRateRepository(fs, opts.ratesDir)); err != nil {
				return err
			}

			settlement, err := services.NewSettlementService(store).Settle(ctx, req)
			if err != nil {
				return err
			}
			return printSettlement(cmd.OutOrStdout(), dto.ToSettlementResponse(settlement), format)
		},
	}
	cmd.Flags().StringVar(&eventPath, "event", "", "Event JSON file (required)")
	cmd.Flags().StringVar(&base, "base", "", "Base currency, overriding the event's baseCurrency")
	cmd.Flags().StringVar(&format, "format", formatText, "Output format: text or json")
	_ = cmd.MarkFlagRequired("event")
	return cmd
}

func newRatesCmd(fs afero.Fs, opts *cliOptions) *cobra.Command {
	ratesCmd := &cobra.Command{
		Use:   "rates",
		Short: "Manage the exchange rate cache",
	}

	var provider, base string
	refreshCmd := &cobra.Command{
		Use:   "refresh",
		Short: "Fetch today's rates from a provider and extend the cache",
		Long: `Polls the rate provider for the current table relative to --base, derives the
cross rates between every currency in the cache and writes them as one file per
(date, from, to) triple.

Example:
  settle rates refresh --rates ./data/rates --provider https://rates.example/latest --base USD`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context()
			defer cancel()

			supplier, err := ratesupply.NewHTTPRateSupplier(provider, nil)
			if err != nil {
				return err
			}
			repo := ratefile.NewFileRateRepository(fs, opts.ratesDir)
			store := services.NewExchangeRateStore(base)
			svc := services.NewExchangeRateService(store, repo, supplier, base)

			if _, err := svc.LoadRates(ctx); err != nil {
				return err
			}
			n, err := svc.RefreshRates(ctx, time.Now())
			if err != nil {
				return err
			}
			if n == 0 {
				return fmt.Errorf("rate provider returned no usable rates, cache left unchanged")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "generated %d rates across %d currencies\n", n, len(store.Currencies()))
			return nil
		},
	}
	refreshCmd.Flags().StringVar(&provider, "provider", "", "Rate provider URL (required)")
	refreshCmd.Flags().StringVar(&base, "base", "USD", "Base currency of the provider's table")
	_ = refreshCmd.MarkFlagRequired("provider")

	var date, amount string
	showCmd := &cobra.Command{
		Use:   "show FROM TO",
		Short: "Print the cached rate closest to a date",
		Long: `Prints the rate the settlement engine would use to convert FROM into TO on
--date. With --amount the converted amount is printed as well.

Example:
  settle rates show EUR USD --date 2024-03-05 --amount 19.99`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			day := time.Now()
			if date != "" {
				parsed, err := domain.ParseDate(date)
				if err != nil {
					return err
				}
				day = parsed
			}
			var money domain.Money
			if amount != "" {
				m, err := domain.ParseMoney(amount, strings.ToUpper(args[0]))
				if err != nil {
					return err
				}
				money = m
			}

			ctx, cancel := opts.context()
			defer cancel()

			store := services.NewExchangeRateStore(opts.pivot)
			svc := services.NewExchangeRateService(store, ratefile.NewFileRateRepository(fs, opts.ratesDir), nil, opts.pivot)
			if _, err := svc.LoadRates(ctx); err != nil {
				return err
			}
			rate, err := svc.GetExchangeRate(ctx, args[0], args[1], day)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s 1 %s = %s %s\n", rate.Key().Date, rate.From, rate.Rate.String(), rate.To)
			if amount != "" {
				converted, err := rate.Convert(money)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", money, converted)
			}
			return nil
		},
	}
	showCmd.Flags().StringVar(&date, "date", "", "Date (YYYY-MM-DD), default today")
	showCmd.Flags().StringVar(&amount, "amount", "", "Amount of FROM to convert")

	ratesCmd.AddCommand(refreshCmd)
	ratesCmd.AddCommand(showCmd)
	return ratesCmd
}

// context returns the command context carrying the CLI logger, cancelled on timeout or SIGINT/SIGTERM.
func (o *cliOptions) context() (context.Context, context.CancelFunc) {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	return middleware.WithLogger(ctx, logger), func() {
		stop()
		cancel()
	}
}

func printSettlement(w io.Writer, resp dto.SettlementResponse, format string) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	case formatText:
		if len(resp.Payments) == 0 {
			fmt.Fprintln(w, "everybody is settled up")
		}
		for _, p := range resp.Payments {
			fmt.Fprintf(w, "%s pays %s %s %s\n", p.From, p.To, p.Amount, p.Currency)
		}
		fmt.Fprintln(w, "balances:")
		for _, b := range resp.Balances {
			fmt.Fprintf(w, "  %-12s %s %s\n", b.Participant, b.Amount, resp.BaseCurrency)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format '%s'", format)
	}
}
