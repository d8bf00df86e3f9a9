package domain

import (
	"fmt"
	"strings"

	"github.com/SscSPs/debt_settlement_app/internal/apperrors"
)

// DefaultPrecision is used for currencies missing from the ISO-4217 table below.
const DefaultPrecision = 2

// Currency represents a supported currency in the domain.
type Currency struct {
	CurrencyCode string `json:"currencyCode"` // ISO-4217 code (e.g., "USD")
	Symbol       string `json:"symbol"`       // e.g., "$"
	Name         string `json:"name"`         // e.g., "US Dollar"
	Precision    int    `json:"precision"`    // canonical fraction digits
}

// knownCurrencies lists currencies whose fraction digits differ from two or that are
// common enough to deserve a symbol and name.
var knownCurrencies = map[string]Currency{
	"AUD": {CurrencyCode: "AUD", Symbol: "A$", Name: "Australian Dollar", Precision: 2},
	"BHD": {CurrencyCode: "BHD", Symbol: "BD", Name: "Bahraini Dinar", Precision: 3},
	"BRL": {CurrencyCode: "BRL", Symbol: "R$", Name: "Brazilian Real", Precision: 2},
	"CAD": {CurrencyCode: "CAD", Symbol: "C$", Name: "Canadian Dollar", Precision: 2},
	"CHF": {CurrencyCode: "CHF", Symbol: "Fr", Name: "Swiss Franc", Precision: 2},
	"CLP": {CurrencyCode: "CLP", Symbol: "$", Name: "Chilean Peso", Precision: 0},
	"CNY": {CurrencyCode: "CNY", Symbol: "¥", Name: "Chinese Yuan", Precision: 2},
	"CZK": {CurrencyCode: "CZK", Symbol: "Kč", Name: "Czech Koruna", Precision: 2},
	"DKK": {CurrencyCode: "DKK", Symbol: "kr", Name: "Danish Krone", Precision: 2},
	"EUR": {CurrencyCode: "EUR", Symbol: "€", Name: "Euro", Precision: 2},
	"GBP": {CurrencyCode: "GBP", Symbol: "£", Name: "Pound Sterling", Precision: 2},
	"HUF": {CurrencyCode: "HUF", Symbol: "Ft", Name: "Hungarian Forint", Precision: 2},
	"INR": {CurrencyCode: "INR", Symbol: "₹", Name: "Indian Rupee", Precision: 2},
	"ISK": {CurrencyCode: "ISK", Symbol: "kr", Name: "Icelandic Króna", Precision: 0},
	"JOD": {CurrencyCode: "JOD", Symbol: "JD", Name: "Jordanian Dinar", Precision: 3},
	"JPY": {CurrencyCode: "JPY", Symbol: "¥", Name: "Japanese Yen", Precision: 0},
	"KRW": {CurrencyCode: "KRW", Symbol: "₩", Name: "South Korean Won", Precision: 0},
	"KWD": {CurrencyCode: "KWD", Symbol: "KD", Name: "Kuwaiti Dinar", Precision: 3},
	"NOK": {CurrencyCode: "NOK", Symbol: "kr", Name: "Norwegian Krone", Precision: 2},
	"OMR": {CurrencyCode: "OMR", Symbol: "RO", Name: "Omani Rial", Precision: 3},
	"PLN": {CurrencyCode: "PLN", Symbol: "zł", Name: "Polish Złoty", Precision: 2},
	"SEK": {CurrencyCode: "SEK", Symbol: "kr", Name: "Swedish Krona", Precision: 2},
	"TND": {CurrencyCode: "TND", Symbol: "DT", Name: "Tunisian Dinar", Precision: 3},
	"USD": {CurrencyCode: "USD", Symbol: "$", Name: "US Dollar", Precision: 2},
	"VND": {CurrencyCode: "VND", Symbol: "₫", Name: "Vietnamese Đồng", Precision: 0},
}

// LookupCurrency returns the currency metadata for code. Unknown codes get the code
// itself as symbol and name and DefaultPrecision.
func LookupCurrency(code string) Currency {
	if c, ok := knownCurrencies[code]; ok {
		return c
	}
	return Currency{CurrencyCode: code, Symbol: code, Name: code, Precision: DefaultPrecision}
}

// CurrencyPrecision returns the canonical number of fraction digits for code.
func CurrencyPrecision(code string) int32 {
	return int32(LookupCurrency(code).Precision)
}

// ValidateCurrencyCode checks that code looks like an ISO-4217 code: three uppercase ASCII letters.
func ValidateCurrencyCode(code string) error {
	if len(code) != 3 || strings.ToUpper(code) != code {
		return fmt.Errorf("%w: currency code '%s' must be 3 uppercase letters", apperrors.ErrValidation, code)
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return fmt.Errorf("%w: currency code '%s' must be 3 uppercase letters", apperrors.ErrValidation, code)
		}
	}
	return nil
}
