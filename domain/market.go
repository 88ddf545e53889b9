package domain

import "github.com/shopspring/decimal"

// Market describes a tradable currency pair as reported by the venue.
// It is reference data: fetched once per run and never mutated locally.
type Market struct {
	ID             string          `json:"id"`
	BaseCurrency   string          `json:"base_currency"`
	QuoteCurrency  string          `json:"quote_currency"`
	BaseMinSize    decimal.Decimal `json:"base_min_size"`
	BaseIncrement  decimal.Decimal `json:"base_increment"`
	QuoteIncrement decimal.Decimal `json:"quote_increment"`
}
