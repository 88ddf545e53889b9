package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Quantize rounds value to the nearest multiple of increment.
func Quantize(value, increment decimal.Decimal) decimal.Decimal {
	return value.DivRound(increment, 0).Mul(increment)
}

// SettlementPrice is the effective fill price: executed value over filled
// size, quantized to the market's quote increment. Exact decimal division
// keeps it aligned with the venue's own accounting.
func SettlementPrice(executedValue, filledSize, quoteIncrement decimal.Decimal) decimal.Decimal {
	return Quantize(executedValue.Div(filledSize), quoteIncrement)
}

// BuildMarketOrder converts a user amount into a venue order request. An
// amount denominated in the market's quote currency becomes a funds order,
// one in the base currency becomes a size order. Any other currency is a
// configuration error, caught before any network call.
func BuildMarketOrder(market Market, side OrderSide, amount decimal.Decimal, amountCurrency string) (OrderRequest, error) {
	request := OrderRequest{Type: "market", Side: side, ProductID: market.ID}

	switch amountCurrency {
	case market.QuoteCurrency:
		request.Funds = Quantize(amount, market.QuoteIncrement).String()
	case market.BaseCurrency:
		request.Size = Quantize(amount, market.BaseIncrement).String()
	default:
		return OrderRequest{}, fmt.Errorf("amount currency %s not in market %s", amountCurrency, market.ID)
	}

	return request, nil
}
