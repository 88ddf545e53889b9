package domain

// LedgerHeader is the frozen first row of every per-market ledger sheet.
var LedgerHeader = []interface{}{
	"product id",
	"specified funds",
	"actual funds",
	"fees",
	"filled size",
	"market price",
	"side",
	"done reason",
	"environment",
	"status",
	"created at",
}

// LedgerEntry is one spreadsheet row describing a settled order.
type LedgerEntry struct {
	ProductID      string
	SpecifiedFunds string
	ActualFunds    string
	Fees           string
	FilledSize     string
	MarketPrice    string
	Side           OrderSide
	DoneReason     string
	Environment    string
	Status         string
	CreatedAt      string
}

// Row lays the entry out in LedgerHeader column order.
func (entry LedgerEntry) Row() []interface{} {
	return []interface{}{
		entry.ProductID,
		entry.SpecifiedFunds,
		entry.ActualFunds,
		entry.Fees,
		entry.FilledSize,
		entry.MarketPrice,
		string(entry.Side),
		entry.DoneReason,
		entry.Environment,
		entry.Status,
		entry.CreatedAt,
	}
}
