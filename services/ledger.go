package services

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/legendiguess/coinbase-dca-bot/domain"
)

// Ledger appends one row per settled order to an external log store.
// Appending is best-effort: the trade has already happened by the time the
// ledger is written.
type Ledger interface {
	Append(entry domain.LedgerEntry) error
}

// NoopLedger stands in when no spreadsheet is configured.
type NoopLedger struct{}

func (NoopLedger) Append(entry domain.LedgerEntry) error {
	return nil
}

// SheetsLedger keeps one sheet per market inside a single Google spreadsheet,
// creating the sheet with a frozen header row on first use.
type SheetsLedger struct {
	service       *sheets.Service
	spreadsheetID string
}

func NewSheetsLedger(credentialsFile string, spreadsheetID string) (*SheetsLedger, error) {
	service, err := sheets.NewService(context.Background(),
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope))
	if err != nil {
		return nil, err
	}

	return &SheetsLedger{service: service, spreadsheetID: spreadsheetID}, nil
}

func (ledger *SheetsLedger) Append(entry domain.LedgerEntry) error {
	if err := ledger.ensureSheet(entry.ProductID); err != nil {
		return err
	}

	values := &sheets.ValueRange{Values: [][]interface{}{entry.Row()}}
	_, err := ledger.service.Spreadsheets.Values.
		Append(ledger.spreadsheetID, entry.ProductID, values).
		ValueInputOption("USER_ENTERED").Do()
	if err != nil {
		return fmt.Errorf("append to sheet %s: %w", entry.ProductID, err)
	}
	return nil
}

func (ledger *SheetsLedger) ensureSheet(name string) error {
	spreadsheet, err := ledger.service.Spreadsheets.Get(ledger.spreadsheetID).Do()
	if err != nil {
		return fmt.Errorf("get spreadsheet %s: %w", ledger.spreadsheetID, err)
	}

	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties.Title == name {
			return nil
		}
	}

	batch := &sheets.BatchUpdateSpreadsheetRequest{Requests: []*sheets.Request{{
		AddSheet: &sheets.AddSheetRequest{Properties: &sheets.SheetProperties{
			Title:          name,
			GridProperties: &sheets.GridProperties{FrozenRowCount: 1},
		}},
	}}}
	if _, err := ledger.service.Spreadsheets.BatchUpdate(ledger.spreadsheetID, batch).Do(); err != nil {
		return fmt.Errorf("create sheet %s: %w", name, err)
	}

	header := &sheets.ValueRange{Values: [][]interface{}{domain.LedgerHeader}}
	_, err = ledger.service.Spreadsheets.Values.
		Append(ledger.spreadsheetID, name, header).
		ValueInputOption("RAW").Do()
	if err != nil {
		return fmt.Errorf("write header of sheet %s: %w", name, err)
	}
	return nil
}
