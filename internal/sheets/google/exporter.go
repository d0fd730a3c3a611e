// Package google exports transactions and yearly summaries to a Google
// spreadsheet through the Sheets v4 API.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"fiscora/internal/core"
)

// Config selects the spreadsheet, its sheets and the service account.
type Config struct {
	SpreadsheetID string
	// TransactionsSheet holds one row per transaction, keyed by ID in column A.
	TransactionsSheet string
	// SummarySheet is a base name; each year gets "<year> <base>".
	SummarySheet    string
	CredentialsFile string
	CredentialsJSON string
}

type Exporter struct {
	svc               *gsheet.Service
	spreadsheetID     string
	transactionsSheet string
	summaryBase       string
}

func NewExporter(ctx context.Context, cfg Config) (*Exporter, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	svc, err := newSheetsService(ctx, cfg.CredentialsJSON, cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	transactions := strings.TrimSpace(cfg.TransactionsSheet)
	if transactions == "" {
		transactions = "Transactions"
	}
	summary := strings.TrimSpace(cfg.SummarySheet)
	if summary == "" {
		summary = "Summary"
	}
	return &Exporter{
		svc:               svc,
		spreadsheetID:     cfg.SpreadsheetID,
		transactionsSheet: transactions,
		summaryBase:       summary,
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials,
// preferring inline JSON over a credentials file.
func newSheetsService(ctx context.Context, credentialsJSON, credentialsFile string) (*gsheet.Service, error) {
	var creds []byte
	switch {
	case strings.TrimSpace(credentialsJSON) != "":
		slog.InfoContext(ctx, "Using inline JSON credentials", "component", "sheets")
		creds = []byte(credentialsJSON)
	case strings.TrimSpace(credentialsFile) != "":
		data, err := os.ReadFile(credentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		slog.InfoContext(ctx, "Read credentials file", "component", "sheets", "path", credentialsFile, "size", len(data))
		creds = data
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_CREDENTIALS_JSON or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// UpsertTransaction writes tx to the row already holding its ID, or to the
// first free row. Redelivered events therefore never duplicate a row.
func (e *Exporter) UpsertTransaction(ctx context.Context, tx core.Transaction) (string, error) {
	sheet := quoteSheet(e.transactionsSheet)
	resp, err := e.svc.Spreadsheets.Values.Get(e.spreadsheetID, sheet+"!A:A").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("read ids from %s: %w", e.transactionsSheet, err)
	}

	row := findRow(resp.Values, tx.ID)
	if row == 0 {
		row = len(resp.Values) + 1
		if row == 1 {
			if err := e.write(ctx, sheet+"!A1:J1", [][]any{transactionHeader}); err != nil {
				return "", err
			}
			row = 2
		}
	}

	rng := fmt.Sprintf("%s!A%d:J%d", sheet, row, row)
	if err := e.write(ctx, rng, [][]any{transactionRow(tx)}); err != nil {
		return "", err
	}

	slog.InfoContext(ctx, "Transaction exported",
		"component", "sheets",
		"transaction_id", tx.ID,
		"sheets_range", rng)
	return rng, nil
}

// WriteYearSummary rewrites the summary block of year, creating the sheet
// when it does not exist yet.
func (e *Exporter) WriteYearSummary(ctx context.Context, year int, summary core.YearSummary) error {
	name := yearPrefixedName(e.summaryBase, year)
	if err := e.ensureSheet(ctx, name); err != nil {
		return err
	}
	rng := quoteSheet(name) + "!A1:D14"
	if err := e.write(ctx, rng, summaryRows(summary)); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Year summary exported", "component", "sheets", "year", year, "sheets_range", rng)
	return nil
}

func (e *Exporter) write(ctx context.Context, rng string, values [][]any) error {
	vr := &gsheet.ValueRange{Values: values}
	_, err := e.svc.Spreadsheets.Values.Update(e.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", rng, err)
	}
	return nil
}

func (e *Exporter) ensureSheet(ctx context.Context, name string) error {
	ss, err := e.svc.Spreadsheets.Get(e.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read spreadsheet: %w", err)
	}
	for _, s := range ss.Sheets {
		if s.Properties != nil && s.Properties.Title == name {
			return nil
		}
	}
	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: name}},
		}},
	}
	if _, err := e.svc.Spreadsheets.BatchUpdate(e.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("add sheet %q: %w", name, err)
	}
	slog.InfoContext(ctx, "Created summary sheet", "component", "sheets", "sheet", name)
	return nil
}
