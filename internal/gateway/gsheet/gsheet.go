// Package gsheet mirrors the persisted state to a Google Spreadsheet, one
// tab per collection. It is a write-only companion medium consumed by the
// mirror worker; the store never loads from it.
package gsheet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"pocket/internal/core"
	"pocket/internal/gateway"

	goption "google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc           *gsheets.Service
	spreadsheetID string

	accountsSheet   string
	expensesSheet   string
	categoriesSheet string
}

var _ gateway.Saver = (*Client)(nil)

// NewFromEnv creates a Sheets client from environment variables.
// Required: GOOGLE_SPREADSHEET_ID. Auth comes from
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS. Optional tab names:
// GOOGLE_ACCOUNTS_SHEET_NAME, GOOGLE_EXPENSES_SHEET_NAME,
// GOOGLE_CATEGORIES_SHEET_NAME.
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:             svc,
		spreadsheetID:   spreadsheetID,
		accountsSheet:   envOr("GOOGLE_ACCOUNTS_SHEET_NAME", "Accounts"),
		expensesSheet:   envOr("GOOGLE_EXPENSES_SHEET_NAME", "Expenses"),
		categoriesSheet: envOr("GOOGLE_CATEGORIES_SHEET_NAME", "Categories"),
	}, nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// newSheetsService initializes a Sheets service using service account
// credentials from the environment.
func newSheetsService(ctx context.Context) (*gsheets.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		data, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = data
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	svc, err := gsheets.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheets.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return svc, nil
}

// Save rewrites the three tabs from the snapshot. Each tab is cleared and
// rewritten whole, header row included, so the spreadsheet always shows a
// consistent state.
func (c *Client) Save(ctx context.Context, snap core.Snapshot) error {
	if err := c.writeSheet(ctx, c.accountsSheet, accountRows(snap.Accounts)); err != nil {
		return &gateway.StorageError{Op: "mirror accounts", Err: err}
	}
	if err := c.writeSheet(ctx, c.expensesSheet, expenseRows(snap.Expenses)); err != nil {
		return &gateway.StorageError{Op: "mirror expenses", Err: err}
	}
	if err := c.writeSheet(ctx, c.categoriesSheet, categoryRows(snap.Categories)); err != nil {
		return &gateway.StorageError{Op: "mirror categories", Err: err}
	}

	slog.InfoContext(ctx, "State mirrored to Google Sheets",
		"spreadsheet_id", c.spreadsheetID,
		"accounts", len(snap.Accounts),
		"expenses", len(snap.Expenses),
		"categories", len(snap.Categories))
	return nil
}

func (c *Client) writeSheet(ctx context.Context, sheet string, rows [][]interface{}) error {
	rng := fmt.Sprintf("%s!A:Z", sheet)
	_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheets.ClearValuesRequest{}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear %s: %w", sheet, err)
	}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, fmt.Sprintf("%s!A1", sheet), &gsheets.ValueRange{
		Values: rows,
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", sheet, err)
	}
	return nil
}

func accountRows(accounts []core.Account) [][]interface{} {
	rows := [][]interface{}{{"ID", "Name", "Amount", "Due date", "Category", "Paid", "Created at"}}
	for _, a := range accounts {
		rows = append(rows, []interface{}{
			a.ID, a.Name, a.Amount.String(), a.DueDate.String(), a.Category, a.Paid, a.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		})
	}
	return rows
}

func expenseRows(expenses []core.Expense) [][]interface{} {
	rows := [][]interface{}{{"ID", "Name", "Amount", "Date", "Category", "Created at"}}
	for _, e := range expenses {
		rows = append(rows, []interface{}{
			e.ID, e.Name, e.Amount.String(), e.Date.String(), e.Category, e.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		})
	}
	return rows
}

func categoryRows(categories []core.Category) [][]interface{} {
	rows := [][]interface{}{{"ID", "Name", "Color"}}
	for _, c := range categories {
		rows = append(rows, []interface{}{c.ID, c.Name, c.Color})
	}
	return rows
}
