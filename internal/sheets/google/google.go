// Package google backs the spreadsheet port with the Google Sheets API. Each
// record kind gets its own year-prefixed tab (e.g. "2025 Payments") so annual
// books stay separate without manual sheet rotation.
package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"clubledger/internal/core"
	ports "clubledger/internal/sheets"
)

type Client struct {
	svc            *gsheet.Service
	spreadsheetID  string
	paymentsSheet  string
	expensesSheet  string
	donationsSheet string
}

var _ ports.LedgerWriter = (*Client)(nil)

// NewFromEnv creates a Sheets client from environment variables.
// Required: GOOGLE_SPREADSHEET_ID plus credentials, either a service account
// (GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS) or an OAuth client with a saved token
// (GOOGLE_OAUTH_CLIENT_JSON or GOOGLE_OAUTH_CLIENT_FILE plus
// GOOGLE_OAUTH_TOKEN_FILE, obtained with cmd/oauth-init).
// Optional tab base names: GOOGLE_PAYMENTS_SHEET_NAME (default "Payments"),
// GOOGLE_EXPENSES_SHEET_NAME (default "Expenses"),
// GOOGLE_DONATIONS_SHEET_NAME (default "Donations").
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	year := time.Now().Year()
	return &Client{
		svc:            svc,
		spreadsheetID:  spreadsheetID,
		paymentsSheet:  yearPrefixedName(envOr("GOOGLE_PAYMENTS_SHEET_NAME", "Payments"), year),
		expensesSheet:  yearPrefixedName(envOr("GOOGLE_EXPENSES_SHEET_NAME", "Expenses"), year),
		donationsSheet: yearPrefixedName(envOr("GOOGLE_DONATIONS_SHEET_NAME", "Donations"), year),
	}, nil
}

// newSheetsService initializes a Sheets service. Service account credentials
// take precedence; an OAuth client with a saved user token is the fallback.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return newOAuthSheetsService(ctx)
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// newOAuthSheetsService authenticates with an OAuth client configuration and
// a user token previously saved by cmd/oauth-init.
func newOAuthSheetsService(ctx context.Context) (*gsheet.Service, error) {
	clientJSON := strings.TrimSpace(os.Getenv("GOOGLE_OAUTH_CLIENT_JSON"))
	clientFile := strings.TrimSpace(os.Getenv("GOOGLE_OAUTH_CLIENT_FILE"))

	var b []byte
	var err error
	switch {
	case clientJSON != "":
		b = []byte(clientJSON)
	case clientFile != "":
		b, err = os.ReadFile(clientFile)
		if err != nil {
			return nil, fmt.Errorf("read oauth client file: %w", err)
		}
	default:
		return nil, errors.New("missing credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, GOOGLE_APPLICATION_CREDENTIALS, or GOOGLE_OAUTH_CLIENT_JSON/GOOGLE_OAUTH_CLIENT_FILE)")
	}

	cfg, err := googleoauth.ConfigFromJSON(b, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse oauth client config: %w", err)
	}

	tokenFile := envOr("GOOGLE_OAUTH_TOKEN_FILE", "token.json")
	tokenBytes, err := os.ReadFile(tokenFile)
	if err != nil {
		return nil, fmt.Errorf("read oauth token file %s (run cmd/oauth-init first): %w", tokenFile, err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(tokenBytes, &token); err != nil {
		return nil, fmt.Errorf("parse oauth token file %s: %w", tokenFile, err)
	}

	service, err := gsheet.NewService(ctx,
		goption.WithHTTPClient(cfg.Client(ctx, &token)))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// AppendPayment writes one payment row: date, member, week, year, amount.
func (c *Client) AppendPayment(ctx context.Context, p core.Payment) error {
	return c.appendRow(ctx, c.paymentsSheet, []any{
		p.CreatedAt.UTC().Format("2006-01-02"),
		p.Member.Name,
		p.WeekNumber,
		p.Year,
		p.Amount,
	})
}

// AppendExpense writes one expense row: date, description, amount.
func (c *Client) AppendExpense(ctx context.Context, e core.Expense) error {
	return c.appendRow(ctx, c.expensesSheet, []any{
		e.CreatedAt.UTC().Format("2006-01-02"),
		e.Description,
		e.Amount,
	})
}

// AppendDonation writes one donation row: date, donor, amount.
func (c *Client) AppendDonation(ctx context.Context, d core.Donation) error {
	return c.appendRow(ctx, c.donationsSheet, []any{
		d.CreatedAt.UTC().Format("2006-01-02"),
		d.DonorName,
		d.Amount,
	})
}

func (c *Client) appendRow(ctx context.Context, sheet string, row []any) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A:A", sheet)
	vr := &gsheet.ValueRange{Values: [][]any{row}}
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append row to sheet %s: %w", sheet, err)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// yearPrefixedName builds "<year> <base>" unless base already starts with a
// year prefix.
func yearPrefixedName(base string, year int) string {
	prefix := fmt.Sprintf("%d ", year)
	if strings.HasPrefix(base, prefix) {
		return base
	}
	return prefix + base
}
