package sheets

import (
	"context"
	"fmt"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// ValuesReader reads a rectangular value grid such as "表單回應 1!A1:Z1000".
type ValuesReader interface {
	ReadRange(ctx context.Context, a1Range string) ([][]interface{}, error)
}

// Client reads one spreadsheet through the Sheets API with a service account.
type Client struct {
	srv           *sheets.Service
	spreadsheetID string
}

func NewClient(ctx context.Context, credentialsJSON, spreadsheetID string) (*Client, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is required")
	}

	config, err := google.JWTConfigFromJSON([]byte(credentialsJSON), sheets.SpreadsheetsReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse service account credentials: %w", err)
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets client: %w", err)
	}

	return &Client{srv: srv, spreadsheetID: spreadsheetID}, nil
}

func (c *Client) ReadRange(ctx context.Context, a1Range string) ([][]interface{}, error) {
	resp, err := c.srv.Spreadsheets.Values.Get(c.spreadsheetID, a1Range).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", a1Range, err)
	}
	return resp.Values, nil
}

// A1 joins a sheet name and a cell range, quoting names with spaces.
func A1(sheet, cells string) string {
	if sheet == "" {
		return cells
	}
	return fmt.Sprintf("'%s'!%s", sheet, cells)
}
