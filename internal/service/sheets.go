package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"roadreport/internal/config"
)

// SheetClient appends completed records to a remote spreadsheet through the
// Sheets v4 values:append endpoint. One attempt per call, bounded timeout,
// no retry: a failed append is reported to the caller as a retryable
// submission error and must never be treated as success.
type SheetClient struct {
	baseURL    string
	sheetID    string
	sheetRange string
	token      string
	httpClient *http.Client
}

// NewSheetClient creates a new spreadsheet client.
func NewSheetClient(cfg *config.Config) *SheetClient {
	if cfg.SheetToken == "" {
		log.Println("Warning: SHEETS_ACCESS_TOKEN not set")
	}
	return &SheetClient{
		baseURL:    cfg.SheetsURL,
		sheetID:    cfg.SheetID,
		sheetRange: cfg.SheetRange,
		token:      cfg.SheetToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// IsConfigured returns true if a spreadsheet and token are set.
func (c *SheetClient) IsConfigured() bool {
	return c.sheetID != "" && c.token != ""
}

// AppendRow appends one ordered row of string-coerced values.
func (c *SheetClient) AppendRow(ctx context.Context, row []string) error {
	if !c.IsConfigured() {
		return fmt.Errorf("spreadsheet not configured")
	}

	values := make([]interface{}, len(row))
	for i, v := range row {
		values[i] = v
	}
	payload, err := json.Marshal(map[string]interface{}{
		"values": [][]interface{}{values},
	})
	if err != nil {
		return fmt.Errorf("failed to encode row: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/values/%s:append?valueInputOption=RAW",
		c.baseURL, c.sheetID, url.PathEscape(c.sheetRange))

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	log.Printf("[Sheets] POST append, %d columns", len(row))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sheet append failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		log.Printf("[Sheets] ERROR: API returned %d: %s", resp.StatusCode, string(body))
		return fmt.Errorf("sheet API error %d", resp.StatusCode)
	}

	log.Printf("[Sheets] Row appended")
	return nil
}
