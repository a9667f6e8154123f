package spreadsheet

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/botivate/sheetsync/pkg/circuitbreaker"
	"github.com/botivate/sheetsync/pkg/retry"
	"golang.org/x/oauth2/google"
	gsheets "gopkg.in/Iwark/spreadsheet.v2"
)

// Fetcher is the subset of the Sheets API the source needs. *gsheets.Service satisfies it.
type Fetcher interface {
	FetchSpreadsheet(id string, opts ...gsheets.FetchSpreadsheetOption) (gsheets.Spreadsheet, error)
}

var _ Fetcher = (*gsheets.Service)(nil)

// GoogleSheetsSource reads a hosted Google spreadsheet through a service account
type GoogleSheetsSource struct {
	spreadsheetID string
	fetcher       Fetcher
	breaker       *circuitbreaker.Breaker
	retryPolicy   retry.Policy
}

// NewGoogleSheetsSource authenticates with a service-account key file
func NewGoogleSheetsSource(ctx context.Context, spreadsheetID, credentialsFile string) (*GoogleSheetsSource, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read google credentials: %w", err)
	}

	conf, err := google.JWTConfigFromJSON(data, gsheets.Scope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse google credentials: %w", err)
	}

	return NewGoogleSheetsSourceWithClient(spreadsheetID, conf.Client(ctx)), nil
}

// NewGoogleSheetsSourceWithClient uses an already-authorized HTTP client
func NewGoogleSheetsSourceWithClient(spreadsheetID string, client *http.Client) *GoogleSheetsSource {
	return NewGoogleSheetsSourceWithFetcher(spreadsheetID, gsheets.NewServiceWithClient(client))
}

// NewGoogleSheetsSourceWithFetcher is used by tests to stub the Sheets API
func NewGoogleSheetsSourceWithFetcher(spreadsheetID string, fetcher Fetcher) *GoogleSheetsSource {
	return &GoogleSheetsSource{
		spreadsheetID: spreadsheetID,
		fetcher:       fetcher,
		breaker:       circuitbreaker.New("google-sheets", 30*time.Second),
		retryPolicy:   retry.SheetsAPI(),
	}
}

// Name implements Source
func (s *GoogleSheetsSource) Name() string {
	return "gsheets"
}

// Sheets implements Source
func (s *GoogleSheetsSource) Sheets(ctx context.Context) ([]Sheet, error) {
	ss, err := retry.DoWithResult(ctx, s.retryPolicy, "gsheets.FetchSpreadsheet", func() (gsheets.Spreadsheet, error) {
		return circuitbreaker.Execute(s.breaker, func() (gsheets.Spreadsheet, error) {
			return s.fetcher.FetchSpreadsheet(s.spreadsheetID)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch spreadsheet: %w", err)
	}

	sheets := make([]Sheet, 0, len(ss.Sheets))
	for _, sh := range ss.Sheets {
		sheets = append(sheets, Sheet{
			Name: sh.Properties.Title,
			Rows: gridRows(sh.Rows),
		})
	}
	return sheets, nil
}

// gridRows trims the padding the API adds around a sheet's data range so the
// grid matches what the xlsx reader returns for the same content.
func gridRows(cells [][]gsheets.Cell) [][]any {
	rows := make([][]string, 0, len(cells))
	for _, r := range cells {
		values := make([]string, len(r))
		for i, c := range r {
			values[i] = c.Value
		}

		end := len(values)
		for end > 0 && values[end-1] == "" {
			end--
		}
		rows = append(rows, values[:end])
	}

	end := len(rows)
	for end > 0 && len(rows[end-1]) == 0 {
		end--
	}
	return parseGrid(rows[:end])
}
