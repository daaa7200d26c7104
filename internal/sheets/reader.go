package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Veraticus/summon-almanac/internal/common"
	"github.com/Veraticus/summon-almanac/internal/service"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// GridSource returns the rows of one spreadsheet tab.
type GridSource interface {
	Grid(ctx context.Context, tab string) ([][]Cell, error)
}

// Reader reads the banner and servant tabs.
type Reader struct {
	source GridSource
	logger *slog.Logger
	config Config
}

// NewReader creates a reader backed by the Google Sheets API.
func NewReader(ctx context.Context, config Config, logger *slog.Logger) (*Reader, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	srv, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return NewReaderWithSource(&apiSource{service: srv, spreadsheetID: config.SpreadsheetID}, config, logger), nil
}

// NewReaderWithSource creates a reader over any grid source.
func NewReaderWithSource(source GridSource, config Config, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{source: source, config: config, logger: logger}
}

// Read fetches both tabs and builds the banner and servant rows.
func (r *Reader) Read(ctx context.Context) (*Export, error) {
	banners, err := r.grid(ctx, BannerTab)
	if err != nil {
		return nil, err
	}
	servants, err := r.grid(ctx, ServantTab)
	if err != nil {
		return nil, err
	}

	out := &Export{}
	if out.Banners, err = BuildBannerRows(banners); err != nil {
		return nil, fmt.Errorf("banner tab: %w", err)
	}
	if out.Servants, err = BuildServantRows(servants); err != nil {
		return nil, fmt.Errorf("servant tab: %w", err)
	}

	r.logger.Info("read upcoming banner sheet",
		"banners", len(out.Banners),
		"servants", len(out.Servants))
	return out, nil
}

// grid fetches a tab with retry and drops its header row.
func (r *Reader) grid(ctx context.Context, tab string) ([][]Cell, error) {
	retryOpts := service.RetryOptions{
		MaxAttempts:  r.config.RetryAttempts,
		InitialDelay: r.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	var rows [][]Cell
	err := common.WithRetry(ctx, func() error {
		var fetchErr error
		rows, fetchErr = r.source.Grid(ctx, tab)
		return fetchErr
	}, retryOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to read tab %s: %w", tab, err)
	}

	if len(rows) == 0 {
		return nil, nil
	}
	return rows[1:], nil
}

type apiSource struct {
	service       *sheets.Service
	spreadsheetID string
}

func (s *apiSource) Grid(ctx context.Context, tab string) ([][]Cell, error) {
	resp, err := s.service.Spreadsheets.Get(s.spreadsheetID).
		Ranges(tab).
		IncludeGridData(true).
		Context(ctx).
		Do()
	if err != nil {
		return nil, &common.RetryableError{Err: err, Retryable: true}
	}
	if len(resp.Sheets) == 0 || len(resp.Sheets[0].Data) == 0 {
		return nil, fmt.Errorf("tab %s: %w", tab, common.ErrNotFound)
	}

	data := resp.Sheets[0].Data[0].RowData
	rows := make([][]Cell, len(data))
	for i, rd := range data {
		cells := make([]Cell, len(rd.Values))
		for j, v := range rd.Values {
			cells[j] = Cell{Value: v.FormattedValue, Hyperlink: v.Hyperlink}
		}
		rows[i] = cells
	}
	return rows, nil
}

// createSheetsService creates a read-only Google Sheets API service.
func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		// Use service account authentication
		jsonKey, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsReadonlyScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}

		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		// Use OAuth2 authentication
		client := oauthConfig(config.ClientID, config.ClientSecret, "")
		token := &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		}
		tokenSource = client.TokenSource(ctx, token)
	}

	httpClient := oauth2.NewClient(ctx, tokenSource)
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return srv, nil
}
