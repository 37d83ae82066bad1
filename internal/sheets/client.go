package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/me/sheetsync/pkg/model"
)

// DefaultSheet is read when the caller names no sheet.
const DefaultSheet = "Sheet1"

// ServiceFactory builds a Sheets service authorised by creds.
type ServiceFactory func(ctx context.Context, creds model.Credentials) (*sheets.Service, error)

// ServiceAccountFactory authenticates with a service-account key using the
// read-only spreadsheets scope.
func ServiceAccountFactory(ctx context.Context, creds model.Credentials) (*sheets.Service, error) {
	if missing := creds.Missing(); len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", ErrInvalidCredentials, strings.Join(missing, ", "))
	}
	key, err := creds.JSON()
	if err != nil {
		return nil, fmt.Errorf("encode credentials: %w", err)
	}
	cfg, err := google.JWTConfigFromJSON(key, sheets.SpreadsheetsReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	return sheets.NewService(ctx, option.WithTokenSource(cfg.TokenSource(ctx)))
}

// Option configures a Client.
type Option func(*Client)

// WithDefaultSheet sets the sheet read when none is given.
func WithDefaultSheet(name string) Option {
	return func(c *Client) {
		if name != "" {
			c.defaultSheet = name
		}
	}
}

// WithRateLimiter replaces the default limiter.
func WithRateLimiter(l *RateLimiter) Option {
	return func(c *Client) { c.limiter = l }
}

// WithServiceFactory replaces how Sheets services are built. Tests use it to
// point the client at an httptest server.
func WithServiceFactory(f ServiceFactory) Option {
	return func(c *Client) { c.newService = f }
}

// Client fetches sheet contents. It is safe for concurrent use.
type Client struct {
	defaultSheet string
	limiter      *RateLimiter
	newService   ServiceFactory
	logger       *slog.Logger
}

// NewClient creates a Client.
func NewClient(logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		defaultSheet: DefaultSheet,
		limiter:      NewRateLimiter(DefaultRateLimit),
		newService:   ServiceAccountFactory,
		logger:       logger.With("component", "sheets"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch reads the whole of sheet in spreadsheetID and returns it as a Table.
// All failures are returned as *model.FetchError.
func (c *Client) Fetch(ctx context.Context, spreadsheetID string, creds model.Credentials, sheet string) (*model.Table, error) {
	if strings.TrimSpace(sheet) == "" {
		sheet = c.defaultSheet
	}
	fail := func(err error) error {
		return &model.FetchError{SourceID: spreadsheetID, Sheet: sheet, Err: err}
	}
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, fail(fmt.Errorf("spreadsheet id is required"))
	}

	svc, err := c.newService(ctx, creds)
	if err != nil {
		return nil, fail(err)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fail(err)
	}

	resp, err := svc.Spreadsheets.Values.Get(spreadsheetID, sheet).Context(ctx).Do()
	if err != nil {
		if IsRateLimited(err) {
			c.limiter.RecordRateLimitError(retryAfter(err))
			c.logger.Warn("sheets rate limited", "spreadsheet_id", spreadsheetID)
		}
		return nil, fail(WrapError(err))
	}

	table, err := ToTable(resp.Values)
	if err != nil {
		return nil, fail(err)
	}
	c.logger.Debug("sheet fetched", "spreadsheet_id", spreadsheetID, "sheet", sheet,
		"rows", table.Len(), "columns", len(table.Columns))
	return table, nil
}
