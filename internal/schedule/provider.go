package schedule

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/yegors/flightboard/internal/config"
	"github.com/yegors/flightboard/pkg/logger"
)

// NewProvider builds the provider named by cfg.SourceType
func NewProvider(cfg config.ScheduleConfig, log *logger.Logger) (Provider, error) {
	switch cfg.SourceType {
	case "http":
		return NewHTTPProvider(cfg, log), nil
	case "file":
		return NewFileProvider(cfg.FilePath), nil
	default:
		return nil, fmt.Errorf("unknown schedule source type: %s", cfg.SourceType)
	}
}

// HTTPProvider fetches the arrivals and departures panels as JSON rows
type HTTPProvider struct {
	httpClient    *http.Client
	arrivalsURL   string
	departuresURL string
	userAgent     string
	limiter       *rate.Limiter
	logger        *logger.Logger
}

// NewHTTPProvider creates a provider for the configured panel URLs
func NewHTTPProvider(cfg config.ScheduleConfig, log *logger.Logger) *HTTPProvider {
	timeout := time.Duration(cfg.RequestTimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	// Burst of 2 lets both panels go out together
	limiter := rate.NewLimiter(rate.Inf, 2)
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerMinute/60.0), 2)
	}

	return &HTTPProvider{
		httpClient:    &http.Client{Timeout: timeout},
		arrivalsURL:   cfg.ArrivalsURL,
		departuresURL: cfg.DeparturesURL,
		userAgent:     cfg.UserAgent,
		limiter:       limiter,
		logger:        log.Named("schedule-http"),
	}
}

// FetchSchedule fetches both panels concurrently. Either failing fails the fetch.
func (p *HTTPProvider) FetchSchedule(ctx context.Context, homeAirport string) ([]Row, error) {
	var arrivals, departures []Row

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		rows, err := p.fetchPanel(ctx, p.arrivalsURL, homeAirport, Arrival)
		arrivals = rows
		return err
	})
	eg.Go(func() error {
		rows, err := p.fetchPanel(ctx, p.departuresURL, homeAirport, Departure)
		departures = rows
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	p.logger.Debug("Fetched schedule panels",
		logger.Int("arrivals", len(arrivals)),
		logger.Int("departures", len(departures)))

	return append(arrivals, departures...), nil
}

func (p *HTTPProvider) fetchPanel(ctx context.Context, urlTmpl, airport string, dir Direction) ([]Row, error) {
	if urlTmpl == "" {
		return nil, nil
	}
	urlStr := urlTmpl
	if strings.Contains(urlTmpl, "%s") {
		urlStr = fmt.Sprintf(urlTmpl, airport)
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", dir, err)
	}
	req.Header.Set("Accept", "application/json")
	if p.userAgent != "" {
		req.Header.Set("User-Agent", p.userAgent)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s panel: %w", dir, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected %s panel status code: %d", dir, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s panel: %w", dir, err)
	}
	rows, err := decodeRows(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s panel: %w", dir, err)
	}
	for i := range rows {
		if rows[i].Direction == "" {
			rows[i].Direction = dir
		}
	}
	return rows, nil
}

// FileProvider reads rows from a JSON file on every fetch
type FileProvider struct {
	path string
}

// NewFileProvider creates a provider backed by a rows file
func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: path}
}

// FetchSchedule reads the file. Every row must carry its direction.
func (p *FileProvider) FetchSchedule(ctx context.Context, homeAirport string) ([]Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schedule file: %w", err)
	}
	rows, err := decodeRows(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse schedule file %s: %w", p.path, err)
	}
	return rows, nil
}

// decodeRows accepts a bare array or an object with a "rows" array
func decodeRows(data []byte) ([]Row, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	var rows []Row
	if data[0] == '[' {
		err := json.Unmarshal(data, &rows)
		return rows, err
	}

	var wrapped struct {
		Rows []Row `json:"rows"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, err
	}
	return wrapped.Rows, nil
}
