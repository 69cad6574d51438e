// Package retrieval fetches external market and emissions series over HTTP.
// It is a collaborator of the scheduling engine: fetched data is parsed into
// plain series and handed over; the engine itself never performs network I/O.
package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	corelogger "github.com/heatflex/heatflex/core/logger"
	"github.com/heatflex/heatflex/core/timeseries"
	"github.com/heatflex/heatflex/infra/logger"
	"github.com/heatflex/heatflex/internal/seriesio"
)

// Config describes a market-data endpoint. The URL template receives the
// commodity identifier and a start timestamp in unix milliseconds via
// fmt.Sprintf, e.g. "https://host/chart_data/%d/DE/%d_DE_quarterhour_%d.json".
type Config struct {
	URLTemplate    string      `json:"url_template"`
	TimeoutSeconds int         `json:"timeout_seconds"`
	MaxAttempts    int         `json:"max_attempts"`
	FallbackStarts []time.Time `json:"fallback_starts"`
}

// Client retrieves commodity series with bounded retries. When a start
// timestamp yields no published slice, the configured fallback starts are
// tried in order until the attempt budget is spent.
type Client struct {
	cfg    Config
	client *http.Client
	log    corelogger.Logger
}

// New creates a retrieval client.
func New(cfg Config) *Client {
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = 10
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		log:    logger.New("retrieval", "info"),
	}
}

type chartPayload struct {
	Series [][2]*float64 `json:"series"`
}

// FetchSeries downloads the series for one commodity. It tries the given
// start first, then each fallback start, stopping after MaxAttempts requests.
func (c *Client) FetchSeries(ctx context.Context, name string, commodityID int, start time.Time) (timeseries.Series, error) {
	starts := append([]time.Time{start}, c.cfg.FallbackStarts...)
	if len(starts) > c.cfg.MaxAttempts {
		starts = starts[:c.cfg.MaxAttempts]
	}

	var lastErr error
	for i, s := range starts {
		series, err := c.fetchOnce(ctx, name, commodityID, s)
		if err == nil {
			return series, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return timeseries.Series{}, ctx.Err()
		}
		c.log.Warnf("fetch %s attempt %d/%d failed: %v", name, i+1, len(starts), err)
	}
	return timeseries.Series{}, fmt.Errorf("retrieval: %s: all %d attempts failed: %w", name, len(starts), lastErr)
}

func (c *Client) fetchOnce(ctx context.Context, name string, commodityID int, start time.Time) (timeseries.Series, error) {
	url := fmt.Sprintf(c.cfg.URLTemplate, commodityID, commodityID, start.UnixMilli())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return timeseries.Series{}, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return timeseries.Series{}, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return timeseries.Series{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return timeseries.Series{}, err
	}
	var payload chartPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return timeseries.Series{}, fmt.Errorf("decode %s: %w", name, err)
	}
	if len(payload.Series) == 0 {
		return timeseries.Series{}, fmt.Errorf("empty series for commodity %d", commodityID)
	}

	out := timeseries.Series{Name: name}
	for _, row := range payload.Series {
		if row[0] == nil || row[1] == nil {
			continue
		}
		out.Points = append(out.Points, timeseries.Point{
			Time:  time.UnixMilli(int64(*row[0])).UTC(),
			Value: *row[1],
		})
	}
	if len(out.Points) == 0 {
		return timeseries.Series{}, fmt.Errorf("series for commodity %d has no usable rows", commodityID)
	}
	return out, nil
}

// FetchCSV downloads a two-column CSV export (timestamp,value) and parses it
// into a series. Rows with non-numeric values after the header are rejected.
func (c *Client) FetchCSV(ctx context.Context, url, name string) (timeseries.Series, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return timeseries.Series{}, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return timeseries.Series{}, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return timeseries.Series{}, fmt.Errorf("retrieval: %s: unexpected status %d", name, resp.StatusCode)
	}
	return seriesio.Read(io.LimitReader(resp.Body, 32<<20), name, false)
}
