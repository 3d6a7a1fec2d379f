package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/sirupsen/logrus"
)

// Unit is the native granularity of the price feeds: one-billionth of a
// base unit.
const Unit int64 = 1_000_000_000

const (
	primaryFeedURL = "https://api.fastfeed.io/v1/price"
	altFeedAURL    = "https://feeds.chainrate.org/price"
	altFeedBURL    = "https://openfeed.network/api/price"

	defaultFeedRefresh = 60 * time.Second
	defaultFeedExpiry  = 10 * time.Minute
)

// Source supplies the latest "fast" reference price in native units. ok is
// false when no fresh sample is available, which callers treat as the signal
// to fall back, never as an error.
type Source interface {
	FastPrice() (int64, bool)
}

// SourceConfig selects at most one oracle source. The selection is resolved
// once at construction; only the data from the selected source varies later.
type SourceConfig struct {
	PrimaryAPIKey string // primary provider, requires an API key
	UseAltA       bool   // alternate provider A
	UseAltB       bool   // alternate provider B
	FixedPrice    int64  // manual value in native units, used as-is

	RefreshInterval time.Duration
	Expiry          time.Duration
}

func (c SourceConfig) selected() int {
	n := 0
	if c.PrimaryAPIKey != "" {
		n++
	}
	if c.UseAltA {
		n++
	}
	if c.UseAltB {
		n++
	}
	if c.FixedPrice > 0 {
		n++
	}
	return n
}

// NewSource resolves the configured oracle source. With nothing configured
// it returns a nil Source, meaning the time-based fallback always applies.
// Polling sources start fetching under ctx immediately.
func NewSource(ctx context.Context, cfg SourceConfig) (Source, error) {
	if cfg.selected() > 1 {
		return nil, fmt.Errorf("pricing: oracle sources are mutually exclusive, %d configured", cfg.selected())
	}
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = defaultFeedRefresh
	}
	if cfg.Expiry <= 0 {
		cfg.Expiry = defaultFeedExpiry
	}

	switch {
	case cfg.PrimaryAPIKey != "":
		c := newOracleClient(primaryFeedURL, cfg.PrimaryAPIKey, cfg.RefreshInterval, cfg.Expiry)
		c.start(ctx)
		return c, nil
	case cfg.UseAltA:
		c := newOracleClient(altFeedAURL, "", cfg.RefreshInterval, cfg.Expiry)
		c.start(ctx)
		return c, nil
	case cfg.UseAltB:
		c := newOracleClient(altFeedBURL, "", cfg.RefreshInterval, cfg.Expiry)
		c.start(ctx)
		return c, nil
	case cfg.FixedPrice > 0:
		return FixedSource{Price: cfg.FixedPrice}, nil
	default:
		return nil, nil
	}
}

// FixedSource is a manual value; its sample is always fresh.
type FixedSource struct {
	Price int64
}

func (s FixedSource) FastPrice() (int64, bool) {
	return s.Price, true
}

// oracleClient polls an HTTP price feed on a fixed interval and caches the
// last sample. Fetch failures back off exponentially and never surface to
// callers; they only age the sample out.
type oracleClient struct {
	url          string
	apiKey       string
	client       *http.Client
	refreshEvery time.Duration
	expiry       time.Duration
	log          *logrus.Entry

	mu        sync.RWMutex
	fast      int64
	fetchedAt time.Time
}

func newOracleClient(url, apiKey string, refreshEvery, expiry time.Duration) *oracleClient {
	return &oracleClient{
		url:          url,
		apiKey:       apiKey,
		client:       &http.Client{Timeout: 10 * time.Second},
		refreshEvery: refreshEvery,
		expiry:       expiry,
		log:          logrus.WithField("component", "price_feed").WithField("url", url),
	}
}

func (c *oracleClient) start(ctx context.Context) {
	go c.poll(ctx)
}

func (c *oracleClient) poll(ctx context.Context) {
	boff := backoff.NewExponentialBackOff()
	for {
		wait := c.refreshEvery
		if err := c.fetchOnce(ctx); err != nil {
			wait = boff.NextBackOff()
			c.log.WithError(err).WithField("retry_in", wait).Warn("price feed fetch failed")
		} else {
			boff.Reset()
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}

type feedResponse struct {
	Fast int64 `json:"fast"`
}

func (c *oracleClient) fetchOnce(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return err
	}
	if c.apiKey != "" {
		q := req.URL.Query()
		q.Set("api-key", c.apiKey)
		req.URL.RawQuery = q.Encode()
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("price feed returned status %d", resp.StatusCode)
	}

	var body feedResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return err
	}
	if body.Fast <= 0 {
		return fmt.Errorf("price feed returned non-positive fast price %d", body.Fast)
	}

	c.mu.Lock()
	c.fast = body.Fast
	c.fetchedAt = time.Now()
	c.mu.Unlock()
	return nil
}

func (c *oracleClient) FastPrice() (int64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.fetchedAt.IsZero() || time.Since(c.fetchedAt) > c.expiry {
		return 0, false
	}
	return c.fast, true
}
