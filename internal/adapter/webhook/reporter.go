package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/keeperlabs/market-keeper/internal/domain"
	"github.com/keeperlabs/market-keeper/internal/port"
)

var _ port.HistoryReporter = (*Reporter)(nil)

// Reporter POSTs order history to an external endpoint after each published
// snapshot.
type Reporter struct {
	url    string
	client *http.Client
}

func NewReporter(url string) *Reporter {
	return &Reporter{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

type historyPayload struct {
	Time       time.Time      `json:"time"`
	BuyOrders  []domain.Order `json:"buy_orders"`
	SellOrders []domain.Order `json:"sell_orders"`
}

func (r *Reporter) Report(ctx context.Context, ts time.Time, buys, sells []domain.Order) error {
	body, err := json.Marshal(historyPayload{Time: ts, BuyOrders: buys, SellOrders: sells})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("order history endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
