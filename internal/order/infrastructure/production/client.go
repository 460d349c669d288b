package production

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/salaheddinesamid/agrisales-back/internal/order/application"
)

// Config carries the production-system settings; they are injected at
// construction rather than read from process-wide state.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client notifies the external production scheduling system that an order has
// been confirmed. Any network failure or non-2xx response is fatal to the
// caller's transaction.
type Client struct {
	log  *slog.Logger
	http *http.Client
	cfg  Config
}

func NewClient(log *slog.Logger, cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		log:  log,
		http: &http.Client{Timeout: cfg.Timeout},
		cfg:  cfg,
	}
}

func (c *Client) Push(ctx context.Context, req application.ProductionRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/production/push", bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.log.Error("production push failed", "order_id", req.OrderID, "err", err)
		return fmt.Errorf("%w: %v", application.ErrProductionUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.log.Error("production push rejected",
			"order_id", req.OrderID, "status", resp.StatusCode, "body", string(snippet))
		return fmt.Errorf("%w: status %d", application.ErrProductionRejected, resp.StatusCode)
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	c.log.Info("order pushed to production", "order_id", req.OrderID, "working_hours", req.WorkingHours)
	return nil
}
