package pricing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"staylock/internal/metrics"
)

// QuoteRequest asks the pricing service for a price. OccupancyRate is
// computed locally from persisted bookings and forwarded; the formula that
// turns it into money lives entirely on the pricing side.
type QuoteRequest struct {
	HotelID       int     `json:"hotel_id"`
	RoomType      string  `json:"room_type"`
	CheckIn       string  `json:"check_in"`
	CheckOut      string  `json:"check_out"`
	Quantity      int     `json:"quantity"`
	OccupancyRate float64 `json:"occupancy_rate"`
}

type Quote struct {
	Available     bool    `json:"available"`
	PricePerNight float64 `json:"price_per_night"`
	TotalPrice    float64 `json:"total_price"`
}

// Client is the pricing collaborator. Quotes are consumed opaquely.
type Client interface {
	Quote(ctx context.Context, req QuoteRequest) (*Quote, error)
}

type httpClient struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string) Client {
	return &httpClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

func (c *httpClient) Quote(ctx context.Context, req QuoteRequest) (*Quote, error) {
	start := time.Now()
	defer func() {
		metrics.RecordPricingRequest(time.Since(start).Seconds())
	}()

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode quote request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/pricing/quote", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build quote request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("pricing service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("pricing service returned %d: %s", resp.StatusCode, string(data))
	}

	var quote Quote
	if err := json.NewDecoder(resp.Body).Decode(&quote); err != nil {
		return nil, fmt.Errorf("failed to decode quote response: %w", err)
	}

	return &quote, nil
}
