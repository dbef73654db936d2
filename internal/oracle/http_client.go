package oracle

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// HTTPClient fetches prices from a Hermes-style oracle HTTP endpoint.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) GetPriceUpdateData(ctx context.Context, feedIDs []string) ([][]byte, error) {
	if len(feedIDs) == 0 {
		return nil, fmt.Errorf("no feed ids requested")
	}

	var payload []string
	if err := c.getJSON(ctx, "/api/latest_vaas", feedIDs, &payload); err != nil {
		return nil, fmt.Errorf("fetch price update data: %w", err)
	}

	updates := make([][]byte, 0, len(payload))
	for _, encoded := range payload {
		raw, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("decode price update payload: %w", err)
		}
		updates = append(updates, raw)
	}
	return updates, nil
}

type priceFeedResponse struct {
	ID    string `json:"id"`
	Price struct {
		Price       string `json:"price"`
		Conf        string `json:"conf"`
		Expo        int32  `json:"expo"`
		PublishTime int64  `json:"publish_time"`
	} `json:"price"`
}

func (c *HTTPClient) GetLatestPrice(ctx context.Context, feedID string) (Quote, error) {
	var feeds []priceFeedResponse
	if err := c.getJSON(ctx, "/api/latest_price_feeds", []string{feedID}, &feeds); err != nil {
		return Quote{}, fmt.Errorf("fetch latest price: %w", err)
	}
	if len(feeds) == 0 {
		return Quote{}, fmt.Errorf("no price published for feed %s", feedID)
	}

	feed := feeds[0]
	price, err := strconv.ParseInt(feed.Price.Price, 10, 64)
	if err != nil {
		return Quote{}, fmt.Errorf("parse price %q: %w", feed.Price.Price, err)
	}
	conf, err := strconv.ParseUint(feed.Price.Conf, 10, 64)
	if err != nil {
		return Quote{}, fmt.Errorf("parse confidence %q: %w", feed.Price.Conf, err)
	}

	return Quote{
		FeedID:      feed.ID,
		Price:       price,
		Expo:        feed.Price.Expo,
		Conf:        conf,
		PublishTime: time.Unix(feed.Price.PublishTime, 0).UTC(),
	}, nil
}

func (c *HTTPClient) getJSON(ctx context.Context, path string, feedIDs []string, out interface{}) error {
	query := url.Values{}
	for _, id := range feedIDs {
		query.Add("ids[]", id)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("oracle responded %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
