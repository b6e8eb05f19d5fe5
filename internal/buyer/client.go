package buyer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client is the synchronous lookup used by the checkout service to verify a
// buyer before committing a sale. A 404 maps to ErrNotFound; any other
// non-success status is a hard error. Requests are bounded by the client
// timeout rather than blocking forever.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 5 * time.Second},
	}
}

func (c *Client) FindByID(ctx context.Context, id int64) (*Buyer, error) {
	url := fmt.Sprintf("%s/buyers/%d", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("buyer lookup: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("buyer lookup: unexpected status %d", resp.StatusCode)
	}

	var b Buyer
	if err := json.NewDecoder(resp.Body).Decode(&b); err != nil {
		return nil, fmt.Errorf("buyer lookup: decode: %w", err)
	}
	return &b, nil
}
