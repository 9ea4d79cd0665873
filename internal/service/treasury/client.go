// Package treasury fetches the US Treasury daily yield-curve CSV. It is the
// feed-fetch collaborator at the feed source boundary: it returns opaque raw
// bytes and leaves parsing to the engine.
package treasury

import (
	"context"
	"fmt"
	"time"

	drepo "RateSim/internal/domain/repository"
	xhttp "RateSim/pkg/http"
)

// DefaultURLTemplate is the Treasury daily-rates CSV endpoint; %d is the year.
const DefaultURLTemplate = "https://home.treasury.gov/resource-center/data-chart-center/interest-rates/daily-treasury-rates.csv/%d/all?type=daily_treasury_yield_curve&field_tdr_date_value=%d&_format=csv"

// defaultUserAgent mimics a browser; the Treasury endpoint rejects bare clients.
const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Client implements a FeedSource backed by the Treasury daily-rates endpoint.
type Client struct {
	id          string
	urlTemplate string
	userAgent   string
	http        *xhttp.Client
	now         func() time.Time
}

// New creates a Treasury feed source. An empty urlTemplate or userAgent
// selects the defaults.
func New(id, urlTemplate, userAgent string, timeout time.Duration) drepo.FeedSource {
	if urlTemplate == "" {
		urlTemplate = DefaultURLTemplate
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Client{
		id:          id,
		urlTemplate: urlTemplate,
		userAgent:   userAgent,
		http:        xhttp.NewClient(xhttp.WithTimeout(timeout)),
		now:         time.Now,
	}
}

func (c *Client) ID() string { return c.id }

// Fetch downloads the current year's CSV, falling back to the previous year
// when the current one has no file yet (early January).
func (c *Client) Fetch(ctx context.Context) ([]byte, error) {
	year := c.now().Year()
	var lastErr error
	for _, y := range []int{year, year - 1} {
		var body []byte
		err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
			Method:  xhttp.MethodGet,
			URL:     fmt.Sprintf(c.urlTemplate, y, y),
			Headers: map[string]string{"User-Agent": c.userAgent},
		}, &body)
		if err == nil {
			return body, nil
		}
		lastErr = fmt.Errorf("treasury fetch %d: %w", y, err)
	}
	return nil, lastErr
}
