package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/spigell/closai/internal/utils"
)

const (
	contentType = "application/json"
	// maxBody bounds every response read from the shop.
	maxBody = 8 << 20
)

// StatusError is returned for non-200 responses.
type StatusError struct {
	URL    string
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("bad status from %s: %s", e.URL, e.Status)
}

func (e *StatusError) temporary() bool {
	return e.Code >= http.StatusInternalServerError || e.Code == http.StatusTooManyRequests
}

// get fetches rawURL and returns the body. Temporary failures are retried.
func (c *Client) get(ctx context.Context, rawURL string, q url.Values, referer string) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		data, err := c.getOnce(ctx, rawURL, q, referer)
		if err == nil {
			return data, nil
		}
		lastErr = err

		var status *StatusError
		if !errors.As(err, &status) || !status.temporary() || attempt == c.maxRetries {
			break
		}

		delay := utils.Backoff(c.backoff, maxBackoff, attempt)
		c.logger.Debug("retrying catalog request",
			zap.String("url", rawURL),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
		)
		if err := utils.WaitFor(ctx, delay); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

func (c *Client) getOnce(ctx context.Context, rawURL string, q url.Values, referer string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	req = c.setHeaders(req, referer)
	if q != nil {
		req.URL.RawQuery = q.Encode()
	}

	resp, err := c.request(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: rawURL, Code: resp.StatusCode, Status: resp.Status}
	}

	return data, nil
}

func (c *Client) request(req *http.Request) (*http.Response, error) {
	c.logger.Debug("make request", zap.String("url", req.URL.String()))
	return c.HTTPClient.Do(req)
}

func (c *Client) setHeaders(req *http.Request, referer string) *http.Request {
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", contentType)
	if referer == "" {
		referer = c.siteURL + "/"
	}
	req.Header.Set("Referer", referer)

	return req
}

// getJSON decodes the response body into a generic value.
func (c *Client) getJSON(ctx context.Context, rawURL string, q url.Values, referer string) (any, error) {
	data, err := c.get(ctx, rawURL, q, referer)
	if err != nil {
		return nil, err
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", rawURL, err)
	}
	return v, nil
}

// decode maps loosely typed shop JSON onto a payload struct. Numbers and
// strings are converted into each other as needed.
func decode(input, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}

// field returns obj[key] when obj is a JSON object.
func field(obj any, key string) any {
	m, ok := obj.(map[string]any)
	if !ok {
		return nil
	}
	return m[key]
}
