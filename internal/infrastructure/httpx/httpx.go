package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ErrNotFound marks a 404 response, for callers that treat absence as a
// normal outcome rather than a failure.
var ErrNotFound = errors.New("httpx: not found")

// Client is a small GET helper with exponential backoff on transient
// failures. Server errors and transport errors are retried; 4xx and decode
// errors are permanent.
type Client struct {
	HTTP      *http.Client
	UserAgent string
}

func (c *Client) do(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 500 {
		resp.Body.Close()
		return nil, fmt.Errorf("server error %d", resp.StatusCode)
	}
	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, backoff.Permanent(ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, backoff.Permanent(fmt.Errorf("status %d", resp.StatusCode))
	}
	return resp, nil
}

func (c *Client) retry(ctx context.Context, op func() error) error {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = 200 * time.Millisecond
	exp.MaxInterval = 1 * time.Second
	exp.MaxElapsedTime = 5 * time.Second
	return backoff.Retry(op, backoff.WithContext(exp, ctx))
}

// GetJSON fetches url and decodes the response body into out.
func (c *Client) GetJSON(ctx context.Context, url string, out any) error {
	return c.retry(ctx, func() error {
		resp, err := c.do(ctx, url)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return backoff.Permanent(fmt.Errorf("decode: %w", err))
		}
		return nil
	})
}

// GetBytes fetches url and returns the raw response body.
func (c *Client) GetBytes(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	err := c.retry(ctx, func() error {
		resp, err := c.do(ctx, url)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		return nil
	})
	return body, err
}
