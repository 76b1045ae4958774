package engine

import (
	"bytes"
	"context"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"
)

const (
	maxAttempts    = 4
	backoffBase    = 500 * time.Millisecond
	backoffCeiling = 8 * time.Second
)

// transient reports whether an HTTP status is worth retrying. Rate limits
// and server-side failures are; everything else is final.
func transient(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// send posts the body, retrying transient failures with capped exponential
// backoff plus jitter. A rate-limit response with a Retry-After header waits
// the server-requested time instead. The returned response is never
// transient; the caller still checks the status.
func (c *Client) send(ctx context.Context, url string, body []byte) (*http.Response, error) {
	var lastErr error
	delay := backoffBase

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.client.Do(req)
		switch {
		case err != nil:
			lastErr = err
		case transient(resp.StatusCode):
			lastErr = fmt.Errorf("engine returned %d", resp.StatusCode)
			if wait := retryAfter(resp); wait > 0 {
				delay = wait
			}
			resp.Body.Close()
		default:
			return resp, nil
		}

		if attempt == maxAttempts {
			break
		}
		wait := delay + time.Duration(rand.Int64N(int64(delay/2+1)))
		c.logger.Warn("engine call failed, retrying",
			"attempt", attempt, "wait", wait, "error", lastErr)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
		if delay *= 2; delay > backoffCeiling {
			delay = backoffCeiling
		}
	}
	return nil, fmt.Errorf("engine unreachable after %d attempts: %w", maxAttempts, lastErr)
}

func retryAfter(resp *http.Response) time.Duration {
	secs, err := strconv.Atoi(resp.Header.Get("Retry-After"))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
