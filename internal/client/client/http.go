package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/sethvargo/go-retry"
)

// doJSON sends body (if any) as JSON and decodes a 2xx response into out.
// The whole call, retries included, is bounded by the gateway timeout.
func (g *HTTPGateway) doJSON(ctx context.Context, method, requestPath string, body any, out any) error {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	var bodyBytes []byte
	if body != nil {
		var err error
		bodyBytes, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	var retryAfter time.Duration
	backoff := g.backoff(&retryAfter)

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var bodyReader io.Reader
		if bodyBytes != nil {
			bodyReader = bytes.NewReader(bodyBytes)
		}
		req, err := http.NewRequestWithContext(ctx, method, g.baseURL+requestPath, bodyReader)
		if err != nil {
			return err
		}
		if g.token != "" {
			req.Header.Set(common.AuthorizationHeaderName, "Bearer "+g.token)
		}
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := g.httpClient.Do(req)
		if err != nil {
			err = fmt.Errorf("%w: %w", ErrUnavailable, err)
			if ctx.Err() != nil {
				return err
			}
			return retry.RetryableError(err)
		}
		payload, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			return fmt.Errorf("%w: read response: %w", ErrUnavailable, readErr)
		}

		if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
			if out == nil || len(payload) == 0 {
				return nil
			}
			if err := json.Unmarshal(payload, out); err != nil {
				return fmt.Errorf("decode %s %s: %w", method, requestPath, err)
			}
			return nil
		}

		apiErr := decodeAPIError(resp.StatusCode, payload)
		if retryable(resp.StatusCode) {
			retryAfter = parseRetryAfter(resp.Header.Get("Retry-After"))
			return retry.RetryableError(apiErr)
		}
		return apiErr
	})
	if err != nil && !errors.Is(err, ErrUnavailable) &&
		(errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return err
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || (status >= 500 && status <= 599)
}

// backoff is exponential from baseDelay, capped at maxDelay and limited to
// maxRetries. A pending Retry-After hint replaces the next delay once.
func (g *HTTPGateway) backoff(retryAfter *time.Duration) retry.Backoff {
	exp := retry.WithMaxRetries(uint64(g.maxRetries),
		retry.WithCappedDuration(g.maxDelay, retry.NewExponential(g.baseDelay)))
	return retry.BackoffFunc(func() (time.Duration, bool) {
		d, stop := exp.Next()
		if stop {
			return 0, true
		}
		if *retryAfter > 0 {
			d = min(*retryAfter, g.maxDelay)
			*retryAfter = 0
		}
		return d, false
	})
}

func parseRetryAfter(header string) time.Duration {
	header = strings.TrimSpace(header)
	if header == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(header); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second
	}
	if ts, err := time.Parse(time.RFC1123, header); err == nil {
		if delta := time.Until(ts); delta > 0 {
			return delta
		}
	}
	return 0
}
