// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers for calls to remote services.
package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Policy bounds the retries of one logical request.
type Policy struct {
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts int
	// BaseDelay is the wait before the second attempt; it doubles after
	// every further attempt.
	BaseDelay time.Duration
	// MaxDelay caps a single wait.
	MaxDelay time.Duration
	// Log receives one line per retry. Nil discards.
	Log io.Writer
}

// DefaultPolicy makes three attempts waiting 1 s then 2 s, never more
// than 10 s between attempts.
var DefaultPolicy = Policy{MaxAttempts: 3, BaseDelay: time.Second, MaxDelay: 10 * time.Second}

func (p Policy) withDefaults() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultPolicy.MaxAttempts
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = DefaultPolicy.BaseDelay
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = DefaultPolicy.MaxDelay
	}
	if p.Log == nil {
		p.Log = io.Discard
	}
	return p
}

// Backoff returns the wait after the given zero-based attempt.
func (p Policy) Backoff(attempt int) time.Duration {
	p = p.withDefaults()
	d := p.BaseDelay
	for i := 0; i < attempt && d < p.MaxDelay; i++ {
		d *= 2
	}
	if d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d
}

// Retryable reports whether a response status is worth another attempt:
// 429 and the transient gateway errors.
func Retryable(status int) bool {
	switch status {
	case http.StatusTooManyRequests, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// DoWithRetry executes req and retries transport errors and Retryable
// statuses with exponential backoff. The request body is rewound through
// req.GetBody before each retry, so requests built with http.NewRequest
// from a bytes.Reader or strings.Reader are safe to retry.
//
// On each retryable response the body is drained and closed before
// sleeping. If the context is cancelled during a wait DoWithRetry returns
// ctx.Err(). After the last attempt the final response is returned as-is
// so the caller can inspect it, or the final transport error.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, policy Policy) (*http.Response, error) {
	policy = policy.withDefaults()

	for attempt := 0; ; attempt++ {
		r := req.Clone(ctx)
		if attempt > 0 && req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, fmt.Errorf("rewinding request body: %w", err)
			}
			r.Body = body
		}

		resp, err := client.Do(r)
		last := attempt+1 >= policy.MaxAttempts

		switch {
		case err != nil:
			if ctx.Err() != nil || errors.Is(err, context.Canceled) || last {
				return nil, err
			}
			fmt.Fprintf(policy.Log, "request error: %v (attempt %d/%d)\n", err, attempt+1, policy.MaxAttempts)
		case !Retryable(resp.StatusCode) || last:
			return resp, nil
		default:
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			fmt.Fprintf(policy.Log, "status %d (attempt %d/%d)\n", resp.StatusCode, attempt+1, policy.MaxAttempts)
		}

		backoff := policy.Backoff(attempt)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}
