// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared by the console and the
// research service.
package httputil

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultRetryBaseDelay is the first backoff step on HTTP 429.
const DefaultRetryBaseDelay = 10 * time.Second

const defaultMaxRetries = 5

// Retrier executes requests and retries on HTTP 429 (Too Many Requests)
// with exponential backoff. Only the research service talks to rate-limited
// upstreams; the console never retries.
type Retrier struct {
	Client *http.Client

	// MaxRetries bounds the number of retries. Zero uses 5.
	MaxRetries int

	// BaseDelay is the first backoff; each retry doubles it. Zero uses
	// DefaultRetryBaseDelay.
	BaseDelay time.Duration

	// Log receives one line per backoff. Nil disables logging.
	Log logrus.FieldLogger
}

// Do sends req and retries while the upstream answers 429. On each 429 the
// body is drained and closed before sleeping. A context cancelled during a
// backoff wait returns ctx.Err(). After exhausting retries the last 429
// response is returned so the caller can inspect it.
func (r *Retrier) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	maxRetries := r.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	delay := r.BaseDelay
	if delay <= 0 {
		delay = DefaultRetryBaseDelay
	}
	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}

	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusTooManyRequests || attempt >= maxRetries {
			return resp, nil
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		backoff := delay << attempt
		if r.Log != nil {
			r.Log.WithFields(logrus.Fields{
				"url":     req.URL.String(),
				"attempt": attempt + 1,
				"backoff": backoff,
			}).Warn("rate limited, backing off")
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}
