// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package client submits research requests to the research service and
// classifies the outcome.
//
// Outcomes fall into three disjoint groups: a decoded ResearchResult, an
// *APIError when the service answered with a failure status, and a
// *ConnectivityError when no usable response came back at all.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/pdiddy/research-console/internal/httputil"
	"github.com/pdiddy/research-console/pkg/types"
)

// DefaultEndpoint is the local research service address.
const DefaultEndpoint = "http://127.0.0.1:5000/research"

// APIError reports a completed exchange whose status indicates failure.
// Message is the body's error field, or empty when the body had none.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("research service returned HTTP %d", e.Status)
	}
	return fmt.Sprintf("research service returned HTTP %d: %s", e.Status, e.Message)
}

// ConnectivityError reports that no usable response was received.
type ConnectivityError struct {
	Err error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("research service unreachable: %v", e.Err)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

// Client posts research requests. It makes exactly one call per Submit:
// no retries and no timeout beyond what the caller's context imposes.
type Client struct {
	// Endpoint is the full URL of the research route. Empty uses
	// DefaultEndpoint.
	Endpoint string

	// HTTP is the transport. Nil uses http.DefaultClient.
	HTTP *http.Client
}

// New returns a Client for endpoint.
func New(endpoint string) *Client {
	return &Client{Endpoint: endpoint, HTTP: &http.Client{}}
}

// Submit sends req and returns the decoded result.
func (c *Client) Submit(ctx context.Context, req types.ResearchRequest) (types.ResearchResult, error) {
	endpoint := c.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	resp, err := httputil.PostJSON(ctx, c.HTTP, endpoint, req)
	if err != nil {
		return types.ResearchResult{}, &ConnectivityError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return types.ResearchResult{}, &ConnectivityError{Err: fmt.Errorf("reading response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return types.ResearchResult{}, &APIError{Status: resp.StatusCode, Message: errorField(data)}
	}

	var result types.ResearchResult
	if err := json.Unmarshal(data, &result); err != nil {
		return types.ResearchResult{}, &ConnectivityError{Err: fmt.Errorf("decoding response: %w", err)}
	}
	return result, nil
}

// errorField extracts the error message from a failure body. Bodies that
// are empty, not JSON, or lack the field yield "".
func errorField(data []byte) string {
	var body types.ErrorBody
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	return body.Error
}

// Message maps a Submit error to the text shown in the error panel.
func Message(err error, fallback, connectivity string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return fallback
	}
	return connectivity
}
