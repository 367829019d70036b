package warcraftlogs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// queryPayload is the JSON body POSTed to the GraphQL endpoints.
type queryPayload struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// QueryError is one entry of a GraphQL response's errors array, carried
// exactly as the API returned it.
type QueryError struct {
	Message   string               `json:"message"`
	Locations []QueryErrorLocation `json:"locations,omitempty"`
	Path      []any                `json:"path,omitempty"`
}

// QueryErrorLocation points at the query position an error refers to.
type QueryErrorLocation struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// QueryResponse is a GraphQL response body. GraphQL-level errors are never
// converted into Go errors; callers inspect Errors themselves.
type QueryResponse struct {
	Data   json.RawMessage `json:"data,omitempty"`
	Errors []QueryError    `json:"errors,omitempty"`

	raw []byte
}

// HasErrors reports whether the response carries GraphQL-level errors.
func (r *QueryResponse) HasErrors() bool {
	return len(r.Errors) > 0
}

// hasData reports whether the response carries a non-null data field.
func (r *QueryResponse) hasData() bool {
	return len(r.Data) > 0 && !bytes.Equal(r.Data, []byte("null"))
}

// DecodeData unmarshals the response's data field into v.
func (r *QueryResponse) DecodeData(v any) error {
	if !r.hasData() {
		return fmt.Errorf("response has no data")
	}
	return json.Unmarshal(r.Data, v)
}

// Raw returns the unparsed response body.
func (r *QueryResponse) Raw() []byte {
	return r.raw
}

// APIError is a non-2xx response from a GraphQL endpoint. The body is kept
// for inspection but stays out of the error string.
type APIError struct {
	StatusCode int
	Body       []byte
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("api request failed with status %d", e.StatusCode)
}

// execute POSTs a GraphQL query to endpoint with a bearer token. Non-2xx
// statuses become an *APIError; 2xx bodies are returned parsed, including
// any GraphQL-level errors.
func (c *Client) execute(ctx context.Context, endpoint, accessToken, query string, variables map[string]any) (*QueryResponse, error) {
	payload, err := json.Marshal(queryPayload{Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("marshaling query payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating query request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading query response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		c.logger.DebugContext(ctx, "query rejected", "status", resp.StatusCode, "endpoint", endpoint)
		return nil, &APIError{StatusCode: resp.StatusCode, Body: body}
	}

	result := &QueryResponse{raw: body}
	if err := json.Unmarshal(body, result); err != nil {
		return nil, fmt.Errorf("parsing query response: %w", err)
	}

	return result, nil
}
