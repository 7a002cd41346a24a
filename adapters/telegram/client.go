package telegram

import (
	"bytes"
	"chat-hub/errors"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const platform = "telegram"

type client struct {
	http    *http.Client
	baseURL string
}

func newClient(httpClient *http.Client, endpoint, token string) *client {
	return &client{
		http:    httpClient,
		baseURL: fmt.Sprintf("%s/bot%s/", strings.TrimRight(endpoint, "/"), token),
	}
}

// callAPI posts req as JSON to method and unwraps the response envelope.
// Success requires a result; ok=false becomes an APIError, anything else
// is an empty response.
func callAPI[D any](ctx context.Context, c *client, method string, req any) (D, error) {
	var zero D

	body, err := json.Marshal(req)
	if err != nil {
		return zero, fmt.Errorf("failed to encode %s request: %w", method, err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+method, bytes.NewReader(body))
	if err != nil {
		return zero, fmt.Errorf("failed to build %s request: %w", method, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return zero, fmt.Errorf("failed to call telegram api %s: %w", method, err)
	}
	raw, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return zero, fmt.Errorf("failed to read telegram api %s response: %w", method, err)
	}

	var envelope apiResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return zero, fmt.Errorf("telegram api %s http %d: %s", method, resp.StatusCode, strings.TrimSpace(string(raw)))
		}
		return zero, fmt.Errorf("failed to decode telegram api %s response: %w", method, err)
	}

	if hasData(envelope.Result) {
		var out D
		if err := json.Unmarshal(envelope.Result, &out); err != nil {
			return zero, fmt.Errorf("failed to decode telegram api %s result: %w", method, err)
		}
		return out, nil
	}
	if !envelope.OK {
		return zero, &errors.APIError{
			Platform: platform,
			Method:   method,
			Code:     envelope.ErrorCode,
			Message:  envelope.Description,
		}
	}
	return zero, fmt.Errorf("telegram api %s: %w", method, errors.ErrEmptyResponse)
}

func hasData(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}
