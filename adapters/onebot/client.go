package onebot

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

const platform = "onebot"

type client struct {
	http    *http.Client
	baseURL string
	token   string
}

func newClient(httpClient *http.Client, apiURL, token string) *client {
	return &client{
		http:    httpClient,
		baseURL: strings.TrimRight(apiURL, "/") + "/",
		token:   token,
	}
}

func (c *client) authorize(h http.Header) {
	if c.token != "" {
		h.Set("Authorization", "Bearer "+c.token)
	}
}

// callAPI posts req to action and unwraps the envelope. data present means
// success whatever the status says; a failed status carries retcode and
// message; anything else is an empty response.
func callAPI[D any](ctx context.Context, c *client, action string, req any) (D, error) {
	var zero D

	body, err := json.Marshal(req)
	if err != nil {
		return zero, fmt.Errorf("failed to encode %s request: %w", action, err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+action, bytes.NewReader(body))
	if err != nil {
		return zero, fmt.Errorf("failed to build %s request: %w", action, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	c.authorize(httpReq.Header)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return zero, fmt.Errorf("failed to call onebot api %s: %w", action, err)
	}
	raw, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return zero, fmt.Errorf("failed to read onebot api %s response: %w", action, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return zero, &errors.APIError{
			Platform: platform,
			Method:   action,
			Code:     resp.StatusCode,
			Message:  strings.TrimSpace(string(raw)),
		}
	}

	var envelope response
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return zero, fmt.Errorf("failed to decode onebot api %s response: %w", action, err)
	}
	if hasData(envelope.Data) {
		var out D
		if err := json.Unmarshal(envelope.Data, &out); err != nil {
			return zero, fmt.Errorf("failed to decode onebot api %s data: %w", action, err)
		}
		return out, nil
	}
	if envelope.Status == statusFailed {
		return zero, &errors.APIError{
			Platform: platform,
			Method:   action,
			Code:     envelope.RetCode,
			Message:  envelope.Message,
		}
	}
	return zero, fmt.Errorf("onebot api %s (status %s): %w", action, envelope.Status, errors.ErrEmptyResponse)
}

func hasData(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}
