package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// jsonClient posts JSON to one provider's API and decodes the reply.
type jsonClient struct {
	provider string
	client   *http.Client
	headers  map[string]string
	hint     string // appended to transport errors
}

func newJSONClient(provider string, timeout time.Duration, headers map[string]string) jsonClient {
	return jsonClient{
		provider: provider,
		client:   &http.Client{Timeout: timeout},
		headers:  headers,
	}
}

// post sends payload to url and decodes a 200 response into out.
func (c jsonClient) post(ctx context.Context, url string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed%s: %w", c.provider, c.hint, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if msg := errorMessage(respBody); msg != "" {
			return fmt.Errorf("%s API error (%d): %s", c.provider, resp.StatusCode, msg)
		}
		return fmt.Errorf("%s API error: status %d", c.provider, resp.StatusCode)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%s parse error: %w", c.provider, err)
	}
	return nil
}

// errorMessage extracts the message from {"error":{"message":...}} or {"error":"..."}.
func errorMessage(body []byte) string {
	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if json.Unmarshal(body, &envelope) != nil || len(envelope.Error) == 0 {
		return ""
	}

	var detail struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(envelope.Error, &detail) == nil && detail.Message != "" {
		return detail.Message
	}
	var text string
	if json.Unmarshal(envelope.Error, &text) == nil {
		return text
	}
	return ""
}
