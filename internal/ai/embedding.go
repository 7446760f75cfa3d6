// Package ai holds the embedding client for OpenAI-compatible APIs.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Config holds API settings for text embedding (OpenAI-compatible).
type Config struct {
	BaseURL    string
	APIKey     string
	Model      string
	Dimension  int // expected vector dimension; 0 disables the check
	MaxRetries int // extra attempts after a transient failure
}

// Client calls the /embeddings endpoint of an OpenAI-compatible API.
// Construct once at startup and inject wherever embeddings are needed.
type Client struct {
	httpClient *http.Client
	cfg        Config
}

func NewClient(cfg Config) *Client {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		cfg:        cfg,
	}
}

// Embed returns the embedding vector for the given text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("embedding input is empty")
	}

	raw, err := c.post(ctx, map[string]interface{}{
		"model": c.cfg.Model,
		"input": text,
	})
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse embedding json failed: %w", err)
	}
	if len(parsed.Data) == 0 || len(parsed.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("empty embedding in response")
	}
	if err := c.checkDimension(parsed.Data[0].Embedding); err != nil {
		return nil, err
	}
	return parsed.Data[0].Embedding, nil
}

// EmbedBatch returns one embedding per input text, in input order.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	for i, t := range texts {
		if strings.TrimSpace(t) == "" {
			return nil, fmt.Errorf("embedding input %d is empty", i)
		}
	}

	raw, err := c.post(ctx, map[string]interface{}{
		"model": c.cfg.Model,
		"input": texts,
	})
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse embedding batch json failed: %w", err)
	}
	if len(parsed.Data) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: sent %d texts, got %d vectors", len(texts), len(parsed.Data))
	}
	result := make([][]float32, len(parsed.Data))
	for i := range parsed.Data {
		if err := c.checkDimension(parsed.Data[i].Embedding); err != nil {
			return nil, err
		}
		result[i] = parsed.Data[i].Embedding
	}
	return result, nil
}

// post sends the request, retrying transient failures (connectivity, 429,
// 5xx) with linear backoff. Non-transient API errors are surfaced at once;
// a failure is never replaced with a zero vector.
func (c *Client) post(ctx context.Context, reqBody map[string]interface{}) ([]byte, error) {
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal embedding request failed: %w", err)
	}
	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/embeddings"

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
		if err != nil {
			return nil, fmt.Errorf("build embedding request failed: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("embedding request failed: %w", err)
			continue
		}
		raw, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read embedding response failed: %w", err)
			continue
		}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("embedding response status %d: %s", resp.StatusCode, string(raw))
			continue
		}
		if resp.StatusCode >= 300 {
			return nil, fmt.Errorf("embedding response status %d: %s", resp.StatusCode, string(raw))
		}
		return raw, nil
	}
	return nil, lastErr
}

func (c *Client) checkDimension(vec []float32) error {
	if c.cfg.Dimension > 0 && len(vec) != c.cfg.Dimension {
		return fmt.Errorf("embedding dimension mismatch: expected %d, got %d", c.cfg.Dimension, len(vec))
	}
	return nil
}
