// Package rerank is the HTTP client for an external cross-encoder rerank
// API (Cohere-compatible request/response shape).
package rerank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/asheesh07/Production-Grade-RAG-System/internal/domain"
)

const defaultTimeout = 30 * time.Second

// Client scores (query, passage) pairs with a remote cross-encoder model.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	httpc   *http.Client
	logger  *zap.Logger
}

// Config holds the rerank provider settings.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
	Logger  *zap.Logger
}

// NewClient creates a rerank client.
func NewClient(cfg *Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		httpc:   &http.Client{Timeout: timeout},
		logger:  cfg.Logger,
	}
}

type rerankRequest struct {
	Model     string   `json:"model"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
}

type rerankResponse struct {
	Results []struct {
		Index          int     `json:"index"`
		RelevanceScore float64 `json:"relevance_score"`
	} `json:"results"`
}

// ScorePairs scores every (query, passage) pair in one batched call and
// returns scores aligned with the input order. The pairing is implicit: the
// API scores each document against the query jointly. A response that does
// not cover every passage is an error; partial batches are never accepted.
func (c *Client) ScorePairs(ctx context.Context, query string, passages []string) ([]float64, error) {
	if len(passages) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(rerankRequest{
		Model:     c.model,
		Query:     query,
		Documents: passages,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal rerank request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/rerank", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create rerank request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rerank request: %w: %w", err, domain.ErrRerankFailed)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read rerank response: %w: %w", err, domain.ErrRerankFailed)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf(
			"rerank API status %d: %s: %w", resp.StatusCode, string(data), domain.ErrRerankFailed,
		)
	}

	var parsed rerankResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse rerank response: %w: %w", err, domain.ErrRerankFailed)
	}

	scores := make([]float64, len(passages))
	seen := make([]bool, len(passages))
	for _, r := range parsed.Results {
		if r.Index < 0 || r.Index >= len(passages) {
			return nil, fmt.Errorf("rerank result index %d out of range: %w", r.Index, domain.ErrRerankFailed)
		}
		scores[r.Index] = r.RelevanceScore
		seen[r.Index] = true
	}
	for i, ok := range seen {
		if !ok {
			return nil, fmt.Errorf("rerank response missing passage %d: %w", i, domain.ErrRerankFailed)
		}
	}

	return scores, nil
}

// ModelName returns the configured model identifier.
func (c *Client) ModelName() string {
	return c.model
}
