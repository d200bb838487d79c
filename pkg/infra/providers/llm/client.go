package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/tripwise-ai/tripwise/pkg/infra/httpx"
)

const completionsPath = "/v1/completions"

var ErrProviderCall = errors.New("completion provider call failed")

type Request struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

type Response struct {
	Text         string `json:"text"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
}

type Client interface {
	Complete(ctx context.Context, req Request) (*Response, error)
}

type client struct {
	httpClient     httpx.Client
	logger         *logrus.Logger
	circuitBreaker httpx.CircuitBreaker
	baseURL        string
	apiKey         string
	model          string
}

func NewClient(
	httpClient httpx.Client,
	logger *logrus.Logger,
	circuitBreaker httpx.CircuitBreaker,
	baseURL, apiKey, model string,
) Client {
	return &client{
		httpClient:     httpClient,
		logger:         logger,
		circuitBreaker: circuitBreaker,
		baseURL:        baseURL,
		apiKey:         apiKey,
		model:          model,
	}
}

func (c *client) Complete(ctx context.Context, req Request) (*Response, error) {
	if req.Model == "" {
		req.Model = c.model
	}

	var result *Response
	err := c.circuitBreaker.Execute(func() error {
		var execErr error
		result, execErr = c.executeCompletion(ctx, req)
		return execErr
	})
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			c.logger.WithError(err).Error("completion provider call failed")
		}
		return nil, fmt.Errorf("%w: %v", ErrProviderCall, err)
	}
	return result, nil
}

func (c *client) executeCompletion(ctx context.Context, req Request) (*Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+completionsPath,
		bytes.NewReader(body),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept-Encoding", "gzip, zstd")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var out Response
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &out, nil
}
