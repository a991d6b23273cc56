package classifier

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	apperrors "candidate-screening/internal/common/errors"
	httpclient "candidate-screening/internal/common/http"
	"candidate-screening/internal/common/logger"
)

const generatePath = "/api/ai/generate"

type HTTPConfig struct {
	BaseURL     string
	APIKey      string
	Timeout     time.Duration
	MaxTokens   int
	Temperature float64
}

// HTTPClassifier calls the GenAI generate endpoint once per Classify.
type HTTPClassifier struct {
	config *HTTPConfig
	client *httpclient.Client
	logger logger.Logger
}

type generateRequest struct {
	Prompt      string      `json:"prompt"`
	Context     interface{} `json:"context"`
	MaxTokens   int         `json:"max_tokens"`
	Temperature float64     `json:"temperature"`
}

type generateResponse struct {
	Text       string   `json:"text"`
	Confidence float64  `json:"confidence"`
	Sources    []string `json:"sources"`
}

func NewHTTPClassifier(config *HTTPConfig, log logger.Logger) *HTTPClassifier {
	client := httpclient.NewClient(config.Timeout)
	if config.APIKey != "" {
		client = client.WithHeader("Authorization", "Bearer "+config.APIKey)
	}
	return &HTTPClassifier{
		config: config,
		client: client,
		logger: log.With(map[string]interface{}{"component": "classifier"}),
	}
}

func (c *HTTPClassifier) Classify(ctx context.Context, description string, payload interface{}) (string, error) {
	req := generateRequest{
		Prompt:      description,
		Context:     payload,
		MaxTokens:   c.config.MaxTokens,
		Temperature: c.config.Temperature,
	}

	start := time.Now()
	var resp generateResponse
	err := c.client.PostJSON(ctx, strings.TrimRight(c.config.BaseURL, "/")+generatePath, req, &resp)
	if err != nil {
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			err = fmt.Errorf("classifier timeout: %w", err)
		}
		c.logger.Warn("classifier call failed", map[string]interface{}{
			"error":    err.Error(),
			"duration": time.Since(start).String(),
		})
		return "", apperrors.NewClassifierUnavailableError(err)
	}

	c.logger.Debug("classifier call completed", map[string]interface{}{
		"duration":   time.Since(start).String(),
		"confidence": resp.Confidence,
	})
	return resp.Text, nil
}
