package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

const (
	defaultModel           = "gemini-1.5-flash"
	defaultMaxOutputTokens = 2000
	defaultRequestTimeout  = 60 * time.Second
	defaultRetryBaseDelay  = time.Second
)

var errEmptyResponse = errors.New("model returned an empty response")

// Config holds the Gemini collaborator settings
type Config struct {
	APIKey          string
	Model           string
	MaxAttempts     uint
	MaxOutputTokens int32
	RequestTimeout  time.Duration
	RetryBaseDelay  time.Duration
}

// GeminiClient is the LLM collaborator. Any transport, quota or content
// failure surfaces uniformly as an error, so callers only ever observe
// "text produced" or "no text produced".
type GeminiClient struct {
	client          *genai.Client
	model           string
	maxAttempts     uint
	maxOutputTokens int32
	requestTimeout  time.Duration
	retryBaseDelay  time.Duration
	log             *logrus.Logger
}

// NewGeminiClient creates a Gemini client from the given config
func NewGeminiClient(ctx context.Context, cfg Config, log *logrus.Logger) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts == 0 {
		maxAttempts = 1
	}
	maxOutputTokens := cfg.MaxOutputTokens
	if maxOutputTokens <= 0 {
		maxOutputTokens = defaultMaxOutputTokens
	}
	requestTimeout := cfg.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = defaultRequestTimeout
	}
	retryBaseDelay := cfg.RetryBaseDelay
	if retryBaseDelay <= 0 {
		retryBaseDelay = defaultRetryBaseDelay
	}

	log.WithFields(logrus.Fields{
		"model":        model,
		"max_attempts": maxAttempts,
	}).Info("Successfully initialized Gemini client")

	return &GeminiClient{
		client:          client,
		model:           model,
		maxAttempts:     maxAttempts,
		maxOutputTokens: maxOutputTokens,
		requestTimeout:  requestTimeout,
		retryBaseDelay:  retryBaseDelay,
		log:             log,
	}, nil
}

// Complete sends one prompt to the model at the given temperature and returns
// the response text. Every attempt is bounded by its own per-request timeout,
// so a timed-out attempt surfaces as a failure the retry policy can act on.
func (c *GeminiClient) Complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	return completeWithRetry(ctx, c.log, c.maxAttempts, c.retryBaseDelay, c.requestTimeout, func(callCtx context.Context) (string, error) {
		result, err := c.client.Models.GenerateContent(
			callCtx,
			c.model,
			genai.Text(prompt),
			&genai.GenerateContentConfig{
				Temperature:     genai.Ptr(float32(temperature)),
				MaxOutputTokens: c.maxOutputTokens,
			},
		)
		if err != nil {
			return "", fmt.Errorf("generate content: %w", err)
		}

		if result == nil || len(result.Candidates) == 0 ||
			result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
			return "", errEmptyResponse
		}

		text := result.Candidates[0].Content.Parts[0].Text
		if strings.TrimSpace(text) == "" {
			return "", errEmptyResponse
		}

		return text, nil
	})
}
