// Package gemini wraps the Google Gen AI SDK behind a circuit breaker.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/donazulmira/moradores-backend/pkg/config"
	"github.com/donazulmira/moradores-backend/pkg/logger"
	"github.com/sony/gobreaker"
	"google.golang.org/genai"
)

// ErrUnavailable is returned while the breaker is open.
var ErrUnavailable = errors.New("gemini temporarily unavailable")

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Model() string
}

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client calls a Gemini model.
type Client struct {
	models  contentGenerator
	model   string
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker
}

// New builds a client for the Gemini API. The caller checks cfg.Enabled()
// first.
func New(ctx context.Context, cfg config.AIConfig, logg *logger.Logger) (*Client, error) {
	if !cfg.Enabled() {
		return nil, errors.New("gemini api key is required")
	}
	sdk, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return newWithModels(sdk.Models, cfg, logg), nil
}

func newWithModels(models contentGenerator, cfg config.AIConfig, logg *logger.Logger) *Client {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "gemini-1.5-flash"
	}
	return &Client{
		models:  models,
		model:   model,
		timeout: cfg.Timeout,
		breaker: newBreaker("gemini", logg),
	}
}

func newBreaker(name string, logg *logger.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if logg == nil {
				return
			}
			ctx := logg.WithFields(context.Background(), map[string]any{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			})
			logg.Warn(ctx, "circuit breaker state changed")
		},
	})
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// Generate sends the prompt and returns the raw response text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	out, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
		if err != nil {
			return nil, err
		}
		text := resp.Text()
		if strings.TrimSpace(text) == "" {
			return nil, errors.New("empty completion")
		}
		return text, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", ErrUnavailable
		}
		return "", err
	}
	return out.(string), nil
}
