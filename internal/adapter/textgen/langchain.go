package textgen

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"vidquiz/internal/config"
	"vidquiz/internal/domain"
	"vidquiz/internal/logger"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/ollama"
	"go.uber.org/zap"
)

// LangchainTextGenerator implements domain.TextGenerator on top of a
// langchaingo model. The concrete backend (Gemini or a local Ollama server)
// is selected by configuration.
type LangchainTextGenerator struct {
	llm     llms.Model
	timeout time.Duration
}

// NewTextGenerator constructs the configured LLM client.
func NewTextGenerator(ctx context.Context, cfg config.LLMConfig) (domain.TextGenerator, error) {
	var (
		llm llms.Model
		err error
	)

	switch cfg.Provider {
	case "gemini":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("gemini api key is not configured")
		}
		llm, err = googleai.New(ctx,
			googleai.WithAPIKey(cfg.APIKey),
			googleai.WithDefaultModel(cfg.Model),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini client: %w", err)
		}
	case "ollama":
		httpClient := &http.Client{Timeout: cfg.Timeout}
		llm, err = ollama.New(
			ollama.WithServerURL(cfg.ServerURL),
			ollama.WithModel(cfg.Model),
			ollama.WithHTTPClient(httpClient),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create ollama client: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}

	logger.Get().Info("Text generator initialized",
		zap.String("provider", cfg.Provider),
		zap.String("model", cfg.Model))

	return &LangchainTextGenerator{llm: llm, timeout: cfg.Timeout}, nil
}

// Complete submits the prompt and returns the raw model output.
func (g *LangchainTextGenerator) Complete(ctx context.Context, prompt string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	response, err := llms.GenerateFromSinglePrompt(ctx, g.llm, prompt, llms.WithTemperature(0.1))
	if err != nil {
		return "", err
	}
	return response, nil
}
