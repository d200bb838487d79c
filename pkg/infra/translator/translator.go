package translator

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/tripwise-ai/tripwise/pkg/infra/providers/llm"
)

// Translator is the on-device translation boundary. The local model runtime
// is an external collaborator; when no model is configured the completion
// provider serves as the fallback.
type Translator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

// ModelRunner is implemented by the embedded translation runtime.
type ModelRunner interface {
	Run(ctx context.Context, text, sourceLang, targetLang string) (string, error)
	Close() error
}

type localTranslator struct {
	runner ModelRunner
}

// NewLocalTranslator wraps a loaded on-device model. Load fails when the
// model file is missing, so callers can fall back at startup rather than
// per request.
func NewLocalTranslator(modelPath string, loader func(path string) (ModelRunner, error)) (Translator, error) {
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("translation model not found at %s: %w", modelPath, err)
	}
	runner, err := loader(modelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load translation model: %w", err)
	}
	return &localTranslator{runner: runner}, nil
}

func (t *localTranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	return t.runner.Run(ctx, text, sourceLang, targetLang)
}

type llmTranslator struct {
	client llm.Client
	logger *logrus.Logger
}

func NewLLMTranslator(client llm.Client, logger *logrus.Logger) Translator {
	return &llmTranslator{
		client: client,
		logger: logger,
	}
}

func (t *llmTranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	prompt := fmt.Sprintf(
		"Translate the following text from %s to %s. Reply with only the translation.\n\n%s",
		sourceLang, targetLang, text,
	)
	resp, err := t.client.Complete(ctx, llm.Request{Prompt: prompt, MaxTokens: 1024})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Text), nil
}
