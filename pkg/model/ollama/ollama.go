// Package ollama wraps a local Ollama runtime behind a minimal
// text-completion interface.
package ollama

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/ollama/ollama/api"
)

// thinkBlock matches reasoning spans the runtime may emit; they are
// discarded before the response is returned.
var thinkBlock = regexp.MustCompile(`(?s)<think>.*?</think>`)

// generateFunc matches api.Client.Generate.
type generateFunc func(ctx context.Context, req *api.GenerateRequest, fn api.GenerateResponseFunc) error

// Model is a synchronous completion client for one model identifier.
// It keeps no conversation state across calls.
type Model struct {
	generate generateFunc
	model    string
}

// New creates a Model talking to the runtime addressed by the OLLAMA_HOST
// environment variable (default localhost).
func New(model string) (*Model, error) {
	client, err := api.ClientFromEnvironment()
	if err != nil {
		return nil, fmt.Errorf("creating ollama client: %w", err)
	}
	return &Model{generate: client.Generate, model: model}, nil
}

// Complete sends the prompt to the model and returns the response text with
// any <think>...</think> spans removed and surrounding whitespace trimmed.
func (m *Model) Complete(ctx context.Context, prompt string) (string, error) {
	stream := false
	req := &api.GenerateRequest{
		Model:  m.model,
		Prompt: prompt,
		Stream: &stream,
	}

	var sb strings.Builder
	err := m.generate(ctx, req, func(resp api.GenerateResponse) error {
		sb.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("generating completion with %q: %w", m.model, err)
	}

	return strings.TrimSpace(thinkBlock.ReplaceAllString(sb.String(), "")), nil
}
