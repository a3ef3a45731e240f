// Command ask sends a one-shot prompt to the local Ollama runtime and
// prints the completion with reasoning spans stripped.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/imalan123/personal-llm-agent/pkg/config"
	"github.com/imalan123/personal-llm-agent/pkg/logging"
	"github.com/imalan123/personal-llm-agent/pkg/model/ollama"
)

func main() {
	logger := logging.Setup(logging.DefaultConfig())

	cfg, err := config.Load()
	if err != nil {
		logger.Error("loading configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.ValidateModel(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	prompt, err := readPrompt(os.Args[1:])
	if err != nil {
		logger.Error("reading prompt", "error", err)
		os.Exit(1)
	}

	model, err := ollama.New(cfg.OllamaModel)
	if err != nil {
		logger.Error("creating model client", "error", err)
		os.Exit(1)
	}

	answer, err := model.Complete(context.Background(), prompt)
	if err != nil {
		logger.Error("completion failed", "model", cfg.OllamaModel, "error", err)
		os.Exit(1)
	}

	fmt.Println(answer)
}

// readPrompt takes the prompt from the arguments, or from stdin when none
// are given.
func readPrompt(args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}

	prompt := strings.TrimSpace(string(data))
	if prompt == "" {
		return "", fmt.Errorf("empty prompt (pass it as arguments or on stdin)")
	}
	return prompt, nil
}
