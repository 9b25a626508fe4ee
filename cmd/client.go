package main

import (
	"golang.org/x/time/rate"

	"github.com/visionbench/capeval/internal/config"
	"github.com/visionbench/capeval/pkg/llm"
)

// buildClient wires the configured LLM backend behind the request pacer.
// Every command that talks to the endpoint goes through this one path.
func buildClient(cfg *config.Config) (llm.Client, error) {
	client, err := llm.New(llm.Options{
		Provider:  cfg.LLM.Provider,
		APIKey:    cfg.LLM.APIKey,
		BaseURL:   cfg.LLM.BaseURL,
		Model:     cfg.LLM.Model,
		MaxTokens: int64(cfg.LLM.MaxTokens),
	})
	if err != nil {
		return nil, err
	}

	if cfg.LLM.PacePerS > 0 {
		limiter := rate.NewLimiter(rate.Limit(cfg.LLM.PacePerS), 1)
		client = llm.NewPacedClient(client, limiter)
	}
	return client, nil
}
