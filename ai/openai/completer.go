// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package openai

import (
	"context"
	"log/slog"

	"github.com/poiesic/advisor/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Completer implements ai.Completer using OpenAI-compatible chat APIs.
type Completer struct {
	client          llms.Model
	temperature     float64
	maxTokens       int
	maxPromptTokens int
	budget          *tokenBudget
	logger          *slog.Logger
}

// newCompleter is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newCompleter(config *ai.Config) (*Completer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.CompletionHost),
		openai.WithToken(config.Token),
		openai.WithModel(config.CompletionModel),
	)
	if err != nil {
		return nil, err
	}

	return &Completer{
		client:          client,
		temperature:     config.Temperature,
		maxTokens:       config.MaxTokens,
		maxPromptTokens: config.MaxPromptTokens,
		budget:          newTokenBudget(config.CompletionModel),
		logger:          slog.Default().With("component", "openai-completer"),
	}, nil
}

// NewCompleter creates a new completer using the provided configuration.
//
// Returns ai.Completer interface to enforce abstraction.
func NewCompleter(config *ai.Config) (ai.Completer, error) {
	return newCompleter(config)
}

// Complete sends the system and user prompts as a two-message chat and
// returns the first choice.
func (c *Completer) Complete(ctx context.Context, systemPrompt, userPrompt string, opts ...ai.CompletionOption) (*ai.Completion, error) {
	callOpts := ai.ApplyCompletionOptions(opts...)

	if callOpts.Truncate && c.maxPromptTokens > 0 {
		userPrompt = cleanPromptText(userPrompt)
		truncated, cut := c.budget.Truncate(userPrompt, c.maxPromptTokens)
		if cut {
			c.logger.Warn("user prompt truncated to token budget", "limit", c.maxPromptTokens)
		}
		userPrompt = truncated
	}

	content := buildMessages(systemPrompt, userPrompt)

	response, err := c.client.GenerateContent(ctx, content, c.callOptions(callOpts)...)
	if err != nil {
		c.logger.Error("failed to generate content", "err", err)
		return nil, err
	}

	if len(response.Choices) < 1 {
		c.logger.Warn("no choices returned from model")
		return nil, ErrNoChoices
	}

	return &ai.Completion{Text: response.Choices[0].Content}, nil
}

func (c *Completer) callOptions(opts ai.CompletionOptions) []llms.CallOption {
	temperature := c.temperature
	if opts.Temperature != nil {
		temperature = *opts.Temperature
	}
	maxTokens := c.maxTokens
	if opts.MaxTokens != nil {
		maxTokens = *opts.MaxTokens
	}

	callOpts := []llms.CallOption{llms.WithTemperature(temperature)}
	if maxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(maxTokens))
	}
	return callOpts
}

func buildMessages(systemPrompt, userPrompt string) []llms.MessageContent {
	content := make([]llms.MessageContent, 0, 2)
	if systemPrompt != "" {
		content = append(content, llms.MessageContent{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(systemPrompt)},
		})
	}
	content = append(content, llms.MessageContent{
		Role:  llms.ChatMessageTypeHuman,
		Parts: []llms.ContentPart{llms.TextPart(userPrompt)},
	})
	return content
}
