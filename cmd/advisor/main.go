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

package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/poiesic/advisor"
	"github.com/poiesic/advisor/ai"
	"github.com/urfave/cli/v2"
)

func main() {
	// .env must be loaded before flags read their EnvVars
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("ignoring .env: %v", err)
	}

	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "advisor",
		Usage: "Conversational course advisor for the CSE catalog",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{"ADVISOR_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to the BadgerDB course store",
				Value:   "./course_db",
				EnvVars: []string{"ADVISOR_DB"},
			},
			&cli.StringFlag{
				Name:    "host",
				Usage:   "OpenAI-compatible API base URL for embeddings and completions",
				Value:   ai.DefaultHost,
				EnvVars: []string{"OPENAI_BASE_URL"},
			},
			&cli.StringFlag{
				Name:  "embedding-host",
				Usage: "Embedding service host URL (defaults to --host)",
			},
			&cli.StringFlag{
				Name:  "completion-host",
				Usage: "Completion service host URL (defaults to --host)",
			},
			&cli.StringFlag{
				Name:    "embedding-model",
				Usage:   "Embedding model name",
				Value:   ai.DefaultConfig().EmbeddingModel,
				EnvVars: []string{"ADVISOR_EMBEDDING_MODEL"},
			},
			&cli.StringFlag{
				Name:    "completion-model",
				Usage:   "Chat completion model name",
				Value:   ai.DefaultConfig().CompletionModel,
				EnvVars: []string{"ADVISOR_COMPLETION_MODEL"},
			},
			&cli.StringFlag{
				Name:    "api-key",
				Usage:   "API key for the model host",
				EnvVars: []string{"OPENAI_API_KEY"},
			},
			&cli.Float64Flag{
				Name:  "temperature",
				Usage: "Sampling temperature for answers",
				Value: ai.DefaultConfig().Temperature,
			},
			&cli.IntFlag{
				Name:  "max-tokens",
				Usage: "Maximum tokens per answer",
				Value: ai.DefaultConfig().MaxTokens,
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			loadCommand(),
			serveCommand(),
			chatCommand(),
			searchCommand(),
		},
	}
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

// aiConfig builds the provider configuration from the global flags.
func aiConfig(c *cli.Context) (*ai.Config, error) {
	host := c.String("host")
	embeddingHost := c.String("embedding-host")
	if embeddingHost == "" {
		embeddingHost = host
	}
	completionHost := c.String("completion-host")
	if completionHost == "" {
		completionHost = host
	}

	cfg := ai.NewConfig(
		ai.WithEmbeddingHost(embeddingHost),
		ai.WithCompletionHost(completionHost),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithCompletionModel(c.String("completion-model")),
		ai.WithToken(c.String("api-key")),
		ai.WithTemperature(c.Float64("temperature")),
		ai.WithMaxTokens(c.Int("max-tokens")),
	)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}
	return cfg, nil
}

// openAdvisor opens the course store named by --db with the configured models.
func openAdvisor(c *cli.Context, opts ...advisor.Option) (*advisor.Advisor, error) {
	cfg, err := aiConfig(c)
	if err != nil {
		return nil, err
	}

	dbPath := c.String("db")
	if dbPath == "" {
		return nil, fmt.Errorf("database path is required")
	}

	adv, err := advisor.NewAdvisor(dbPath, append([]advisor.Option{advisor.WithAIConfig(cfg)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to open advisor: %w", err)
	}
	return adv, nil
}
