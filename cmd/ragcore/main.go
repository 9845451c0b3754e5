// Copyright 2026 Veldt Labs
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
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/veldt/ragcore"
	"github.com/veldt/ragcore/ai"
	"github.com/veldt/ragcore/config"
	"github.com/veldt/ragcore/core"
	"github.com/veldt/ragcore/status"
	"github.com/veldt/ragcore/validation"
)

func main() {
	app := &cli.App{
		Name:  "ragcore",
		Usage: "Chunk, embed, and search text documents",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Chunk and embed documents, then report processing status",
				ArgsUsage: "FILE...",
				Action:    ingestCommand,
				Flags:     append(commonFlags(), &cli.BoolFlag{
					Name:  "audit",
					Usage: "Run a consistency audit after ingestion",
				}),
			},
			{
				Name:      "search",
				Usage:     "Ingest documents and run a similarity query over them",
				ArgsUsage: "FILE...",
				Action:    searchCommand,
				Flags: append(commonFlags(),
					&cli.StringFlag{
						Name:     "query",
						Aliases:  []string{"q"},
						Usage:    "Query text",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Maximum number of results",
						Value: 5,
					},
					&cli.Float64Flag{
						Name:  "threshold",
						Usage: "Minimum adjusted similarity for a result",
						Value: 0.0,
					},
				),
			},
			{
				Name:      "status",
				Usage:     "Ingest documents and print per-stage processing counts",
				ArgsUsage: "FILE...",
				Action:    statusCommand,
				Flags:     commonFlags(),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to YAML configuration file (built-in defaults if omitted)",
		},
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "embeddinggemma",
		},
	}
}

func newSystem(c *cli.Context) (*ragcore.System, error) {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("loading configuration: %w", err)
		}
		cfg = loaded
	}

	aiConfig := &ai.Config{
		Host:  c.String("embedding-host"),
		Model: c.String("embedding-model"),
	}
	return ragcore.NewSystem(cfg, ragcore.WithAIConfig(aiConfig))
}

func loadDocuments(paths []string) ([]core.Document, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("at least one document file is required")
	}

	docs := make([]core.Document, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}

		name := filepath.Base(path)
		docs = append(docs, core.Document{
			ID:      strings.TrimSuffix(name, filepath.Ext(name)),
			Content: string(data),
			Source:  path,
		})
	}
	return docs, nil
}

func ingestCommand(c *cli.Context) error {
	system, err := newSystem(c)
	if err != nil {
		return err
	}
	defer system.Close()

	docs, err := loadDocuments(c.Args().Slice())
	if err != nil {
		return err
	}

	summary, err := system.Ingest(context.Background(), docs...)
	if err != nil {
		return err
	}

	fmt.Printf("Documents: %d\nChunks: %d\nEmbedded: %d\nFailed: %d\n",
		summary.Documents, summary.Chunks, summary.Embedded, summary.Failed)
	for _, failure := range summary.Failures {
		item := failure.DocumentID
		if failure.ChunkID != "" {
			item = failure.ChunkID
		}
		fmt.Printf("  failed %s: %v\n", item, failure.Err)
	}

	if c.Bool("audit") {
		result := system.Audit(context.Background())
		fmt.Printf("Audit: %s (%d issues)\n", result.Status, len(result.Issues))
		for _, issue := range result.Issues {
			if issue.Severity >= validation.SeverityWarning {
				fmt.Printf("  [%s] %s\n", issue.Severity, issue.Message)
			}
		}
	}

	return nil
}

func searchCommand(c *cli.Context) error {
	system, err := newSystem(c)
	if err != nil {
		return err
	}
	defer system.Close()

	docs, err := loadDocuments(c.Args().Slice())
	if err != nil {
		return err
	}

	ctx := context.Background()
	summary, err := system.Ingest(ctx, docs...)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		fmt.Fprintf(os.Stderr, "warning: %d items failed during ingestion\n", summary.Failed)
	}

	results, err := system.Search(ctx, c.String("query"), c.Int("top-k"), float32(c.Float64("threshold")))
	if err != nil {
		return err
	}

	if len(results) == 0 {
		fmt.Println("No results.")
		return nil
	}
	for _, r := range results {
		fmt.Printf("%2d. %.4f  %s (doc %s, chunk %d)\n",
			r.Rank, r.Score, r.Chunk.ChunkID, r.Chunk.DocumentID, r.Chunk.Index)
		if r.Chunk.Preview != "" {
			fmt.Printf("    %s\n", r.Chunk.Preview)
		}
	}
	return nil
}

func statusCommand(c *cli.Context) error {
	system, err := newSystem(c)
	if err != nil {
		return err
	}
	defer system.Close()

	docs, err := loadDocuments(c.Args().Slice())
	if err != nil {
		return err
	}

	if _, err := system.Ingest(context.Background(), docs...); err != nil {
		return err
	}

	tracker := system.Tracker()
	counts := tracker.Counts()
	for stage := status.StageChunkLoaded; stage <= status.StageVectorStoreFailed; stage++ {
		if n := counts[stage]; n > 0 {
			fmt.Printf("%-24s %d\n", stage, n)
		}
	}
	fmt.Printf("%-24s %d\n", "total", tracker.Total())
	fmt.Printf("%-24s %.1f%%\n", "success rate", tracker.SuccessRate()*100)
	return nil
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
