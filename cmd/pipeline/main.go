package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"talent-graph/internal/app"
	"talent-graph/internal/usecase"
	"talent-graph/internal/util"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Could not load .env file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := &cobra.Command{
		Use:          "pipeline",
		Short:        "Ingestion and seeding utilities for the talent graph",
		SilenceUsage: true,
	}
	root.AddCommand(newIngestCmd(), newSeedJobsCmd(), newSearchCmd())

	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newIngestCmd() *cobra.Command {
	var dir string
	var concurrency int

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Ingest a directory of candidate documents (.txt, .md, .pdf)",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			docs, err := collectDocuments(dir, a.Log)
			if err != nil {
				return err
			}
			if len(docs) == 0 {
				return fmt.Errorf("no documents found in %s", dir)
			}

			report := a.Ingestion.IngestBatch(cmd.Context(), docs, concurrency)
			for _, s := range report.Succeeded {
				fmt.Printf("ok    %s  skills=%d masked_spans=%d\n", s.CandidateID, len(s.Skills), s.MaskedSpans)
			}
			for _, f := range report.Failed {
				fmt.Printf("fail  %s  %s\n", f.CandidateID, f.Error)
			}
			fmt.Printf("ingested %d/%d documents\n", len(report.Succeeded), len(docs))
			if len(report.Failed) > 0 {
				return fmt.Errorf("%d documents failed", len(report.Failed))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "directory with candidate documents")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "parallel ingestion workers")
	_ = cmd.MarkFlagRequired("dir")
	return cmd
}

func newSeedJobsCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed-jobs",
		Short: "Seed job openings and their required skills from a JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read seed file: %w", err)
			}
			var seeds []usecase.JobSeed
			if err := json.Unmarshal(raw, &seeds); err != nil {
				return fmt.Errorf("parse seed file: %w", err)
			}

			a, err := app.New(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Ingestion.SeedJobs(cmd.Context(), seeds); err != nil {
				return err
			}
			fmt.Printf("seeded %d jobs\n", len(seeds))
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "JSON file with job seeds")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newSearchCmd() *cobra.Command {
	var topK int
	var minThreshold float64
	var explain bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Run a hybrid retrieval query against the graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			results, err := a.Search.Search(cmd.Context(), args[0], topK, minThreshold)
			if err != nil {
				return err
			}
			if explain {
				results = a.Search.Explain(cmd.Context(), results, args[0])
			}
			if len(results) == 0 {
				fmt.Println("no candidates match the query")
				return nil
			}
			for i, r := range results {
				fmt.Printf("%2d. %s  score=%.3f coverage=%.2f similarity=%.2f skills=%s\n",
					i+1, r.CandidateID, r.Score, r.Coverage, r.Similarity, strings.Join(r.MatchedSkills, ","))
				if r.Rationale != "" {
					fmt.Printf("    %s\n", r.Rationale)
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&topK, "top-k", 0, "maximum results (0 uses the configured default)")
	cmd.Flags().Float64Var(&minThreshold, "min-threshold", 0, "minimum blended score")
	cmd.Flags().BoolVar(&explain, "explain", false, "generate a rationale per result")
	return cmd
}

// collectDocuments walks dir and turns every supported file into a document,
// keyed by its file name stem. Unreadable files are skipped with a warning so
// one bad file cannot sink a whole directory run.
func collectDocuments(dir string, log *zap.Logger) ([]usecase.Document, error) {
	var docs []usecase.Document
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		var text string
		switch strings.ToLower(filepath.Ext(path)) {
		case ".txt", ".md":
			raw, err := os.ReadFile(path)
			if err != nil {
				log.Warn("skipping unreadable file", zap.String("path", path), zap.Error(err))
				return nil
			}
			text = string(raw)
		case ".pdf":
			text, err = util.ExtractPDFText(path)
			if err != nil {
				log.Warn("skipping unreadable PDF", zap.String("path", path), zap.Error(err))
				return nil
			}
		default:
			return nil
		}

		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		docs = append(docs, usecase.Document{ID: stem, Text: text})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	return docs, nil
}
