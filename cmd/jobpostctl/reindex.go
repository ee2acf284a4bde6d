package main

import (
	"errors"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"alfredoptarigan/jobpost-ats/internal/services"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the candidate search index",
	Long:  "Re-extracts, chunks and embeds the resume of every screened application and replaces its points in Qdrant.",
	RunE:  runReindex,
}

var reindexParallelism int

func init() {
	reindexCmd.Flags().IntVarP(&reindexParallelism, "parallelism", "p", 4, "Number of applications indexed at once")
	rootCmd.AddCommand(reindexCmd)
}

func runReindex(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	d, err := loadDeps(ctx)
	if err != nil {
		return err
	}
	if d.cfg.Qdrant.URL == "" {
		return errors.New("QDRANT_URL is required for reindex")
	}

	store, err := services.NewQdrantService(d.cfg.Qdrant.URL, d.cfg.Qdrant.APIKey, d.cfg.Qdrant.Collection)
	if err != nil {
		return err
	}

	index := services.NewCandidateIndex(services.CandidateIndexDeps{
		AppRepo:     d.appRepo,
		JobRepo:     d.jobRepo,
		Storage:     d.storage,
		Extractor:   services.NewPDFParserService(),
		Chunker:     services.NewTextChunker(),
		Embedder:    d.gemini,
		Store:       store,
		Bucket:      d.cfg.Storage.Bucket,
		MaxFileSize: d.cfg.Screening.MaxFileSize,
	})

	log.Println("🚀 Rebuilding candidate index...")
	n, err := index.Reindex(ctx, reindexParallelism)
	log.Printf("📊 Indexed %d applications\n", n)
	if err != nil {
		return fmt.Errorf("reindex incomplete: %w", err)
	}
	log.Println("✅ Candidate index rebuilt")
	return nil
}
