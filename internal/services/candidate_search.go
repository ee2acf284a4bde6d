package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"sort"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"alfredoptarigan/jobpost-ats/internal/models"
	"alfredoptarigan/jobpost-ats/internal/repositories"
)

const (
	candidateChunkSize    = 1000
	candidateChunkOverlap = 200
)

// CandidateIndex keeps screened resumes searchable by meaning within a job.
type CandidateIndex interface {
	CandidateIndexer
	Search(ctx context.Context, jobID uuid.UUID, query string, limit int) ([]models.CandidateMatch, error)
	Reindex(ctx context.Context, parallelism int) (int, error)
	RemoveJob(ctx context.Context, jobID uuid.UUID) error
}

type CandidateIndexDeps struct {
	AppRepo     repositories.ApplicationRepository
	JobRepo     repositories.JobRepository
	Storage     StorageService
	Extractor   ResumeTextExtractor
	Chunker     TextChunker
	Embedder    Embedder
	Store       VectorStore
	Bucket      string
	MaxFileSize int64
}

type candidateIndex struct {
	deps          CandidateIndexDeps
	promptBuilder *PromptBuilder
}

// NewCandidateIndex returns an index whose methods fail with ErrIndexDisabled
// when deps.Store is nil.
func NewCandidateIndex(deps CandidateIndexDeps) CandidateIndex {
	if deps.Chunker == nil {
		deps.Chunker = NewTextChunker()
	}
	if deps.Extractor == nil {
		deps.Extractor = NewPDFParserService()
	}
	if deps.MaxFileSize <= 0 {
		deps.MaxFileSize = 10 << 20
	}
	return &candidateIndex{deps: deps, promptBuilder: NewPromptBuilder()}
}

func (c *candidateIndex) IndexApplication(ctx context.Context, applicationID uuid.UUID) error {
	if c.deps.Store == nil {
		return ErrIndexDisabled
	}

	app, err := c.deps.AppRepo.FindByID(ctx, applicationID)
	if err != nil {
		return fmt.Errorf("load application: %w", err)
	}

	objectPath, err := ResolveStoragePath(app.ResumeURL, c.deps.Bucket)
	if err != nil {
		return fmt.Errorf("resolve resume: %w", err)
	}

	rc, err := c.deps.Storage.Download(ctx, objectPath)
	if err != nil {
		return fmt.Errorf("download resume: %w", err)
	}
	data, err := io.ReadAll(io.LimitReader(rc, c.deps.MaxFileSize+1))
	rc.Close()
	if err != nil {
		return fmt.Errorf("read resume: %w", err)
	}
	if int64(len(data)) > c.deps.MaxFileSize {
		return ErrFileTooLarge
	}

	text, err := c.deps.Extractor.ExtractText(data, objectPath)
	if err != nil {
		return fmt.Errorf("extract resume text: %w", err)
	}

	chunks := c.deps.Chunker.ChunkText(text, candidateChunkSize, candidateChunkOverlap)
	embeddings := make([][]float32, 0, len(chunks))
	for i, chunk := range chunks {
		emb, err := c.deps.Embedder.GenerateEmbedding(ctx, chunk)
		if err != nil {
			return fmt.Errorf("embed chunk %d: %w", i, err)
		}
		embeddings = append(embeddings, emb)
	}

	if err := c.deps.Store.DeleteApplication(ctx, applicationID); err != nil {
		return fmt.Errorf("clear old chunks: %w", err)
	}
	if err := c.deps.Store.UpsertChunks(ctx, applicationID, app.JobID, chunks, embeddings); err != nil {
		return err
	}

	log.Printf("✅ Candidate indexed application_id=%s chunks=%d\n", applicationID, len(chunks))
	return nil
}

// RemoveJob drops every indexed chunk belonging to the job.
func (c *candidateIndex) RemoveJob(ctx context.Context, jobID uuid.UUID) error {
	if c.deps.Store == nil {
		return ErrIndexDisabled
	}
	return c.deps.Store.DeleteJob(ctx, jobID)
}

// Search ranks a job's applications by their best matching resume chunk.
func (c *candidateIndex) Search(ctx context.Context, jobID uuid.UUID, query string, limit int) ([]models.CandidateMatch, error) {
	if c.deps.Store == nil {
		return nil, ErrIndexDisabled
	}
	if limit <= 0 {
		limit = 10
	}

	job, err := c.deps.JobRepo.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}

	emb, err := c.deps.Embedder.GenerateEmbedding(ctx, c.promptBuilder.BuildCandidateQuery(query, job.Title))
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := c.deps.Store.SearchJob(ctx, jobID, emb, limit*5)
	if err != nil {
		return nil, err
	}

	ranked := bestHitPerApplication(hits)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	ids := make([]uuid.UUID, 0, len(ranked))
	for _, hit := range ranked {
		ids = append(ids, hit.ApplicationID)
	}
	apps, err := c.deps.AppRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]models.Application, len(apps))
	for _, app := range apps {
		byID[app.ID] = app
	}

	matches := make([]models.CandidateMatch, 0, len(ranked))
	for _, hit := range ranked {
		app, ok := byID[hit.ApplicationID]
		if !ok || app.JobID != jobID {
			continue
		}
		matches = append(matches, models.CandidateMatch{
			Application: app,
			Score:       hit.Score,
			Excerpt:     truncate(hit.Text, 300),
		})
	}
	return matches, nil
}

// Reindex rebuilds the index for every screened application, running at
// most parallelism indexings at once. Failures are logged and counted.
func (c *candidateIndex) Reindex(ctx context.Context, parallelism int) (int, error) {
	if c.deps.Store == nil {
		return 0, ErrIndexDisabled
	}
	if err := c.deps.Store.InitCollection(ctx); err != nil {
		return 0, err
	}

	apps, err := c.deps.AppRepo.ListScreened(ctx, 10000)
	if err != nil {
		return 0, err
	}

	if parallelism <= 0 {
		parallelism = 4
	}

	var indexed, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for _, app := range apps {
		g.Go(func() error {
			if err := c.IndexApplication(gctx, app.ID); err != nil {
				failed.Add(1)
				log.Printf("⚠️  Reindex failed application_id=%s: %v\n", app.ID, err)
				return nil
			}
			indexed.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return int(indexed.Load()), err
	}

	if n := failed.Load(); n > 0 {
		return int(indexed.Load()), fmt.Errorf("%d of %d applications failed to index", n, len(apps))
	}
	return int(indexed.Load()), nil
}

func bestHitPerApplication(hits []SearchResult) []SearchResult {
	best := make(map[uuid.UUID]SearchResult)
	for _, hit := range hits {
		if cur, ok := best[hit.ApplicationID]; !ok || hit.Score > cur.Score {
			best[hit.ApplicationID] = hit
		}
	}

	ranked := make([]SearchResult, 0, len(best))
	for _, hit := range best {
		ranked = append(ranked, hit)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score == ranked[j].Score {
			return ranked[i].ApplicationID.String() < ranked[j].ApplicationID.String()
		}
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}
