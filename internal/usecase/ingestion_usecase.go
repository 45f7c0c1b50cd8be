package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"

	"talent-graph/internal/dto"
	"talent-graph/internal/extract"
	"talent-graph/internal/guardrail"
	"talent-graph/internal/metrics"
	"talent-graph/internal/model"
	"talent-graph/internal/service"
)

// Document is one raw input to the pipeline. Text is unmasked and must not
// be persisted or logged; only the masked form leaves this package.
type Document struct {
	ID   string
	Text string
}

// JobSeed describes one job opening to register in the skill graph.
type JobSeed struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	RequiredSkills []string `json:"required_skills"`
}

// CandidateStore is the slice of the candidate repository ingestion needs.
type CandidateStore interface {
	IngestCandidate(ctx context.Context, id, cleanText string, embedding pgvector.Vector, skills []string) error
}

// JobStore is the slice of the job repository ingestion needs.
type JobStore interface {
	UpsertJob(ctx context.Context, id, title string, requiredSkills []string) error
	ListJobs(ctx context.Context, page, pageSize int) ([]model.Job, int64, error)
}

type IngestionUsecase struct {
	masker     *guardrail.Masker
	extractor  *extract.Extractor
	embedder   service.EmbeddingProvider
	candidates CandidateStore
	jobs       JobStore
	log        *zap.Logger
}

func NewIngestionUsecase(masker *guardrail.Masker, extractor *extract.Extractor, embedder service.EmbeddingProvider, candidates CandidateStore, jobs JobStore, log *zap.Logger) *IngestionUsecase {
	return &IngestionUsecase{masker: masker, extractor: extractor, embedder: embedder, candidates: candidates, jobs: jobs, log: log}
}

// IngestDocument runs one document through mask -> extract -> embed -> store.
// Masking happens first so nothing downstream ever touches raw text. Any
// stage failing fails the document as a whole; nothing partial is persisted.
func (uc *IngestionUsecase) IngestDocument(ctx context.Context, doc Document) (*dto.IngestReport, error) {
	report, err := uc.ingestDocument(ctx, doc)
	if err != nil {
		metrics.DocumentsIngested.WithLabelValues("failed").Inc()
		return nil, err
	}
	metrics.DocumentsIngested.WithLabelValues("ok").Inc()
	return report, nil
}

func (uc *IngestionUsecase) ingestDocument(ctx context.Context, doc Document) (*dto.IngestReport, error) {
	id := strings.TrimSpace(doc.ID)
	if id == "" {
		id = uuid.NewString()
	}
	if strings.TrimSpace(doc.Text) == "" {
		return nil, fmt.Errorf("document %s has no text", id)
	}

	clean, maskedSpans, err := uc.masker.Mask(ctx, doc.Text)
	if err != nil {
		return nil, fmt.Errorf("masking document %s: %w", id, err)
	}
	metrics.MaskedSpans.Add(float64(maskedSpans))

	record := uc.extractor.Extract(clean)

	vec, err := uc.embedder.GenerateEmbedding(ctx, record.CleanText)
	if err != nil {
		return nil, fmt.Errorf("embedding document %s: %w", id, err)
	}

	if err := uc.candidates.IngestCandidate(ctx, id, record.CleanText, pgvector.NewVector(vec), record.Skills); err != nil {
		return nil, fmt.Errorf("storing document %s: %w", id, err)
	}

	uc.log.Info("document ingested",
		zap.String("candidate_id", id),
		zap.Int("skills", len(record.Skills)),
		zap.Int("masked_spans", maskedSpans))
	return &dto.IngestReport{
		CandidateID: id,
		Skills:      record.Skills,
		Roles:       record.Roles,
		MaskedSpans: maskedSpans,
	}, nil
}

// IngestBatch processes documents with bounded parallelism. Each document
// succeeds or fails on its own; one bad document never aborts the batch.
func (uc *IngestionUsecase) IngestBatch(ctx context.Context, docs []Document, concurrency int) *dto.BatchReport {
	if concurrency < 1 {
		concurrency = 1
	}

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		report dto.BatchReport
	)
	sem := make(chan struct{}, concurrency)

	for i, doc := range docs {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int, d Document) {
			defer wg.Done()
			defer func() { <-sem }()

			rep, err := uc.IngestDocument(ctx, d)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failed = append(report.Failed, dto.BatchFailure{
					Index:       idx,
					CandidateID: strings.TrimSpace(d.ID),
					Error:       err.Error(),
				})
				return
			}
			report.Succeeded = append(report.Succeeded, *rep)
		}(i, doc)
	}
	wg.Wait()

	sort.Slice(report.Succeeded, func(i, j int) bool {
		return report.Succeeded[i].CandidateID < report.Succeeded[j].CandidateID
	})
	sort.Slice(report.Failed, func(i, j int) bool {
		return report.Failed[i].Index < report.Failed[j].Index
	})

	uc.log.Info("batch ingested",
		zap.Int("total", len(docs)),
		zap.Int("succeeded", len(report.Succeeded)),
		zap.Int("failed", len(report.Failed)))
	return &report
}

// SeedJobs registers job openings and their requirement edges. Seeding is
// idempotent: re-running a seed file updates titles and adds missing edges.
func (uc *IngestionUsecase) SeedJobs(ctx context.Context, seeds []JobSeed) error {
	for _, s := range seeds {
		id := strings.TrimSpace(s.ID)
		if id == "" {
			id = uuid.NewString()
		}
		title := strings.TrimSpace(s.Title)
		if title == "" {
			return fmt.Errorf("job %s has no title", id)
		}
		skills := normalizeSkills(s.RequiredSkills)
		if err := uc.jobs.UpsertJob(ctx, id, title, skills); err != nil {
			return fmt.Errorf("seeding job %s: %w", id, err)
		}
		uc.log.Info("job seeded",
			zap.String("job_id", id),
			zap.String("title", title),
			zap.Int("required_skills", len(skills)))
	}
	return nil
}

// ListJobs returns one page of the seeded openings with their requirements.
func (uc *IngestionUsecase) ListJobs(ctx context.Context, page, pageSize int) ([]dto.JobDTO, int64, error) {
	jobs, total, err := uc.jobs.ListJobs(ctx, page, pageSize)
	if err != nil {
		return nil, 0, err
	}
	out := make([]dto.JobDTO, 0, len(jobs))
	for _, j := range jobs {
		names := make([]string, 0, len(j.RequiredSkills))
		for _, s := range j.RequiredSkills {
			names = append(names, s.Name)
		}
		out = append(out, dto.JobDTO{ID: j.ID, Title: j.Title, RequiredSkills: names})
	}
	return out, total, nil
}

// normalizeSkills lower-cases, trims, and dedups requirement names so job
// edges land on the same skill nodes candidate extraction produces.
func normalizeSkills(skills []string) []string {
	seen := make(map[string]struct{}, len(skills))
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		name := strings.ToLower(strings.TrimSpace(s))
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
