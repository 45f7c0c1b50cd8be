package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"talent-graph/internal/apperror"
	"talent-graph/internal/extract"
	"talent-graph/internal/guardrail"
	"talent-graph/internal/model"
)

type recognizerFunc func(ctx context.Context, text string) ([]guardrail.Span, error)

func (f recognizerFunc) Detect(ctx context.Context, text string) ([]guardrail.Span, error) {
	return f(ctx, text)
}

// noSpans is a recognizer that finds nothing.
func noSpans(ctx context.Context, text string) ([]guardrail.Span, error) {
	return nil, nil
}

// spansFor builds a recognizer that reports every occurrence of each needle
// under the given category.
func spansFor(needles map[string]string) recognizerFunc {
	return func(ctx context.Context, text string) ([]guardrail.Span, error) {
		var spans []guardrail.Span
		for needle, category := range needles {
			from := 0
			for {
				i := strings.Index(text[from:], needle)
				if i < 0 {
					break
				}
				start := from + i
				spans = append(spans, guardrail.Span{Start: start, End: start + len(needle), Category: category})
				from = start + len(needle)
			}
		}
		return spans, nil
	}
}

type storedCandidate struct {
	ID        string
	CleanText string
	Dims      int
	Skills    []string
}

type stubCandidateStore struct {
	mu     sync.Mutex
	err    error
	stored []storedCandidate
}

func (s *stubCandidateStore) IngestCandidate(ctx context.Context, id, cleanText string, embedding pgvector.Vector, skills []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.stored = append(s.stored, storedCandidate{
		ID:        id,
		CleanText: cleanText,
		Dims:      len(embedding.Slice()),
		Skills:    append([]string(nil), skills...),
	})
	return nil
}

type storedJob struct {
	ID     string
	Title  string
	Skills []string
}

type stubJobStore struct {
	err     error
	upserts []storedJob
	jobs    []model.Job
	total   int64
}

func (s *stubJobStore) UpsertJob(ctx context.Context, id, title string, requiredSkills []string) error {
	if s.err != nil {
		return s.err
	}
	s.upserts = append(s.upserts, storedJob{ID: id, Title: title, Skills: append([]string(nil), requiredSkills...)})
	return nil
}

func (s *stubJobStore) ListJobs(ctx context.Context, page, pageSize int) ([]model.Job, int64, error) {
	if s.err != nil {
		return nil, 0, s.err
	}
	return s.jobs, s.total, nil
}

type stubEmbedder struct {
	mu      sync.Mutex
	vec     []float32
	err     error
	failOn  string
	calls   int
	texts   []string
	current atomic.Int32
	peak    atomic.Int32
}

func (s *stubEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	cur := s.current.Add(1)
	for {
		peak := s.peak.Load()
		if cur <= peak || s.peak.CompareAndSwap(peak, cur) {
			break
		}
	}
	time.Sleep(2 * time.Millisecond)
	defer s.current.Add(-1)

	s.mu.Lock()
	s.calls++
	s.texts = append(s.texts, text)
	s.mu.Unlock()

	if s.err != nil {
		return nil, s.err
	}
	if s.failOn != "" && strings.Contains(text, s.failOn) {
		return nil, errors.New("embedding backend rejected document")
	}
	if s.vec != nil {
		return s.vec, nil
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func newTestIngestion(rec recognizerFunc, emb *stubEmbedder, candidates *stubCandidateStore, jobs *stubJobStore) *IngestionUsecase {
	masker := guardrail.NewMasker(rec, []string{"PERSON", "DATE", "ADDRESS"})
	extractor := extract.NewExtractor(extract.DefaultLexicon(), nil)
	return NewIngestionUsecase(masker, extractor, emb, candidates, jobs, zap.NewNop())
}

func TestIngestDocumentMasksBeforePersistence(t *testing.T) {
	rec := spansFor(map[string]string{"Alex Johnson": "PERSON", "2015": "DATE"})
	emb := &stubEmbedder{}
	store := &stubCandidateStore{}
	uc := newTestIngestion(rec, emb, store, &stubJobStore{})

	report, err := uc.IngestDocument(context.Background(), Document{
		ID:   "CAND_0001",
		Text: "My name is Alex Johnson, graduated in 2015, Python Developer.",
	})
	require.NoError(t, err)

	require.Len(t, store.stored, 1)
	clean := store.stored[0].CleanText
	assert.NotContains(t, clean, "Alex Johnson")
	assert.NotContains(t, clean, "2015")
	assert.Contains(t, clean, guardrail.Placeholder)
	assert.Contains(t, clean, "Python Developer")
	assert.Equal(t, 2, report.MaskedSpans)

	// The embedding input is the masked text, never the raw document.
	require.Len(t, emb.texts, 1)
	assert.Equal(t, clean, emb.texts[0])
}

func TestIngestDocumentExtractsSkillsAndRoles(t *testing.T) {
	store := &stubCandidateStore{}
	uc := newTestIngestion(noSpans, &stubEmbedder{}, store, &stubJobStore{})

	report, err := uc.IngestDocument(context.Background(), Document{
		ID:   "CAND_0002",
		Text: "Senior Python developer with Django and Flask experience.",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"developer", "django", "flask", "python"}, report.Skills)
	assert.Equal(t, []string{"developer"}, report.Roles)
	require.Len(t, store.stored, 1)
	assert.Equal(t, report.Skills, store.stored[0].Skills)
	assert.Equal(t, 3, store.stored[0].Dims)
}

func TestIngestDocumentAssignsIDWhenMissing(t *testing.T) {
	store := &stubCandidateStore{}
	uc := newTestIngestion(noSpans, &stubEmbedder{}, store, &stubJobStore{})

	report, err := uc.IngestDocument(context.Background(), Document{Text: "Go engineer."})
	require.NoError(t, err)
	require.NoError(t, uuid.Validate(report.CandidateID))
	require.Len(t, store.stored, 1)
	assert.Equal(t, report.CandidateID, store.stored[0].ID)
}

func TestIngestDocumentEmptyTextFails(t *testing.T) {
	store := &stubCandidateStore{}
	uc := newTestIngestion(noSpans, &stubEmbedder{}, store, &stubJobStore{})

	_, err := uc.IngestDocument(context.Background(), Document{ID: "CAND_0003", Text: "   "})
	require.Error(t, err)
	assert.Empty(t, store.stored)
}

func TestIngestDocumentMaskFailureAborts(t *testing.T) {
	rec := recognizerFunc(func(ctx context.Context, text string) ([]guardrail.Span, error) {
		return nil, errors.New("ner backend down")
	})
	emb := &stubEmbedder{}
	store := &stubCandidateStore{}
	uc := newTestIngestion(rec, emb, store, &stubJobStore{})

	_, err := uc.IngestDocument(context.Background(), Document{ID: "CAND_0004", Text: "Python developer"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrExtractionUnavailable))
	assert.Zero(t, emb.calls)
	assert.Empty(t, store.stored)
}

func TestIngestDocumentEmbedFailureAborts(t *testing.T) {
	store := &stubCandidateStore{}
	uc := newTestIngestion(noSpans, &stubEmbedder{err: errors.New("quota exhausted")}, store, &stubJobStore{})

	_, err := uc.IngestDocument(context.Background(), Document{ID: "CAND_0005", Text: "Python developer"})
	require.Error(t, err)
	assert.Empty(t, store.stored)
}

func TestIngestDocumentStoreFailurePropagates(t *testing.T) {
	store := &stubCandidateStore{err: apperror.StoreUnavailable(errors.New("connection refused"))}
	uc := newTestIngestion(noSpans, &stubEmbedder{}, store, &stubJobStore{})

	_, err := uc.IngestDocument(context.Background(), Document{ID: "CAND_0006", Text: "Python developer"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrStoreUnavailable))
}

func TestIngestBatchIsolatesFailures(t *testing.T) {
	store := &stubCandidateStore{}
	emb := &stubEmbedder{failOn: "malformed"}
	uc := newTestIngestion(noSpans, emb, store, &stubJobStore{})

	report := uc.IngestBatch(context.Background(), []Document{
		{ID: "CAND_A", Text: "Python developer"},
		{ID: "CAND_B", Text: "totally malformed scan output"},
		{ID: "CAND_C", Text: "Django engineer"},
	}, 2)

	require.Len(t, report.Succeeded, 2)
	assert.Equal(t, "CAND_A", report.Succeeded[0].CandidateID)
	assert.Equal(t, "CAND_C", report.Succeeded[1].CandidateID)

	require.Len(t, report.Failed, 1)
	assert.Equal(t, 1, report.Failed[0].Index)
	assert.Equal(t, "CAND_B", report.Failed[0].CandidateID)
	assert.Contains(t, report.Failed[0].Error, "embedding")

	assert.Len(t, store.stored, 2)
}

func TestIngestBatchBoundsConcurrency(t *testing.T) {
	store := &stubCandidateStore{}
	emb := &stubEmbedder{}
	uc := newTestIngestion(noSpans, emb, store, &stubJobStore{})

	docs := make([]Document, 8)
	for i := range docs {
		docs[i] = Document{Text: "Go engineer"}
	}
	report := uc.IngestBatch(context.Background(), docs, 2)

	assert.Len(t, report.Succeeded, 8)
	assert.Empty(t, report.Failed)
	assert.LessOrEqual(t, emb.peak.Load(), int32(2))
}

func TestIngestBatchEmpty(t *testing.T) {
	uc := newTestIngestion(noSpans, &stubEmbedder{}, &stubCandidateStore{}, &stubJobStore{})

	report := uc.IngestBatch(context.Background(), nil, 4)
	assert.Empty(t, report.Succeeded)
	assert.Empty(t, report.Failed)
}

func TestSeedJobsNormalizesSkills(t *testing.T) {
	jobs := &stubJobStore{}
	uc := newTestIngestion(noSpans, &stubEmbedder{}, &stubCandidateStore{}, jobs)

	err := uc.SeedJobs(context.Background(), []JobSeed{
		{ID: "JOB_01", Title: "  Backend Developer  ", RequiredSkills: []string{"Python", " python ", "Django", ""}},
	})
	require.NoError(t, err)

	require.Len(t, jobs.upserts, 1)
	assert.Equal(t, "JOB_01", jobs.upserts[0].ID)
	assert.Equal(t, "Backend Developer", jobs.upserts[0].Title)
	assert.Equal(t, []string{"django", "python"}, jobs.upserts[0].Skills)
}

func TestSeedJobsAssignsIDAndRejectsEmptyTitle(t *testing.T) {
	jobs := &stubJobStore{}
	uc := newTestIngestion(noSpans, &stubEmbedder{}, &stubCandidateStore{}, jobs)

	require.NoError(t, uc.SeedJobs(context.Background(), []JobSeed{{Title: "Data Analyst"}}))
	require.Len(t, jobs.upserts, 1)
	require.NoError(t, uuid.Validate(jobs.upserts[0].ID))

	err := uc.SeedJobs(context.Background(), []JobSeed{{ID: "JOB_02", Title: "   "}})
	require.Error(t, err)
}

func TestListJobsFlattensSkills(t *testing.T) {
	jobs := &stubJobStore{
		jobs: []model.Job{
			{ID: "JOB_01", Title: "Backend Developer", RequiredSkills: []model.Skill{{Name: "django"}, {Name: "python"}}},
			{ID: "JOB_02", Title: "Data Analyst"},
		},
		total: 7,
	}
	uc := newTestIngestion(noSpans, &stubEmbedder{}, &stubCandidateStore{}, jobs)

	out, total, err := uc.ListJobs(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(7), total)
	require.Len(t, out, 2)
	assert.Equal(t, []string{"django", "python"}, out[0].RequiredSkills)
	assert.Empty(t, out[1].RequiredSkills)
}

func TestNormalizeSkills(t *testing.T) {
	assert.Equal(t, []string{"go", "postgresql"}, normalizeSkills([]string{"Go", "PostgreSQL", "go", "  "}))
	assert.Empty(t, normalizeSkills(nil))
}
