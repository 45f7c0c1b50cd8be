package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"

	"talent-graph/internal/apperror"
	"talent-graph/internal/config"
	"talent-graph/internal/dto"
	"talent-graph/internal/metrics"
	"talent-graph/internal/model"
	"talent-graph/internal/repository"
	"talent-graph/internal/service"
	"talent-graph/internal/util"
)

// rationaleSystemInstruction is pinned for every explanation call and is not
// caller-configurable. It is the second half of the guardrail: the first half
// masks stored text, this half constrains what the model may say about it.
const rationaleSystemInstruction = "You are an expert Talent Analyst. Generate a professional match rationale. " +
	"Your response MUST only be based on the provided skills and experience. " +
	"DO NOT mention names, age, or any protected characteristics."

// sentinelRationale replaces the rationale whenever generation fails; the
// candidate itself stays in the result set.
const sentinelRationale = "Rationale unavailable for this candidate."

// JobFinder is the slice of the job repository that retrieval needs.
type JobFinder interface {
	ResolveJob(ctx context.Context, query string) (*model.Job, error)
	FindCandidatesForJob(ctx context.Context, jobID string, queryVec pgvector.Vector) ([]repository.CandidateMatch, error)
}

// Generator produces free text under a fixed system instruction.
type Generator interface {
	GenerateContent(ctx context.Context, systemInstruction, prompt string) (string, error)
}

type SearchUsecase struct {
	jobs      JobFinder
	embedder  service.EmbeddingProvider
	generator Generator
	cfg       *config.SearchConfig
	log       *zap.Logger
}

func NewSearchUsecase(jobs JobFinder, embedder service.EmbeddingProvider, generator Generator, cfg *config.SearchConfig, log *zap.Logger) *SearchUsecase {
	return &SearchUsecase{jobs: jobs, embedder: embedder, generator: generator, cfg: cfg, log: log}
}

// Search resolves the query to a seeded job, walks the skill graph for
// candidates holding at least one required skill, and ranks them by the
// weighted blend of requirement coverage and embedding similarity. A query
// that matches no job yields an empty slice, not an error.
func (uc *SearchUsecase) Search(ctx context.Context, query string, topK int, minThreshold float64) ([]dto.RetrievalResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	topK = uc.clampTopK(topK)
	minThreshold = clamp01(minThreshold)

	job, err := uc.jobs.ResolveJob(ctx, query)
	if err != nil {
		return nil, err
	}
	if job == nil {
		uc.log.Info("no job matches query", zap.String("query", query))
		return []dto.RetrievalResult{}, nil
	}

	queryVec, err := uc.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	matches, err := uc.jobs.FindCandidatesForJob(ctx, job.ID, pgvector.NewVector(queryVec))
	if err != nil {
		return nil, err
	}

	results := uc.rank(matches, topK, minThreshold)
	metrics.Searches.Inc()
	uc.log.Info("search completed",
		zap.String("job_id", job.ID),
		zap.String("job_title", job.Title),
		zap.Int("candidates_considered", len(matches)),
		zap.Int("results", len(results)))
	return results, nil
}

// rank turns raw graph matches into scored results. Candidates whose job has
// no requirements are dropped rather than scored against a zero denominator.
func (uc *SearchUsecase) rank(matches []repository.CandidateMatch, topK int, minThreshold float64) []dto.RetrievalResult {
	results := make([]dto.RetrievalResult, 0, len(matches))
	for _, m := range matches {
		if m.TotalRequired <= 0 {
			continue
		}
		coverage := float64(len(m.MatchedSkills)) / float64(m.TotalRequired)
		similarity := clamp01(m.Similarity)
		score := uc.cfg.CoverageWeight*coverage + uc.cfg.SimilarityWeight*similarity
		if score < minThreshold {
			continue
		}
		results = append(results, dto.RetrievalResult{
			CandidateID:   m.CandidateID,
			MatchedSkills: append([]string(nil), m.MatchedSkills...),
			TotalRequired: m.TotalRequired,
			Coverage:      coverage,
			Similarity:    similarity,
			Score:         score,
			ContextChunk:  m.CleanText,
		})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if results[i].Coverage != results[j].Coverage {
			return results[i].Coverage > results[j].Coverage
		}
		return results[i].CandidateID < results[j].CandidateID
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results
}

// Explain fills in a rationale for every result. Failures degrade to the
// sentinel message per candidate; the ranked sequence is never shortened.
func (uc *SearchUsecase) Explain(ctx context.Context, results []dto.RetrievalResult, jobQuery string) []dto.RetrievalResult {
	out := make([]dto.RetrievalResult, len(results))
	copy(out, results)
	for i := range out {
		rationale, err := uc.explainOne(ctx, out[i], jobQuery)
		if err != nil {
			metrics.GenerationFailures.Inc()
			uc.log.Warn("rationale generation failed",
				zap.String("candidate_id", out[i].CandidateID),
				zap.Error(err))
			out[i].Rationale = sentinelRationale
			continue
		}
		out[i].Rationale = rationale
	}
	return out
}

func (uc *SearchUsecase) explainOne(ctx context.Context, r dto.RetrievalResult, jobQuery string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, uc.cfg.GenerationTimeout)
	defer cancel()

	text, err := uc.generator.GenerateContent(callCtx, rationaleSystemInstruction, buildRationalePrompt(r, jobQuery))
	if err != nil {
		return "", apperror.GenerationFailure(err)
	}
	text = util.StripMarkup(text)
	if text == "" {
		return "", apperror.GenerationFailure(fmt.Errorf("model returned empty rationale"))
	}
	return text, nil
}

func buildRationalePrompt(r dto.RetrievalResult, jobQuery string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Job Query: %s\n---\n", jobQuery)
	fmt.Fprintf(&b, "Candidate ID: %s\n", r.CandidateID)
	fmt.Fprintf(&b, "Matched Skills: %s\n", strings.Join(r.MatchedSkills, ", "))
	fmt.Fprintf(&b, "Match Score: %.2f\n---\n", r.Score)
	fmt.Fprintf(&b, "Profile Context:\n%s\n---\n", r.ContextChunk)
	b.WriteString("Explain in two or three sentences why this candidate fits the job requirements.")
	return b.String()
}

func (uc *SearchUsecase) clampTopK(topK int) int {
	if topK <= 0 {
		return uc.cfg.DefaultTopK
	}
	if topK > uc.cfg.MaxTopK {
		return uc.cfg.MaxTopK
	}
	return topK
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
