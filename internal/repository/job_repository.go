package repository

import (
	"context"
	"strings"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"talent-graph/internal/apperror"
	"talent-graph/internal/model"
)

type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db}
}

// CandidateMatch is one traversal hit: a candidate sharing at least one
// required skill with the job, with the similarity of its stored embedding
// to the query vector. Candidates with zero overlap never appear because the
// traversal itself excludes them.
type CandidateMatch struct {
	CandidateID   string
	CleanText     string
	MatchedSkills []string
	TotalRequired int
	Similarity    float64
}

type matchRow struct {
	CandidateID string
	CleanText   string
	SkillName   string
	Similarity  float64
}

// UpsertJob writes the job, its skills, and REQUIRES_SKILL links in one
// transaction. Re-seeding the same id updates the title and adds links.
func (r *JobRepository) UpsertJob(ctx context.Context, id, title string, requiredSkills []string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		job := model.Job{ID: id, Title: title}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "updated_at"}),
		}).Create(&job).Error; err != nil {
			return err
		}
		for _, name := range requiredSkills {
			if err := upsertSkill(tx, name); err != nil {
				return err
			}
			if err := tx.Exec(
				`INSERT INTO job_skills (job_id, skill_name) VALUES (?, ?) ON CONFLICT DO NOTHING`,
				id, name,
			).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return apperror.StoreUnavailable(err)
	}
	return nil
}

// ResolveJob maps a free-form query to a known job. First pass: shortest
// title containing the query (case-insensitive). Fallback for long queries:
// the longest known title contained in the query. Unknown queries resolve to
// nil without error.
func (r *JobRepository) ResolveJob(ctx context.Context, query string) (*model.Job, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil, nil
	}

	var jobs []model.Job
	err := r.db.WithContext(ctx).Raw(
		`SELECT id, title FROM jobs WHERE LOWER(title) LIKE ? ORDER BY LENGTH(title), id LIMIT 1`,
		"%"+escapeLike(q)+"%",
	).Scan(&jobs).Error
	if err != nil {
		return nil, apperror.StoreUnavailable(err)
	}
	if len(jobs) > 0 {
		return &jobs[0], nil
	}

	var all []model.Job
	if err := r.db.WithContext(ctx).Raw(`SELECT id, title FROM jobs`).Scan(&all).Error; err != nil {
		return nil, apperror.StoreUnavailable(err)
	}
	var best *model.Job
	for i := range all {
		title := strings.ToLower(all[i].Title)
		if title == "" || !strings.Contains(q, title) {
			continue
		}
		if best == nil ||
			len(title) > len(strings.ToLower(best.Title)) ||
			(len(title) == len(strings.ToLower(best.Title)) && all[i].ID < best.ID) {
			best = &all[i]
		}
	}
	return best, nil
}

// FindCandidatesForJob traverses HAS_SKILL/REQUIRES_SKILL for every
// candidate sharing a required skill with the job, computing the cosine
// similarity between the stored embedding and queryVec inside the same
// query. Jobs with an empty requirement baseline match nobody.
func (r *JobRepository) FindCandidatesForJob(ctx context.Context, jobID string, queryVec pgvector.Vector) ([]CandidateMatch, error) {
	required, err := r.countRequiredSkills(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if required == 0 {
		return nil, nil
	}

	var rows []matchRow
	err = r.db.WithContext(ctx).Raw(`
		SELECT c.id AS candidate_id,
		       c.clean_text,
		       s.name AS skill_name,
		       CASE WHEN c.embedding IS NULL THEN 0
		            ELSE 1 - (c.embedding <=> ?) END AS similarity
		FROM job_skills js
		JOIN skills s ON s.name = js.skill_name
		JOIN candidate_skills cs ON cs.skill_name = s.name
		JOIN candidates c ON c.id = cs.candidate_id
		WHERE js.job_id = ?
		ORDER BY c.id, s.name
	`, queryVec, jobID).Scan(&rows).Error
	if err != nil {
		return nil, apperror.StoreUnavailable(err)
	}
	return groupMatches(rows, required), nil
}

// ListJobs pages through the requirement baseline for the dashboard side.
func (r *JobRepository) ListJobs(ctx context.Context, page, pageSize int) ([]model.Job, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Job{}).Count(&total).Error; err != nil {
		return nil, 0, apperror.StoreUnavailable(err)
	}
	var jobs []model.Job
	err := r.db.WithContext(ctx).
		Preload("RequiredSkills").
		Order("title ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&jobs).Error
	if err != nil {
		return nil, 0, apperror.StoreUnavailable(err)
	}
	return jobs, total, nil
}

func (r *JobRepository) countRequiredSkills(ctx context.Context, jobID string) (int, error) {
	var count int
	err := r.db.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM job_skills WHERE job_id = ?`, jobID,
	).Scan(&count).Error
	if err != nil {
		return 0, apperror.StoreUnavailable(err)
	}
	return count, nil
}

// groupMatches folds traversal rows (ordered by candidate id, skill name)
// into one CandidateMatch per candidate.
func groupMatches(rows []matchRow, totalRequired int) []CandidateMatch {
	var matches []CandidateMatch
	for _, row := range rows {
		if n := len(matches); n > 0 && matches[n-1].CandidateID == row.CandidateID {
			matches[n-1].MatchedSkills = append(matches[n-1].MatchedSkills, row.SkillName)
			continue
		}
		matches = append(matches, CandidateMatch{
			CandidateID:   row.CandidateID,
			CleanText:     row.CleanText,
			MatchedSkills: []string{row.SkillName},
			TotalRequired: totalRequired,
			Similarity:    row.Similarity,
		})
	}
	return matches
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
