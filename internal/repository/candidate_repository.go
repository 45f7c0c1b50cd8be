package repository

import (
	"context"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"talent-graph/internal/apperror"
	"talent-graph/internal/model"
)

type CandidateRepository struct {
	db *gorm.DB
}

func NewCandidateRepository(db *gorm.DB) *CandidateRepository {
	return &CandidateRepository{db}
}

// UpsertCandidate creates the candidate or overwrites its clean text and
// embedding. Re-ingesting an id never duplicates the node; last write wins.
func (r *CandidateRepository) UpsertCandidate(ctx context.Context, id, cleanText string, embedding pgvector.Vector) error {
	if err := upsertCandidate(r.db.WithContext(ctx), id, cleanText, embedding); err != nil {
		return apperror.StoreUnavailable(err)
	}
	return nil
}

// UpsertSkill creates the skill on first reference, keyed by normalized name.
func (r *CandidateRepository) UpsertSkill(ctx context.Context, name string) error {
	if err := upsertSkill(r.db.WithContext(ctx), name); err != nil {
		return apperror.StoreUnavailable(err)
	}
	return nil
}

// LinkCandidateSkill records HAS_SKILL; linking twice is a no-op.
func (r *CandidateRepository) LinkCandidateSkill(ctx context.Context, candidateID, skillName string) error {
	if err := linkCandidateSkill(r.db.WithContext(ctx), candidateID, skillName); err != nil {
		return apperror.StoreUnavailable(err)
	}
	return nil
}

// IngestCandidate writes one document's node, skills, and links in a single
// transaction, so a failed document never leaves a partial write behind.
func (r *CandidateRepository) IngestCandidate(ctx context.Context, id, cleanText string, embedding pgvector.Vector, skills []string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := upsertCandidate(tx, id, cleanText, embedding); err != nil {
			return err
		}
		for _, name := range skills {
			if err := upsertSkill(tx, name); err != nil {
				return err
			}
			if err := linkCandidateSkill(tx, id, name); err != nil {
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

// FindCandidateByID returns the candidate with its skill links, or nil when
// the id is unknown.
func (r *CandidateRepository) FindCandidateByID(ctx context.Context, id string) (*model.Candidate, error) {
	var candidates []model.Candidate
	err := r.db.WithContext(ctx).Preload("Skills").Where("id = ?", id).Limit(1).Find(&candidates).Error
	if err != nil {
		return nil, apperror.StoreUnavailable(err)
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	return &candidates[0], nil
}

func upsertCandidate(tx *gorm.DB, id, cleanText string, embedding pgvector.Vector) error {
	candidate := model.Candidate{ID: id, CleanText: cleanText, Embedding: embedding}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"clean_text", "embedding", "updated_at"}),
	}).Create(&candidate).Error
}

func upsertSkill(tx *gorm.DB, name string) error {
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&model.Skill{Name: name}).Error
}

func linkCandidateSkill(tx *gorm.DB, candidateID, skillName string) error {
	return tx.Exec(
		`INSERT INTO candidate_skills (candidate_id, skill_name) VALUES (?, ?) ON CONFLICT DO NOTHING`,
		candidateID, skillName,
	).Error
}
