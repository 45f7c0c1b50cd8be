package model

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

// Candidate holds the guardrail-compliant form of one ingested document.
// CleanText is the only free text ever persisted: raw input never reaches
// this struct. The embedding is computed from CleanText at ingestion.
type Candidate struct {
	ID        string          `gorm:"type:varchar(64);primaryKey" json:"id"`
	CleanText string          `gorm:"type:text" json:"clean_text"`
	Embedding pgvector.Vector `gorm:"type:vector(3072)" json:"-"`
	Skills    []Skill         `gorm:"many2many:candidate_skills" json:"skills,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (c *Candidate) TableName() string {
	return "candidates"
}
