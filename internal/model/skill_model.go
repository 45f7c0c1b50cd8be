package model

// Skill is a normalized vocabulary entry, shared by every candidate and job
// that references it. Name is the key; creation is idempotent on first
// reference.
type Skill struct {
	Name string `gorm:"type:varchar(255);primaryKey" json:"name"`
}

func (s *Skill) TableName() string {
	return "skills"
}
