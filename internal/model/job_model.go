package model

import (
	"time"
)

// Job is an occupation with its requirement baseline. Jobs arrive through
// their own ingestion path (postings or an occupation taxonomy) and are
// read-only from the retrieval engine's perspective.
type Job struct {
	ID             string    `gorm:"type:varchar(64);primaryKey" json:"id"`
	Title          string    `gorm:"type:varchar(255);index" json:"title"`
	RequiredSkills []Skill   `gorm:"many2many:job_skills" json:"required_skills,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (j *Job) TableName() string {
	return "jobs"
}
