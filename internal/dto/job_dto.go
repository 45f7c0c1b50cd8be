package dto

type UpsertJobRequest struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	RequiredSkills []string `json:"required_skills"`
}

type JobDTO struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	RequiredSkills []string `json:"required_skills"`
}
