package dto

type CreateJobRequest struct {
	Title          string  `json:"title" binding:"required,max=255"`
	Description    string  `json:"description" binding:"required"`
	Budget         float64 `json:"budget" binding:"required,gt=0"`
	SkillsRequired string  `json:"skills_required" binding:"max=255"`
}

type UpdateJobRequest struct {
	Title          *string  `json:"title" binding:"omitempty,max=255"`
	Description    *string  `json:"description"`
	Budget         *float64 `json:"budget" binding:"omitempty,gt=0"`
	SkillsRequired *string  `json:"skills_required" binding:"omitempty,max=255"`
}
