package dto

type SearchQuery struct {
	Q          string `form:"q" binding:"required"`
	SearchType string `form:"search_type" binding:"omitempty,oneof=jobs freelancers"`
	Limit      int    `form:"limit" binding:"omitempty,min=1,max=50"`
}

type JobResult struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	Budget         float64 `json:"budget"`
	SkillsRequired string  `json:"skills_required"`
	ClientUsername string  `json:"client_username"`
	CreatedAt      string  `json:"created_at"`
}

type FreelancerResult struct {
	Username   string   `json:"username"`
	FullName   string   `json:"full_name"`
	Title      *string  `json:"title,omitempty"`
	Bio        *string  `json:"bio,omitempty"`
	Skills     *string  `json:"skills,omitempty"`
	Location   *string  `json:"location,omitempty"`
	HourlyRate *float64 `json:"hourly_rate,omitempty"`
	AvatarURL  *string  `json:"avatar_url,omitempty"`
}

type SearchResponse struct {
	Query       string             `json:"query"`
	SearchType  string             `json:"search_type"`
	Jobs        []JobResult        `json:"jobs,omitempty"`
	Freelancers []FreelancerResult `json:"freelancers,omitempty"`
}
