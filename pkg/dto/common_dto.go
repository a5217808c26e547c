package dto

import (
	"github.com/google/uuid"
)

type AuthorResponse struct {
	Username  string  `json:"username"`
	AvatarURL *string `json:"avatar_url"`
}

type JobFilter struct {
	Search string `form:"search"`
	Page   int    `form:"page" binding:"omitempty,min=1"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=50"`
}

type PaginationMeta struct {
	CurrentPage int   `json:"current_page"`
	TotalPages  int   `json:"total_pages"`
	TotalItems  int64 `json:"total_items"`
	Limit       int   `json:"limit"`
}

type JobResponse struct {
	ID             uuid.UUID      `json:"id"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	Budget         float64        `json:"budget"`
	SkillsRequired string         `json:"skills_required"`
	IsOpen         bool           `json:"is_open"`
	Client         AuthorResponse `json:"client"`
	ProposalCount  int64          `json:"proposal_count"`
	CreatedAt      string         `json:"created_at"`
	UpdatedAt      string         `json:"updated_at"`
}

type JobDetailResponse struct {
	JobResponse
	MyProposal *ProposalResponse `json:"my_proposal,omitempty"`
}

type PaginatedJobResponse struct {
	Data []JobResponse  `json:"data"`
	Meta PaginationMeta `json:"meta"`
}

type ProposalResponse struct {
	ID          uuid.UUID      `json:"id"`
	JobID       uuid.UUID      `json:"job_id"`
	JobTitle    string         `json:"job_title"`
	Freelancer  AuthorResponse `json:"freelancer"`
	CoverLetter string         `json:"cover_letter"`
	Rate        float64        `json:"rate"`
	Status      string         `json:"status"`
	CreatedAt   string         `json:"created_at"`
}

type AttachmentResponse struct {
	ID       uint   `json:"id"`
	FileURL  string `json:"file_url"`
	FileType string `json:"file_type"`
}

type MessageResponse struct {
	ID          uuid.UUID            `json:"id"`
	Sender      AuthorResponse       `json:"sender"`
	Body        string               `json:"body"`
	Attachments []AttachmentResponse `json:"attachments"`
	CreatedAt   string               `json:"created_at"`
}

type ConversationResponse struct {
	ID         uuid.UUID         `json:"id"`
	JobID      uuid.UUID         `json:"job_id"`
	JobTitle   string            `json:"job_title"`
	Client     AuthorResponse    `json:"client"`
	Freelancer AuthorResponse    `json:"freelancer"`
	Messages   []MessageResponse `json:"messages,omitempty"`
	CreatedAt  string            `json:"created_at"`
}
