package dto

import "github.com/google/uuid"

type SubmitProposalRequest struct {
	CoverLetter string  `json:"cover_letter" binding:"required"`
	Rate        float64 `json:"rate" binding:"required,gt=0"`
}

type AcceptProposalResponse struct {
	ProposalID     uuid.UUID `json:"proposal_id"`
	Status         string    `json:"status"`
	JobID          uuid.UUID `json:"job_id"`
	ConversationID uuid.UUID `json:"conversation_id"`
}
