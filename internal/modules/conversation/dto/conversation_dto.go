package dto

type SendMessageRequest struct {
	Body          string `json:"body" binding:"required"`
	AttachmentIDs []uint `json:"attachment_ids"`
}
