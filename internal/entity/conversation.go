package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Conversation is the private message channel opened when a client accepts a
// freelancer's proposal. The composite unique index makes the acceptance
// workflow's get-or-create idempotent even under concurrent acceptances.
type Conversation struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	JobID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_conversation_parties" json:"job_id"`
	Job          Job       `gorm:"constraint:OnDelete:CASCADE" json:"job,omitempty"`
	ClientID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_conversation_parties" json:"client_id"`
	Client       User      `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"client,omitempty"`
	FreelancerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_conversation_parties" json:"freelancer_id"`
	Freelancer   User      `gorm:"foreignKey:FreelancerID;constraint:OnDelete:CASCADE" json:"freelancer,omitempty"`
	Messages     []Message `gorm:"foreignKey:ConversationID" json:"messages,omitempty"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (c *Conversation) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID, err = uuid.NewV7()
	}
	return
}

// HasParticipant reports whether the user is one of the two conversation parties.
func (c *Conversation) HasParticipant(userID uuid.UUID) bool {
	return c.ClientID == userID || c.FreelancerID == userID
}

type Message struct {
	ID             uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	ConversationID uuid.UUID    `gorm:"type:uuid;not null;index" json:"conversation_id"`
	SenderID       uuid.UUID    `gorm:"type:uuid;not null" json:"sender_id"`
	Sender         User         `gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE" json:"sender,omitempty"`
	Body           string       `gorm:"type:text;not null" json:"body"`
	Attachments    []Attachment `gorm:"foreignKey:MessageID" json:"attachments,omitempty"`
	CreatedAt      time.Time    `gorm:"autoCreateTime" json:"created_at"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID, err = uuid.NewV7()
	}
	return
}
