package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ProposalPending  = "pending"
	ProposalAccepted = "accepted"
	ProposalRejected = "rejected"
)

// Proposal is a freelancer's bid on a job. At most one row exists per
// (job, freelancer) pair; status only ever moves out of pending.
type Proposal struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	JobID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_job_freelancer" json:"job_id"`
	Job          Job       `gorm:"constraint:OnDelete:CASCADE" json:"job,omitempty"`
	FreelancerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_job_freelancer" json:"freelancer_id"`
	Freelancer   User      `gorm:"foreignKey:FreelancerID;constraint:OnDelete:CASCADE" json:"freelancer,omitempty"`
	CoverLetter  string    `gorm:"type:text;not null" json:"cover_letter"`
	Rate         float64   `gorm:"not null" json:"rate"`
	Status       string    `gorm:"size:20;default:pending;not null;index" json:"status"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *Proposal) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID, err = uuid.NewV7()
	}
	return
}
