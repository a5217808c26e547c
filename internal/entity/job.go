package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Job struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ClientID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"client_id"`
	Client         User       `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"client,omitempty"`
	Title          string     `gorm:"size:255;not null" json:"title"`
	Description    string     `gorm:"type:text;not null" json:"description"`
	Budget         float64    `gorm:"not null" json:"budget"`
	SkillsRequired string     `gorm:"size:255" json:"skills_required"`
	IsOpen         bool       `gorm:"default:true;not null" json:"is_open"`
	Proposals      []Proposal `gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE" json:"proposals,omitempty"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (j *Job) BeforeCreate(tx *gorm.DB) (err error) {
	if j.ID == uuid.Nil {
		j.ID, err = uuid.NewV7()
	}
	return
}
