package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:50;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

const (
	RoleClient     = "client"
	RoleFreelancer = "freelancer"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username     string    `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	RoleID       *uint     `json:"role_id"`
	Role         Role      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"role"`
	AvatarURL    *string   `gorm:"type:text" json:"avatar_url,omitempty"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	Profile      *Profile  `gorm:"constraint:OnDelete:CASCADE" json:"profile,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// IsClient reports whether the user may post jobs and accept proposals.
func (u *User) IsClient() bool {
	return u.Role.Name == RoleClient
}

// IsFreelancer reports whether the user may submit proposals.
func (u *User) IsFreelancer() bool {
	return u.Role.Name == RoleFreelancer
}

type Profile struct {
	UserID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	FullName    string    `gorm:"size:100;not null" json:"full_name"`
	Title       *string   `gorm:"size:120" json:"title,omitempty"`
	CompanyName *string   `gorm:"size:120" json:"company_name,omitempty"`
	Bio         *string   `gorm:"type:text" json:"bio,omitempty"`
	HourlyRate  *float64  `json:"hourly_rate,omitempty"`
	Skills      *string   `gorm:"size:255" json:"skills,omitempty"`
	Location    *string   `gorm:"size:120" json:"location,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}
