package dto

import (
	"io"
	"time"

	"github.com/workbridge-app/workbridge/internal/entity"
)

// AvatarFile carries the uploaded avatar stream.
type AvatarFile struct {
	Reader   io.Reader
	FileName string
}

type UpdateProfileInput struct {
	Username    *string  `form:"username" json:"username"`
	Password    *string  `form:"password" json:"password"`
	FullName    *string  `form:"full_name" json:"full_name" binding:"omitempty,max=100"`
	Title       *string  `form:"title" json:"title" binding:"omitempty,max=120"`
	CompanyName *string  `form:"company_name" json:"company_name" binding:"omitempty,max=120"`
	Bio         *string  `form:"bio" json:"bio"`
	HourlyRate  *float64 `form:"hourly_rate" json:"hourly_rate" binding:"omitempty,gt=0"`
	Skills      *string  `form:"skills" json:"skills" binding:"omitempty,max=255"`
	Location    *string  `form:"location" json:"location" binding:"omitempty,max=120"`
}

type ProfileResponse struct {
	User    *entity.User    `json:"user"`
	Profile *entity.Profile `json:"profile"`
}

type PublicProfileResponse struct {
	Username    string    `json:"username"`
	Role        string    `json:"role"`
	AvatarURL   *string   `json:"avatar_url,omitempty"`
	FullName    string    `json:"full_name"`
	Title       *string   `json:"title,omitempty"`
	CompanyName *string   `json:"company_name,omitempty"`
	Bio         *string   `json:"bio,omitempty"`
	HourlyRate  *float64  `json:"hourly_rate,omitempty"`
	Skills      *string   `json:"skills,omitempty"`
	Location    *string   `json:"location,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
