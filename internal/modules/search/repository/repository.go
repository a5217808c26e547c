package repository

import (
	"context"

	"github.com/workbridge-app/workbridge/internal/entity"
	"gorm.io/gorm"
)

// SearchRepository serves keyword search straight from the relational store.
// It is the fallback path when Meilisearch is not configured, and the
// reference semantics: case-insensitive substring match over open or active
// records, deduplicated.
type SearchRepository interface {
	SearchOpenJobs(ctx context.Context, q string, limit int) ([]*entity.Job, error)
	SearchFreelancers(ctx context.Context, q string, limit int) ([]*entity.User, error)
}

type searchRepository struct {
	db *gorm.DB
}

func NewSearchRepository(db *gorm.DB) SearchRepository {
	return &searchRepository{db: db}
}

func (r *searchRepository) SearchOpenJobs(ctx context.Context, q string, limit int) ([]*entity.Job, error) {
	var jobs []*entity.Job
	pattern := "%" + q + "%"

	err := r.db.WithContext(ctx).
		Preload("Client").
		Where("is_open = ?", true).
		Where(
			"LOWER(title) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?) OR LOWER(skills_required) LIKE LOWER(?)",
			pattern, pattern, pattern,
		).
		Order("created_at DESC").
		Limit(limit).
		Find(&jobs).Error
	return jobs, err
}

func (r *searchRepository) SearchFreelancers(ctx context.Context, q string, limit int) ([]*entity.User, error) {
	var users []*entity.User
	pattern := "%" + q + "%"

	err := r.db.WithContext(ctx).
		Preload("Role").
		Preload("Profile").
		Joins("JOIN profiles ON profiles.user_id = users.id").
		Joins("JOIN roles ON roles.id = users.role_id").
		Where("roles.name = ?", entity.RoleFreelancer).
		Where(
			"LOWER(users.username) LIKE LOWER(?) OR LOWER(COALESCE(profiles.skills, '')) LIKE LOWER(?) OR LOWER(COALESCE(profiles.bio, '')) LIKE LOWER(?) OR LOWER(COALESCE(profiles.title, '')) LIKE LOWER(?)",
			pattern, pattern, pattern, pattern,
		).
		Distinct().
		Limit(limit).
		Find(&users).Error
	return users, err
}
