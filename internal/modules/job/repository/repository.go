package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/workbridge-app/workbridge/internal/entity"
	"gorm.io/gorm"
)

type JobRepository interface {
	Create(ctx context.Context, job *entity.Job) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Job, error)
	// FindByIDAndClient scopes the lookup to the owning client, so a
	// non-owner request comes back as record-not-found.
	FindByIDAndClient(ctx context.Context, id, clientID uuid.UUID) (*entity.Job, error)
	FindOpen(ctx context.Context, search string, offset, limit int) ([]*entity.Job, int64, error)
	FindByClientID(ctx context.Context, clientID uuid.UUID) ([]*entity.Job, error)
	CountProposals(ctx context.Context, jobID uuid.UUID) (int64, error)
	Update(ctx context.Context, job *entity.Job) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type jobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) JobRepository {
	return &jobRepository{db: db}
}

func (r *jobRepository) Create(ctx context.Context, job *entity.Job) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *jobRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Job, error) {
	var job entity.Job
	if err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Client.Profile").
		Where("id = ?", id).
		First(&job).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *jobRepository) FindByIDAndClient(ctx context.Context, id, clientID uuid.UUID) (*entity.Job, error) {
	var job entity.Job
	if err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Client.Profile").
		Where("id = ? AND client_id = ?", id, clientID).
		First(&job).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *jobRepository) FindOpen(ctx context.Context, search string, offset, limit int) ([]*entity.Job, int64, error) {
	var jobs []*entity.Job
	var total int64

	query := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Client.Profile").
		Where("is_open = ?", true)

	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where(
			"LOWER(title) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?) OR LOWER(skills_required) LIKE LOWER(?)",
			pattern, pattern, pattern,
		)
	}

	if err := query.Model(&entity.Job{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&jobs).Error; err != nil {
		return nil, 0, err
	}

	return jobs, total, nil
}

func (r *jobRepository) FindByClientID(ctx context.Context, clientID uuid.UUID) ([]*entity.Job, error) {
	var jobs []*entity.Job
	if err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("created_at DESC").
		Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *jobRepository) CountProposals(ctx context.Context, jobID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entity.Proposal{}).
		Where("job_id = ?", jobID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *jobRepository) Update(ctx context.Context, job *entity.Job) error {
	return r.db.WithContext(ctx).Save(job).Error
}

func (r *jobRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("job_id = ?", id).Delete(&entity.Proposal{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.Job{}, id).Error
	})
}
