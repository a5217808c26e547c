package job

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/google/uuid"
	"github.com/workbridge-app/workbridge/internal/entity"
	jobDto "github.com/workbridge-app/workbridge/internal/modules/job/dto"
	repo "github.com/workbridge-app/workbridge/internal/modules/job/repository"
	proposalRepo "github.com/workbridge-app/workbridge/internal/modules/proposal/repository"
	search "github.com/workbridge-app/workbridge/internal/modules/search/service"
	userRepo "github.com/workbridge-app/workbridge/internal/modules/user/repository"
	"github.com/workbridge-app/workbridge/pkg/apperror"
	commonDto "github.com/workbridge-app/workbridge/pkg/dto"
	"gorm.io/gorm"
)

type Service interface {
	CreateJob(ctx context.Context, userID uuid.UUID, req jobDto.CreateJobRequest) (*commonDto.JobResponse, error)
	GetJobs(ctx context.Context, filter commonDto.JobFilter) (*commonDto.PaginatedJobResponse, error)
	GetJob(ctx context.Context, userID, jobID uuid.UUID) (*commonDto.JobDetailResponse, error)
	UpdateJob(ctx context.Context, userID, jobID uuid.UUID, req jobDto.UpdateJobRequest) (*commonDto.JobResponse, error)
	DeleteJob(ctx context.Context, userID, jobID uuid.UUID) error
}

type service struct {
	jobRepo      repo.JobRepository
	userRepo     userRepo.UserRepository
	proposalRepo proposalRepo.ProposalRepository
	searchSvc    search.Service
}

func NewService(jobRepo repo.JobRepository, userRepo userRepo.UserRepository, proposalRepo proposalRepo.ProposalRepository, searchSvc search.Service) Service {
	return &service{
		jobRepo:      jobRepo,
		userRepo:     userRepo,
		proposalRepo: proposalRepo,
		searchSvc:    searchSvc,
	}
}

func (s *service) CreateJob(ctx context.Context, userID uuid.UUID, req jobDto.CreateJobRequest) (*commonDto.JobResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID.String())
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", apperror.ErrNotFound)
	}

	if !user.IsClient() {
		return nil, fmt.Errorf("only clients can post jobs: %w", apperror.ErrForbidden)
	}

	job := &entity.Job{
		ClientID:       userID,
		Title:          req.Title,
		Description:    req.Description,
		Budget:         req.Budget,
		SkillsRequired: req.SkillsRequired,
		IsOpen:         true,
	}

	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, err
	}

	job.Client = *user
	if s.searchSvc != nil {
		if err := s.searchSvc.IndexJob(job); err != nil {
			log.Printf("Failed to index job %s: %v", job.ID, err)
		}
	}

	resp := s.buildJobResponse(ctx, job)
	return &resp, nil
}

func (s *service) GetJobs(ctx context.Context, filter commonDto.JobFilter) (*commonDto.PaginatedJobResponse, error) {
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	offset := (page - 1) * limit

	jobs, total, err := s.jobRepo.FindOpen(ctx, filter.Search, offset, limit)
	if err != nil {
		return nil, err
	}

	responses := make([]commonDto.JobResponse, 0, len(jobs))
	for _, job := range jobs {
		responses = append(responses, s.buildJobResponse(ctx, job))
	}

	return &commonDto.PaginatedJobResponse{
		Data: responses,
		Meta: commonDto.PaginationMeta{
			CurrentPage: page,
			TotalPages:  int(math.Ceil(float64(total) / float64(limit))),
			TotalItems:  total,
			Limit:       limit,
		},
	}, nil
}

func (s *service) GetJob(ctx context.Context, userID, jobID uuid.UUID) (*commonDto.JobDetailResponse, error) {
	job, err := s.jobRepo.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("job not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	detail := &commonDto.JobDetailResponse{
		JobResponse: s.buildJobResponse(ctx, job),
	}

	// Surface the caller's own bid so the detail view can show its status.
	proposal, err := s.proposalRepo.FindByJobAndFreelancer(ctx, jobID, userID)
	if err == nil {
		detail.MyProposal = &commonDto.ProposalResponse{
			ID:       proposal.ID,
			JobID:    proposal.JobID,
			JobTitle: job.Title,
			Freelancer: commonDto.AuthorResponse{
				Username:  proposal.Freelancer.Username,
				AvatarURL: proposal.Freelancer.AvatarURL,
			},
			CoverLetter: proposal.CoverLetter,
			Rate:        proposal.Rate,
			Status:      proposal.Status,
			CreatedAt:   proposal.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return detail, nil
}

func (s *service) UpdateJob(ctx context.Context, userID, jobID uuid.UUID, req jobDto.UpdateJobRequest) (*commonDto.JobResponse, error) {
	// Owner-scoped lookup: a non-owner gets not-found, never forbidden.
	job, err := s.jobRepo.FindByIDAndClient(ctx, jobID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("job not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	if req.Title != nil {
		job.Title = *req.Title
	}
	if req.Description != nil {
		job.Description = *req.Description
	}
	if req.Budget != nil {
		job.Budget = *req.Budget
	}
	if req.SkillsRequired != nil {
		job.SkillsRequired = *req.SkillsRequired
	}

	if err := s.jobRepo.Update(ctx, job); err != nil {
		return nil, err
	}

	if s.searchSvc != nil {
		if err := s.searchSvc.IndexJob(job); err != nil {
			log.Printf("Failed to reindex job %s: %v", job.ID, err)
		}
	}

	resp := s.buildJobResponse(ctx, job)
	return &resp, nil
}

func (s *service) DeleteJob(ctx context.Context, userID, jobID uuid.UUID) error {
	job, err := s.jobRepo.FindByIDAndClient(ctx, jobID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("job not found: %w", apperror.ErrNotFound)
		}
		return err
	}

	if err := s.jobRepo.Delete(ctx, job.ID); err != nil {
		return err
	}

	if s.searchSvc != nil {
		if err := s.searchSvc.RemoveJob(job.ID); err != nil {
			log.Printf("Failed to remove job %s from index: %v", job.ID, err)
		}
	}

	return nil
}

func (s *service) buildJobResponse(ctx context.Context, job *entity.Job) commonDto.JobResponse {
	count, err := s.jobRepo.CountProposals(ctx, job.ID)
	if err != nil {
		count = 0
	}

	return commonDto.JobResponse{
		ID:             job.ID,
		Title:          job.Title,
		Description:    job.Description,
		Budget:         job.Budget,
		SkillsRequired: job.SkillsRequired,
		IsOpen:         job.IsOpen,
		Client: commonDto.AuthorResponse{
			Username:  job.Client.Username,
			AvatarURL: job.Client.AvatarURL,
		},
		ProposalCount: count,
		CreatedAt:     job.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:     job.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
