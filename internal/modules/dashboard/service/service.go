package dashboard

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/workbridge-app/workbridge/internal/entity"
	dashboardDto "github.com/workbridge-app/workbridge/internal/modules/dashboard/dto"
	jobRepo "github.com/workbridge-app/workbridge/internal/modules/job/repository"
	proposal "github.com/workbridge-app/workbridge/internal/modules/proposal/service"
	userRepo "github.com/workbridge-app/workbridge/internal/modules/user/repository"
	"github.com/workbridge-app/workbridge/pkg/apperror"
	commonDto "github.com/workbridge-app/workbridge/pkg/dto"
)

// DashboardService assembles the role-specific home view: posted jobs with
// proposal counts for clients, submitted proposals for freelancers.
type DashboardService interface {
	GetDashboard(ctx context.Context, userID uuid.UUID) (any, error)
}

type dashboardService struct {
	userRepo    userRepo.UserRepository
	jobRepo     jobRepo.JobRepository
	proposalSvc proposal.Service
}

func NewDashboardService(userRepo userRepo.UserRepository, jobRepo jobRepo.JobRepository, proposalSvc proposal.Service) DashboardService {
	return &dashboardService{
		userRepo:    userRepo,
		jobRepo:     jobRepo,
		proposalSvc: proposalSvc,
	}
}

func (s *dashboardService) GetDashboard(ctx context.Context, userID uuid.UUID) (any, error) {
	user, err := s.userRepo.FindByID(ctx, userID.String())
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", apperror.ErrNotFound)
	}

	switch {
	case user.IsClient():
		return s.buildClientDashboard(ctx, user)
	case user.IsFreelancer():
		return s.buildFreelancerDashboard(ctx, user)
	default:
		return nil, fmt.Errorf("user has no role assigned: %w", apperror.ErrForbidden)
	}
}

func (s *dashboardService) buildClientDashboard(ctx context.Context, user *entity.User) (*dashboardDto.ClientDashboard, error) {
	jobs, err := s.jobRepo.FindByClientID(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	responses := make([]commonDto.JobResponse, 0, len(jobs))
	openCount := 0
	for _, job := range jobs {
		if job.IsOpen {
			openCount++
		}

		count, err := s.jobRepo.CountProposals(ctx, job.ID)
		if err != nil {
			count = 0
		}

		responses = append(responses, commonDto.JobResponse{
			ID:             job.ID,
			Title:          job.Title,
			Description:    job.Description,
			Budget:         job.Budget,
			SkillsRequired: job.SkillsRequired,
			IsOpen:         job.IsOpen,
			Client: commonDto.AuthorResponse{
				Username:  user.Username,
				AvatarURL: user.AvatarURL,
			},
			ProposalCount: count,
			CreatedAt:     job.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			UpdatedAt:     job.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	return &dashboardDto.ClientDashboard{
		Role:      entity.RoleClient,
		TotalJobs: len(jobs),
		OpenJobs:  openCount,
		Jobs:      responses,
	}, nil
}

func (s *dashboardService) buildFreelancerDashboard(ctx context.Context, user *entity.User) (*dashboardDto.FreelancerDashboard, error) {
	proposals, err := s.proposalSvc.GetMyProposals(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	accepted := 0
	for _, p := range proposals {
		if p.Status == entity.ProposalAccepted {
			accepted++
		}
	}

	return &dashboardDto.FreelancerDashboard{
		Role:              entity.RoleFreelancer,
		TotalProposals:    len(proposals),
		AcceptedProposals: accepted,
		Proposals:         proposals,
	}, nil
}
