package proposal

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/workbridge-app/workbridge/internal/entity"
	jobRepo "github.com/workbridge-app/workbridge/internal/modules/job/repository"
	notification "github.com/workbridge-app/workbridge/internal/modules/notification/service"
	proposalDto "github.com/workbridge-app/workbridge/internal/modules/proposal/dto"
	repo "github.com/workbridge-app/workbridge/internal/modules/proposal/repository"
	search "github.com/workbridge-app/workbridge/internal/modules/search/service"
	userRepo "github.com/workbridge-app/workbridge/internal/modules/user/repository"
	"github.com/workbridge-app/workbridge/pkg/apperror"
	commonDto "github.com/workbridge-app/workbridge/pkg/dto"
	"gorm.io/gorm"
)

type Service interface {
	// SubmitProposal creates the freelancer's bid on a job. A repeat
	// submission writes nothing and returns the existing proposal; created
	// reports whether a new row was written.
	SubmitProposal(ctx context.Context, userID, jobID uuid.UUID, req proposalDto.SubmitProposalRequest) (resp *commonDto.ProposalResponse, created bool, err error)
	GetJobProposals(ctx context.Context, userID, jobID uuid.UUID) ([]commonDto.ProposalResponse, error)
	GetMyProposals(ctx context.Context, userID uuid.UUID) ([]commonDto.ProposalResponse, error)
	AcceptProposal(ctx context.Context, userID, proposalID uuid.UUID) (*proposalDto.AcceptProposalResponse, error)
}

type service struct {
	proposalRepo    repo.ProposalRepository
	jobRepo         jobRepo.JobRepository
	userRepo        userRepo.UserRepository
	notificationSvc notification.NotificationService
	searchSvc       search.Service
	redisClient     *redis.Client
	cooldown        time.Duration
}

func NewService(
	proposalRepo repo.ProposalRepository,
	jobRepo jobRepo.JobRepository,
	userRepo userRepo.UserRepository,
	notificationSvc notification.NotificationService,
	searchSvc search.Service,
	redisClient *redis.Client,
	cooldown time.Duration,
) Service {
	return &service{
		proposalRepo:    proposalRepo,
		jobRepo:         jobRepo,
		userRepo:        userRepo,
		notificationSvc: notificationSvc,
		searchSvc:       searchSvc,
		redisClient:     redisClient,
		cooldown:        cooldown,
	}
}

func (s *service) SubmitProposal(ctx context.Context, userID, jobID uuid.UUID, req proposalDto.SubmitProposalRequest) (*commonDto.ProposalResponse, bool, error) {
	user, err := s.userRepo.FindByID(ctx, userID.String())
	if err != nil {
		return nil, false, fmt.Errorf("user not found: %w", apperror.ErrNotFound)
	}

	if !user.IsFreelancer() {
		return nil, false, fmt.Errorf("only freelancers can submit proposals: %w", apperror.ErrForbidden)
	}

	job, err := s.jobRepo.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, fmt.Errorf("job not found: %w", apperror.ErrNotFound)
		}
		return nil, false, err
	}

	// A repeat submission returns the existing row untouched.
	if existing, err := s.proposalRepo.FindByJobAndFreelancer(ctx, jobID, userID); err == nil {
		resp := buildProposalResponse(existing)
		return &resp, false, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	if !job.IsOpen {
		return nil, false, fmt.Errorf("job is closed: %w", apperror.ErrConflict)
	}

	if err := s.checkSubmissionCooldown(ctx, userID); err != nil {
		return nil, false, err
	}

	proposal := &entity.Proposal{
		JobID:        jobID,
		FreelancerID: userID,
		CoverLetter:  req.CoverLetter,
		Rate:         req.Rate,
		Status:       entity.ProposalPending,
	}

	if err := s.proposalRepo.Create(ctx, proposal); err != nil {
		return nil, false, err
	}

	if s.notificationSvc != nil {
		_ = s.notificationSvc.CreateNotification(ctx, &entity.Notification{
			UserID:     job.ClientID,
			ActorID:    userID,
			EntityID:   proposal.ID,
			EntityType: "proposal",
			Type:       entity.NotifProposalSubmitted,
			Message:    fmt.Sprintf("%s submitted a proposal on %q", user.Username, job.Title),
		})
	}

	proposal.Job = *job
	proposal.Freelancer = *user
	resp := buildProposalResponse(proposal)
	return &resp, true, nil
}

// checkSubmissionCooldown applies a short per-freelancer cooldown between
// proposal submissions. Without Redis the check is skipped.
func (s *service) checkSubmissionCooldown(ctx context.Context, userID uuid.UUID) error {
	if s.redisClient == nil || s.cooldown <= 0 {
		return nil
	}

	key := fmt.Sprintf("rate_limit:user:%s:submit_proposal", userID.String())
	wasSet, err := s.redisClient.SetNX(ctx, key, "locked", s.cooldown).Result()
	if err != nil {
		log.Printf("Failed to check proposal cooldown in redis: %v", err)
		return nil
	}
	if !wasSet {
		return fmt.Errorf("please wait before submitting another proposal: %w", apperror.ErrRateLimitExceeded)
	}
	return nil
}

// GetJobProposals lists the bids on a job for its owning client. The lookup
// is owner-scoped, so anyone else gets not-found.
func (s *service) GetJobProposals(ctx context.Context, userID, jobID uuid.UUID) ([]commonDto.ProposalResponse, error) {
	if _, err := s.jobRepo.FindByIDAndClient(ctx, jobID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("job not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	proposals, err := s.proposalRepo.FindByJobID(ctx, jobID)
	if err != nil {
		return nil, err
	}

	responses := make([]commonDto.ProposalResponse, 0, len(proposals))
	for _, proposal := range proposals {
		responses = append(responses, buildProposalResponse(proposal))
	}
	return responses, nil
}

func (s *service) GetMyProposals(ctx context.Context, userID uuid.UUID) ([]commonDto.ProposalResponse, error) {
	proposals, err := s.proposalRepo.FindByFreelancerID(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]commonDto.ProposalResponse, 0, len(proposals))
	for _, proposal := range proposals {
		responses = append(responses, buildProposalResponse(proposal))
	}
	return responses, nil
}

func (s *service) AcceptProposal(ctx context.Context, userID, proposalID uuid.UUID) (*proposalDto.AcceptProposalResponse, error) {
	result, err := s.proposalRepo.Accept(ctx, proposalID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("proposal not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	if !result.AlreadyAccepted {
		s.notifyAcceptance(ctx, userID, result)

		// The job is closed now; it no longer belongs in the search index.
		if s.searchSvc != nil {
			if err := s.searchSvc.RemoveJob(result.Proposal.JobID); err != nil {
				log.Printf("Failed to remove job %s from index: %v", result.Proposal.JobID, err)
			}
		}
	}

	return &proposalDto.AcceptProposalResponse{
		ProposalID:     result.Proposal.ID,
		Status:         result.Proposal.Status,
		JobID:          result.Proposal.JobID,
		ConversationID: result.Conversation.ID,
	}, nil
}

func (s *service) notifyAcceptance(ctx context.Context, clientID uuid.UUID, result *repo.AcceptResult) {
	if s.notificationSvc == nil {
		return
	}

	jobTitle := result.Proposal.Job.Title

	_ = s.notificationSvc.CreateNotification(ctx, &entity.Notification{
		UserID:     result.Proposal.FreelancerID,
		ActorID:    clientID,
		EntityID:   result.Conversation.ID,
		EntityType: "conversation",
		Type:       entity.NotifProposalAccepted,
		Message:    fmt.Sprintf("Your proposal on %q was accepted", jobTitle),
	})

	for _, freelancerID := range result.RejectedFreelancerIDs {
		_ = s.notificationSvc.CreateNotification(ctx, &entity.Notification{
			UserID:     freelancerID,
			ActorID:    clientID,
			EntityID:   result.Proposal.JobID,
			EntityType: "job",
			Type:       entity.NotifProposalRejected,
			Message:    fmt.Sprintf("Your proposal on %q was not selected", jobTitle),
		})
	}
}

func buildProposalResponse(proposal *entity.Proposal) commonDto.ProposalResponse {
	return commonDto.ProposalResponse{
		ID:       proposal.ID,
		JobID:    proposal.JobID,
		JobTitle: proposal.Job.Title,
		Freelancer: commonDto.AuthorResponse{
			Username:  proposal.Freelancer.Username,
			AvatarURL: proposal.Freelancer.AvatarURL,
		},
		CoverLetter: proposal.CoverLetter,
		Rate:        proposal.Rate,
		Status:      proposal.Status,
		CreatedAt:   proposal.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
