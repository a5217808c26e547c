package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/workbridge-app/workbridge/internal/entity"
	"github.com/workbridge-app/workbridge/pkg/apperror"
	"gorm.io/gorm"
)

// AcceptResult carries everything the service needs after the acceptance
// transaction commits: the accepted proposal, the conversation to redirect
// into, and the freelancers whose pending bids were turned down.
type AcceptResult struct {
	Proposal              *entity.Proposal
	Conversation          *entity.Conversation
	RejectedFreelancerIDs []uuid.UUID
	AlreadyAccepted       bool
}

type ProposalRepository interface {
	Create(ctx context.Context, proposal *entity.Proposal) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Proposal, error)
	FindByJobAndFreelancer(ctx context.Context, jobID, freelancerID uuid.UUID) (*entity.Proposal, error)
	FindByJobID(ctx context.Context, jobID uuid.UUID) ([]*entity.Proposal, error)
	FindByFreelancerID(ctx context.Context, freelancerID uuid.UUID) ([]*entity.Proposal, error)
	// Accept runs the whole acceptance workflow in one transaction. The
	// lookup is scoped to the owning client, so a non-owner comes back as
	// record-not-found with nothing written.
	Accept(ctx context.Context, proposalID, clientID uuid.UUID) (*AcceptResult, error)
}

type proposalRepository struct {
	db *gorm.DB
}

func NewProposalRepository(db *gorm.DB) ProposalRepository {
	return &proposalRepository{db: db}
}

func (r *proposalRepository) Create(ctx context.Context, proposal *entity.Proposal) error {
	return r.db.WithContext(ctx).Create(proposal).Error
}

func (r *proposalRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Proposal, error) {
	var proposal entity.Proposal
	if err := r.db.WithContext(ctx).
		Preload("Job").
		Preload("Freelancer").
		Preload("Freelancer.Profile").
		Where("id = ?", id).
		First(&proposal).Error; err != nil {
		return nil, err
	}
	return &proposal, nil
}

func (r *proposalRepository) FindByJobAndFreelancer(ctx context.Context, jobID, freelancerID uuid.UUID) (*entity.Proposal, error) {
	var proposal entity.Proposal
	if err := r.db.WithContext(ctx).
		Preload("Job").
		Preload("Freelancer").
		Where("job_id = ? AND freelancer_id = ?", jobID, freelancerID).
		First(&proposal).Error; err != nil {
		return nil, err
	}
	return &proposal, nil
}

func (r *proposalRepository) FindByJobID(ctx context.Context, jobID uuid.UUID) ([]*entity.Proposal, error) {
	var proposals []*entity.Proposal
	if err := r.db.WithContext(ctx).
		Preload("Job").
		Preload("Freelancer").
		Preload("Freelancer.Profile").
		Where("job_id = ?", jobID).
		Order("created_at ASC").
		Find(&proposals).Error; err != nil {
		return nil, err
	}
	return proposals, nil
}

func (r *proposalRepository) FindByFreelancerID(ctx context.Context, freelancerID uuid.UUID) ([]*entity.Proposal, error) {
	var proposals []*entity.Proposal
	if err := r.db.WithContext(ctx).
		Preload("Job").
		Preload("Freelancer").
		Where("freelancer_id = ?", freelancerID).
		Order("created_at DESC").
		Find(&proposals).Error; err != nil {
		return nil, err
	}
	return proposals, nil
}

func (r *proposalRepository) Accept(ctx context.Context, proposalID, clientID uuid.UUID) (*AcceptResult, error) {
	result := &AcceptResult{}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var proposal entity.Proposal
		if err := tx.
			Preload("Job").
			Preload("Freelancer").
			Joins("JOIN jobs ON jobs.id = proposals.job_id").
			Where("proposals.id = ? AND jobs.client_id = ?", proposalID, clientID).
			First(&proposal).Error; err != nil {
			return err
		}

		switch proposal.Status {
		case entity.ProposalAccepted:
			// Re-running acceptance is a no-op fetch of the conversation.
			var conv entity.Conversation
			if err := tx.
				Where("job_id = ? AND client_id = ? AND freelancer_id = ?",
					proposal.JobID, clientID, proposal.FreelancerID).
				First(&conv).Error; err != nil {
				return err
			}
			result.Proposal = &proposal
			result.Conversation = &conv
			result.AlreadyAccepted = true
			return nil
		case entity.ProposalRejected:
			return fmt.Errorf("proposal was already rejected: %w", apperror.ErrConflict)
		}

		// Guarded close: only one acceptance can ever flip is_open.
		res := tx.Model(&entity.Job{}).
			Where("id = ? AND is_open = ?", proposal.JobID, true).
			Update("is_open", false)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("job is no longer open: %w", apperror.ErrConflict)
		}

		if err := tx.Model(&entity.Proposal{}).
			Where("id = ?", proposal.ID).
			Update("status", entity.ProposalAccepted).Error; err != nil {
			return err
		}
		proposal.Status = entity.ProposalAccepted

		var siblings []entity.Proposal
		if err := tx.
			Where("job_id = ? AND id <> ? AND status = ?",
				proposal.JobID, proposal.ID, entity.ProposalPending).
			Find(&siblings).Error; err != nil {
			return err
		}

		if len(siblings) > 0 {
			if err := tx.Model(&entity.Proposal{}).
				Where("job_id = ? AND id <> ? AND status = ?",
					proposal.JobID, proposal.ID, entity.ProposalPending).
				Update("status", entity.ProposalRejected).Error; err != nil {
				return err
			}
			for _, sibling := range siblings {
				result.RejectedFreelancerIDs = append(result.RejectedFreelancerIDs, sibling.FreelancerID)
			}
		}

		conv := &entity.Conversation{
			JobID:        proposal.JobID,
			ClientID:     clientID,
			FreelancerID: proposal.FreelancerID,
		}
		if err := tx.
			Where("job_id = ? AND client_id = ? AND freelancer_id = ?",
				proposal.JobID, clientID, proposal.FreelancerID).
			FirstOrCreate(conv).Error; err != nil {
			return err
		}

		result.Proposal = &proposal
		result.Conversation = conv
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
