package proposal

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workbridge-app/workbridge/internal/bootstrap"
	"github.com/workbridge-app/workbridge/internal/entity"
	jobRepo "github.com/workbridge-app/workbridge/internal/modules/job/repository"
	notifRepo "github.com/workbridge-app/workbridge/internal/modules/notification/repository"
	notifService "github.com/workbridge-app/workbridge/internal/modules/notification/service"
	proposalDto "github.com/workbridge-app/workbridge/internal/modules/proposal/dto"
	repo "github.com/workbridge-app/workbridge/internal/modules/proposal/repository"
	userRepo "github.com/workbridge-app/workbridge/internal/modules/user/repository"
	"github.com/workbridge-app/workbridge/pkg/apperror"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, bootstrap.Migrate(db))
	require.NoError(t, bootstrap.SeedRoles(db))
	return db
}

func createUser(t *testing.T, db *gorm.DB, username, roleName string) *entity.User {
	t.Helper()
	var role entity.Role
	require.NoError(t, db.Where("name = ?", roleName).First(&role).Error)

	user := &entity.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hashed",
		RoleID:       &role.ID,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createJob(t *testing.T, db *gorm.DB, client *entity.User, title string) *entity.Job {
	t.Helper()
	job := &entity.Job{
		ClientID:       client.ID,
		Title:          title,
		Description:    "build the thing",
		Budget:         1500,
		SkillsRequired: "go, postgres",
		IsOpen:         true,
	}
	require.NoError(t, db.Create(job).Error)
	return job
}

func newTestService(db *gorm.DB) Service {
	return NewService(
		repo.NewProposalRepository(db),
		jobRepo.NewJobRepository(db),
		userRepo.NewUserRepository(db),
		notifService.NewNotificationService(notifRepo.NewNotificationRepository(db), nil),
		nil,
		nil,
		0,
	)
}

func TestSubmitProposal(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)
	ctx := context.Background()

	client := createUser(t, db, "acme", entity.RoleClient)
	freelancer := createUser(t, db, "jane", entity.RoleFreelancer)
	job := createJob(t, db, client, "API rewrite")

	resp, created, err := svc.SubmitProposal(ctx, freelancer.ID, job.ID, proposalDto.SubmitProposalRequest{
		CoverLetter: "I can do this",
		Rate:        80,
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, entity.ProposalPending, resp.Status)
	assert.Equal(t, job.ID, resp.JobID)
	assert.Equal(t, "jane", resp.Freelancer.Username)

	var notifCount int64
	db.Model(&entity.Notification{}).Where("user_id = ?", client.ID).Count(&notifCount)
	assert.Equal(t, int64(1), notifCount)
}

func TestSubmitProposal_DuplicateReturnsExisting(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)
	ctx := context.Background()

	client := createUser(t, db, "acme", entity.RoleClient)
	freelancer := createUser(t, db, "jane", entity.RoleFreelancer)
	job := createJob(t, db, client, "API rewrite")

	first, created, err := svc.SubmitProposal(ctx, freelancer.ID, job.ID, proposalDto.SubmitProposalRequest{
		CoverLetter: "first",
		Rate:        80,
	})
	require.NoError(t, err)
	require.True(t, created)

	second, created, err := svc.SubmitProposal(ctx, freelancer.ID, job.ID, proposalDto.SubmitProposalRequest{
		CoverLetter: "second attempt",
		Rate:        120,
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "first", second.CoverLetter)

	var count int64
	db.Model(&entity.Proposal{}).Where("job_id = ?", job.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestSubmitProposal_ClosedJob(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)
	ctx := context.Background()

	client := createUser(t, db, "acme", entity.RoleClient)
	freelancer := createUser(t, db, "jane", entity.RoleFreelancer)
	job := createJob(t, db, client, "API rewrite")
	require.NoError(t, db.Model(job).Update("is_open", false).Error)

	_, _, err := svc.SubmitProposal(ctx, freelancer.ID, job.ID, proposalDto.SubmitProposalRequest{
		CoverLetter: "too late",
		Rate:        80,
	})
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestSubmitProposal_ClientForbidden(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)
	ctx := context.Background()

	client := createUser(t, db, "acme", entity.RoleClient)
	otherClient := createUser(t, db, "globex", entity.RoleClient)
	job := createJob(t, db, client, "API rewrite")

	_, _, err := svc.SubmitProposal(ctx, otherClient.ID, job.ID, proposalDto.SubmitProposalRequest{
		CoverLetter: "hire me",
		Rate:        80,
	})
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestAcceptProposal_Workflow(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)
	ctx := context.Background()

	client := createUser(t, db, "acme", entity.RoleClient)
	jane := createUser(t, db, "jane", entity.RoleFreelancer)
	bob := createUser(t, db, "bob", entity.RoleFreelancer)
	job := createJob(t, db, client, "API rewrite")

	janeBid, _, err := svc.SubmitProposal(ctx, jane.ID, job.ID, proposalDto.SubmitProposalRequest{CoverLetter: "pick me", Rate: 80})
	require.NoError(t, err)
	bobBid, _, err := svc.SubmitProposal(ctx, bob.ID, job.ID, proposalDto.SubmitProposalRequest{CoverLetter: "no, me", Rate: 70})
	require.NoError(t, err)

	resp, err := svc.AcceptProposal(ctx, client.ID, janeBid.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ProposalAccepted, resp.Status)
	assert.NotEqual(t, uuid.Nil, resp.ConversationID)

	var reloadedJob entity.Job
	require.NoError(t, db.First(&reloadedJob, "id = ?", job.ID).Error)
	assert.False(t, reloadedJob.IsOpen)

	var bobProposal entity.Proposal
	require.NoError(t, db.First(&bobProposal, "id = ?", bobBid.ID).Error)
	assert.Equal(t, entity.ProposalRejected, bobProposal.Status)

	var conv entity.Conversation
	require.NoError(t, db.First(&conv, "id = ?", resp.ConversationID).Error)
	assert.Equal(t, client.ID, conv.ClientID)
	assert.Equal(t, jane.ID, conv.FreelancerID)
	assert.Equal(t, job.ID, conv.JobID)

	var janeNotifs, bobNotifs int64
	db.Model(&entity.Notification{}).
		Where("user_id = ? AND type = ?", jane.ID, entity.NotifProposalAccepted).
		Count(&janeNotifs)
	db.Model(&entity.Notification{}).
		Where("user_id = ? AND type = ?", bob.ID, entity.NotifProposalRejected).
		Count(&bobNotifs)
	assert.Equal(t, int64(1), janeNotifs)
	assert.Equal(t, int64(1), bobNotifs)
}

func TestAcceptProposal_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)
	ctx := context.Background()

	client := createUser(t, db, "acme", entity.RoleClient)
	jane := createUser(t, db, "jane", entity.RoleFreelancer)
	job := createJob(t, db, client, "API rewrite")

	bid, _, err := svc.SubmitProposal(ctx, jane.ID, job.ID, proposalDto.SubmitProposalRequest{CoverLetter: "pick me", Rate: 80})
	require.NoError(t, err)

	first, err := svc.AcceptProposal(ctx, client.ID, bid.ID)
	require.NoError(t, err)

	second, err := svc.AcceptProposal(ctx, client.ID, bid.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ConversationID, second.ConversationID)

	var convCount int64
	db.Model(&entity.Conversation{}).Where("job_id = ?", job.ID).Count(&convCount)
	assert.Equal(t, int64(1), convCount)
}

func TestAcceptProposal_NonOwnerNotFound(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)
	ctx := context.Background()

	client := createUser(t, db, "acme", entity.RoleClient)
	otherClient := createUser(t, db, "globex", entity.RoleClient)
	jane := createUser(t, db, "jane", entity.RoleFreelancer)
	job := createJob(t, db, client, "API rewrite")

	bid, _, err := svc.SubmitProposal(ctx, jane.ID, job.ID, proposalDto.SubmitProposalRequest{CoverLetter: "pick me", Rate: 80})
	require.NoError(t, err)

	_, err = svc.AcceptProposal(ctx, otherClient.ID, bid.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	// Nothing was mutated.
	var reloadedJob entity.Job
	require.NoError(t, db.First(&reloadedJob, "id = ?", job.ID).Error)
	assert.True(t, reloadedJob.IsOpen)

	var reloadedBid entity.Proposal
	require.NoError(t, db.First(&reloadedBid, "id = ?", bid.ID).Error)
	assert.Equal(t, entity.ProposalPending, reloadedBid.Status)
}

func TestAcceptProposal_RejectedIsTerminal(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)
	ctx := context.Background()

	client := createUser(t, db, "acme", entity.RoleClient)
	jane := createUser(t, db, "jane", entity.RoleFreelancer)
	bob := createUser(t, db, "bob", entity.RoleFreelancer)
	job := createJob(t, db, client, "API rewrite")

	janeBid, _, err := svc.SubmitProposal(ctx, jane.ID, job.ID, proposalDto.SubmitProposalRequest{CoverLetter: "pick me", Rate: 80})
	require.NoError(t, err)
	bobBid, _, err := svc.SubmitProposal(ctx, bob.ID, job.ID, proposalDto.SubmitProposalRequest{CoverLetter: "no, me", Rate: 70})
	require.NoError(t, err)

	_, err = svc.AcceptProposal(ctx, client.ID, janeBid.ID)
	require.NoError(t, err)

	// Bob's bid was auto-rejected; accepting it now must fail.
	_, err = svc.AcceptProposal(ctx, client.ID, bobBid.ID)
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestGetJobProposals_OwnerScoped(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)
	ctx := context.Background()

	client := createUser(t, db, "acme", entity.RoleClient)
	otherClient := createUser(t, db, "globex", entity.RoleClient)
	jane := createUser(t, db, "jane", entity.RoleFreelancer)
	job := createJob(t, db, client, "API rewrite")

	_, _, err := svc.SubmitProposal(ctx, jane.ID, job.ID, proposalDto.SubmitProposalRequest{CoverLetter: "pick me", Rate: 80})
	require.NoError(t, err)

	proposals, err := svc.GetJobProposals(ctx, client.ID, job.ID)
	require.NoError(t, err)
	assert.Len(t, proposals, 1)

	_, err = svc.GetJobProposals(ctx, otherClient.ID, job.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestGetMyProposals(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)
	ctx := context.Background()

	client := createUser(t, db, "acme", entity.RoleClient)
	jane := createUser(t, db, "jane", entity.RoleFreelancer)
	bob := createUser(t, db, "bob", entity.RoleFreelancer)
	jobA := createJob(t, db, client, "API rewrite")
	jobB := createJob(t, db, client, "Landing page")

	_, _, err := svc.SubmitProposal(ctx, jane.ID, jobA.ID, proposalDto.SubmitProposalRequest{CoverLetter: "a", Rate: 80})
	require.NoError(t, err)
	_, _, err = svc.SubmitProposal(ctx, jane.ID, jobB.ID, proposalDto.SubmitProposalRequest{CoverLetter: "b", Rate: 90})
	require.NoError(t, err)
	_, _, err = svc.SubmitProposal(ctx, bob.ID, jobA.ID, proposalDto.SubmitProposalRequest{CoverLetter: "c", Rate: 70})
	require.NoError(t, err)

	mine, err := svc.GetMyProposals(ctx, jane.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
	for _, p := range mine {
		assert.Equal(t, "jane", p.Freelancer.Username)
	}
}
