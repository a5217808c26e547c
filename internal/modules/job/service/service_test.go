package job

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workbridge-app/workbridge/internal/bootstrap"
	"github.com/workbridge-app/workbridge/internal/entity"
	jobDto "github.com/workbridge-app/workbridge/internal/modules/job/dto"
	repo "github.com/workbridge-app/workbridge/internal/modules/job/repository"
	proposalRepo "github.com/workbridge-app/workbridge/internal/modules/proposal/repository"
	userRepo "github.com/workbridge-app/workbridge/internal/modules/user/repository"
	"github.com/workbridge-app/workbridge/pkg/apperror"
	commonDto "github.com/workbridge-app/workbridge/pkg/dto"
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

func newTestService(db *gorm.DB) Service {
	return NewService(repo.NewJobRepository(db), userRepo.NewUserRepository(db), proposalRepo.NewProposalRepository(db), nil)
}

func TestCreateJob(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)
	ctx := context.Background()

	client := createUser(t, db, "acme", entity.RoleClient)

	resp, err := svc.CreateJob(ctx, client.ID, jobDto.CreateJobRequest{
		Title:          "API rewrite",
		Description:    "Port the legacy API to Go",
		Budget:         5000,
		SkillsRequired: "go, postgres",
	})
	require.NoError(t, err)
	assert.Equal(t, "API rewrite", resp.Title)
	assert.True(t, resp.IsOpen)
	assert.Equal(t, "acme", resp.Client.Username)
	assert.Equal(t, int64(0), resp.ProposalCount)
}

func TestCreateJob_FreelancerForbidden(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)
	ctx := context.Background()

	freelancer := createUser(t, db, "jane", entity.RoleFreelancer)

	_, err := svc.CreateJob(ctx, freelancer.ID, jobDto.CreateJobRequest{
		Title:       "Should fail",
		Description: "freelancers cannot post",
		Budget:      100,
	})
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestGetJobs_OpenOnlyNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)
	ctx := context.Background()

	client := createUser(t, db, "acme", entity.RoleClient)

	older, err := svc.CreateJob(ctx, client.ID, jobDto.CreateJobRequest{Title: "Older job", Description: "d", Budget: 100})
	require.NoError(t, err)
	newer, err := svc.CreateJob(ctx, client.ID, jobDto.CreateJobRequest{Title: "Newer job", Description: "d", Budget: 200})
	require.NoError(t, err)
	closed, err := svc.CreateJob(ctx, client.ID, jobDto.CreateJobRequest{Title: "Closed job", Description: "d", Budget: 300})
	require.NoError(t, err)
	require.NoError(t, db.Model(&entity.Job{}).Where("id = ?", closed.ID).Update("is_open", false).Error)

	result, err := svc.GetJobs(ctx, commonDto.JobFilter{})
	require.NoError(t, err)
	require.Len(t, result.Data, 2)
	assert.Equal(t, newer.ID, result.Data[0].ID)
	assert.Equal(t, older.ID, result.Data[1].ID)
	assert.Equal(t, int64(2), result.Meta.TotalItems)
}

func TestGetJobs_SearchCaseInsensitive(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)
	ctx := context.Background()

	client := createUser(t, db, "acme", entity.RoleClient)

	_, err := svc.CreateJob(ctx, client.ID, jobDto.CreateJobRequest{
		Title:          "Data pipeline",
		Description:    "Needs Python and Airflow",
		Budget:         1000,
		SkillsRequired: "python",
	})
	require.NoError(t, err)
	_, err = svc.CreateJob(ctx, client.ID, jobDto.CreateJobRequest{
		Title:       "Logo design",
		Description: "Brand refresh",
		Budget:      500,
	})
	require.NoError(t, err)

	result, err := svc.GetJobs(ctx, commonDto.JobFilter{Search: "PYTHON"})
	require.NoError(t, err)
	require.Len(t, result.Data, 1)
	assert.Equal(t, "Data pipeline", result.Data[0].Title)
}

func TestUpdateJob_NonOwnerNotFound(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)
	ctx := context.Background()

	owner := createUser(t, db, "acme", entity.RoleClient)
	intruder := createUser(t, db, "globex", entity.RoleClient)

	created, err := svc.CreateJob(ctx, owner.ID, jobDto.CreateJobRequest{Title: "Original", Description: "d", Budget: 100})
	require.NoError(t, err)

	newTitle := "Hijacked"
	_, err = svc.UpdateJob(ctx, intruder.ID, created.ID, jobDto.UpdateJobRequest{Title: &newTitle})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	var reloaded entity.Job
	require.NoError(t, db.First(&reloaded, "id = ?", created.ID).Error)
	assert.Equal(t, "Original", reloaded.Title)
}

func TestUpdateJob_Owner(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)
	ctx := context.Background()

	owner := createUser(t, db, "acme", entity.RoleClient)

	created, err := svc.CreateJob(ctx, owner.ID, jobDto.CreateJobRequest{Title: "Original", Description: "d", Budget: 100})
	require.NoError(t, err)

	newTitle := "Updated"
	newBudget := 250.0
	updated, err := svc.UpdateJob(ctx, owner.ID, created.ID, jobDto.UpdateJobRequest{Title: &newTitle, Budget: &newBudget})
	require.NoError(t, err)
	assert.Equal(t, "Updated", updated.Title)
	assert.Equal(t, 250.0, updated.Budget)
	assert.Equal(t, "d", updated.Description)
}

func TestDeleteJob(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)
	ctx := context.Background()

	owner := createUser(t, db, "acme", entity.RoleClient)
	intruder := createUser(t, db, "globex", entity.RoleClient)

	created, err := svc.CreateJob(ctx, owner.ID, jobDto.CreateJobRequest{Title: "Doomed", Description: "d", Budget: 100})
	require.NoError(t, err)

	err = svc.DeleteJob(ctx, intruder.ID, created.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	require.NoError(t, svc.DeleteJob(ctx, owner.ID, created.ID))

	var count int64
	db.Model(&entity.Job{}).Where("id = ?", created.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestGetJob_IncludesOwnProposal(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)
	ctx := context.Background()

	client := createUser(t, db, "acme", entity.RoleClient)
	jane := createUser(t, db, "jane", entity.RoleFreelancer)

	job := &entity.Job{
		ClientID:       client.ID,
		Title:          "Data pipeline",
		Description:    "Batch ETL in Go",
		Budget:         3000,
		SkillsRequired: "go",
		IsOpen:         true,
	}
	require.NoError(t, db.Create(job).Error)

	require.NoError(t, db.Create(&entity.Proposal{
		JobID:        job.ID,
		FreelancerID: jane.ID,
		CoverLetter:  "I build pipelines",
		Rate:         60,
		Status:       entity.ProposalPending,
	}).Error)

	detail, err := svc.GetJob(ctx, jane.ID, job.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.MyProposal)
	assert.Equal(t, entity.ProposalPending, detail.MyProposal.Status)
	assert.Equal(t, "jane", detail.MyProposal.Freelancer.Username)

	clientView, err := svc.GetJob(ctx, client.ID, job.ID)
	require.NoError(t, err)
	assert.Nil(t, clientView.MyProposal)
}
