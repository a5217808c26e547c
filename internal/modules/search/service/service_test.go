package search

import (
	"context"
	"testing"

	"github.com/microcosm-cc/bluemonday"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workbridge-app/workbridge/internal/bootstrap"
	"github.com/workbridge-app/workbridge/internal/entity"
	searchDto "github.com/workbridge-app/workbridge/internal/modules/search/dto"
	"github.com/workbridge-app/workbridge/internal/modules/search/repository"
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

func createUser(t *testing.T, db *gorm.DB, username, roleName string, profile *entity.Profile) *entity.User {
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

	if profile != nil {
		profile.UserID = user.ID
		require.NoError(t, db.Create(profile).Error)
	}
	return user
}

func createJob(t *testing.T, db *gorm.DB, client *entity.User, title, description, skills string, open bool) *entity.Job {
	t.Helper()
	job := &entity.Job{
		ClientID:       client.ID,
		Title:          title,
		Description:    description,
		SkillsRequired: skills,
		Budget:         1000,
		IsOpen:         true,
	}
	require.NoError(t, db.Create(job).Error)
	// Create leaves the column on its default, so closing has to go
	// through an explicit update.
	if !open {
		require.NoError(t, db.Model(job).Update("is_open", false).Error)
	}
	return job
}

func strp(s string) *string { return &s }

func TestSearch_JobsCaseInsensitiveOpenOnly(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(nil, repository.NewSearchRepository(db))
	ctx := context.Background()

	client := createUser(t, db, "acme", entity.RoleClient, nil)
	createJob(t, db, client, "Data pipeline", "Needs Python and Airflow", "python", true)
	createJob(t, db, client, "Scraper", "Python scraping gig", "python", false)
	createJob(t, db, client, "Logo design", "Brand refresh", "figma", true)

	resp, err := svc.Search(ctx, searchDto.SearchQuery{Q: "PYTHON", SearchType: SearchTypeJobs})
	require.NoError(t, err)
	require.Len(t, resp.Jobs, 1)
	assert.Equal(t, "Data pipeline", resp.Jobs[0].Title)
	assert.Equal(t, "acme", resp.Jobs[0].ClientUsername)
}

func TestSearch_DefaultsToJobs(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(nil, repository.NewSearchRepository(db))
	ctx := context.Background()

	client := createUser(t, db, "acme", entity.RoleClient, nil)
	createJob(t, db, client, "Data pipeline", "etl work", "python", true)

	resp, err := svc.Search(ctx, searchDto.SearchQuery{Q: "pipeline"})
	require.NoError(t, err)
	assert.Equal(t, SearchTypeJobs, resp.SearchType)
	assert.Len(t, resp.Jobs, 1)
}

func TestSearch_Freelancers(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(nil, repository.NewSearchRepository(db))
	ctx := context.Background()

	createUser(t, db, "jane", entity.RoleFreelancer, &entity.Profile{
		FullName: "Jane Developer",
		Skills:   strp("Go, Python, Kubernetes"),
	})
	createUser(t, db, "bob", entity.RoleFreelancer, &entity.Profile{
		FullName: "Bob Designer",
		Skills:   strp("figma, illustrator"),
	})
	// Clients never show up in freelancer search, whatever their profile says.
	createUser(t, db, "acme", entity.RoleClient, &entity.Profile{
		FullName: "Acme Corp",
		Bio:      strp("we hire python developers"),
	})

	resp, err := svc.Search(ctx, searchDto.SearchQuery{Q: "python", SearchType: SearchTypeFreelancers})
	require.NoError(t, err)
	require.Len(t, resp.Freelancers, 1)
	assert.Equal(t, "jane", resp.Freelancers[0].Username)
}

func TestSearch_FreelancersByUsername(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(nil, repository.NewSearchRepository(db))
	ctx := context.Background()

	createUser(t, db, "jane_dev", entity.RoleFreelancer, &entity.Profile{FullName: "Jane Developer"})

	resp, err := svc.Search(ctx, searchDto.SearchQuery{Q: "JANE", SearchType: SearchTypeFreelancers})
	require.NoError(t, err)
	require.Len(t, resp.Freelancers, 1)
	assert.Equal(t, "Jane Developer", resp.Freelancers[0].FullName)
}

func TestCleanContentForIndex(t *testing.T) {
	svc := &service{sanitizer: bluemonday.StrictPolicy()}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain text", "hello world", "hello world"},
		{"strips tags", "<p>hello</p><p>world</p>", "hello world"},
		{"script removed", "<script>alert(1)</script>safe", "safe"},
		{"entities unescaped", "fish &amp; chips", "fish & chips"},
		{"collapses whitespace", "a   b\n\nc", "a b c"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, svc.cleanContentForIndex(tt.input))
		})
	}
}

func TestDecodeHits(t *testing.T) {
	hits := []map[string]any{
		{"id": "abc", "title": "Data pipeline", "budget": 1000.0, "client_username": "acme", "created_at": int64(1756684800)},
		{"id": "def", "title": "Scraper"},
	}

	results := decodeJobHits(hits)
	require.Len(t, results, 2)
	assert.Equal(t, "abc", results[0].ID)
	assert.Equal(t, "Data pipeline", results[0].Title)
	assert.Equal(t, 1000.0, results[0].Budget)
	assert.Equal(t, "2025-09-01T00:00:00Z", results[0].CreatedAt)
	assert.Empty(t, results[1].CreatedAt)
}
