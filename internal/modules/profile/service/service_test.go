package profile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workbridge-app/workbridge/internal/bootstrap"
	"github.com/workbridge-app/workbridge/internal/entity"
	profileDto "github.com/workbridge-app/workbridge/internal/modules/profile/dto"
	userRepo "github.com/workbridge-app/workbridge/internal/modules/user/repository"
	"github.com/workbridge-app/workbridge/pkg/apperror"
	"golang.org/x/crypto/bcrypt"
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

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	require.NoError(t, err)

	user := &entity.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: string(hashed),
		RoleID:       &role.ID,
	}
	require.NoError(t, db.Create(user).Error)
	require.NoError(t, db.Create(&entity.Profile{UserID: user.ID, FullName: username}).Error)
	return user
}

func strp(s string) *string { return &s }

func TestUpdateProfile_Fields(t *testing.T) {
	db := setupTestDB(t)
	svc := NewProfileService(userRepo.NewUserRepository(db), nil, nil)
	ctx := context.Background()

	user := createUser(t, db, "jane", entity.RoleFreelancer)

	rate := 95.0
	resp, err := svc.UpdateProfile(ctx, user.ID.String(), profileDto.UpdateProfileInput{
		FullName:   strp("Jane Q. Developer"),
		Title:      strp("Backend Engineer"),
		Bio:        strp("Ten years of Go"),
		HourlyRate: &rate,
		Skills:     strp("go, postgres, redis"),
		Location:   strp("Berlin"),
	}, nil)
	require.NoError(t, err)
	require.NotNil(t, resp.Profile)
	assert.Equal(t, "Jane Q. Developer", resp.Profile.FullName)
	assert.Equal(t, "Backend Engineer", *resp.Profile.Title)
	assert.Equal(t, 95.0, *resp.Profile.HourlyRate)
	assert.Equal(t, "Berlin", *resp.Profile.Location)
}

func TestUpdateProfile_BlankOptionalClearsField(t *testing.T) {
	db := setupTestDB(t)
	svc := NewProfileService(userRepo.NewUserRepository(db), nil, nil)
	ctx := context.Background()

	user := createUser(t, db, "jane", entity.RoleFreelancer)

	_, err := svc.UpdateProfile(ctx, user.ID.String(), profileDto.UpdateProfileInput{
		Bio: strp("something"),
	}, nil)
	require.NoError(t, err)

	resp, err := svc.UpdateProfile(ctx, user.ID.String(), profileDto.UpdateProfileInput{
		Bio: strp("   "),
	}, nil)
	require.NoError(t, err)
	assert.Nil(t, resp.Profile.Bio)
}

func TestUpdateProfile_UsernameTaken(t *testing.T) {
	db := setupTestDB(t)
	svc := NewProfileService(userRepo.NewUserRepository(db), nil, nil)
	ctx := context.Background()

	createUser(t, db, "jane", entity.RoleFreelancer)
	bob := createUser(t, db, "bob", entity.RoleFreelancer)

	_, err := svc.UpdateProfile(ctx, bob.ID.String(), profileDto.UpdateProfileInput{
		Username: strp("jane"),
	}, nil)
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestUpdateProfile_PasswordChange(t *testing.T) {
	db := setupTestDB(t)
	svc := NewProfileService(userRepo.NewUserRepository(db), nil, nil)
	ctx := context.Background()

	user := createUser(t, db, "jane", entity.RoleFreelancer)

	_, err := svc.UpdateProfile(ctx, user.ID.String(), profileDto.UpdateProfileInput{
		Password: strp("brand-new-password"),
	}, nil)
	require.NoError(t, err)

	var reloaded entity.User
	require.NoError(t, db.First(&reloaded, "id = ?", user.ID).Error)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(reloaded.PasswordHash), []byte("brand-new-password")))
}

func TestUpdateProfile_ShortPassword(t *testing.T) {
	db := setupTestDB(t)
	svc := NewProfileService(userRepo.NewUserRepository(db), nil, nil)
	ctx := context.Background()

	user := createUser(t, db, "jane", entity.RoleFreelancer)

	_, err := svc.UpdateProfile(ctx, user.ID.String(), profileDto.UpdateProfileInput{
		Password: strp("short"),
	}, nil)
	assert.ErrorIs(t, err, apperror.ErrBadRequest)
}

func TestGetProfileByUsername(t *testing.T) {
	db := setupTestDB(t)
	svc := NewProfileService(userRepo.NewUserRepository(db), nil, nil)
	ctx := context.Background()

	user := createUser(t, db, "jane", entity.RoleFreelancer)
	require.NoError(t, db.Model(&entity.Profile{}).
		Where("user_id = ?", user.ID).
		Updates(map[string]any{"title": "Backend Engineer", "skills": "go"}).Error)

	resp, err := svc.GetProfileByUsername(ctx, "jane")
	require.NoError(t, err)
	assert.Equal(t, "jane", resp.Username)
	assert.Equal(t, entity.RoleFreelancer, resp.Role)
	assert.Equal(t, "Backend Engineer", *resp.Title)

	_, err = svc.GetProfileByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestGetCurrentProfile(t *testing.T) {
	db := setupTestDB(t)
	svc := NewProfileService(userRepo.NewUserRepository(db), nil, nil)
	ctx := context.Background()

	user := createUser(t, db, "jane", entity.RoleFreelancer)

	resp, err := svc.GetCurrentProfile(ctx, user.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "jane", resp.User.Username)
	assert.Empty(t, resp.User.PasswordHash)
	require.NotNil(t, resp.Profile)
	assert.Equal(t, "jane", resp.Profile.FullName)
}
