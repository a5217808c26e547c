package profile

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/workbridge-app/workbridge/internal/entity"
	profileDto "github.com/workbridge-app/workbridge/internal/modules/profile/dto"
	search "github.com/workbridge-app/workbridge/internal/modules/search/service"
	userRepo "github.com/workbridge-app/workbridge/internal/modules/user/repository"
	"github.com/workbridge-app/workbridge/pkg/apperror"
	"github.com/workbridge-app/workbridge/pkg/storage"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type ProfileService interface {
	UpdateProfile(ctx context.Context, userID string, input profileDto.UpdateProfileInput, avatar *profileDto.AvatarFile) (*profileDto.ProfileResponse, error)
	GetProfileByUsername(ctx context.Context, username string) (*profileDto.PublicProfileResponse, error)
	GetCurrentProfile(ctx context.Context, userID string) (*profileDto.ProfileResponse, error)
}

type profileService struct {
	repo        userRepo.UserRepository
	fileStorage storage.FileStorage
	searchSvc   search.Service
}

func NewProfileService(repo userRepo.UserRepository, fileStorage storage.FileStorage, searchSvc search.Service) ProfileService {
	return &profileService{
		repo:        repo,
		fileStorage: fileStorage,
		searchSvc:   searchSvc,
	}
}

func (s *profileService) UpdateProfile(ctx context.Context, userID string, input profileDto.UpdateProfileInput, avatar *profileDto.AvatarFile) (*profileDto.ProfileResponse, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", apperror.ErrNotFound)
	}

	if input.Username != nil && *input.Username != "" && *input.Username != user.Username {
		sanitizedUsername := strings.ReplaceAll(*input.Username, " ", "_")
		if len(sanitizedUsername) < 3 {
			return nil, fmt.Errorf("username must be at least 3 characters: %w", apperror.ErrBadRequest)
		}
		if len(sanitizedUsername) > 50 {
			return nil, fmt.Errorf("username must be at most 50 characters: %w", apperror.ErrBadRequest)
		}
		if _, err := s.repo.FindByUsername(ctx, sanitizedUsername); err == nil {
			return nil, fmt.Errorf("username already taken: %w", apperror.ErrConflict)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		user.Username = sanitizedUsername
	}

	if input.Password != nil && *input.Password != "" {
		if len(*input.Password) < 8 {
			return nil, fmt.Errorf("password must be at least 8 characters: %w", apperror.ErrBadRequest)
		}
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = string(hashedPassword)
	}

	if avatar != nil && avatar.Reader != nil && s.fileStorage != nil {
		url, err := s.fileStorage.UploadFile(ctx, avatar.Reader, "avatars", avatar.FileName)
		if err != nil {
			return nil, err
		}
		user.AvatarURL = &url
	}

	var profile *entity.Profile
	if user.Profile != nil {
		profile = user.Profile
		if input.FullName != nil && *input.FullName != "" {
			profile.FullName = *input.FullName
		}
		if input.Title != nil {
			profile.Title = normalizeOptional(input.Title)
		}
		if input.CompanyName != nil {
			profile.CompanyName = normalizeOptional(input.CompanyName)
		}
		if input.Bio != nil {
			profile.Bio = normalizeOptional(input.Bio)
		}
		if input.HourlyRate != nil {
			profile.HourlyRate = input.HourlyRate
		}
		if input.Skills != nil {
			profile.Skills = normalizeOptional(input.Skills)
		}
		if input.Location != nil {
			profile.Location = normalizeOptional(input.Location)
		}
	}

	if err := s.repo.Update(ctx, user, profile); err != nil {
		return nil, err
	}

	updatedUser, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if updatedUser.IsFreelancer() && s.searchSvc != nil {
		if err := s.searchSvc.IndexFreelancer(updatedUser); err != nil {
			log.Printf("Failed to index freelancer %s: %v", updatedUser.ID, err)
		}
	}

	updatedUser.PasswordHash = ""

	return &profileDto.ProfileResponse{
		User:    updatedUser,
		Profile: updatedUser.Profile,
	}, nil
}

func (s *profileService) GetProfileByUsername(ctx context.Context, username string) (*profileDto.PublicProfileResponse, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", apperror.ErrNotFound)
	}

	response := &profileDto.PublicProfileResponse{
		Username:  user.Username,
		Role:      user.Role.Name,
		AvatarURL: user.AvatarURL,
		CreatedAt: user.CreatedAt,
	}

	if user.Profile != nil {
		response.FullName = user.Profile.FullName
		response.Title = user.Profile.Title
		response.CompanyName = user.Profile.CompanyName
		response.Bio = user.Profile.Bio
		response.HourlyRate = user.Profile.HourlyRate
		response.Skills = user.Profile.Skills
		response.Location = user.Profile.Location
	}

	return response, nil
}

func (s *profileService) GetCurrentProfile(ctx context.Context, userID string) (*profileDto.ProfileResponse, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", apperror.ErrNotFound)
	}

	user.PasswordHash = ""

	return &profileDto.ProfileResponse{
		User:    user,
		Profile: user.Profile,
	}, nil
}

func normalizeOptional(value *string) *string {
	if value == nil {
		return nil
	}

	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}

	result := trimmed
	return &result
}
