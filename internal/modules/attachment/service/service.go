package attachment

import (
	"context"
	"log"
	"mime/multipart"
	"time"

	"github.com/google/uuid"
	"github.com/workbridge-app/workbridge/internal/entity"
	attachmentDto "github.com/workbridge-app/workbridge/internal/modules/attachment/dto"
	"github.com/workbridge-app/workbridge/internal/modules/attachment/repository"
	"github.com/workbridge-app/workbridge/pkg/storage"
)

type AttachmentService interface {
	UploadAttachment(ctx context.Context, userID uuid.UUID, file *multipart.FileHeader) (*attachmentDto.UploadAttachmentResponse, error)
	CleanupOrphanAttachments(ctx context.Context) error
}

type attachmentService struct {
	attachmentRepo repository.AttachmentRepository
	fileStorage    storage.FileStorage
}

func NewAttachmentService(attachmentRepo repository.AttachmentRepository, fileStorage storage.FileStorage) AttachmentService {
	return &attachmentService{
		attachmentRepo: attachmentRepo,
		fileStorage:    fileStorage,
	}
}

func (s *attachmentService) UploadAttachment(ctx context.Context, userID uuid.UUID, file *multipart.FileHeader) (*attachmentDto.UploadAttachmentResponse, error) {
	f, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	url, err := s.fileStorage.UploadFile(ctx, f, "attachments", file.Filename)
	if err != nil {
		return nil, err
	}

	attachment := &entity.Attachment{
		UserID:   userID,
		FileURL:  url,
		FileType: file.Header.Get("Content-Type"),
		// MessageID stays nil until the file is bound to a sent message.
	}

	if err := s.attachmentRepo.Create(ctx, attachment); err != nil {
		return nil, err
	}

	return &attachmentDto.UploadAttachmentResponse{
		ID:       attachment.ID,
		FileURL:  attachment.FileURL,
		FileType: attachment.FileType,
	}, nil
}

// CleanupOrphanAttachments removes uploads that were never bound to a message
// within 24 hours. Failures are logged and retried on the next run.
func (s *attachmentService) CleanupOrphanAttachments(ctx context.Context) error {
	cutoff := time.Now().Add(-24 * time.Hour)

	orphans, err := s.attachmentRepo.FindOrphans(ctx, cutoff)
	if err != nil {
		return err
	}

	for _, orphan := range orphans {
		if err := s.fileStorage.DeleteFile(ctx, orphan.FileURL); err != nil {
			log.Printf("failed to delete orphan file %s: %v", orphan.FileURL, err)
		}

		if err := s.attachmentRepo.Delete(ctx, orphan.ID); err != nil {
			log.Printf("failed to delete orphan attachment %d: %v", orphan.ID, err)
		}
	}
	return nil
}
