package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/workbridge-app/workbridge/internal/entity"
	"gorm.io/gorm"
)

type ConversationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Conversation, error)
	FindByIDWithMessages(ctx context.Context, id uuid.UUID) (*entity.Conversation, error)
	FindByParticipant(ctx context.Context, userID uuid.UUID) ([]*entity.Conversation, error)
	CreateMessage(ctx context.Context, message *entity.Message, attachmentIDs []uint) error
}

type conversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

func (r *conversationRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Conversation, error) {
	var conversation entity.Conversation
	if err := r.db.WithContext(ctx).
		Preload("Job").
		Preload("Client").
		Preload("Freelancer").
		Where("id = ?", id).
		First(&conversation).Error; err != nil {
		return nil, err
	}
	return &conversation, nil
}

func (r *conversationRepository) FindByIDWithMessages(ctx context.Context, id uuid.UUID) (*entity.Conversation, error) {
	var conversation entity.Conversation
	if err := r.db.WithContext(ctx).
		Preload("Job").
		Preload("Client").
		Preload("Freelancer").
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("messages.created_at ASC")
		}).
		Preload("Messages.Sender").
		Preload("Messages.Attachments").
		Where("id = ?", id).
		First(&conversation).Error; err != nil {
		return nil, err
	}
	return &conversation, nil
}

func (r *conversationRepository) FindByParticipant(ctx context.Context, userID uuid.UUID) ([]*entity.Conversation, error) {
	var conversations []*entity.Conversation
	if err := r.db.WithContext(ctx).
		Preload("Job").
		Preload("Client").
		Preload("Freelancer").
		Where("client_id = ? OR freelancer_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&conversations).Error; err != nil {
		return nil, err
	}
	return conversations, nil
}

func (r *conversationRepository) CreateMessage(ctx context.Context, message *entity.Message, attachmentIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(message).Error; err != nil {
			return err
		}

		if len(attachmentIDs) > 0 {
			// Claim only attachments the sender owns that are not yet
			// attached to another message.
			if err := tx.Model(&entity.Attachment{}).
				Where("id IN ? AND user_id = ?", attachmentIDs, message.SenderID).
				Where("message_id IS NULL OR message_id = ?", message.ID).
				Update("message_id", message.ID).Error; err != nil {
				return err
			}
		}

		return nil
	})
}
