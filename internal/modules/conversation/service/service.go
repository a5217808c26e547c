package conversation

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/workbridge-app/workbridge/internal/entity"
	convDto "github.com/workbridge-app/workbridge/internal/modules/conversation/dto"
	repo "github.com/workbridge-app/workbridge/internal/modules/conversation/repository"
	notification "github.com/workbridge-app/workbridge/internal/modules/notification/service"
	userRepo "github.com/workbridge-app/workbridge/internal/modules/user/repository"
	"github.com/workbridge-app/workbridge/pkg/apperror"
	commonDto "github.com/workbridge-app/workbridge/pkg/dto"
	"gorm.io/gorm"
)

type Service interface {
	GetMyConversations(ctx context.Context, userID uuid.UUID) ([]commonDto.ConversationResponse, error)
	GetConversation(ctx context.Context, userID, conversationID uuid.UUID) (*commonDto.ConversationResponse, error)
	SendMessage(ctx context.Context, userID, conversationID uuid.UUID, req convDto.SendMessageRequest) (*commonDto.MessageResponse, error)
}

type service struct {
	convRepo        repo.ConversationRepository
	userRepo        userRepo.UserRepository
	notificationSvc notification.NotificationService
}

func NewService(convRepo repo.ConversationRepository, userRepo userRepo.UserRepository, notificationSvc notification.NotificationService) Service {
	return &service{
		convRepo:        convRepo,
		userRepo:        userRepo,
		notificationSvc: notificationSvc,
	}
}

func (s *service) GetMyConversations(ctx context.Context, userID uuid.UUID) ([]commonDto.ConversationResponse, error) {
	conversations, err := s.convRepo.FindByParticipant(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]commonDto.ConversationResponse, 0, len(conversations))
	for _, conv := range conversations {
		responses = append(responses, buildConversationResponse(conv, false))
	}
	return responses, nil
}

// GetConversation loads a conversation with its messages. Non-participants
// get not-found, indistinguishable from a missing conversation.
func (s *service) GetConversation(ctx context.Context, userID, conversationID uuid.UUID) (*commonDto.ConversationResponse, error) {
	conv, err := s.convRepo.FindByIDWithMessages(ctx, conversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("conversation not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	if !conv.HasParticipant(userID) {
		return nil, fmt.Errorf("conversation not found: %w", apperror.ErrNotFound)
	}

	resp := buildConversationResponse(conv, true)
	return &resp, nil
}

func (s *service) SendMessage(ctx context.Context, userID, conversationID uuid.UUID, req convDto.SendMessageRequest) (*commonDto.MessageResponse, error) {
	conv, err := s.convRepo.FindByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("conversation not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	if !conv.HasParticipant(userID) {
		return nil, fmt.Errorf("conversation not found: %w", apperror.ErrNotFound)
	}

	sender, err := s.userRepo.FindByID(ctx, userID.String())
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", apperror.ErrNotFound)
	}

	message := &entity.Message{
		ConversationID: conv.ID,
		SenderID:       userID,
		Body:           req.Body,
	}

	if err := s.convRepo.CreateMessage(ctx, message, req.AttachmentIDs); err != nil {
		return nil, err
	}

	s.notifyRecipient(ctx, conv, sender)

	message.Sender = *sender
	resp := buildMessageResponse(message)
	return &resp, nil
}

func (s *service) notifyRecipient(ctx context.Context, conv *entity.Conversation, sender *entity.User) {
	if s.notificationSvc == nil {
		return
	}

	recipientID := conv.ClientID
	if sender.ID == conv.ClientID {
		recipientID = conv.FreelancerID
	}

	_ = s.notificationSvc.CreateNotification(ctx, &entity.Notification{
		UserID:     recipientID,
		ActorID:    sender.ID,
		EntityID:   conv.ID,
		EntityType: "conversation",
		Type:       entity.NotifNewMessage,
		Message:    fmt.Sprintf("%s sent you a message", sender.Username),
	})
}

func buildConversationResponse(conv *entity.Conversation, withMessages bool) commonDto.ConversationResponse {
	resp := commonDto.ConversationResponse{
		ID:       conv.ID,
		JobID:    conv.JobID,
		JobTitle: conv.Job.Title,
		Client: commonDto.AuthorResponse{
			Username:  conv.Client.Username,
			AvatarURL: conv.Client.AvatarURL,
		},
		Freelancer: commonDto.AuthorResponse{
			Username:  conv.Freelancer.Username,
			AvatarURL: conv.Freelancer.AvatarURL,
		},
		CreatedAt: conv.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}

	if withMessages {
		resp.Messages = make([]commonDto.MessageResponse, 0, len(conv.Messages))
		for i := range conv.Messages {
			resp.Messages = append(resp.Messages, buildMessageResponse(&conv.Messages[i]))
		}
	}

	return resp
}

func buildMessageResponse(message *entity.Message) commonDto.MessageResponse {
	attachments := make([]commonDto.AttachmentResponse, 0, len(message.Attachments))
	for _, att := range message.Attachments {
		attachments = append(attachments, commonDto.AttachmentResponse{
			ID:       att.ID,
			FileURL:  att.FileURL,
			FileType: att.FileType,
		})
	}

	return commonDto.MessageResponse{
		ID: message.ID,
		Sender: commonDto.AuthorResponse{
			Username:  message.Sender.Username,
			AvatarURL: message.Sender.AvatarURL,
		},
		Body:        message.Body,
		Attachments: attachments,
		CreatedAt:   message.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
