package services

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/medicore-api/internal/apperr"
	"github.com/harentsoaR/medicore-api/internal/models"
	"github.com/harentsoaR/medicore-api/internal/store"
	"github.com/harentsoaR/medicore-api/internal/validation"
)

type MessageInput struct {
	FirstName string `json:"firstName" validate:"required,min=3"`
	LastName  string `json:"lastName" validate:"required,min=3"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"required,digits=10"`
	Message   string `json:"message" validate:"required,min=10"`
}

type MessageService struct {
	messages store.MessageStore
	log      logrus.FieldLogger
}

func NewMessageService(messages store.MessageStore, log logrus.FieldLogger) *MessageService {
	return &MessageService{messages: messages, log: log}
}

func (s *MessageService) Send(ctx context.Context, sender *models.User, in MessageInput) (*models.Message, error) {
	trim(&in.FirstName, &in.LastName, &in.Phone, &in.Message)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validation.Struct(in); err != nil {
		return nil, apperr.From(err)
	}

	msg := &models.Message{
		ID:        primitive.NewObjectID(),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Phone:     in.Phone,
		Message:   in.Message,
		SenderID:  sender.ID,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, apperr.From(err)
	}
	s.log.WithField("sender_id", sender.ID.Hex()).Info("Message received")
	return msg, nil
}

func (s *MessageService) List(ctx context.Context) ([]models.Message, error) {
	msgs, err := s.messages.List(ctx)
	if err != nil {
		return nil, apperr.From(err)
	}
	return msgs, nil
}
