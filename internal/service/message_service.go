package service

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/iliyamo/pousada-reservation/internal/model"
	"github.com/iliyamo/pousada-reservation/internal/repository"
)

// MessageService stores contact messages and alerts staff about new ones.
type MessageService struct {
	messages *repository.MessageRepo
	notifier Notifier
	log      *zap.Logger
}

func NewMessageService(messages *repository.MessageRepo, notifier Notifier, log *zap.Logger) *MessageService {
	if messages == nil {
		panic("nil repository passed to NewMessageService")
	}
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &MessageService{messages: messages, notifier: notifier, log: log}
}

func (s *MessageService) Create(ctx context.Context, m model.ContactMessage) (model.ContactMessage, error) {
	saved, err := s.messages.Create(ctx, m)
	if err != nil {
		return model.ContactMessage{}, errors.Wrap(err, "save message")
	}
	s.log.Info("contact message received", zap.Uint64("message_id", saved.ID))
	s.notifier.MessageReceived(saved)
	return saved, nil
}

func (s *MessageService) List(ctx context.Context, unreadOnly bool) ([]model.ContactMessage, error) {
	list, err := s.messages.List(ctx, unreadOnly)
	if err != nil {
		return nil, errors.Wrap(err, "list messages")
	}
	return list, nil
}

func (s *MessageService) MarkRead(ctx context.Context, id uint64) error {
	if err := s.messages.MarkRead(ctx, id); err != nil {
		return errors.Wrapf(err, "message %d", id)
	}
	return nil
}
