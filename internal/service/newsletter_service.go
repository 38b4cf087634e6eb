package service

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/iliyamo/pousada-reservation/internal/model"
	"github.com/iliyamo/pousada-reservation/internal/repository"
)

// NewsletterService manages newsletter sign-ups.
type NewsletterService struct {
	subs *repository.NewsletterRepo
	log  *zap.Logger
}

func NewNewsletterService(subs *repository.NewsletterRepo, log *zap.Logger) *NewsletterService {
	if subs == nil {
		panic("nil repository passed to NewNewsletterService")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &NewsletterService{subs: subs, log: log}
}

// Subscribe adds email to the list. Addresses are compared case-insensitively.
func (s *NewsletterService) Subscribe(ctx context.Context, email string) (model.NewsletterSubscription, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	sub, err := s.subs.Subscribe(ctx, email)
	if err != nil {
		return model.NewsletterSubscription{}, errors.Wrap(err, "subscribe")
	}
	s.log.Info("newsletter subscription", zap.Uint64("subscription_id", sub.ID))
	return sub, nil
}

func (s *NewsletterService) List(ctx context.Context, search string) ([]model.NewsletterSubscription, error) {
	list, err := s.subs.List(ctx, search)
	if err != nil {
		return nil, errors.Wrap(err, "list subscriptions")
	}
	return list, nil
}
