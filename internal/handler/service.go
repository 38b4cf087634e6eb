package handler

import (
	"context"

	"github.com/iliyamo/pousada-reservation/internal/model"
	"github.com/iliyamo/pousada-reservation/internal/repository"
	"github.com/iliyamo/pousada-reservation/internal/service"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type ReservationService interface {
	Create(ctx context.Context, in service.CreateInput) (model.Reservation, error)
	List(ctx context.Context, f repository.ReservationFilter) (service.ListResult, error)
	Get(ctx context.Context, id string) (model.Reservation, error)
	Update(ctx context.Context, id string, in service.UpdateInput, userID *uint64) (model.Reservation, error)
	UpdateStatus(ctx context.Context, id, status string, userID *uint64) (model.Reservation, error)
	Delete(ctx context.Context, id string, userID *uint64) error
	History(ctx context.Context, id string) ([]model.ReservationHistory, error)
	UpcomingArrivals(ctx context.Context) ([]model.Arrival, error)
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (service.LoginResult, error)
}

type MessageService interface {
	Create(ctx context.Context, m model.ContactMessage) (model.ContactMessage, error)
	List(ctx context.Context, unreadOnly bool) ([]model.ContactMessage, error)
	MarkRead(ctx context.Context, id uint64) error
}

type CatalogService interface {
	Rooms(ctx context.Context, stay *repository.DateRange) ([]model.Room, error)
	Room(ctx context.Context, id string) (model.Room, error)
	Settings(ctx context.Context) ([]model.Setting, error)
	SetSetting(ctx context.Context, key, value string) error
}

type NewsletterService interface {
	Subscribe(ctx context.Context, email string) (model.NewsletterSubscription, error)
	List(ctx context.Context, search string) ([]model.NewsletterSubscription, error)
}

// Pinger reports database liveness.
type Pinger interface {
	PingContext(ctx context.Context) error
}

var (
	_ ReservationService = (*service.ReservationService)(nil)
	_ AuthService        = (*service.AuthService)(nil)
	_ MessageService     = (*service.MessageService)(nil)
	_ CatalogService     = (*service.CatalogService)(nil)
	_ NewsletterService  = (*service.NewsletterService)(nil)
)
