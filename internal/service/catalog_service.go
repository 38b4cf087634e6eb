package service

import (
	"context"

	"github.com/pkg/errors"

	"github.com/iliyamo/pousada-reservation/internal/model"
	"github.com/iliyamo/pousada-reservation/internal/repository"
)

// CatalogService serves the room catalog and the inn settings.
type CatalogService struct {
	rooms    *repository.RoomRepo
	settings *repository.SettingsRepo
}

func NewCatalogService(rooms *repository.RoomRepo, settings *repository.SettingsRepo) *CatalogService {
	if rooms == nil || settings == nil {
		panic("nil repository passed to NewCatalogService")
	}
	return &CatalogService{rooms: rooms, settings: settings}
}

// Rooms lists active rooms. With a stay, rooms already booked for any of
// its nights are left out.
func (s *CatalogService) Rooms(ctx context.Context, stay *repository.DateRange) ([]model.Room, error) {
	if stay != nil {
		stay.CheckIn = dateOnly(stay.CheckIn)
		stay.CheckOut = dateOnly(stay.CheckOut)
		if !stay.CheckOut.After(stay.CheckIn) {
			return nil, ErrInvalidDates
		}
	}
	rooms, err := s.rooms.ListActive(ctx, stay)
	if err != nil {
		return nil, errors.Wrap(err, "list rooms")
	}
	return rooms, nil
}

func (s *CatalogService) Room(ctx context.Context, id string) (model.Room, error) {
	room, err := s.rooms.GetByID(ctx, id)
	if err != nil {
		return model.Room{}, errors.Wrap(err, id)
	}
	return room, nil
}

func (s *CatalogService) Settings(ctx context.Context) ([]model.Setting, error) {
	list, err := s.settings.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list settings")
	}
	return list, nil
}

// SetSetting changes the value of an existing key.
func (s *CatalogService) SetSetting(ctx context.Context, key, value string) error {
	if err := s.settings.Set(ctx, key, value); err != nil {
		return errors.Wrap(err, key)
	}
	return nil
}
