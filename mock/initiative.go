package mock

import (
	"context"
	"time"

	"github.com/fwojciec/initbot"
)

var _ initbot.InitiativeService = (*InitiativeService)(nil)

// InitiativeService is a mock implementation of initbot.InitiativeService.
type InitiativeService struct {
	UpsertInitiativeFn   func(ctx context.Context, initiative *initbot.Initiative) error
	UpsertInitiativesFn  func(ctx context.Context, initiatives []*initbot.Initiative) error
	FindInitiativeByIDFn func(ctx context.Context, id string) (*initbot.Initiative, error)
	FindInitiativesFn    func(ctx context.Context, filter initbot.InitiativeFilter) ([]*initbot.Initiative, error)
	UpdateInitiativeFn   func(ctx context.Context, id string, upd initbot.InitiativeUpdate) (*initbot.Initiative, error)
	DeleteInitiativeFn   func(ctx context.Context, id string) error
	LastFetchedFn        func(ctx context.Context) (time.Time, error)
}

func (s *InitiativeService) UpsertInitiative(ctx context.Context, initiative *initbot.Initiative) error {
	return s.UpsertInitiativeFn(ctx, initiative)
}

func (s *InitiativeService) UpsertInitiatives(ctx context.Context, initiatives []*initbot.Initiative) error {
	return s.UpsertInitiativesFn(ctx, initiatives)
}

func (s *InitiativeService) FindInitiativeByID(ctx context.Context, id string) (*initbot.Initiative, error) {
	return s.FindInitiativeByIDFn(ctx, id)
}

func (s *InitiativeService) FindInitiatives(ctx context.Context, filter initbot.InitiativeFilter) ([]*initbot.Initiative, error) {
	return s.FindInitiativesFn(ctx, filter)
}

func (s *InitiativeService) UpdateInitiative(ctx context.Context, id string, upd initbot.InitiativeUpdate) (*initbot.Initiative, error) {
	return s.UpdateInitiativeFn(ctx, id, upd)
}

func (s *InitiativeService) DeleteInitiative(ctx context.Context, id string) error {
	return s.DeleteInitiativeFn(ctx, id)
}

func (s *InitiativeService) LastFetched(ctx context.Context) (time.Time, error) {
	return s.LastFetchedFn(ctx)
}
