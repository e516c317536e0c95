package service

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/schoolhub/portal/storage"
	"github.com/schoolhub/portal/storage/model"
)

// RankingService manages the team standings table. Every authenticated
// caller sees all entries; mutation carries no server-side role check, which
// mirrors the observed behavior of the original endpoints.
type RankingService struct {
	store *storage.Store
}

func NewRankingService(store *storage.Store) *RankingService {
	return &RankingService{store: store}
}

func (s *RankingService) List() ([]model.RankingEntry, error) {
	return s.store.Ranking.Load()
}

func (s *RankingService) Add(group string, points int) (model.RankingEntry, error) {
	if group == "" {
		return model.RankingEntry{}, fmt.Errorf("%w: group required", ErrValidation)
	}
	if points < 0 {
		return model.RankingEntry{}, fmt.Errorf("%w: points must not be negative", ErrValidation)
	}

	entry := model.RankingEntry{
		Id:     uuid.NewString(),
		Group:  group,
		Points: points,
	}
	_, err := s.store.Ranking.Update(func(entries []model.RankingEntry) ([]model.RankingEntry, error) {
		return append(entries, entry), nil
	})
	if err != nil {
		return model.RankingEntry{}, err
	}
	return entry, nil
}

func (s *RankingService) SetPoints(id string, points int) (model.RankingEntry, error) {
	if points < 0 {
		return model.RankingEntry{}, fmt.Errorf("%w: points must not be negative", ErrValidation)
	}

	var updated model.RankingEntry
	_, err := s.store.Ranking.Update(func(entries []model.RankingEntry) ([]model.RankingEntry, error) {
		for i := range entries {
			if entries[i].Id == id {
				entries[i].Points = points
				updated = entries[i]
				return entries, nil
			}
		}
		return nil, fmt.Errorf("%w: ranking entry %s", ErrNotFound, id)
	})
	if err != nil {
		return model.RankingEntry{}, err
	}
	return updated, nil
}

func (s *RankingService) Delete(id string) error {
	_, err := s.store.Ranking.Update(func(entries []model.RankingEntry) ([]model.RankingEntry, error) {
		for i := range entries {
			if entries[i].Id == id {
				return append(entries[:i], entries[i+1:]...), nil
			}
		}
		return nil, fmt.Errorf("%w: ranking entry %s", ErrNotFound, id)
	})
	return err
}
