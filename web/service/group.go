package service

import (
	"fmt"

	"github.com/schoolhub/portal/storage"
	"github.com/schoolhub/portal/storage/model"
)

// GroupService manages the registry of named cohorts.
type GroupService struct {
	store *storage.Store
}

func NewGroupService(store *storage.Store) *GroupService {
	return &GroupService{store: store}
}

func (s *GroupService) ListGroups() ([]model.Group, error) {
	return s.store.Groups.Load()
}

func (s *GroupService) CreateGroup(name string) (model.Group, error) {
	if name == "" || name == model.NoGroup {
		return model.Group{}, fmt.Errorf("%w: invalid group name %q", ErrValidation, name)
	}

	group := model.Group{Name: name}
	_, err := s.store.Groups.Update(func(groups []model.Group) ([]model.Group, error) {
		for _, g := range groups {
			if g.Name == name {
				return nil, fmt.Errorf("%w: group already exists", ErrValidation)
			}
		}
		return append(groups, group), nil
	})
	if err != nil {
		return model.Group{}, err
	}
	return group, nil
}

// DeleteGroup refuses to remove a group that still has users assigned; the
// group list stays unchanged in that case.
func (s *GroupService) DeleteGroup(name string) error {
	users, err := s.store.Users.Load()
	if err != nil {
		return err
	}
	for _, u := range users {
		if u.Group == name {
			return fmt.Errorf("%w: group %q still has users assigned", ErrValidation, name)
		}
	}

	_, err = s.store.Groups.Update(func(groups []model.Group) ([]model.Group, error) {
		for i, g := range groups {
			if g.Name == name {
				return append(groups[:i], groups[i+1:]...), nil
			}
		}
		return nil, fmt.Errorf("%w: group %s", ErrNotFound, name)
	})
	return err
}
