package service

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/schoolhub/portal/storage"
	"github.com/schoolhub/portal/storage/model"
	"github.com/schoolhub/portal/util/crypto"
	"github.com/schoolhub/portal/web/entity"
)

// UserAdminService implements the admin-tools user management. Deleting a
// user cascades nothing: content entries keep their audience/group fields.
type UserAdminService struct {
	store *storage.Store
}

func NewUserAdminService(store *storage.Store) *UserAdminService {
	return &UserAdminService{store: store}
}

func (s *UserAdminService) ListUsers() ([]entity.UserView, error) {
	users, err := s.store.Users.Load()
	if err != nil {
		return nil, err
	}
	out := make([]entity.UserView, 0, len(users))
	for _, u := range users {
		out = append(out, entity.NewUserView(u))
	}
	return out, nil
}

func (s *UserAdminService) GetUser(id string) (entity.UserView, error) {
	users, err := s.store.Users.Load()
	if err != nil {
		return entity.UserView{}, err
	}
	for _, u := range users {
		if u.Id == id {
			return entity.NewUserView(u), nil
		}
	}
	return entity.UserView{}, fmt.Errorf("%w: user %s", ErrNotFound, id)
}

// CreateUser creates an account with an explicit role and group assignment.
func (s *UserAdminService) CreateUser(login, rawPassword string, role model.Role, group string) (entity.UserView, error) {
	if len(login) < minLoginLen {
		return entity.UserView{}, fmt.Errorf("%w: login must be at least %d characters", ErrValidation, minLoginLen)
	}
	if len(rawPassword) < minPasswordLen {
		return entity.UserView{}, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLen)
	}
	if !model.ValidRole(role) {
		return entity.UserView{}, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}
	if group == "" {
		group = model.NoGroup
	}
	if err := s.checkGroup(group); err != nil {
		return entity.UserView{}, err
	}

	hash, err := crypto.HashPasswordAsBcrypt(rawPassword)
	if err != nil {
		return entity.UserView{}, err
	}
	user := model.User{
		Id:           uuid.NewString(),
		Login:        login,
		PasswordHash: hash,
		Role:         role,
		Group:        group,
	}

	_, err = s.store.Users.Update(func(users []model.User) ([]model.User, error) {
		for _, u := range users {
			if u.Login == login {
				return nil, fmt.Errorf("%w: login already taken", ErrValidation)
			}
		}
		return append(users, user), nil
	})
	if err != nil {
		return entity.UserView{}, err
	}
	return entity.NewUserView(user), nil
}

// UpdateUser changes role and group of an account.
func (s *UserAdminService) UpdateUser(id string, role model.Role, group string) (entity.UserView, error) {
	if !model.ValidRole(role) {
		return entity.UserView{}, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}
	if group == "" {
		group = model.NoGroup
	}
	if err := s.checkGroup(group); err != nil {
		return entity.UserView{}, err
	}

	var updated model.User
	_, err := s.store.Users.Update(func(users []model.User) ([]model.User, error) {
		for i := range users {
			if users[i].Id == id {
				users[i].Role = role
				users[i].Group = group
				updated = users[i]
				return users, nil
			}
		}
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, id)
	})
	if err != nil {
		return entity.UserView{}, err
	}
	return entity.NewUserView(updated), nil
}

func (s *UserAdminService) ResetPassword(id string, newPassword string) error {
	if len(newPassword) < minPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLen)
	}
	hash, err := crypto.HashPasswordAsBcrypt(newPassword)
	if err != nil {
		return err
	}

	_, err = s.store.Users.Update(func(users []model.User) ([]model.User, error) {
		for i := range users {
			if users[i].Id == id {
				users[i].PasswordHash = hash
				return users, nil
			}
		}
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, id)
	})
	return err
}

func (s *UserAdminService) DeleteUser(id string) error {
	_, err := s.store.Users.Update(func(users []model.User) ([]model.User, error) {
		for i := range users {
			if users[i].Id == id {
				return append(users[:i], users[i+1:]...), nil
			}
		}
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, id)
	})
	return err
}

// checkGroup accepts the no-group marker or any registered group name.
func (s *UserAdminService) checkGroup(group string) error {
	if group == model.NoGroup {
		return nil
	}
	groups, err := s.store.Groups.Load()
	if err != nil {
		return err
	}
	for _, g := range groups {
		if g.Name == group {
			return nil
		}
	}
	return fmt.Errorf("%w: unknown group %q", ErrValidation, group)
}
