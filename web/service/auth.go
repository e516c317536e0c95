package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/schoolhub/portal/storage"
	"github.com/schoolhub/portal/storage/model"
	"github.com/schoolhub/portal/util/crypto"
)

const (
	minLoginLen    = 3
	minPasswordLen = 6
)

// Identity is the resolved caller of a request. A nil *Identity stands for
// an anonymous (guest) caller.
type Identity struct {
	UserId string
	Login  string
	Role   model.Role
	Group  string
}

// AuthService signs and verifies bearer tokens and manages registration and
// login against the credential store.
type AuthService struct {
	store  *storage.Store
	secret []byte
	ttl    time.Duration
}

func NewAuthService(store *storage.Store, secret string, ttl time.Duration) *AuthService {
	return &AuthService{store: store, secret: []byte(secret), ttl: ttl}
}

// Register creates an account with role "user" and no group assignment.
func (s *AuthService) Register(login, rawPassword string) (model.User, error) {
	if len(login) < minLoginLen {
		return model.User{}, fmt.Errorf("%w: login must be at least %d characters", ErrValidation, minLoginLen)
	}
	if len(rawPassword) < minPasswordLen {
		return model.User{}, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLen)
	}

	hash, err := crypto.HashPasswordAsBcrypt(rawPassword)
	if err != nil {
		return model.User{}, err
	}
	user := model.User{
		Id:           uuid.NewString(),
		Login:        login,
		PasswordHash: hash,
		Role:         model.RoleUser,
		Group:        model.NoGroup,
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
		return model.User{}, err
	}
	return user, nil
}

// Login checks the credentials and issues a signed token carrying the user
// id and role with the configured expiry.
func (s *AuthService) Login(login, rawPassword string) (string, model.User, error) {
	user, err := s.findByLogin(login)
	if err != nil {
		return "", model.User{}, err
	}
	if !crypto.CheckPasswordHash(user.PasswordHash, rawPassword) {
		return "", model.User{}, fmt.Errorf("%w: bad credentials", ErrUnauthenticated)
	}

	claims := jwt.MapClaims{
		"id":   user.Id,
		"role": string(user.Role),
		"exp":  time.Now().Add(s.ttl).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", model.User{}, err
	}
	return token, user, nil
}

// Authenticate resolves a bearer token to the identity behind it. The user
// record is looked up on every call, so a token issued before the account
// was deleted fails with ErrUnknownUser.
func (s *AuthService) Authenticate(tokenString string) (*Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	id, _ := claims["id"].(string)
	if id == "" {
		return nil, ErrInvalidToken
	}

	users, err := s.store.Users.Load()
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.Id == id {
			return &Identity{UserId: u.Id, Login: u.Login, Role: u.Role, Group: u.Group}, nil
		}
	}
	return nil, ErrUnknownUser
}

func (s *AuthService) findByLogin(login string) (model.User, error) {
	users, err := s.store.Users.Load()
	if err != nil {
		return model.User{}, err
	}
	for _, u := range users {
		if u.Login == login {
			return u, nil
		}
	}
	return model.User{}, fmt.Errorf("%w: bad credentials", ErrUnauthenticated)
}
