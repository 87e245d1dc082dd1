package service

import (
	"context"
	"net/http"
	"strings"

	"go-repair-shop/internal/event"
	"go-repair-shop/internal/model"
	"go-repair-shop/internal/validate"
	"go-repair-shop/pkg/apierror"
)

type UserService struct {
	users  UserStore
	tokens TokenStore
	bus    event.Bus
}

func NewUserService(users UserStore, tokens TokenStore, bus event.Bus) *UserService {
	return &UserService{users: users, tokens: tokens, bus: bus}
}

func (s *UserService) List(ctx context.Context, params model.ListParams) ([]model.User, error) {
	return s.users.List(ctx, params)
}

func (s *UserService) Get(ctx context.Context, id int64) (model.User, error) {
	return s.users.FindByID(ctx, id)
}

func (s *UserService) Create(ctx context.Context, req model.CreateUserRequest) (model.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Role = model.Role(model.NormalizeEnum(string(req.Role)))
	if req.Role == "" {
		req.Role = model.RoleEmployee
	}
	if err := checked(validate.User(req)); err != nil {
		return model.User{}, err
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return model.User{}, err
	}

	now := timeNow()
	user, err := s.users.Create(ctx, model.User{
		Username:     req.Username,
		PasswordHash: hash,
		Role:         req.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return model.User{}, err
	}

	emit(ctx, s.bus, event.TypeUserCreated, user.Public())
	return user, nil
}

// Update applies the fields present in req. A password change revokes the
// user's refresh tokens.
func (s *UserService) Update(ctx context.Context, id int64, req model.UpdateUserRequest) (model.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return model.User{}, err
	}

	check := model.CreateUserRequest{Username: user.Username, Password: "unchanged", Role: user.Role}
	if req.Username != nil {
		check.Username = strings.TrimSpace(*req.Username)
	}
	if req.Password != nil {
		check.Password = *req.Password
	}
	if req.Role != nil {
		check.Role = model.Role(model.NormalizeEnum(string(*req.Role)))
	}
	if err := checked(validate.User(check)); err != nil {
		return model.User{}, err
	}

	user.Username = check.Username
	user.Role = check.Role
	if req.Password != nil {
		hash, err := hashPassword(*req.Password)
		if err != nil {
			return model.User{}, err
		}
		user.PasswordHash = hash
	}
	user.UpdatedAt = timeNow()

	updated, err := s.users.Update(ctx, user)
	if err != nil {
		return model.User{}, err
	}

	if req.Password != nil {
		if err := s.tokens.RevokeAllForUser(ctx, id); err != nil {
			return model.User{}, err
		}
	}

	emit(ctx, s.bus, event.TypeUserUpdated, updated.Public())
	return updated, nil
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	if event.ActorFrom(ctx) == ActorID(id) {
		return apierror.New("BAD_REQUEST", "cannot delete your own account", "", http.StatusBadRequest)
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}

	emit(ctx, s.bus, event.TypeUserDeleted, deleted{ID: id})
	return nil
}
