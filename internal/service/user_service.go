package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"taskman/internal/cache"
	"taskman/internal/errors"
	"taskman/internal/model"
	"taskman/internal/repository"
)

const (
	bcryptCost   = 10
	userCacheTTL = 5 * time.Minute
)

// RegisterUserInput carries the registration fields.
type RegisterUserInput struct {
	Username string
	Email    string
	Password string
}

// UpdateUserInput carries a partial user update. Nil fields are left
// unchanged; the handler maps both absent and null JSON keys to nil.
type UpdateUserInput struct {
	Username        *string
	Email           *string
	Password        *string
	FirstName       *string
	LastName        *string
	ActiveTaskCount *int
	OnHoldTaskCount *int
	TotalTaskCount  *int
	Role            *string
	CreatedDate     *time.Time
}

// UserService exposes user domain operations.
type UserService interface {
	Register(ctx context.Context, in RegisterUserInput) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	GetUser(ctx context.Context, id uint) (*model.User, error)
	UpdateUser(ctx context.Context, id uint, in UpdateUserInput) (*model.User, error)
	DeleteUser(ctx context.Context, id uint) error
}

type userService struct {
	repo  repository.UserRepository
	cache *cache.Client
}

// NewUserService builds a UserService with repository and cache.
func NewUserService(repo repository.UserRepository, cache *cache.Client) UserService {
	return &userService{repo: repo, cache: cache}
}

func (s *userService) cacheKey(id uint) string {
	return fmt.Sprintf("user:%d", id)
}

// Register validates the input, hashes the password and inserts the user.
// Uniqueness is backed by the DB constraints; the lookups below exist to
// report which field collided.
func (s *userService) Register(ctx context.Context, in RegisterUserInput) (*model.User, error) {
	if in.Username == "" {
		return nil, errors.ErrUsernameRequired
	}
	if in.Email == "" {
		return nil, errors.ErrEmailRequired
	}
	if in.Password == "" {
		return nil, errors.ErrPasswordRequired
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hashed),
		CreatedDate:  time.Now(),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if err == gorm.ErrDuplicatedKey {
			return nil, s.conflictFor(ctx, in.Username)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// conflictFor reports which unique column rejected the insert.
func (s *userService) conflictFor(ctx context.Context, username string) error {
	if _, err := s.repo.FindByUsername(ctx, username); err == nil {
		return errors.ErrUsernameTaken
	}
	return errors.ErrEmailTaken
}

func (s *userService) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.repo.List(ctx)
}

func (s *userService) GetUser(ctx context.Context, id uint) (*model.User, error) {
	if data, _ := s.cache.Get(ctx, s.cacheKey(id)); data != nil {
		var cached model.User
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrUserNotFound
		}
		return nil, err
	}

	if payload, err := json.Marshal(user); err == nil {
		_ = s.cache.Set(ctx, s.cacheKey(id), payload, userCacheTTL)
	}
	return user, nil
}

// UpdateUser applies the non-nil fields of in. A username or email that
// differs from the current value and is already held by another user is a
// conflict.
func (s *userService) UpdateUser(ctx context.Context, id uint, in UpdateUserInput) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrUserNotFound
		}
		return nil, err
	}

	if in.Username != nil {
		if *in.Username != user.Username {
			if _, err := s.repo.FindByUsername(ctx, *in.Username); err == nil {
				return nil, errors.ErrUsernameTaken
			}
		}
		user.Username = *in.Username
	}
	if in.Email != nil {
		if *in.Email != user.Email {
			if _, err := s.repo.FindByEmail(ctx, *in.Email); err == nil {
				return nil, errors.ErrEmailTaken
			}
		}
		user.Email = *in.Email
	}
	if in.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = string(hashed)
	}
	if in.FirstName != nil {
		user.FirstName = in.FirstName
	}
	if in.LastName != nil {
		user.LastName = in.LastName
	}
	if in.ActiveTaskCount != nil {
		user.ActiveTaskCount = in.ActiveTaskCount
	}
	if in.OnHoldTaskCount != nil {
		user.OnHoldTaskCount = in.OnHoldTaskCount
	}
	if in.TotalTaskCount != nil {
		user.TotalTaskCount = in.TotalTaskCount
	}
	if in.Role != nil {
		user.Role = in.Role
	}
	if in.CreatedDate != nil {
		user.CreatedDate = *in.CreatedDate
	}

	if err := s.repo.Update(ctx, user); err != nil {
		if err == gorm.ErrDuplicatedKey {
			// Lost the race between the lookup and the write.
			return nil, s.conflictFor(ctx, user.Username)
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	_ = s.cache.Delete(ctx, s.cacheKey(id))
	return user, nil
}

// DeleteUser removes the user. Tasks owned by the user are left in place.
func (s *userService) DeleteUser(ctx context.Context, id uint) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.ErrUserNotFound
		}
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id))
	return nil
}
