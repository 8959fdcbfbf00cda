package service

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"board/internal/cache"
	"board/internal/errors"
	"board/internal/model"
	"board/internal/repository"
)

const userCacheTTL = 5 * time.Minute

// UserService exposes member operations.
type UserService interface {
	Get(ctx context.Context, id uint) (*model.User, error)
	UpdateUsername(ctx context.Context, actor *model.User, username string) (*model.User, error)
}

type userService struct {
	repo      repository.UserRepository
	cache     *cache.Client
	validator *UsernameValidator
	log       *zap.Logger
}

// cachedUser keeps fields the JSON view of model.User hides.
type cachedUser struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	Username  *string   `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// NewUserService builds a UserService with repository and cache.
func NewUserService(repo repository.UserRepository, cache *cache.Client, log *zap.Logger) UserService {
	if log == nil {
		log = zap.NewNop()
	}
	return &userService{repo: repo, cache: cache, validator: NewUsernameValidator(), log: log}
}

func (s *userService) cacheKey(id uint) string {
	return fmt.Sprintf("user:%d", id)
}

func (s *userService) Get(ctx context.Context, id uint) (*model.User, error) {
	if data, _ := s.cache.Get(ctx, s.cacheKey(id)); data != nil {
		var cached cachedUser
		if err := json.Unmarshal(data, &cached); err == nil && cached.ID == id {
			return &model.User{ID: cached.ID, Email: cached.Email, Username: cached.Username, CreatedAt: cached.CreatedAt}, nil
		}
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrUserNotFound
		}
		return nil, err
	}

	entry := cachedUser{ID: user.ID, Email: user.Email, Username: user.Username, CreatedAt: user.CreatedAt}
	if payload, err := json.Marshal(entry); err == nil {
		_ = s.cache.Set(ctx, s.cacheKey(id), payload, userCacheTTL)
	}
	return user, nil
}

func (s *userService) UpdateUsername(ctx context.Context, actor *model.User, username string) (*model.User, error) {
	if actor == nil {
		return nil, errors.ErrAuthenticationRequired
	}
	if err := s.validator.Validate(username); err != nil {
		return nil, err
	}
	if actor.DisplayName() == username {
		return actor, nil
	}

	existing, err := s.repo.FindByUsername(ctx, username)
	switch {
	case err == nil && existing.ID != actor.ID:
		return nil, errors.ErrUsernameTaken
	case err != nil && !stderrors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	if err := s.repo.UpdateUsername(ctx, actor.ID, username); err != nil {
		switch {
		case stderrors.Is(err, gorm.ErrRecordNotFound):
			return nil, errors.ErrUserNotFound
		case stderrors.Is(err, gorm.ErrDuplicatedKey):
			return nil, fmt.Errorf("%w: %w", errors.ErrUsernameTaken, err)
		}
		s.log.Error("username update failed", zap.Uint("user_id", actor.ID), zap.Error(err))
		return nil, err
	}
	_ = s.cache.Delete(ctx, s.cacheKey(actor.ID))

	updated := *actor
	updated.Username = &username
	return &updated, nil
}
