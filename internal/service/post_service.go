package service

import (
	"context"
	stderrors "errors"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"board/internal/errors"
	"board/internal/model"
	"board/internal/repository"
)

// DefaultRecentPosts is how many posts the front page shows.
const DefaultRecentPosts = 10

// PostService exposes post operations. Mutations take the acting user explicitly.
type PostService interface {
	Create(ctx context.Context, actor *model.User, message string) (*model.Post, error)
	Edit(ctx context.Context, actor *model.User, id uint, message string) error
	Delete(ctx context.Context, actor *model.User, id uint) error
	Get(ctx context.Context, id uint) (*model.PostWithUsername, error)
	ListRecent(ctx context.Context, limit int) ([]model.PostWithUsername, error)
}

type postService struct {
	repo repository.PostRepository
	log  *zap.Logger
}

// NewPostService creates a new post service.
func NewPostService(repo repository.PostRepository, log *zap.Logger) PostService {
	if log == nil {
		log = zap.NewNop()
	}
	return &postService{repo: repo, log: log}
}

func validateMessage(message string) error {
	if strings.TrimSpace(message) == "" {
		return errors.Validation("message cannot be empty")
	}
	if utf8.RuneCountInString(message) > model.MaxMessageLength {
		return errors.Validation("message must be at most 2000 characters long")
	}
	return nil
}

func (s *postService) Create(ctx context.Context, actor *model.User, message string) (*model.Post, error) {
	if actor == nil {
		return nil, errors.ErrAuthenticationRequired
	}
	if err := validateMessage(message); err != nil {
		return nil, err
	}
	post := &model.Post{Message: message, UserID: actor.ID}
	if err := s.repo.Create(ctx, post); err != nil {
		return nil, err
	}
	s.log.Info("post created", zap.Uint("post_id", post.ID), zap.Uint("user_id", actor.ID))
	return post, nil
}

func (s *postService) Edit(ctx context.Context, actor *model.User, id uint, message string) error {
	if actor == nil {
		return errors.ErrAuthenticationRequired
	}
	if id == 0 {
		return errors.Validation("invalid post id")
	}
	if err := validateMessage(message); err != nil {
		return err
	}
	return s.repo.UpdateMessage(ctx, id, actor.ID, message)
}

func (s *postService) Delete(ctx context.Context, actor *model.User, id uint) error {
	if actor == nil {
		return errors.ErrAuthenticationRequired
	}
	if id == 0 {
		return errors.Validation("invalid post id")
	}
	if err := s.repo.Delete(ctx, id, actor.ID); err != nil {
		return err
	}
	s.log.Info("post deleted", zap.Uint("post_id", id), zap.Uint("user_id", actor.ID))
	return nil
}

func (s *postService) Get(ctx context.Context, id uint) (*model.PostWithUsername, error) {
	post, err := s.repo.FindByID(ctx, id)
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.ErrPostNotFound
	}
	return post, err
}

func (s *postService) ListRecent(ctx context.Context, limit int) ([]model.PostWithUsername, error) {
	if limit <= 0 {
		limit = DefaultRecentPosts
	}
	return s.repo.ListRecent(ctx, limit)
}
