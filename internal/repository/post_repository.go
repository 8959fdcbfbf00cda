package repository

import (
	"context"

	"gorm.io/gorm"

	"board/internal/errors"
	"board/internal/model"
)

const postWithUsernameColumns = "p.id, p.message, p.user_id, p.created_at, COALESCE(u.username, '') AS username"

// PostRepository defines post persistence operations.
// Edits and deletes are guarded by the owner id inside the statement itself.
type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	FindByID(ctx context.Context, id uint) (*model.PostWithUsername, error)
	ListRecent(ctx context.Context, limit int) ([]model.PostWithUsername, error)
	UpdateMessage(ctx context.Context, id, userID uint, message string) error
	Delete(ctx context.Context, id, userID uint) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// Create creates a new post.
func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

// FindByID finds a post with its author's username.
func (r *postRepository) FindByID(ctx context.Context, id uint) (*model.PostWithUsername, error) {
	var post model.PostWithUsername
	result := r.withUsername(ctx).Where("p.id = ?", id).Limit(1).Scan(&post)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &post, nil
}

// ListRecent lists the newest posts first.
func (r *postRepository) ListRecent(ctx context.Context, limit int) ([]model.PostWithUsername, error) {
	posts := make([]model.PostWithUsername, 0, limit)
	if err := r.withUsername(ctx).
		Order("p.created_at DESC").
		Order("p.id DESC").
		Limit(limit).
		Scan(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// UpdateMessage edits a post owned by userID.
func (r *postRepository) UpdateMessage(ctx context.Context, id, userID uint, message string) error {
	result := r.db.WithContext(ctx).Model(&model.Post{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("message", message)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.ErrPostNotOwned
	}
	return nil
}

// Delete removes a post owned by userID.
func (r *postRepository) Delete(ctx context.Context, id, userID uint) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&model.Post{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.ErrPostNotOwned
	}
	return nil
}

func (r *postRepository) withUsername(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("posts AS p").
		Select(postWithUsernameColumns).
		Joins("INNER JOIN users AS u ON u.id = p.user_id")
}
