package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"board/internal/model"
)

// CodeRepository defines verification code persistence operations.
type CodeRepository interface {
	Create(ctx context.Context, code *model.VerificationCode) error
	Consume(ctx context.Context, userID uint, code string, now time.Time) (bool, error)
	DeleteByUser(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type codeRepository struct {
	db *gorm.DB
}

// NewCodeRepository creates a new verification code repository.
func NewCodeRepository(db *gorm.DB) CodeRepository {
	return &codeRepository{db: db}
}

// Create stores a verification code.
func (r *codeRepository) Create(ctx context.Context, code *model.VerificationCode) error {
	return r.db.WithContext(ctx).Create(code).Error
}

// Consume deletes code if userID holds it unexpired at now and reports whether it did.
// Only one of several concurrent callers can consume the same code.
func (r *codeRepository) Consume(ctx context.Context, userID uint, code string, now time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND code = ? AND expires_at > ?", userID, code, now).
		Delete(&model.VerificationCode{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DeleteByUser removes every outstanding code of userID.
func (r *codeRepository) DeleteByUser(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.VerificationCode{}).Error
}

// DeleteExpired removes codes that expired before now and reports how many went.
func (r *codeRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at <= ?", now).
		Delete(&model.VerificationCode{})
	return result.RowsAffected, result.Error
}
