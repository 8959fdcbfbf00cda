package service

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"board/internal/cache"
	apperrors "board/internal/errors"
	"board/internal/model"
)

var errBoom = errors.New("connection refused")

func strPtr(s string) *string { return &s }

func TestUserService_GetUsesCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	repo := new(MockUserRepository)
	repo.On("FindByID", mock.Anything, uint(5)).
		Return(&model.User{ID: 5, Email: "carol@example.com", Username: strPtr("carol")}, nil).Once()

	svc := NewUserService(repo, cache.New(client), nil)

	first, err := svc.Get(context.Background(), 5)
	require.NoError(t, err)
	second, err := svc.Get(context.Background(), 5)
	require.NoError(t, err)

	assert.Equal(t, "carol", second.DisplayName())
	assert.Equal(t, "carol@example.com", second.Email)
	assert.Equal(t, first.ID, second.ID)
	repo.AssertExpectations(t)
}

func TestUserService_GetNotFound(t *testing.T) {
	repo := new(MockUserRepository)
	repo.On("FindByID", mock.Anything, uint(9)).Return(nil, gorm.ErrRecordNotFound)

	_, err := NewUserService(repo, nil, nil).Get(context.Background(), 9)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestUserService_UpdateUsername(t *testing.T) {
	actor := &model.User{ID: 1, Username: strPtr("user_abcd1234")}

	tests := []struct {
		name       string
		actor      *model.User
		username   string
		setupMocks func(*MockUserRepository)
		wantErr    error
		wantName   string
	}{
		{
			name:     "valid new username",
			actor:    actor,
			username: "alice_1",
			setupMocks: func(repo *MockUserRepository) {
				repo.On("FindByUsername", mock.Anything, "alice_1").Return(nil, gorm.ErrRecordNotFound)
				repo.On("UpdateUsername", mock.Anything, uint(1), "alice_1").Return(nil)
			},
			wantName: "alice_1",
		},
		{
			name:       "anonymous",
			username:   "alice",
			setupMocks: func(*MockUserRepository) {},
			wantErr:    apperrors.ErrAuthenticationRequired,
		},
		{
			name:     "taken by someone else",
			actor:    actor,
			username: "bob",
			setupMocks: func(repo *MockUserRepository) {
				repo.On("FindByUsername", mock.Anything, "bob").Return(&model.User{ID: 2}, nil)
			},
			wantErr: apperrors.ErrUsernameTaken,
		},
		{
			name:     "constraint violation on write",
			actor:    actor,
			username: "racer",
			setupMocks: func(repo *MockUserRepository) {
				repo.On("FindByUsername", mock.Anything, "racer").Return(nil, gorm.ErrRecordNotFound)
				repo.On("UpdateUsername", mock.Anything, uint(1), "racer").Return(gorm.ErrDuplicatedKey)
			},
			wantErr: apperrors.ErrUsernameTaken,
		},
		{
			name:     "store outage is not a conflict",
			actor:    actor,
			username: "carol",
			setupMocks: func(repo *MockUserRepository) {
				repo.On("FindByUsername", mock.Anything, "carol").Return(nil, gorm.ErrRecordNotFound)
				repo.On("UpdateUsername", mock.Anything, uint(1), "carol").Return(errBoom)
			},
			wantErr: errBoom,
		},
		{
			name:       "unchanged username skips write",
			actor:      actor,
			username:   "user_abcd1234",
			setupMocks: func(*MockUserRepository) {},
			wantName:   "user_abcd1234",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockUserRepository)
			tt.setupMocks(repo)

			updated, err := NewUserService(repo, nil, nil).UpdateUsername(context.Background(), tt.actor, tt.username)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				if tt.wantErr == errBoom {
					assert.NotErrorIs(t, err, apperrors.ErrUsernameTaken)
				}
				assert.Nil(t, updated)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantName, updated.DisplayName())
			}
			repo.AssertExpectations(t)
		})
	}
	assert.Equal(t, "user_abcd1234", actor.DisplayName())
}

func TestUserService_UpdateUsernameValidation(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewUserService(repo, nil, nil)

	for _, name := range []string{"ab", "abcdefghijklmnopqrstu", "has space", " abc ", "abc\n", "emoji😀", ""} {
		_, err := svc.UpdateUsername(context.Background(), &model.User{ID: 1}, name)
		var validation *apperrors.ValidationError
		assert.True(t, errors.As(err, &validation), name)
	}
	repo.AssertNotCalled(t, "UpdateUsername", mock.Anything, mock.Anything, mock.Anything)
}

func TestUsernameValidator_Validate(t *testing.T) {
	v := NewUsernameValidator()
	tests := []struct {
		username string
		valid    bool
	}{
		{"abc", true},
		{"abcdefghijklmnopqrst", true},
		{"Under_score-dash9", true},
		{"ab", false},
		{"abcdefghijklmnopqrstu", false},
		{"dot.name", false},
		{"ünï", false},
	}
	for _, tt := range tests {
		t.Run(tt.username, func(t *testing.T) {
			err := v.Validate(tt.username)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
