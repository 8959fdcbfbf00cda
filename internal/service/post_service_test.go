package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	apperrors "board/internal/errors"
	"board/internal/model"
)

func TestPostService_Create(t *testing.T) {
	author := &model.User{ID: 4}

	tests := []struct {
		name      string
		actor     *model.User
		message   string
		wantErr   error
		wantValid bool
	}{
		{name: "valid", actor: author, message: "hello board"},
		{name: "anonymous", message: "hello", wantErr: apperrors.ErrAuthenticationRequired},
		{name: "blank", actor: author, message: "  \n ", wantValid: true},
		{name: "too long", actor: author, message: strings.Repeat("x", model.MaxMessageLength+1), wantValid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockPostRepository)
			if tt.wantErr == nil && !tt.wantValid {
				repo.On("Create", mock.Anything, mock.MatchedBy(func(p *model.Post) bool {
					return p.UserID == 4 && p.Message == tt.message
				})).Return(nil)
			}

			post, err := NewPostService(repo, nil).Create(context.Background(), tt.actor, tt.message)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantValid:
				var validation *apperrors.ValidationError
				assert.ErrorAs(t, err, &validation)
			default:
				require.NoError(t, err)
				assert.Equal(t, uint(4), post.UserID)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestPostService_EditAndDeleteOwnership(t *testing.T) {
	intruder := &model.User{ID: 2}

	repo := new(MockPostRepository)
	repo.On("UpdateMessage", mock.Anything, uint(10), uint(2), "mine now").Return(apperrors.ErrPostNotOwned)
	repo.On("Delete", mock.Anything, uint(10), uint(2)).Return(apperrors.ErrPostNotOwned)
	svc := NewPostService(repo, nil)

	assert.ErrorIs(t, svc.Edit(context.Background(), intruder, 10, "mine now"), apperrors.ErrPostNotOwned)
	assert.ErrorIs(t, svc.Delete(context.Background(), intruder, 10), apperrors.ErrPostNotOwned)
	assert.ErrorIs(t, svc.Delete(context.Background(), nil, 10), apperrors.ErrAuthenticationRequired)
	repo.AssertExpectations(t)
}

func TestPostService_GetAndList(t *testing.T) {
	repo := new(MockPostRepository)
	repo.On("FindByID", mock.Anything, uint(3)).Return(nil, gorm.ErrRecordNotFound)
	repo.On("ListRecent", mock.Anything, DefaultRecentPosts).Return([]model.PostWithUsername{{ID: 1}}, nil)
	svc := NewPostService(repo, nil)

	_, err := svc.Get(context.Background(), 3)
	assert.ErrorIs(t, err, apperrors.ErrPostNotFound)

	posts, err := svc.ListRecent(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, posts, 1)
	repo.AssertExpectations(t)
}
