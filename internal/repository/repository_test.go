package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"board/internal/dbtest"
	"board/internal/errors"
	"board/internal/model"
)

func strPtr(s string) *string { return &s }

func seedUser(t *testing.T, repo UserRepository, email, username string) *model.User {
	t.Helper()
	user := &model.User{Email: email, Username: strPtr(username)}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func TestUserRepository_FindByEmailOrCreate(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(dbtest.Open(t))

	first, err := repo.FindByEmailOrCreate(ctx, &model.User{Email: "a@x.com", Username: strPtr("user_a")})
	require.NoError(t, err)
	require.NotZero(t, first.ID)

	second, err := repo.FindByEmailOrCreate(ctx, &model.User{Email: "a@x.com", Username: strPtr("user_b")})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "user_a", second.DisplayName())
}

func TestUserRepository_UpdateUsername(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(dbtest.Open(t))
	alice := seedUser(t, repo, "alice@x.com", "alice")
	seedUser(t, repo, "bob@x.com", "bob")

	require.NoError(t, repo.UpdateUsername(ctx, alice.ID, "alice_2"))
	found, err := repo.FindByUsername(ctx, "alice_2")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, found.ID)

	assert.ErrorIs(t, repo.UpdateUsername(ctx, alice.ID, "bob"), gorm.ErrDuplicatedKey)
	assert.ErrorIs(t, repo.UpdateUsername(ctx, 9999, "nobody"), gorm.ErrRecordNotFound)
}

func TestCodeRepository_ConsumeAndSweep(t *testing.T) {
	ctx := context.Background()
	gormDB := dbtest.Open(t)
	users := NewUserRepository(gormDB)
	codes := NewCodeRepository(gormDB)
	user := seedUser(t, users, "c@x.com", "carol")
	now := time.Now().UTC()

	require.NoError(t, codes.Create(ctx, &model.VerificationCode{UserID: user.ID, Code: "123456", ExpiresAt: now.Add(10 * time.Minute)}))
	require.NoError(t, codes.Create(ctx, &model.VerificationCode{UserID: user.ID, Code: "654321", ExpiresAt: now.Add(-10 * time.Minute)}))
	require.NoError(t, codes.Create(ctx, &model.VerificationCode{UserID: user.ID, Code: "777777", ExpiresAt: now.Add(10 * time.Minute)}))

	ok, err := codes.Consume(ctx, user.ID, "654321", now)
	require.NoError(t, err)
	assert.False(t, ok, "expired code must not match")

	ok, err = codes.Consume(ctx, user.ID+1, "123456", now)
	require.NoError(t, err)
	assert.False(t, ok, "code is bound to its user")

	ok, err = codes.Consume(ctx, user.ID, "123456", now)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = codes.Consume(ctx, user.ID, "123456", now)
	require.NoError(t, err)
	assert.False(t, ok, "a consumed code cannot be used again")

	removed, err := codes.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	require.NoError(t, codes.DeleteByUser(ctx, user.ID))
	ok, err = codes.Consume(ctx, user.ID, "777777", now)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCodeRepository_ConsumeConcurrent(t *testing.T) {
	ctx := context.Background()
	gormDB := dbtest.Open(t)
	users := NewUserRepository(gormDB)
	codes := NewCodeRepository(gormDB)
	user := seedUser(t, users, "d@x.com", "dave")
	now := time.Now().UTC()
	require.NoError(t, codes.Create(ctx, &model.VerificationCode{UserID: user.ID, Code: "123456", ExpiresAt: now.Add(10 * time.Minute)}))

	const callers = 8
	var (
		wg        sync.WaitGroup
		start     = make(chan struct{})
		successes atomic.Int32
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			ok, err := codes.Consume(ctx, user.ID, "123456", now)
			if assert.NoError(t, err) && ok {
				successes.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), successes.Load())
}

func TestPostRepository_OwnershipGuard(t *testing.T) {
	ctx := context.Background()
	gormDB := dbtest.Open(t)
	users := NewUserRepository(gormDB)
	posts := NewPostRepository(gormDB)
	alice := seedUser(t, users, "alice@x.com", "alice")
	bob := seedUser(t, users, "bob@x.com", "bob")

	post := &model.Post{Message: "hello", UserID: alice.ID}
	require.NoError(t, posts.Create(ctx, post))

	tests := []struct {
		name   string
		action func() error
	}{
		{name: "edit by other user", action: func() error { return posts.UpdateMessage(ctx, post.ID, bob.ID, "hijacked") }},
		{name: "delete by other user", action: func() error { return posts.Delete(ctx, post.ID, bob.ID) }},
		{name: "edit missing post", action: func() error { return posts.UpdateMessage(ctx, post.ID+100, alice.ID, "x") }},
		{name: "delete missing post", action: func() error { return posts.Delete(ctx, post.ID+100, alice.ID) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.action(), errors.ErrPostNotOwned)
		})
	}

	found, err := posts.FindByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", found.Message)
	assert.Equal(t, "alice", found.Username)

	require.NoError(t, posts.UpdateMessage(ctx, post.ID, alice.ID, "edited"))
	found, err = posts.FindByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", found.Message)

	require.NoError(t, posts.Delete(ctx, post.ID, alice.ID))
	_, err = posts.FindByID(ctx, post.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestPostRepository_ListRecent(t *testing.T) {
	ctx := context.Background()
	gormDB := dbtest.Open(t)
	users := NewUserRepository(gormDB)
	posts := NewPostRepository(gormDB)
	alice := seedUser(t, users, "alice@x.com", "alice")

	for _, msg := range []string{"one", "two", "three"} {
		require.NoError(t, posts.Create(ctx, &model.Post{Message: msg, UserID: alice.ID}))
	}

	recent, err := posts.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "three", recent[0].Message)
	assert.Equal(t, "two", recent[1].Message)
	assert.Equal(t, "alice", recent[0].Username)
}
