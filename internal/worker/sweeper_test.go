package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"board/internal/dbtest"
	"board/internal/model"
	"board/internal/repository"
)

func seedCodes(t *testing.T, codes repository.CodeRepository, userID uint, now time.Time) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, codes.Create(ctx, &model.VerificationCode{UserID: userID, Code: "111111", ExpiresAt: now.Add(-time.Minute)}))
	require.NoError(t, codes.Create(ctx, &model.VerificationCode{UserID: userID, Code: "222222", ExpiresAt: now.Add(-time.Second)}))
	require.NoError(t, codes.Create(ctx, &model.VerificationCode{UserID: userID, Code: "333333", ExpiresAt: now.Add(time.Minute)}))
}

func TestSweeper_RunOnce(t *testing.T) {
	gormDB := dbtest.Open(t)
	users := repository.NewUserRepository(gormDB)
	codes := repository.NewCodeRepository(gormDB)
	user := &model.User{Email: "sweep@example.com"}
	require.NoError(t, users.Create(context.Background(), user))

	now := time.Now().UTC()
	seedCodes(t, codes, user.ID, now)

	s := NewSweeper(codes, time.Minute, nil)
	s.now = func() time.Time { return now }

	n, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	ok, err := codes.Consume(context.Background(), user.ID, "333333", now)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSweeper_StartStopsOnCancel(t *testing.T) {
	gormDB := dbtest.Open(t)
	users := repository.NewUserRepository(gormDB)
	codes := repository.NewCodeRepository(gormDB)
	user := &model.User{Email: "tick@example.com"}
	require.NoError(t, users.Create(context.Background(), user))
	seedCodes(t, codes, user.ID, time.Now().UTC())

	ctx, cancel := context.WithCancel(context.Background())
	stopped := NewSweeper(codes, 10*time.Millisecond, nil).Start(ctx)

	assert.Eventually(t, func() bool {
		var count int64
		gormDB.Model(&model.VerificationCode{}).Count(&count)
		return count == 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}

func TestSweeper_DisabledInterval(t *testing.T) {
	stopped := NewSweeper(nil, 0, nil).Start(context.Background())
	_, open := <-stopped
	assert.False(t, open)
}
