package workers

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketvue_backend/internal/metrics"
	"marketvue_backend/internal/models"
	"marketvue_backend/internal/repositories"
	"marketvue_backend/internal/repositories/memory"
)

func TestTokenWorker_PurgeExpired(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	m := metrics.New()

	user := &models.User{Name: "Ana", Email: "ana@example.com", PasswordHash: "x", Role: models.UserRoleUser, Status: models.UserStatusApproved}
	require.NoError(t, store.Users().Create(ctx, user))

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.RefreshTokens().Create(ctx, &models.RefreshToken{UserID: user.ID, Token: "expired-1", ExpiresAt: now.Add(-time.Hour)}))
	require.NoError(t, store.RefreshTokens().Create(ctx, &models.RefreshToken{UserID: user.ID, Token: "expired-2", ExpiresAt: now}))
	require.NoError(t, store.RefreshTokens().Create(ctx, &models.RefreshToken{UserID: user.ID, Token: "alive", ExpiresAt: now.Add(time.Hour)}))

	w := NewTokenWorker(store, m, 0)
	w.now = func() time.Time { return now }

	assert.Equal(t, int64(2), w.PurgeExpired(ctx))
	assert.Equal(t, int64(0), w.PurgeExpired(ctx))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.TokensPurged))

	_, err := store.RefreshTokens().FindByToken(ctx, "alive")
	assert.NoError(t, err)
	_, err = store.RefreshTokens().FindByToken(ctx, "expired-1")
	assert.ErrorIs(t, err, repositories.ErrRefreshTokenNotFound)
}

func TestTokenWorker_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	w := NewTokenWorker(memory.NewStore(), nil, 10*time.Millisecond)

	w.Start(ctx)
	time.Sleep(30 * time.Millisecond)
	cancel()

	done := make(chan struct{})
	go func() {
		w.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}
