package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketvue_backend/internal/services/dto"
)

func TestFileStore_RoundTrip(t *testing.T) {
	store := NewFileStore(t.TempDir())

	sess, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, sess, "no file means anonymous")

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	in := FromAuth(&dto.AuthResponse{
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresIn:    900,
		User:         &dto.UserResponse{ID: "u1", Name: "Ana", Role: "USER", RoleTier: 3, Status: "APPROVED"},
	}, now)
	require.NoError(t, store.Save(in))
	assert.Equal(t, StorageKey, filepath.Base(store.Path()))

	out, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, "Ana", out.User.Name)
	assert.Equal(t, "access", out.AccessToken)
	assert.True(t, out.ExpiresAt.Equal(now.Add(15*time.Minute)))

	require.NoError(t, store.Clear())
	out, err = store.Load()
	require.NoError(t, err)
	assert.Nil(t, out)

	// повторная очистка не ошибка
	assert.NoError(t, store.Clear())
}

func TestFileStore_CorruptFileIsAnonymous(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, StorageKey), []byte("{not json"), 0o600))

	sess, err := NewFileStore(dir).Load()
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestFileStore_SessionWithoutUserIsAnonymous(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, StorageKey), []byte(`{"access_token":"x"}`), 0o600))

	sess, err := NewFileStore(dir).Load()
	require.NoError(t, err)
	assert.Nil(t, sess)
}
