package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_SaveExistsDelete(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewStorage(Config{Type: "local", BasePath: dir, BaseURL: "/uploads/"})
	require.NoError(t, err)

	key := "posts/user-1/cover.png"
	require.NoError(t, s.Save(ctx, key, strings.NewReader("data"), "image/png"))

	raw, err := os.ReadFile(filepath.Join(dir, "posts", "user-1", "cover.png"))
	require.NoError(t, err)
	assert.Equal(t, "data", string(raw))

	exists, err := s.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, "/uploads/posts/user-1/cover.png", s.URL(key))

	require.NoError(t, s.Delete(ctx, key))
	require.NoError(t, s.Delete(ctx, key), "повторное удаление не ошибка")

	exists, err = s.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLocalStorage_KeysStayInsideBase(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewLocalStorage(Config{BasePath: filepath.Join(dir, "uploads")})
	require.NoError(t, err)

	require.NoError(t, s.Save(ctx, "../../escape.txt", strings.NewReader("x"), "text/plain"))
	_, err = os.Stat(filepath.Join(dir, "uploads", "escape.txt"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "escape.txt"))
	assert.True(t, os.IsNotExist(err))

	assert.Error(t, s.Save(ctx, "/", strings.NewReader("x"), "text/plain"))
}

func TestNewStorage_UnknownType(t *testing.T) {
	_, err := NewStorage(Config{Type: "ftp"})
	assert.Error(t, err)
}
