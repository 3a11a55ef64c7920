// Package session хранит снимок сессии клиента между запусками.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"marketvue_backend/internal/services/dto"
)

// StorageKey - единственный ключ (имя файла), под которым лежит сессия.
const StorageKey = "marketvue.session"

// Session - то, что клиент получил при логине. Данные не доверенные:
// сервер заново проверяет роль на каждом запросе.
type Session struct {
	User         *dto.UserResponse `json:"user"`
	AccessToken  string            `json:"access_token"`
	RefreshToken string            `json:"refresh_token"`
	ExpiresAt    time.Time         `json:"expires_at"`
}

func (s *Session) Authenticated() bool {
	return s != nil && s.User != nil && s.AccessToken != ""
}

// FromAuth строит сессию из ответа /auth/login или /auth/refresh.
func FromAuth(resp *dto.AuthResponse, now time.Time) *Session {
	return &Session{
		User:         resp.User,
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    now.Add(time.Duration(resp.ExpiresIn) * time.Second),
	}
}

// FileStore - сессия в JSON-файле внутри каталога клиента.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{path: filepath.Join(dir, StorageKey)}
}

func (s *FileStore) Path() string {
	return s.path
}

// Load возвращает nil, если сессии нет. Битый файл считается отсутствием сессии.
func (s *FileStore) Load() (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		slog.Warn("Stored session is unreadable, ignoring", slog.String("path", s.path), slog.Any("error", err))
		return nil, nil
	}
	if !sess.Authenticated() {
		return nil, nil
	}
	return &sess, nil
}

func (s *FileStore) Save(sess *Session) error {
	if sess == nil {
		return s.Clear()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return os.Rename(tmp, s.path)
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}
