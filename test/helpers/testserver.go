package helpers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"gorm.io/gorm"

	"marketvue_backend/database"
	"marketvue_backend/internal/app"
	"marketvue_backend/internal/config"
	"marketvue_backend/internal/email"
	"marketvue_backend/internal/metrics"
	"marketvue_backend/internal/repositories"
	"marketvue_backend/internal/repositories/memory"
	"marketvue_backend/internal/services"
	"marketvue_backend/internal/storage"
)

type TestServer struct {
	Server   *httptest.Server
	Store    repositories.Store
	Services *services.ServiceContainer
	Mail     *email.MockProvider
	Config   *config.Config
	// DB - только для Postgres; nil при in-memory хранилище
	DB *gorm.DB

	uploadsDir string
}

// TestConfig - конфиг по умолчанию с локальным хранилищем во временном каталоге
func TestConfig(uploadsDir string) *config.Config {
	cfg := config.Default()
	cfg.Server.Env = "test"
	cfg.JWT.Secret = "test-secret-for-marketvue"
	cfg.Storage.BasePath = uploadsDir
	cfg.Storage.BaseURL = "/uploads"
	return cfg
}

// NewTestServer поднимает роутер на in-memory хранилище.
// Сервер может переживать тест, который его создал, поэтому каталог
// загрузок не привязан к t.TempDir и удаляется в Close.
func NewTestServer(t *testing.T) *TestServer {
	cfg := TestConfig(uploadsDir(t))
	return newServer(t, cfg, memory.NewStore(), nil)
}

// NewPostgresTestServer подключается к dsn и мигрирует схему.
func NewPostgresTestServer(t *testing.T, dsn string) *TestServer {
	cfg := TestConfig(uploadsDir(t))
	cfg.Database.Driver = "postgres"
	cfg.Database.DSN = dsn

	db, err := database.Connect(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Не удалось подключиться к тестовой БД: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Не удалось выполнить AutoMigrate для тестовой БД: %v", err)
	}
	return newServer(t, cfg, repositories.NewGormStore(db), db)
}

func uploadsDir(t *testing.T) string {
	dir, err := os.MkdirTemp("", "marketvue-uploads-*")
	if err != nil {
		t.Fatalf("Не удалось создать каталог загрузок: %v", err)
	}
	return dir
}

func newServer(t *testing.T, cfg *config.Config, store repositories.Store, db *gorm.DB) *TestServer {
	files, err := storage.NewStorage(storage.ConfigFrom(cfg))
	if err != nil {
		t.Fatalf("Не удалось создать хранилище файлов: %v", err)
	}
	renderer, err := email.NewDefaultTemplateManager()
	if err != nil {
		t.Fatalf("Не удалось загрузить шаблоны писем: %v", err)
	}
	mail := email.NewMockProvider(renderer)

	router, svc := app.SetupRouter(app.Deps{
		Config:  cfg,
		Store:   store,
		Storage: files,
		Email:   mail,
		Metrics: metrics.New(),
	})

	server := httptest.NewServer(router)
	log.Printf("Тестовый сервер запущен, хранилище: %s", store.Mode())

	return &TestServer{
		Server:   server,
		Store:    store,
		Services: svc,
		Mail:     mail,
		Config:   cfg,
		DB:       db,

		uploadsDir: cfg.Storage.BasePath,
	}
}

func (ts *TestServer) Close() {
	ts.Server.Close()
	ts.Services.Notifier.Wait()
	if ts.DB != nil {
		_ = database.Close(ts.DB)
	}
	_ = os.RemoveAll(ts.uploadsDir)
}

// ClearTables очищает все таблицы (только Postgres).
func (ts *TestServer) ClearTables() {
	if ts.DB == nil {
		return
	}
	err := ts.DB.Exec("TRUNCATE TABLE reviews, post_images, posts, refresh_tokens, support_tickets, moderation_events, categories, users RESTART IDENTITY CASCADE").Error
	if err != nil {
		log.Fatalf("Не удалось очистить таблицы: %v", err)
	}
}

func (ts *TestServer) SendRequest(t *testing.T, method, path, token string, body interface{}) (*http.Response, string) {
	t.Helper()
	url := ts.Server.URL + path

	var reqBody io.Reader = nil
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Ошибка кодирования JSON для запроса: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		t.Fatalf("Ошибка создания HTTP-запроса: %v", err)
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return ts.do(t, req)
}

// SendMultipart отправляет форму; files - имя поля -> содержимое файла
func (ts *TestServer) SendMultipart(t *testing.T, path, token string, fields map[string]string, files map[string][]byte) (*http.Response, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("Ошибка записи поля формы: %v", err)
		}
	}
	for field, data := range files {
		part, err := w.CreateFormFile(field, field+".bin")
		if err != nil {
			t.Fatalf("Ошибка создания файла формы: %v", err)
		}
		if _, err := part.Write(data); err != nil {
			t.Fatalf("Ошибка записи файла формы: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Ошибка закрытия формы: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, ts.Server.URL+path, &buf)
	if err != nil {
		t.Fatalf("Ошибка создания HTTP-запроса: %v", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return ts.do(t, req)
}

func (ts *TestServer) do(t *testing.T, req *http.Request) (*http.Response, string) {
	t.Helper()

	res, err := ts.Server.Client().Do(req)
	if err != nil {
		t.Fatalf("Ошибка отправки HTTP-запроса: %v", err)
	}
	defer res.Body.Close()

	resBodyBytes, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("Ошибка чтения тела ответа: %v", err)
	}

	return res, string(resBodyBytes)
}
