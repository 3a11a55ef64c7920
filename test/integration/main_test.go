package integration_test

import (
	"log"
	"os"
	"sync"
	"testing"

	"marketvue_backend/test/helpers"
)

// Глобальные переменные для общего состояния
var (
	globalTestServer *helpers.TestServer
	serverOnce       sync.Once
)

// GetTestServer возвращает тестовый сервер (создает при первом вызове).
// Без TEST_DATABASE_URL тесты идут на in-memory хранилище.
func GetTestServer(t *testing.T) *helpers.TestServer {
	serverOnce.Do(func() {
		log.Println("--- [GetTestServer] Initializing test server... ---")
		if dsn := os.Getenv("TEST_DATABASE_URL"); dsn != "" {
			globalTestServer = helpers.NewPostgresTestServer(t, dsn)
			globalTestServer.ClearTables()
		} else {
			globalTestServer = helpers.NewTestServer(t)
		}
		log.Println("--- [GetTestServer] Test server ready ---")
	})
	return globalTestServer
}

func TestMain(m *testing.M) {
	code := m.Run()

	// Очистка после ВСЕХ тестов
	if globalTestServer != nil {
		log.Println("--- [TestMain] Cleaning up... ---")
		globalTestServer.Close()
	}

	os.Exit(code)
}
