package workers

import (
	"context"
	"sync"
	"time"

	"marketvue_backend/internal/logger"
	"marketvue_backend/internal/metrics"
	"marketvue_backend/internal/repositories"
)

const tokenWorkerName = "token_cleanup"

// TokenWorker удаляет истекшие refresh-токены
type TokenWorker struct {
	store    repositories.Store
	metrics  *metrics.Metrics
	interval time.Duration
	now      func() time.Time
	wg       sync.WaitGroup
}

func NewTokenWorker(store repositories.Store, m *metrics.Metrics, interval time.Duration) *TokenWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	return &TokenWorker{
		store:    store,
		metrics:  m,
		interval: interval,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Start запускает фоновую очистку; останавливается по отмене ctx
func (w *TokenWorker) Start(ctx context.Context) {
	w.wg.Add(1)
	go w.run(ctx)
}

// Wait ждет завершения после отмены ctx
func (w *TokenWorker) Wait() {
	w.wg.Wait()
}

func (w *TokenWorker) run(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.WorkerLog(tokenWorkerName, "stop", nil)
			return
		case <-ticker.C:
			w.PurgeExpired(ctx)
		}
	}
}

// PurgeExpired - один проход очистки
func (w *TokenWorker) PurgeExpired(ctx context.Context) int64 {
	n, err := w.store.RefreshTokens().DeleteExpired(ctx, w.now())
	if err != nil {
		logger.WorkerLog(tokenWorkerName, "purge", err)
		return 0
	}
	if n > 0 {
		if w.metrics != nil {
			w.metrics.TokensPurged.Add(float64(n))
		}
		logger.WorkerLog(tokenWorkerName, "purge", nil, "deleted", n)
	}
	return n
}
