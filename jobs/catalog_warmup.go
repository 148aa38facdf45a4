package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/bodycraft-erp/bodycraft-erp/internal/catalog"
)

// CatalogWarmupJob re-primes the price cache so lookups after a bump hit
// redis instead of Postgres.
type CatalogWarmupJob struct {
	Resolver *catalog.Resolver
	Logger   *slog.Logger
}

func NewCatalogWarmupJob(resolver *catalog.Resolver, logger *slog.Logger) *CatalogWarmupJob {
	return &CatalogWarmupJob{Resolver: resolver, Logger: logger}
}

// Handle processes catalog warmup tasks.
func (j *CatalogWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Resolver == nil {
		return errors.New("catalog warmup: handler not configured")
	}
	var payload CatalogWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	logger := j.logger()
	start := time.Now()
	logger.Info("starting catalog warmup")

	jobCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	warmed, err := j.Resolver.Warm(jobCtx)
	if err != nil {
		logger.Error("catalog warmup", slog.Any("error", err))
		return err
	}

	logger.Info("completed catalog warmup",
		slog.Int("entries", warmed),
		slog.Duration("duration", time.Since(start)))
	return nil
}

func (j *CatalogWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskCatalogWarmup))
	}
	return slog.Default().With(slog.String("job", TaskCatalogWarmup))
}
