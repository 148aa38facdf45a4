package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskCatalogWarmup re-primes the catalog price cache after a bump.
	TaskCatalogWarmup = "catalog:warmup"
)

// CatalogWarmupPayload scopes a warmup run. An empty payload warms every
// catalog entry.
type CatalogWarmupPayload struct {
	VehicleModelID int64 `json:"vehicle_model_id,omitempty"`
}

// NewCatalogWarmupTask constructs an Asynq task.
func NewCatalogWarmupTask(payload CatalogWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCatalogWarmup, data), nil
}
