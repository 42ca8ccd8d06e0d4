package services

import (
	"context"
	"time"

	"classroom-api/pkg/memorydb"
	"classroom-api/pkg/postgres"
)

// HealthStatus represents the status of a service
type HealthStatus struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Details   string    `json:"details,omitempty"`
}

// HealthService handles health check operations
type HealthService struct {
	db    *postgres.DB
	redis *memorydb.RedisClient
}

func NewHealthService(db *postgres.DB, redis *memorydb.RedisClient) *HealthService {
	return &HealthService{
		db:    db,
		redis: redis,
	}
}

// Check pings every backing store and reports per-store status.
func (s *HealthService) Check(ctx context.Context) map[string]HealthStatus {
	status := make(map[string]HealthStatus)

	if err := s.db.Ping(ctx); err != nil {
		status["database"] = HealthStatus{Status: "error", Timestamp: time.Now(), Details: err.Error()}
	} else {
		status["database"] = HealthStatus{Status: "ok", Timestamp: time.Now()}
	}

	if s.redis != nil {
		if err := s.redis.Ping(ctx); err != nil {
			status["redis"] = HealthStatus{Status: "error", Timestamp: time.Now(), Details: err.Error()}
		} else {
			status["redis"] = HealthStatus{Status: "ok", Timestamp: time.Now()}
		}
	}

	return status
}

// Healthy reports whether every checked store is ok.
func (s *HealthService) Healthy(ctx context.Context) bool {
	for _, st := range s.Check(ctx) {
		if st.Status != "ok" {
			return false
		}
	}
	return true
}
