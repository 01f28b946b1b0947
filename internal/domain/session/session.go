package session

import (
	"context"
	"time"

	"github.com/heliowatt/heliowatt/internal/domain/location"
	"github.com/heliowatt/heliowatt/internal/domain/simulation"
)

// Record holds the inputs a signed-in user last worked with. It carries no
// credentials; auth status lives in the bearer token.
type Record struct {
	UserID    int64                   `json:"userId"`
	Location  location.Query          `json:"location"`
	Params    simulation.SystemConfig `json:"params"`
	UpdatedAt time.Time               `json:"updatedAt"`
}

// Store defines the persistence contract for session records.
type Store interface {
	Get(ctx context.Context, userID int64) (Record, bool, error)
	Save(ctx context.Context, record Record, ttl time.Duration) error
	Delete(ctx context.Context, userID int64) error
}

// Config drives session behavior.
type Config struct {
	TTL time.Duration
}
