// Package events announces finished projections to interested consumers.
package events

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"payoff/internal/core"
)

const TopicProjectionCompleted = "projection_completed"

// ProjectionCompleted is emitted after every projection run, successful or
// not.
type ProjectionCompleted struct {
	RunID         string          `json:"run_id"`
	OwnerID       int64           `json:"owner_id"`
	Strategy      core.Strategy   `json:"strategy"`
	Succeeded     bool            `json:"succeeded"`
	Months        int             `json:"months"`
	TotalInterest decimal.Decimal `json:"total_interest"`
	At            time.Time       `json:"at"`
}

type Publisher interface {
	PublishProjectionCompleted(ctx context.Context, e ProjectionCompleted) error
	Close() error
}

// Nop discards events.
type Nop struct{}

func (Nop) PublishProjectionCompleted(context.Context, ProjectionCompleted) error { return nil }

func (Nop) Close() error { return nil }
