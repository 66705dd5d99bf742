package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"payoff/internal/core"
)

// ExportRequest asks the worker to render a projection and export it. The
// worker reloads the owner's snapshot and replays the run from Start, which
// reproduces the ledger shown to the user.
type ExportRequest struct {
	RunID       string        `json:"run_id"`
	OwnerID     int64         `json:"owner_id"`
	Strategy    core.Strategy `json:"strategy"`
	Start       time.Time     `json:"start"`
	RequestedAt time.Time     `json:"requested_at"`
}

func (r *ExportRequest) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}

func ExportRequestFromJSON(data []byte) (*ExportRequest, error) {
	var req ExportRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	if req.RunID == "" || req.OwnerID == 0 {
		return nil, errors.New("export request missing run id or owner")
	}
	if !req.Strategy.Valid() {
		return nil, core.ErrInvalidStrategy
	}
	return &req, nil
}
