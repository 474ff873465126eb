package publishers

import (
	"time"

	"github.com/samvad-hq/steam-webapi/internal/domain"
)

// Event represents the payload published downstream.
type Event struct {
	CallID      string        `json:"call_id"`
	Endpoint    string        `json:"endpoint"`
	Result      domain.Result `json:"result"`
	CollectedAt time.Time     `json:"collected_at"`
}

// NewEvent constructs an Event for the given call result.
func NewEvent(endpoint string, result domain.Result) Event {
	return Event{
		CallID:      result.CallID,
		Endpoint:    endpoint,
		Result:      result,
		CollectedAt: time.Now().UTC(),
	}
}

func (e Event) attributes() map[string]string {
	return map[string]string{
		"call_id":  e.CallID,
		"endpoint": e.Endpoint,
		"format":   e.Result.Format,
	}
}
