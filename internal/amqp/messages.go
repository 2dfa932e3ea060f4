package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Scope of a period-changed event.
const (
	ScopePeriod = "period"
	ScopeAll    = "all"
)

// PeriodChangedMessage tells consumers that the data behind one monthly
// summary (or every summary, for scope "all") has changed. It carries no
// figures; the consumer recomputes from the database.
type PeriodChangedMessage struct {
	ID        string    `json:"id"`
	Scope     string    `json:"scope"`
	Year      int       `json:"year,omitempty"`
	Month     int       `json:"month,omitempty"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

func NewPeriodChangedMessage(year, month int, reason string) *PeriodChangedMessage {
	return &PeriodChangedMessage{
		ID:        uuid.NewString(),
		Scope:     ScopePeriod,
		Year:      year,
		Month:     month,
		Reason:    reason,
		Timestamp: time.Now().UTC(),
	}
}

func NewAllChangedMessage(reason string) *PeriodChangedMessage {
	return &PeriodChangedMessage{
		ID:        uuid.NewString(),
		Scope:     ScopeAll,
		Reason:    reason,
		Timestamp: time.Now().UTC(),
	}
}

func (m *PeriodChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// PeriodChangedMessageFromJSON decodes and sanity-checks a message body.
func PeriodChangedMessageFromJSON(data []byte) (*PeriodChangedMessage, error) {
	var msg PeriodChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	switch msg.Scope {
	case ScopeAll:
	case ScopePeriod:
		if msg.Month < 1 || msg.Month > 12 || msg.Year == 0 {
			return nil, fmt.Errorf("invalid period %04d-%02d", msg.Year, msg.Month)
		}
	default:
		return nil, fmt.Errorf("unknown scope %q", msg.Scope)
	}
	return &msg, nil
}
