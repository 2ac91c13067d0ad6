package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"expenses/internal/core"
)

// ChangeMessage announces one persisted store mutation. Expense carries the
// record after the change, or the removed record for deletes.
type ChangeMessage struct {
	Op        string       `json:"op"`
	ID        string       `json:"id"`
	Version   uint64       `json:"version"`
	Expense   core.Expense `json:"expense"`
	Timestamp time.Time    `json:"timestamp"`
}

func NewChangeMessage(op string, e core.Expense, version uint64) *ChangeMessage {
	return &ChangeMessage{
		Op:        op,
		ID:        e.ID,
		Version:   version,
		Expense:   e,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ChangeMessageFromJSON decodes a message and rejects ones without an op or id.
func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Op == "" || msg.ID == "" {
		return nil, fmt.Errorf("change message missing op or id")
	}
	return &msg, nil
}
