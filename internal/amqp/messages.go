package amqp

import (
	"encoding/json"
	"time"
)

// Entity kinds and operations carried by mutation events.
const (
	EntityAccount  = "account"
	EntityExpense  = "expense"
	EntityCategory = "category"

	OpAdd    = "add"
	OpUpdate = "update"
	OpDelete = "delete"
	OpToggle = "toggle"
)

// MutationMessage announces that the store changed. It carries only the
// coordinates of the change; consumers read the current state through
// their own gateway.
type MutationMessage struct {
	Entity    string    `json:"entity"`
	Op        string    `json:"op"`
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMutationMessage creates an event for one applied mutation.
func NewMutationMessage(entity, op, id string) *MutationMessage {
	return &MutationMessage{
		Entity:    entity,
		Op:        op,
		ID:        id,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *MutationMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// MutationMessageFromJSON creates a message from JSON bytes
func MutationMessageFromJSON(data []byte) (*MutationMessage, error) {
	var msg MutationMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
