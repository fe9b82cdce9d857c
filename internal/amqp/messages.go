package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	MutationCreate = "create"
	MutationDelete = "delete"
)

// MutationMessage announces that a transaction was created or deleted
// through the backend. It carries only the kind and identifier; the
// worker re-fetches the authoritative list itself.
type MutationMessage struct {
	Kind          string    `json:"kind"`
	TransactionID int64     `json:"transactionId"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewMutationMessage(kind string, transactionID int64) *MutationMessage {
	return &MutationMessage{
		Kind:          kind,
		TransactionID: transactionID,
		Timestamp:     time.Now(),
	}
}

func (m *MutationMessage) Validate() error {
	if m.Kind != MutationCreate && m.Kind != MutationDelete {
		return fmt.Errorf("unknown mutation kind %q", m.Kind)
	}
	return nil
}

func (m *MutationMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func MutationMessageFromJSON(data []byte) (*MutationMessage, error) {
	var msg MutationMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
