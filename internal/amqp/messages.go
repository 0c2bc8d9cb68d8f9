package amqp

import (
	"encoding/json"
	"time"
)

// Message actions carried on the sync queue.
const (
	ActionUpsert = "upsert"
	ActionDelete = "delete"
)

// TransactionSyncMessage is a lightweight queue message: it carries the
// transaction id and the action, the worker fetches the full record from
// the database when exporting.
type TransactionSyncMessage struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

// NewUpsertMessage creates a sync message for a written transaction.
func NewUpsertMessage(id string) *TransactionSyncMessage {
	return &TransactionSyncMessage{ID: id, Action: ActionUpsert, Timestamp: time.Now()}
}

// NewDeleteMessage creates a sync message for a removed transaction.
func NewDeleteMessage(id string) *TransactionSyncMessage {
	return &TransactionSyncMessage{ID: id, Action: ActionDelete, Timestamp: time.Now()}
}

// ToJSON converts the message to JSON bytes.
func (m *TransactionSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionSyncMessageFromJSON creates a message from JSON bytes.
func TransactionSyncMessageFromJSON(data []byte) (*TransactionSyncMessage, error) {
	var msg TransactionSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
