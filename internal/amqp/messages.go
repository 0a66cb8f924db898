package amqp

import (
	"encoding/json"
	"time"

	"habitlog/internal/core"
)

// CollectionSyncMessage tells the worker that a collection changed and its
// remote mirror is stale. It carries only the collection name; the worker
// reads the current snapshot from the store, so replayed or coalesced
// messages are harmless.
type CollectionSyncMessage struct {
	Collection core.Collection `json:"collection"`
	Timestamp  time.Time       `json:"timestamp"`
}

// NewCollectionSyncMessage creates a sync message for the named collection
func NewCollectionSyncMessage(c core.Collection) *CollectionSyncMessage {
	return &CollectionSyncMessage{
		Collection: c,
		Timestamp:  time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *CollectionSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// CollectionSyncMessageFromJSON creates a message from JSON bytes
func CollectionSyncMessageFromJSON(data []byte) (*CollectionSyncMessage, error) {
	var msg CollectionSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
