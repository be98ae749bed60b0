package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	ActionCreated = "created"
	ActionDeleted = "deleted"
)

// LedgerEventMessage announces one ledger change. It carries only the row
// id and correlation data; consumers fetch whatever else they need.
type LedgerEventMessage struct {
	TransactionID int64     `json:"transaction_id"`
	Action        string    `json:"action"`
	TransferGroup string    `json:"transfer_group,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewLedgerEventMessage creates an event for a transaction id.
func NewLedgerEventMessage(transactionID int64, action, transferGroup string) *LedgerEventMessage {
	return &LedgerEventMessage{
		TransactionID: transactionID,
		Action:        action,
		TransferGroup: transferGroup,
		Timestamp:     time.Now(),
	}
}

// Validate rejects messages with an unknown action or missing id.
func (m *LedgerEventMessage) Validate() error {
	if m.TransactionID <= 0 {
		return fmt.Errorf("invalid transaction id %d", m.TransactionID)
	}
	if m.Action != ActionCreated && m.Action != ActionDeleted {
		return fmt.Errorf("invalid action %q", m.Action)
	}
	return nil
}

// ToJSON converts the message to JSON bytes
func (m *LedgerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventMessageFromJSON creates a message from JSON bytes
func LedgerEventMessageFromJSON(data []byte) (*LedgerEventMessage, error) {
	var msg LedgerEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
