package amqp

import (
	"encoding/json"
	"time"

	"celengan/internal/core"
)

// TransactionEvent is published after a transaction has been persisted.
// It carries the full entry so consumers (the ledger export worker) do
// not need store access.
type TransactionEvent struct {
	Username  string      `json:"username"` // lowercase store key
	Source    string      `json:"source"`   // "main" or "target"
	Target    string      `json:"target,omitempty"`
	Kind      core.TxKind `json:"kind"`
	Amount    int64       `json:"amount"`
	Note      string      `json:"note"`
	At        time.Time   `json:"at"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewTransactionEvent builds an event for a committed transaction.
// target is empty for main-balance entries.
func NewTransactionEvent(username, source, target string, tx core.Transaction) *TransactionEvent {
	return &TransactionEvent{
		Username:  username,
		Source:    source,
		Target:    target,
		Kind:      tx.Kind,
		Amount:    tx.Amount,
		Note:      tx.Note,
		At:        tx.At,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the event to JSON bytes.
func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// TransactionEventFromJSON decodes an event from JSON bytes.
func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var e TransactionEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
