// Package events carries pass progress to SSE subscribers as JSON envelopes.
package events

import (
	"encoding/json"
	"time"
)

// Version is bumped when an envelope's data shape changes incompatibly.
const Version = 1

const (
	Ping            = "ping"
	PassRequested   = "pass.requested"
	PassStarted     = "pass.started"
	AttemptFinished = "attempt.finished"
	PassFinished    = "pass.finished"
	LedgerImported  = "ledger.imported"
)

type Event struct {
	Type    string          `json:"type"`
	Version int             `json:"v"`
	At      time.Time       `json:"at"`
	Scope   string          `json:"scope,omitempty"` // pass id or request id
	Data    json.RawMessage `json:"data,omitempty"`
}

// Encode builds the wire form of one event. Unmarshalable data is dropped
// rather than failing the publisher.
func Encode(scope, typ string, data any) string {
	e := Event{Type: typ, Version: Version, At: time.Now().UTC(), Scope: scope}
	if data != nil {
		if b, err := json.Marshal(data); err == nil {
			e.Data = b
		}
	}
	b, _ := json.Marshal(e)
	return string(b)
}
