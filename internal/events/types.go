// Package events provides the in-process event bus for post-commit notifications.
package events

// EventType identifies what happened
type EventType string

const (
	TradeLogged    EventType = "TRADE_LOGGED"
	JournalUpdated EventType = "JOURNAL_UPDATED"
	AlertCreated   EventType = "ALERT_CREATED"
)

// AllEventTypes lists every event the bus carries
var AllEventTypes = []EventType{TradeLogged, JournalUpdated, AlertCreated}
