package events

// EventData is the interface that all event data types must implement
type EventData interface {
	// EventType returns the event type this data is associated with
	EventType() EventType
}

// TradeLoggedData contains data for TradeLogged events
type TradeLoggedData struct {
	PortfolioID    string  `json:"portfolio_id" msgpack:"portfolio_id"`
	TradeEventID   string  `json:"trade_event_id" msgpack:"trade_event_id"`
	JournalEntryID string  `json:"journal_entry_id" msgpack:"journal_entry_id"`
	RiskSnapshotID string  `json:"risk_snapshot_id" msgpack:"risk_snapshot_id"`
	RelatedAlertID string  `json:"related_alert_id,omitempty" msgpack:"related_alert_id,omitempty"`
	Symbol         string  `json:"symbol" msgpack:"symbol"`
	Side           string  `json:"side" msgpack:"side"`
	Size           float64 `json:"size" msgpack:"size"`
	Price          float64 `json:"price" msgpack:"price"`
	FeeAmount      float64 `json:"fee_amount" msgpack:"fee_amount"`
	StressPnL      float64 `json:"stress_pnl" msgpack:"stress_pnl"`
}

// EventType returns the event type for TradeLoggedData
func (d *TradeLoggedData) EventType() EventType {
	return TradeLogged
}

// JournalUpdatedData contains data for JournalUpdated events
type JournalUpdatedData struct {
	JournalEntryID string   `json:"journal_entry_id" msgpack:"journal_entry_id"`
	Tags           []string `json:"tags" msgpack:"tags"`
	HasThesis      bool     `json:"has_thesis" msgpack:"has_thesis"`
}

// EventType returns the event type for JournalUpdatedData
func (d *JournalUpdatedData) EventType() EventType {
	return JournalUpdated
}

// AlertCreatedData contains data for AlertCreated events
type AlertCreatedData struct {
	AlertID     string `json:"alert_id" msgpack:"alert_id"`
	PortfolioID string `json:"portfolio_id,omitempty" msgpack:"portfolio_id,omitempty"`
	Symbol      string `json:"symbol,omitempty" msgpack:"symbol,omitempty"`
	Type        string `json:"type" msgpack:"type"`
	Title       string `json:"title" msgpack:"title"`
}

// EventType returns the event type for AlertCreatedData
func (d *AlertCreatedData) EventType() EventType {
	return AlertCreated
}
