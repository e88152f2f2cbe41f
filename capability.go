package gocontent

import "fmt"

// Operation names a call of the Strategy contract.
type Operation string

const (
	OpSave     Operation = "save"
	OpLoad     Operation = "load"
	OpDownload Operation = "download"
	OpRecency  Operation = "load_by_recency_index"
	OpWebhook  Operation = "save_webhook"
)

// Capabilities is the static description of what a storage supports.
// It is fixed at construction and never discovered by trying a call.
type Capabilities struct {
	Searchable    bool `json:"searchable"`     // names can be resolved after saving
	LoadByName    bool `json:"load_by_name"`   // Load is available
	Download      bool `json:"download"`       // Download is available
	RecencyIndex  bool `json:"recency_index"`  // LoadByRecencyIndex is available
	Webhook       bool `json:"webhook"`        // SaveWebhook is available
	HistoryWindow int  `json:"history_window"` // messages scanned per lookup, 0 = unbounded
}

// Supports reports whether op may be attempted.
func (c Capabilities) Supports(op Operation) bool {
	switch op {
	case OpSave:
		return true
	case OpLoad:
		return c.Searchable && c.LoadByName
	case OpDownload:
		return c.Searchable && c.Download
	case OpRecency:
		return c.Searchable && c.RecencyIndex
	case OpWebhook:
		return c.Webhook
	}
	return false
}

// Check returns ErrCapability when op is not supported.
func (c Capabilities) Check(op Operation) error {
	if c.Supports(op) {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrCapability, op)
}
