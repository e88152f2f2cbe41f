package gocontent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCapabilities_Check(t *testing.T) {
	full := Capabilities{Searchable: true, LoadByName: true, Download: true, RecencyIndex: true, Webhook: true, HistoryWindow: 100}
	writeOnly := Capabilities{}
	notSearchable := Capabilities{Searchable: false, LoadByName: true, Download: true}

	tests := []struct {
		name      string
		caps      Capabilities
		op        Operation
		expectErr bool
	}{
		{name: "should always allow save", caps: writeOnly, op: OpSave},
		{name: "should allow load when searchable", caps: full, op: OpLoad},
		{name: "should allow recency index when declared", caps: full, op: OpRecency},
		{name: "should allow webhook when declared", caps: full, op: OpWebhook},
		{name: "should reject load on write-only storage", caps: writeOnly, op: OpLoad, expectErr: true},
		{name: "should reject download on write-only storage", caps: writeOnly, op: OpDownload, expectErr: true},
		{name: "should reject load when not searchable even if declared", caps: notSearchable, op: OpLoad, expectErr: true},
		{name: "should reject unknown operation", caps: full, op: Operation("delete"), expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.caps.Check(tt.op)
			if tt.expectErr {
				assert.ErrorIs(t, err, ErrCapability)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
