package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransitionJobRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		status  string
		wantErr bool
	}{
		{"processing", "processing", false},
		{"cancelling", "cancelling", false},
		{"cancellation ack", "cancelled", false},
		{"unknown", "bogus", true},
		{"finished reserved for complete endpoint", "finished", true},
		{"error reserved for fail endpoint", "error", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &TransitionJobRequest{Status: tt.status}
			err := req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
