package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scribed/internal/api/errors"
)

func TestTransitionOperationRequest_Validate(t *testing.T) {
	result := "summary text"
	errText := "provider timeout"

	tests := []struct {
		name      string
		req       TransitionOperationRequest
		wantField string
	}{
		{"processing", TransitionOperationRequest{Status: "processing"}, ""},
		{"finished with result", TransitionOperationRequest{Status: "finished", Result: &result}, ""},
		{"error with message", TransitionOperationRequest{Status: "error", Error: &errText}, ""},
		{"unknown status", TransitionOperationRequest{Status: "bogus"}, "status"},
		{"error without message", TransitionOperationRequest{Status: "error"}, "error"},
		{"finished without result", TransitionOperationRequest{Status: "finished"}, "result"},
		{"finished with empty result", TransitionOperationRequest{Status: "finished", Result: new(string)}, "result"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			apiErr, ok := err.(*errors.APIError)
			require.True(t, ok, "expected *errors.APIError, got %T", err)
			assert.Contains(t, apiErr.Details, tt.wantField)
		})
	}
}
