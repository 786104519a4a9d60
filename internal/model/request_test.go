package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFoodRequestStatus(t *testing.T) {
	tests := []struct {
		status   string
		pending  bool
		terminal bool
	}{
		{"", true, false},
		{RequestStatusPending, true, false},
		{RequestStatusAccepted, false, true},
		{RequestStatusRejected, false, true},
	}
	for _, tt := range tests {
		r := &FoodRequest{Status: tt.status}
		assert.Equal(t, tt.pending, r.IsPending(), "status %q", tt.status)
		assert.Equal(t, tt.terminal, r.IsTerminal(), "status %q", tt.status)
	}
}
