package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidStatus(t *testing.T) {
	for _, status := range []string{
		StatusScheduled, StatusPending, StatusProcessing,
		StatusReady, StatusCompleted, StatusCancelled,
	} {
		assert.True(t, ValidStatus(status), status)
	}

	assert.False(t, ValidStatus("shipped"))
	assert.False(t, ValidStatus(""))
	assert.False(t, ValidStatus("Pending"))
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from string
		to   string
		want bool
	}{
		{name: "scheduled to pending on check-in", from: StatusScheduled, to: StatusPending, want: true},
		{name: "scheduled to cancelled", from: StatusScheduled, to: StatusCancelled, want: true},
		{name: "pending to processing", from: StatusPending, to: StatusProcessing, want: true},
		{name: "pending to cancelled", from: StatusPending, to: StatusCancelled, want: true},
		{name: "processing to ready", from: StatusProcessing, to: StatusReady, want: true},
		{name: "ready to completed", from: StatusReady, to: StatusCompleted, want: true},
		{name: "ready to cancelled", from: StatusReady, to: StatusCancelled, want: true},

		{name: "pending cannot skip to ready", from: StatusPending, to: StatusReady, want: false},
		{name: "pending cannot skip to completed", from: StatusPending, to: StatusCompleted, want: false},
		{name: "scheduled cannot skip to processing", from: StatusScheduled, to: StatusProcessing, want: false},
		{name: "no backwards moves", from: StatusReady, to: StatusProcessing, want: false},
		{name: "completed is terminal", from: StatusCompleted, to: StatusPending, want: false},
		{name: "cancelled is terminal", from: StatusCancelled, to: StatusPending, want: false},
		{name: "cancelled cannot be re-cancelled", from: StatusCancelled, to: StatusCancelled, want: false},
		{name: "no self transition", from: StatusPending, to: StatusPending, want: false},
		{name: "unknown from status", from: "shipped", to: StatusPending, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(StatusCompleted))
	assert.True(t, IsTerminal(StatusCancelled))

	for _, status := range []string{StatusScheduled, StatusPending, StatusProcessing, StatusReady} {
		assert.False(t, IsTerminal(status), status)
	}
}

func TestIsActive(t *testing.T) {
	for _, status := range []string{StatusPending, StatusProcessing, StatusReady} {
		assert.True(t, IsActive(status), status)
	}

	// Scheduled orders hold no queue slot yet
	assert.False(t, IsActive(StatusScheduled))
	assert.False(t, IsActive(StatusCompleted))
	assert.False(t, IsActive(StatusCancelled))
}
