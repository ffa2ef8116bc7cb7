package models

import "testing"

func TestRMACode(t *testing.T) {
	tests := []struct {
		id   uint
		want string
	}{
		{1, "RMA0001"},
		{7, "RMA0007"},
		{42, "RMA0042"},
		{9999, "RMA9999"},
		{12345, "RMA12345"},
	}
	for _, tt := range tests {
		if got := RMACode(tt.id); got != tt.want {
			t.Errorf("RMACode(%d) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestStatusValid(t *testing.T) {
	for _, status := range StatusOptions {
		if !status.Valid() {
			t.Errorf("canonical status %q reported invalid", status)
		}
	}
	for _, bad := range []RMAStatus{"", "draft", "Cancelled", "CLOSED"} {
		if bad.Valid() {
			t.Errorf("status %q reported valid", bad)
		}
	}
}

func TestStatusTerminal(t *testing.T) {
	tests := []struct {
		status RMAStatus
		want   bool
	}{
		{StatusDraft, false},
		{StatusAcknowledged, false},
		{StatusInProgress, false},
		{StatusDisposition, false},
		{StatusClosed, true},
		{StatusRejected, true},
	}
	for _, tt := range tests {
		if got := tt.status.Terminal(); got != tt.want {
			t.Errorf("Terminal(%q) = %v, want %v", tt.status, got, tt.want)
		}
	}
}
