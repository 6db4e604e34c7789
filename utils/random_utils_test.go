package utils

import (
	"testing"
	"time"
)

func TestGenerateUniqueIDFormat(t *testing.T) {
	id := GenerateUniqueID()

	if len(id) != 12 {
		t.Fatalf("expected 12-character identity, got %d (%q)", len(id), id)
	}
	for _, c := range id {
		if c < '0' || c > '9' {
			t.Fatalf("identity must be all digits, got %q", id)
		}
	}
}

func TestFormatDeviceTime(t *testing.T) {
	ts := time.Date(2025, 1, 2, 15, 4, 5, 0, time.UTC)
	if got := FormatDeviceTime(ts); got != "2025-01-02 15:04:05" {
		t.Fatalf("unexpected device time format: %q", got)
	}
}
