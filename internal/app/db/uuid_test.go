package db

import (
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
)

func TestUUIDRoundTrip(t *testing.T) {
	const raw = "0b8e2a52-4f43-4c59-9f53-2d1d8f3e6a10"

	id, ok := ParseUUID(raw)
	if !ok {
		t.Fatalf("ParseUUID(%q) failed", raw)
	}
	if got := UUIDString(id); got != raw {
		t.Errorf("UUIDString = %q, want %q", got, raw)
	}
}

func TestParseUUIDRejectsGarbage(t *testing.T) {
	if _, ok := ParseUUID("alice"); ok {
		t.Error("expected non-uuid input to be rejected")
	}
	if got := UUIDString(pgtype.UUID{}); got != "" {
		t.Errorf("UUIDString(NULL) = %q, want empty", got)
	}
}
