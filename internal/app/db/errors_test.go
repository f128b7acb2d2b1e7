package db

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsUniqueViolation(t *testing.T) {
	wrapped := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	if !IsUniqueViolation(wrapped) {
		t.Error("wrapped 23505 should be a unique violation")
	}
	if IsUniqueViolation(&pgconn.PgError{Code: "23503"}) {
		t.Error("foreign key violation reported as unique violation")
	}
	if IsUniqueViolation(fmt.Errorf("plain")) {
		t.Error("plain error reported as unique violation")
	}
}

func TestIsNoRows(t *testing.T) {
	if !IsNoRows(fmt.Errorf("get: %w", pgx.ErrNoRows)) {
		t.Error("wrapped ErrNoRows not detected")
	}
	if IsNoRows(fmt.Errorf("other")) {
		t.Error("unrelated error detected as no rows")
	}
}
