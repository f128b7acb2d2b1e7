package db

import (
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// UUIDString renders a UUID column as its canonical text form, or "" when NULL.
func UUIDString(id pgtype.UUID) string {
	if !id.Valid {
		return ""
	}
	return uuid.UUID(id.Bytes).String()
}

// ParseUUID converts text into a UUID parameter. ok is false when s is not a UUID.
func ParseUUID(s string) (id pgtype.UUID, ok bool) {
	parsed, err := uuid.Parse(s)
	if err != nil {
		return pgtype.UUID{}, false
	}
	return pgtype.UUID{Bytes: parsed, Valid: true}, true
}
