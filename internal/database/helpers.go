package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/taskwell/taskwell/internal/errs"
)

// isUniqueViolation reports whether err is a UNIQUE constraint failure
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// requireRow converts a zero-rows-affected update or delete into a
// not-found error for the named entity
func requireRow(result sql.Result, entity string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return errs.NotFound(entity)
	}
	return nil
}

// nullableTime converts an optional time into a driver-friendly value
func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

// nullableString converts an optional string into a driver-friendly value
func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// timePtr converts a scanned nullable time into an optional time
func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

// strPtr converts a scanned nullable string into an optional string
func strPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
