package repository

import (
	"strings"
)

// isUniqueViolation detects unique constraint errors (works for both SQLite and PostgreSQL)
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "UNIQUE constraint failed") || strings.Contains(errStr, "duplicate key value")
}

// violatedColumn reports whether a unique violation mentions column.
// SQLite names the column ("users.username"), PostgreSQL the constraint ("users_username_key").
func violatedColumn(err error, column string) bool {
	return isUniqueViolation(err) && strings.Contains(err.Error(), column)
}
