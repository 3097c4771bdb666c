package database

import (
	"errors"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

const pqUniqueViolation = "23505"

// IsUniqueViolation reports whether err came from a unique constraint,
// whichever driver produced it.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUniqueViolation
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
