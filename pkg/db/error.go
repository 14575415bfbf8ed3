package db

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// IsDuplicateKeyErr reports whether err is a unique constraint violation.
// Services use it to translate driver errors into their own *_exists
// sentinels, so duplicate product codes, tax codes, and currency pairs
// surface as conflicts instead of 500s.
//
// gorm only translates to ErrDuplicatedKey when the dialector has error
// translation enabled, so the driver message is matched as a fallback.
// Production runs on postgres; the sqlite match keeps in-memory tests
// honest.
func IsDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	// postgres SQLSTATE 23505
	if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
		return true
	}

	// mysql error 1062
	if strings.Contains(err.Error(), "Error 1062") {
		return true
	}

	// sqlite SQLITE_CONSTRAINT_UNIQUE
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return true
	}

	return false
}
