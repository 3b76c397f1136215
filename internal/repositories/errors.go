package repositories

import (
	"errors"
	"fmt"
	"strings"

	"yamdb/internal/apperrors"

	"gorm.io/gorm"
)

// translate wraps a GORM error with context, mapping missing rows and unique
// violations onto the application error kinds.
func translate(err error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", msg, apperrors.ErrNotFound)
	case isDuplicate(err):
		return fmt.Errorf("%s: %w", msg, apperrors.ErrConflict)
	default:
		return fmt.Errorf("%s: %w", msg, err)
	}
}

// isDuplicate also inspects the driver message, for dialects that do not
// translate constraint errors.
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

// Page bounds a list query. A zero Limit means no limit.
type Page struct {
	Limit  int
	Offset int
}

func (p Page) scope(db *gorm.DB) *gorm.DB {
	if p.Limit > 0 {
		db = db.Limit(p.Limit)
	}
	if p.Offset > 0 {
		db = db.Offset(p.Offset)
	}
	return db
}

func containsPattern(s string) string {
	return "%" + strings.ToLower(s) + "%"
}
