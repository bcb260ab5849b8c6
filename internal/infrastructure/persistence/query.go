package persistence

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rst/farmcontrol/internal/domain/shared"
	"gorm.io/gorm"
)

// translateError maps GORM sentinel errors onto domain errors
func translateError(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.ErrAlreadyExists
	}
	return err
}

func tenantScope(tenantID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("tenant_id = ?", tenantID)
	}
}

func dateRangeScope(r shared.DateRange) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if !r.From.IsZero() {
			db = db.Where("date >= ?", r.From)
		}
		if !r.To.IsZero() {
			db = db.Where("date < ?", r.To)
		}
		return db
	}
}

// paginate applies LIMIT/OFFSET; a non-positive page size returns every row
func paginate(f shared.Filter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.PageSize <= 0 {
			return db
		}
		return db.Offset(f.Offset()).Limit(f.PageSize)
	}
}

// containsPattern builds a LIKE pattern for case-insensitive substring search
func containsPattern(term string) string {
	return "%" + strings.ToLower(strings.TrimSpace(term)) + "%"
}
