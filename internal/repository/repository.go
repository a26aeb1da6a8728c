package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"productgen/internal/errs"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 200
)

// Page normalises page/limit query values into offset and limit.
type Page struct {
	Page     int
	PageSize int
}

func (p Page) limitOffset() (int, int) {
	size := p.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	page := p.Page
	if page < 1 {
		page = 1
	}
	return size, (page - 1) * size
}

// wrapErr translates gorm errors into the errs taxonomy.
func wrapErr(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	msg := fmt.Sprintf(format, args...)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", errs.ErrNotFound, msg)
	}
	return fmt.Errorf("%w: %s: %v", errs.ErrPersistence, msg, err)
}
