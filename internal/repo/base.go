package repo

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Base provides a shared foundation for domain repositories.
type Base struct {
	db *gorm.DB
}

// NewBase constructs a Base repository backed by the provided GORM connection.
func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the GORM connection bound to the supplied context (if any).
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// WithTx returns a copy bound to tx.
func (b Base) WithTx(tx *gorm.DB) Base {
	if tx == nil {
		return b
	}
	return Base{db: tx}
}

// LastValue returns the highest value stored in column for model, comparing
// by length first so "ITEM1000000" ranks above "ITEM999999". An empty table
// yields "".
func (b Base) LastValue(ctx context.Context, model any, column string) (string, error) {
	var values []string
	err := b.DB(ctx).
		Model(model).
		Order(fmt.Sprintf("LENGTH(%s) DESC, %s DESC", column, column)).
		Limit(1).
		Pluck(column, &values).Error
	if err != nil {
		return "", err
	}
	if len(values) == 0 {
		return "", nil
	}
	return values[0], nil
}
