// Package repo holds the connection plumbing shared by the gorm repositories.
package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/rentflow-backend/pkg/db/models"
)

// Base carries the connection a repository issues queries on. It is either the pool or
// an open transaction.
type Base struct {
	db *gorm.DB
}

// NewBase constructs a Base backed by the provided GORM connection.
func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// Bind returns a copy that runs on tx. A nil tx keeps the current connection.
func (b Base) Bind(tx *gorm.DB) Base {
	if tx == nil {
		return b
	}
	return Base{db: tx}
}

// DB returns the connection bound to ctx.
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// LockRental loads the rental row with FOR UPDATE. Callers run it inside a transaction
// so ledger and settlement writes on the same rental serialize.
func (b Base) LockRental(ctx context.Context, rentalID int64) (*models.Rental, error) {
	var rental models.Rental
	err := b.DB(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", rentalID).
		First(&rental).Error
	if err != nil {
		return nil, err
	}
	return &rental, nil
}
