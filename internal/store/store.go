// Package store holds the gorm-backed repositories. Lookups that miss return
// apperror.NotFound; any other database failure is wrapped as
// apperror.Upstream.
package store

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/emilythestrangee/vidtube/backend/internal/apperror"
	"github.com/emilythestrangee/vidtube/backend/internal/database"
)

// InsertResult reports whether InsertIfAbsent created the row. Inserted is
// false when an identical row already existed, including when a concurrent
// request won the race on the unique index.
type InsertResult struct {
	Inserted bool
}

// insertIfAbsent creates row, leaving the unique index to reject duplicates.
// A conflict is a normal outcome, not an error.
func insertIfAbsent(ctx context.Context, db *gorm.DB, row any, what string) (InsertResult, error) {
	res := db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(row)
	if res.Error != nil {
		if database.IsUniqueViolation(res.Error) {
			return InsertResult{Inserted: false}, nil
		}
		return InsertResult{}, apperror.Upstream("Failed to save "+what, res.Error)
	}
	return InsertResult{Inserted: res.RowsAffected > 0}, nil
}

type txKey struct{}

// withTx makes repositories called with the returned context run on tx.
func withTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// conn returns the transaction carried by ctx, or db when there is none.
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

func paginate(page, limit int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset((page - 1) * limit).Limit(limit)
	}
}

func findErr(err error, notFound, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound(notFound)
	}
	return apperror.Upstream("Failed to load "+what, err)
}
