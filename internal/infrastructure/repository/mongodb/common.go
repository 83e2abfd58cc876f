package mongodb

import (
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/lllypuk/reviewguard/internal/domain/errs"
)

const (
	// DefaultPaginationLimit is the default page size for list queries.
	DefaultPaginationLimit = 50

	// MaxPaginationLimit caps the page size for list queries.
	MaxPaginationLimit = 100
)

// HandleMongoError maps a driver error to a domain error.
// Returns:
//   - nil if err == nil
//   - errs.ErrNotFound if no document matched
//   - errs.ErrAlreadyExists on a unique constraint violation
//   - the wrapped error otherwise
func HandleMongoError(err error, resourceType string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, mongo.ErrNoDocuments) {
		return errs.ErrNotFound
	}

	if mongo.IsDuplicateKeyError(err) {
		return errs.ErrAlreadyExists
	}

	return fmt.Errorf("failed to operate on %s: %w", resourceType, err)
}

// BaseDocument contains the timestamp fields shared by all documents.
type BaseDocument struct {
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// FindWithPagination returns find options with paging and sorting.
// sortOrder is 1 for ASC, -1 for DESC.
func FindWithPagination(offset, limit int, sortField string, sortOrder int) *options.FindOptionsBuilder {
	return options.Find().
		SetSort(bson.D{{Key: sortField, Value: sortOrder}, {Key: "_id", Value: sortOrder}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))
}

// FindWithPaginationDesc sorts by created_at DESC.
func FindWithPaginationDesc(offset, limit int) *options.FindOptionsBuilder {
	return FindWithPagination(offset, limit, "created_at", -1)
}

// DefaultLimitWithMax applies the default and maximum page size.
func DefaultLimitWithMax(limit, defaultLimit, maxLimit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}
