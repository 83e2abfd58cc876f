package mongodb_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/lllypuk/reviewguard/internal/infrastructure/mongodb"
	"github.com/lllypuk/reviewguard/tests/testutil"
)

func TestGetReviewIndexes(t *testing.T) {
	t.Parallel()

	indexes := mongodb.GetReviewIndexes()

	assert.Len(t, indexes, 2)
	for _, idx := range indexes {
		assert.Equal(t, mongodb.CollectionReviews, idx.Collection)
		assert.NotEmpty(t, idx.Keys)
	}
	assert.Equal(t, "product", indexes[0].Keys[0].Key)
}

func TestGetAllIndexDefinitions(t *testing.T) {
	t.Parallel()

	assert.Len(t, mongodb.GetAllIndexDefinitions(), len(mongodb.GetReviewIndexes()))
}

func TestCreateAllIndexes(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	t.Parallel()

	db := testutil.SetupSharedTestMongoDB(t)
	ctx := context.Background()

	err := mongodb.CreateAllIndexes(ctx, db)
	require.NoError(t, err)

	indexes := getCollectionIndexes(ctx, t, db, mongodb.CollectionReviews)
	// _id plus two custom indexes
	assert.Len(t, indexes, 3)
	assert.NotNil(t, findIndexInDBByName(indexes, "idx_reviews_product_time"))
	assert.NotNil(t, findIndexInDBByName(indexes, "idx_reviews_author_time"))
}

func TestCreateAllIndexes_Idempotent(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	t.Parallel()

	db := testutil.SetupSharedTestMongoDB(t)
	ctx := context.Background()

	require.NoError(t, mongodb.CreateAllIndexes(ctx, db))
	require.NoError(t, mongodb.EnsureIndexes(ctx, db))
}

func TestCreateCollectionIndexes_UnknownCollection(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	t.Parallel()

	db := testutil.SetupSharedTestMongoDB(t)

	err := mongodb.CreateCollectionIndexes(context.Background(), db, "unknown_collection")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown collection")
}

func getCollectionIndexes(ctx context.Context, t *testing.T, db *mongo.Database, collName string) []bson.M {
	t.Helper()

	coll := db.Collection(collName)
	cursor, err := coll.Indexes().List(ctx)
	require.NoError(t, err)

	var indexes []bson.M
	err = cursor.All(ctx, &indexes)
	require.NoError(t, err)

	return indexes
}

func findIndexInDBByName(indexes []bson.M, name string) bson.M {
	for _, idx := range indexes {
		if idxName, ok := idx["name"].(string); ok && idxName == name {
			return idx
		}
	}
	return nil
}
