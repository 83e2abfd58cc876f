package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	reviewapp "github.com/lllypuk/reviewguard/internal/application/review"
	"github.com/lllypuk/reviewguard/internal/domain/errs"
	"github.com/lllypuk/reviewguard/internal/domain/objectid"
	reviewdomain "github.com/lllypuk/reviewguard/internal/domain/review"
)

// reviewDocument is the persisted shape of a review.
type reviewDocument struct {
	ID         bson.ObjectID `bson:"_id"`
	Product    string        `bson:"product"`
	Message    string        `bson:"message"`
	Author     string        `bson:"author"`
	LikesCount int           `bson:"likes_count"`
	LikedBy    []string      `bson:"liked_by"`

	BaseDocument `bson:",inline"`
}

// MongoReviewRepository implements reviewapp.Store. Every conditional method
// is a single driver call, so MongoDB's per-document atomicity covers the
// predicate and the mutation together.
type MongoReviewRepository struct {
	collection *mongo.Collection
}

// NewMongoReviewRepository creates a new MongoDB review repository.
func NewMongoReviewRepository(collection *mongo.Collection) *MongoReviewRepository {
	return &MongoReviewRepository{
		collection: collection,
	}
}

// FindByID finds a review by id.
func (r *MongoReviewRepository) FindByID(ctx context.Context, id objectid.ID) (*reviewdomain.Review, error) {
	oid, err := id.ObjectID()
	if err != nil {
		return nil, err
	}

	var doc reviewDocument
	if err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, HandleMongoError(err, "review")
	}

	return documentToReview(&doc), nil
}

// Insert stores a new review.
func (r *MongoReviewRepository) Insert(ctx context.Context, review *reviewdomain.Review) (objectid.ID, error) {
	if review == nil {
		return "", errs.ErrInvalidInput
	}

	doc, err := reviewToDocument(review)
	if err != nil {
		return "", err
	}

	if _, err = r.collection.InsertOne(ctx, doc); err != nil {
		return "", HandleMongoError(err, "review")
	}

	return review.ID(), nil
}

// ConditionalUpdate runs one UpdateOne whose filter carries the predicate.
func (r *MongoReviewRepository) ConditionalUpdate(
	ctx context.Context,
	id objectid.ID,
	p reviewapp.Predicate,
	m reviewapp.Mutation,
) (reviewapp.UpdateResult, error) {
	filter, err := buildFilter(id, p)
	if err != nil {
		return reviewapp.UpdateResult{}, err
	}

	res, err := r.collection.UpdateOne(ctx, filter, buildUpdate(m))
	if err != nil {
		return reviewapp.UpdateResult{}, HandleMongoError(err, "review")
	}

	return reviewapp.UpdateResult{
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
	}, nil
}

// ConditionalUpdateAndFetch runs one FindOneAndUpdate and returns the
// post-update document. No match maps to errs.ErrNotFound.
func (r *MongoReviewRepository) ConditionalUpdateAndFetch(
	ctx context.Context,
	id objectid.ID,
	p reviewapp.Predicate,
	m reviewapp.Mutation,
) (*reviewdomain.Review, error) {
	filter, err := buildFilter(id, p)
	if err != nil {
		return nil, err
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc reviewDocument
	err = r.collection.FindOneAndUpdate(ctx, filter, buildUpdate(m), opts).Decode(&doc)
	if err != nil {
		return nil, HandleMongoError(err, "review")
	}

	return documentToReview(&doc), nil
}

// FindByProduct lists reviews of a product, newest first.
func (r *MongoReviewRepository) FindByProduct(
	ctx context.Context,
	product string,
	pagination reviewapp.Pagination,
) ([]*reviewdomain.Review, error) {
	if product == "" {
		return nil, errs.ErrInvalidInput
	}

	limit := DefaultLimitWithMax(pagination.Limit, DefaultPaginationLimit, MaxPaginationLimit)
	opts := FindWithPaginationDesc(pagination.Offset, limit)

	cursor, err := r.collection.Find(ctx, bson.M{"product": product}, opts)
	if err != nil {
		return nil, HandleMongoError(err, "reviews")
	}
	defer cursor.Close(ctx)

	reviews := make([]*reviewdomain.Review, 0)
	for cursor.Next(ctx) {
		var doc reviewDocument
		if decodeErr := cursor.Decode(&doc); decodeErr != nil {
			continue // skip malformed documents
		}
		reviews = append(reviews, documentToReview(&doc))
	}

	if err = cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return reviews, nil
}

// IncrementLikes bumps likes_count alone. Race simulation only.
func (r *MongoReviewRepository) IncrementLikes(ctx context.Context, id objectid.ID) error {
	return r.updateByID(ctx, id, bson.M{"$inc": bson.M{"likes_count": 1}})
}

// AppendLiker pushes identity onto liked_by without deduplication. Race
// simulation only.
func (r *MongoReviewRepository) AppendLiker(
	ctx context.Context,
	id objectid.ID,
	identity reviewdomain.Identity,
) error {
	return r.updateByID(ctx, id, bson.M{"$push": bson.M{"liked_by": identity.String()}})
}

// CountInconsistent counts documents whose likes_count differs from the
// number of distinct likers, or whose liked_by repeats an identity.
func (r *MongoReviewRepository) CountInconsistent(ctx context.Context) (int64, error) {
	likedBy := bson.M{"$ifNull": bson.A{"$liked_by", bson.A{}}}
	distinct := bson.M{"$size": bson.M{"$setUnion": bson.A{likedBy, bson.A{}}}}
	filter := bson.M{
		"$expr": bson.M{
			"$or": bson.A{
				bson.M{"$ne": bson.A{"$likes_count", distinct}},
				bson.M{"$ne": bson.A{bson.M{"$size": likedBy}, distinct}},
			},
		},
	}

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, HandleMongoError(err, "reviews")
	}
	return count, nil
}

func (r *MongoReviewRepository) updateByID(ctx context.Context, id objectid.ID, update bson.M) error {
	oid, err := id.ObjectID()
	if err != nil {
		return err
	}

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return HandleMongoError(err, "review")
	}
	if res.MatchedCount == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// buildFilter turns a predicate into a filter. Only typed scalar values are
// placed into the filter, never caller-supplied documents.
func buildFilter(id objectid.ID, p reviewapp.Predicate) (bson.M, error) {
	oid, err := id.ObjectID()
	if err != nil {
		return nil, err
	}

	filter := bson.M{"_id": oid}
	if p.AuthorEquals != nil {
		filter["author"] = p.AuthorEquals.String()
	}
	if p.NotLikedBy != nil {
		filter["liked_by"] = bson.M{"$ne": p.NotLikedBy.String()}
	}
	return filter, nil
}

func buildUpdate(m reviewapp.Mutation) bson.M {
	set := bson.M{"updated_at": time.Now().UTC()}
	update := bson.M{"$set": set}

	if m.SetMessage != nil {
		set["message"] = *m.SetMessage
	}
	if m.AddLiker != nil {
		update["$addToSet"] = bson.M{"liked_by": m.AddLiker.String()}
		update["$inc"] = bson.M{"likes_count": 1}
	}
	return update
}

func reviewToDocument(review *reviewdomain.Review) (*reviewDocument, error) {
	oid, err := review.ID().ObjectID()
	if err != nil {
		return nil, err
	}

	likedBy := make([]string, 0, len(review.LikedBy()))
	for _, liker := range review.LikedBy() {
		likedBy = append(likedBy, liker.String())
	}

	return &reviewDocument{
		ID:         oid,
		Product:    review.Product(),
		Message:    review.Message(),
		Author:     review.Author().String(),
		LikesCount: review.LikesCount(),
		LikedBy:    likedBy,
		BaseDocument: BaseDocument{
			CreatedAt: review.CreatedAt(),
			UpdatedAt: review.UpdatedAt(),
		},
	}, nil
}

func documentToReview(doc *reviewDocument) *reviewdomain.Review {
	likedBy := make([]reviewdomain.Identity, 0, len(doc.LikedBy))
	for _, liker := range doc.LikedBy {
		likedBy = append(likedBy, reviewdomain.Identity(liker))
	}

	return reviewdomain.Reconstruct(
		objectid.FromObjectID(doc.ID),
		doc.Product,
		doc.Message,
		reviewdomain.Identity(doc.Author),
		doc.LikesCount,
		likedBy,
		doc.CreatedAt,
		doc.UpdatedAt,
	)
}

var (
	_ reviewapp.RaceSimulationStore = (*MongoReviewRepository)(nil)
	_ reviewapp.ConsistencyCounter  = (*MongoReviewRepository)(nil)
)
