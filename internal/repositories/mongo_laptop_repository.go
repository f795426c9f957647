package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"laptopcatalog/internal/apperr"
	"laptopcatalog/internal/models"
	"laptopcatalog/internal/query"
	"laptopcatalog/internal/validation"
)

// LaptopCollection is the collection holding laptop documents.
const LaptopCollection = "laptops"

// ConnectMongo connects to MongoDB and verifies the connection with a ping.
func ConnectMongo(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	if uri == "" {
		return nil, apperr.New(apperr.KindConnection, "MONGODB_URI is not defined")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindConnection, err, "failed to connect to mongodb")
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, apperr.Wrap(apperr.KindConnection, err, "failed to ping mongodb")
	}
	return client, nil
}

type laptopDocument struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Name          string             `bson:"name"`
	Configuration string             `bson:"configuration"`
	PricePerHour  *float64           `bson:"pricePerHour"`
	ImageURL      string             `bson:"imageUrl,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt"`
}

func (d laptopDocument) model() models.Laptop {
	return models.Laptop{
		ID:            d.ID.Hex(),
		Name:          d.Name,
		Configuration: d.Configuration,
		PricePerHour:  d.PricePerHour,
		ImageURL:      d.ImageURL,
		CreatedAt:     d.CreatedAt.UTC(),
		UpdatedAt:     d.UpdatedAt.UTC(),
	}
}

func newLaptopDocument(l *models.Laptop) laptopDocument {
	return laptopDocument{
		Name:          l.Name,
		Configuration: l.Configuration,
		PricePerHour:  l.PricePerHour,
		ImageURL:      l.ImageURL,
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
	}
}

// MongoLaptopRepository is a MongoDB implementation of LaptopRepository.
type MongoLaptopRepository struct {
	coll     *mongo.Collection
	timeout  time.Duration
	validate *validation.Validator
	now      func() time.Time
}

// NewMongoLaptopRepository creates a repository over the given collection.
// A zero timeout disables the per-operation deadline.
func NewMongoLaptopRepository(coll *mongo.Collection, timeout time.Duration) *MongoLaptopRepository {
	return &MongoLaptopRepository{
		coll:     coll,
		timeout:  timeout,
		validate: validation.New(validation.Store),
		now:      time.Now,
	}
}

// Insert validates and inserts a laptop; the generated ObjectID is written back.
func (r *MongoLaptopRepository) Insert(ctx context.Context, laptop *models.Laptop) error {
	laptop.Normalize()
	if err := r.validate.Validate(laptop); err != nil {
		return err
	}

	opCtx, cancel := r.withOperationTimeout(ctx)
	defer cancel()

	now := r.timestamp()
	laptop.CreatedAt = now
	laptop.UpdatedAt = now

	doc := newLaptopDocument(laptop)
	doc.ID = primitive.NewObjectID()
	if _, err := r.coll.InsertOne(opCtx, doc); err != nil {
		return fmt.Errorf("failed to insert laptop: %w", err)
	}
	laptop.ID = doc.ID.Hex()
	return nil
}

// FindByID returns the laptop with the given hex ObjectID.
func (r *MongoLaptopRepository) FindByID(ctx context.Context, id string) (*models.Laptop, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	opCtx, cancel := r.withOperationTimeout(ctx)
	defer cancel()

	var doc laptopDocument
	if err := r.coll.FindOne(opCtx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("Laptop not found")
		}
		return nil, fmt.Errorf("failed to find laptop %s: %w", id, err)
	}
	laptop := doc.model()
	return &laptop, nil
}

// Find returns one ordered page of matching laptops.
func (r *MongoLaptopRepository) Find(ctx context.Context, q query.Query) ([]models.Laptop, error) {
	opCtx, cancel := r.withOperationTimeout(ctx)
	defer cancel()

	opts := options.Find().
		SetSort(SortSpec(q.Sort)).
		SetSkip(int64(q.Skip))
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}

	cur, err := r.coll.Find(opCtx, Filter(q.Criteria), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list laptops: %w", err)
	}
	defer cur.Close(opCtx)

	laptops := []models.Laptop{}
	for cur.Next(opCtx) {
		var doc laptopDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode laptop: %w", err)
		}
		laptops = append(laptops, doc.model())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate laptops: %w", err)
	}
	return laptops, nil
}

// Count returns the number of documents matching the criteria.
func (r *MongoLaptopRepository) Count(ctx context.Context, c query.Criteria) (int, error) {
	opCtx, cancel := r.withOperationTimeout(ctx)
	defer cancel()

	n, err := r.coll.CountDocuments(opCtx, Filter(c))
	if err != nil {
		return 0, fmt.Errorf("failed to count laptops: %w", err)
	}
	return int(n), nil
}

// UpdateByID re-validates the patched record before writing the changed fields.
func (r *MongoLaptopRepository) UpdateByID(ctx context.Context, id string, patch models.LaptopPatch) (*models.Laptop, error) {
	current, err := r.FindByID(ctx, id)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.NotFound("Laptop not found, cannot update")
		}
		return nil, err
	}

	current.Apply(patch)
	current.Normalize()
	if err := r.validate.Validate(current); err != nil {
		return nil, err
	}

	opCtx, cancel := r.withOperationTimeout(ctx)
	defer cancel()

	set := bson.M{"updatedAt": r.timestamp()}
	if patch.Name != nil {
		set["name"] = current.Name
	}
	if patch.Configuration != nil {
		set["configuration"] = current.Configuration
	}
	if patch.PricePerHour != nil {
		set["pricePerHour"] = current.Price()
	}
	if patch.ImageURL != nil {
		set["imageUrl"] = current.ImageURL
	}

	oid, _ := primitive.ObjectIDFromHex(id)
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc laptopDocument
	err = r.coll.FindOneAndUpdate(opCtx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("Laptop not found, cannot update")
		}
		return nil, fmt.Errorf("failed to update laptop %s: %w", id, err)
	}
	laptop := doc.model()
	return &laptop, nil
}

// DeleteByID removes the laptop and returns the deleted document.
func (r *MongoLaptopRepository) DeleteByID(ctx context.Context, id string) (*models.Laptop, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	opCtx, cancel := r.withOperationTimeout(ctx)
	defer cancel()

	var doc laptopDocument
	if err := r.coll.FindOneAndDelete(opCtx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("Laptop not found, cannot delete")
		}
		return nil, fmt.Errorf("failed to delete laptop %s: %w", id, err)
	}
	laptop := doc.model()
	return &laptop, nil
}

// ReplaceAll empties the collection and inserts the given laptops.
func (r *MongoLaptopRepository) ReplaceAll(ctx context.Context, laptops []models.Laptop) error {
	docs := make([]interface{}, 0, len(laptops))
	now := r.timestamp()
	for i := range laptops {
		laptops[i].Normalize()
		if err := r.validate.Validate(&laptops[i]); err != nil {
			return err
		}
		laptops[i].CreatedAt = now
		laptops[i].UpdatedAt = now
		doc := newLaptopDocument(&laptops[i])
		doc.ID = primitive.NewObjectID()
		laptops[i].ID = doc.ID.Hex()
		docs = append(docs, doc)
	}

	opCtx, cancel := r.withOperationTimeout(ctx)
	defer cancel()

	if _, err := r.coll.DeleteMany(opCtx, bson.D{}); err != nil {
		return fmt.Errorf("failed to clear laptops: %w", err)
	}
	if len(docs) == 0 {
		return nil
	}
	if _, err := r.coll.InsertMany(opCtx, docs); err != nil {
		return fmt.Errorf("failed to insert laptops: %w", err)
	}
	return nil
}

// Ping checks the primary is reachable.
func (r *MongoLaptopRepository) Ping(ctx context.Context) error {
	return r.coll.Database().Client().Ping(ctx, readpref.Primary())
}

// Filter translates criteria into a MongoDB filter document.
func Filter(c query.Criteria) bson.M {
	filter := bson.M{}
	if pattern := c.NamePattern(); pattern != "" {
		filter["name"] = bson.M{"$regex": pattern, "$options": "i"}
	}
	price := bson.M{}
	if c.MinPrice != nil {
		price["$gte"] = *c.MinPrice
	}
	if c.MaxPrice != nil {
		price["$lte"] = *c.MaxPrice
	}
	if len(price) > 0 {
		filter["pricePerHour"] = price
	}
	return filter
}

// SortSpec translates a sort into a MongoDB sort document with _id as tie-breaker.
func SortSpec(s query.Sort) bson.D {
	dir := 1
	if s.Descending {
		dir = -1
	}
	field := s.Field
	if field != query.FieldPricePerHour {
		field = query.FieldName
	}
	return bson.D{{Key: field, Value: dir}, {Key: "_id", Value: 1}}
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperr.InvalidIdentifier(id)
	}
	return oid, nil
}

func (r *MongoLaptopRepository) timestamp() time.Time {
	return r.now().UTC().Truncate(time.Millisecond)
}

func (r *MongoLaptopRepository) withOperationTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return ctx, func() {}
	}
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}
