package store

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

	"github.com/hmans/coursegraph/internal/entity"
)

// Mongo is a Store backed by a MongoDB database with one collection per entity kind.
// Ids are ObjectID hex strings stored in _id.
type Mongo struct {
	client  *mongo.Client
	users   *mongoCollection[entity.User, *entity.User]
	courses *mongoCollection[entity.Course, *entity.Course]
}

// OpenMongo connects to uri, verifies the connection and prepares the collections of database.
func OpenMongo(ctx context.Context, uri, database string) (*Mongo, error) {
	if uri == "" {
		return nil, errors.New("mongo store: no connection URI configured")
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongo: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("pinging mongo: %w", err)
	}

	db := client.Database(database)
	courses := db.Collection(entity.KindCourse.Collection())

	// User.courses scans courses by instructor.
	_, err = courses.Indexes().CreateOne(connectCtx, mongo.IndexModel{
		Keys: bson.D{{Key: "instructor", Value: 1}},
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("creating instructor index: %w", err)
	}

	return &Mongo{
		client:  client,
		users:   newMongoCollection[entity.User, *entity.User](entity.KindUser, db.Collection(entity.KindUser.Collection())),
		courses: newMongoCollection[entity.Course, *entity.Course](entity.KindCourse, courses),
	}, nil
}

func (m *Mongo) Users() Collection[entity.User]     { return m.users }
func (m *Mongo) Courses() Collection[entity.Course] { return m.courses }

// Close disconnects the client.
func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

type mongoCollection[T any, P record[T]] struct {
	kind entity.Kind
	coll *mongo.Collection
	now  func() time.Time
}

func newMongoCollection[T any, P record[T]](kind entity.Kind, coll *mongo.Collection) *mongoCollection[T, P] {
	return &mongoCollection[T, P]{kind: kind, coll: coll, now: entity.Now}
}

func (c *mongoCollection[T, P]) Find(ctx context.Context, filter Filter) ([]*T, error) {
	if err := checkFilter[T, P](filter); err != nil {
		return nil, err
	}

	query := bson.M{}
	for field, value := range filter {
		query[field] = value
	}

	cursor, err := c.coll.Find(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("finding %s: %w", c.kind.Collection(), err)
	}
	defer cursor.Close(ctx)

	result := make([]*T, 0)
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", c.kind.Collection(), err)
	}
	return result, nil
}

func (c *mongoCollection[T, P]) FindByID(ctx context.Context, id string) (*T, error) {
	var doc T
	err := c.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		return nil, c.wrap("finding", id, err)
	}
	return &doc, nil
}

func (c *mongoCollection[T, P]) Create(ctx context.Context, rec *T) (*T, error) {
	doc := P(P(rec).Clone())
	if doc.RecordID() == "" {
		doc.SetRecordID(primitive.NewObjectID().Hex())
	}
	doc.Touch(c.now())

	if _, err := c.coll.InsertOne(ctx, (*T)(doc)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, doc.RecordID())
		}
		return nil, fmt.Errorf("inserting into %s: %w", c.kind.Collection(), err)
	}
	return (*T)(doc), nil
}

func (c *mongoCollection[T, P]) UpdateByID(ctx context.Context, id string, fields entity.Fields) (*T, error) {
	if err := checkFields[T, P](fields); err != nil {
		return nil, err
	}

	set := bson.M{"updatedAt": c.now()}
	for field, value := range fields {
		set[field] = value
	}

	var doc T
	err := c.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return nil, c.wrap("updating", id, err)
	}
	return &doc, nil
}

func (c *mongoCollection[T, P]) DeleteByID(ctx context.Context, id string) (*T, error) {
	var doc T
	if err := c.coll.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, c.wrap("deleting", id, err)
	}
	return &doc, nil
}

func (c *mongoCollection[T, P]) wrap(op, id string, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return fmt.Errorf("%s %s %s: %w", op, c.kind, id, err)
}
