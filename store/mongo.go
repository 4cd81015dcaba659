package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"user-auth/model"
)

// MongoStore keeps users in one collection with unique sparse indexes.
type MongoStore struct {
	col *mongo.Collection
}

// NewMongoStore ensures the collection indexes exist.
func NewMongoStore(ctx context.Context, db *mongo.Database, collection string) (*MongoStore, error) {
	col := db.Collection(collection)
	_, err := col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
		{Keys: bson.D{{Key: "phone", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
		{Keys: bson.D{{Key: "googleId", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
		{Keys: bson.D{{Key: "updatedAt", Value: -1}}},
	})
	if err != nil {
		return nil, fmt.Errorf("create user indexes: %w", err)
	}
	return &MongoStore{col: col}, nil
}

func (s *MongoStore) FindByID(ctx context.Context, id string) (*model.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *MongoStore) FindOne(ctx context.Context, f Filter) (*model.User, error) {
	if f.IsEmpty() {
		return nil, errEmptyFilter
	}
	q := bson.M{}
	if f.Email != "" {
		q["email"] = f.Email
	}
	if f.Phone != "" {
		q["phone"] = f.Phone
	}
	if f.GoogleID != "" {
		q["googleId"] = f.GoogleID
	}
	return s.findOne(ctx, q)
}

func (s *MongoStore) Create(ctx context.Context, u *model.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	stamp(u, true)
	_, err := s.col.InsertOne(ctx, u)
	return translateMongo(err)
}

func (s *MongoStore) Save(ctx context.Context, u *model.User) error {
	stamp(u, false)
	res, err := s.col.ReplaceOne(ctx, bson.M{"_id": u.ID}, u)
	if err := translateMongo(err); err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) ListUpdatedSince(ctx context.Context, since time.Time, limit int) ([]model.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := s.col.Find(ctx, bson.M{"updatedAt": bson.M{"$gte": since}}, opts)
	if err != nil {
		return nil, err
	}
	var users []model.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *MongoStore) findOne(ctx context.Context, q bson.M) (*model.User, error) {
	var u model.User
	err := s.col.FindOne(ctx, q).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func translateMongo(err error) error {
	if err == nil || !mongo.IsDuplicateKeyError(err) {
		return err
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if f := duplicateField(indexName(e.Message)); f != "" {
				return &DuplicateKeyError{Field: f, Err: err}
			}
		}
	}
	return &DuplicateKeyError{Field: duplicateField(indexName(err.Error())), Err: err}
}

// indexName extracts "email_1" from an E11000 message such as
// "E11000 duplicate key error collection: auth.users index: email_1 dup key: {...}".
func indexName(msg string) string {
	const marker = "index: "
	i := strings.Index(msg, marker)
	if i < 0 {
		return ""
	}
	rest := msg[i+len(marker):]
	if j := strings.IndexByte(rest, ' '); j >= 0 {
		rest = rest[:j]
	}
	return rest
}
