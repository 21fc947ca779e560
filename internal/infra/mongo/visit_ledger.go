package mongo

import (
	"context"
	"fmt"
	"time"

	"codecrafter-quiz/internal/domain"
	"codecrafter-quiz/internal/visits"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const visitsCollection = "visits"

// Connect opens a client and verifies the server is reachable.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

// VisitLedger stores one document per visitor. The document _id is the
// visit document path, so the upsert is keyed exactly like the path.
type VisitLedger struct {
	collection *mongo.Collection
}

func NewVisitLedger(db *mongo.Database) *VisitLedger {
	return &VisitLedger{collection: db.Collection(visitsCollection)}
}

// EnsureIndexes creates the namespace index used by CountVisitors.
func (l *VisitLedger) EnsureIndexes(ctx context.Context) error {
	_, err := l.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "appId", Value: 1}},
	})
	return err
}

func (l *VisitLedger) Upsert(ctx context.Context, appID, userID string, at time.Time) (domain.Visit, error) {
	stamp := domain.FormatTimestamp(at)

	filter := bson.M{"_id": visits.DocumentPath(appID, userID)}
	update := bson.M{
		"$inc": bson.M{"visitCount": 1},
		"$set": bson.M{"lastVisitAt": stamp},
		"$setOnInsert": bson.M{
			"appId":        appID,
			"userId":       userID,
			"firstVisitAt": stamp,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var visit domain.Visit
	if err := l.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&visit); err != nil {
		return domain.Visit{}, fmt.Errorf("upsert visit: %w", err)
	}
	return visit, nil
}

func (l *VisitLedger) CountVisitors(ctx context.Context, appID string) (int64, error) {
	n, err := l.collection.CountDocuments(ctx, bson.M{"appId": appID})
	if err != nil {
		return 0, fmt.Errorf("count visitors: %w", err)
	}
	return n, nil
}
