package storage

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"gamehub/internal/game"
)

// MongoStore persists snapshots in a MongoDB collection, one document
// per game keyed by gameId.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

type mongoRecord struct {
	GameID    string    `bson:"gameId"`
	GameType  string    `bson:"gameType"`
	Status    string    `bson:"status"`
	Snapshot  string    `bson:"snapshot"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// NewMongo connects to MongoDB and verifies the connection.
func NewMongo(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, err
	}
	return &MongoStore{
		client:     client,
		collection: client.Database(dbName).Collection("game_snapshots"),
	}, nil
}

// SaveSnapshot upserts a snapshot document keyed by game ID.
func (s *MongoStore) SaveSnapshot(ctx context.Context, rec Record) error {
	now := time.Now().UTC()
	_, err := s.collection.UpdateOne(ctx,
		bson.M{"gameId": rec.GameID},
		bson.M{
			"$set": bson.M{
				"gameType":  rec.GameType,
				"status":    string(rec.Status),
				"snapshot":  string(rec.Snapshot),
				"updatedAt": now,
			},
			"$setOnInsert": bson.M{
				"gameId":    rec.GameID,
				"createdAt": now,
			},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

// GetSnapshot retrieves one snapshot document by game ID.
func (s *MongoStore) GetSnapshot(ctx context.Context, gameID string) (Record, error) {
	var doc mongoRecord
	err := s.collection.FindOne(ctx, bson.M{"gameId": gameID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, err
	}
	return doc.toRecord(), nil
}

// ListSnapshots returns snapshot documents matching the filter, newest
// first.
func (s *MongoStore) ListSnapshots(ctx context.Context, f Filter) ([]Record, error) {
	query := bson.M{}
	if f.GameType != "" {
		query["gameType"] = f.GameType
	}
	if f.Status != "" {
		query["status"] = string(f.Status)
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var result []Record
	for cursor.Next(ctx) {
		var doc mongoRecord
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		result = append(result, doc.toRecord())
	}
	return result, cursor.Err()
}

// Close disconnects the client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (d mongoRecord) toRecord() Record {
	return Record{
		GameID:    d.GameID,
		GameType:  d.GameType,
		Status:    game.Status(d.Status),
		Snapshot:  []byte(d.Snapshot),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}
