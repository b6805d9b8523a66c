package ai

import (
	"context"
	"fmt"

	"casaora/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const transcriptCollection = "assistant_transcripts"

// TranscriptArchive keeps a copy of every assistant turn.
type TranscriptArchive interface {
	Append(ctx context.Context, entries ...models.TranscriptEntry) error
}

type MongoTranscriptArchive struct {
	coll *mongo.Collection
}

func NewMongoTranscriptArchive(client *mongo.Client, dbName string) *MongoTranscriptArchive {
	return &MongoTranscriptArchive{coll: client.Database(dbName).Collection(transcriptCollection)}
}

// EnsureIndexes creates the per-user history index.
func (a *MongoTranscriptArchive) EnsureIndexes(ctx context.Context) error {
	_, err := a.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("user_created"),
	})
	if err != nil {
		return fmt.Errorf("failed to create transcript index: %w", err)
	}
	return nil
}

func (a *MongoTranscriptArchive) Append(ctx context.Context, entries ...models.TranscriptEntry) error {
	if len(entries) == 0 {
		return nil
	}
	docs := make([]interface{}, len(entries))
	for i, e := range entries {
		docs[i] = e
	}
	if _, err := a.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false)); err != nil {
		return fmt.Errorf("failed to archive transcript: %w", err)
	}
	return nil
}

// NopTranscriptArchive drops entries. It is used when Mongo is not configured.
type NopTranscriptArchive struct{}

func (NopTranscriptArchive) Append(context.Context, ...models.TranscriptEntry) error { return nil }
