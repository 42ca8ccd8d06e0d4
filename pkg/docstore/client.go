package docstore

import (
	"context"
	"fmt"
	"time"

	"classroom-api/config"
	"classroom-api/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const transcriptCollection = "transcripts"

// Client archives full transcripts as documents. Postgres keeps the
// relational view; this store keeps the raw text for listing and audit.
type Client struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewClient(ctx context.Context, cfg *config.Config) (*Client, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	return &Client{client: client, db: client.Database(cfg.Mongo.Database)}, nil
}

// ArchiveTranscript stores one finished transcript document.
func (c *Client) ArchiveTranscript(ctx context.Context, doc models.TranscriptDoc) error {
	doc.CreatedAt = time.Now().UTC()
	_, err := c.db.Collection(transcriptCollection).InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("archive transcript for lecture %s: %w", doc.LectureID, err)
	}
	return nil
}

// ListTranscripts returns archived transcripts, newest first.
func (c *Client) ListTranscripts(ctx context.Context, limit int64) ([]models.TranscriptDoc, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)

	cur, err := c.db.Collection(transcriptCollection).Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list transcripts: %w", err)
	}
	defer cur.Close(ctx)

	var docs []models.TranscriptDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode transcripts: %w", err)
	}
	return docs, nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, nil)
}

func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}
