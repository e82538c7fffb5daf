package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Client represents a MongoDB client
type Client struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewClient creates a new MongoDB client
func NewClient(uri string) (*Client, error) {
	clientOptions := options.Client().ApplyURI(uri)

	client, err := mongo.Connect(context.Background(), clientOptions)
	if err != nil {
		return nil, err
	}

	// Check the connection
	err = client.Ping(context.Background(), nil)
	if err != nil {
		return nil, err
	}

	return &Client{
		client: client,
	}, nil
}

// Database returns a database
func (c *Client) Database(name string) *mongo.Database {
	if c.db == nil || c.db.Name() != name {
		c.db = c.client.Database(name)
	}
	return c.db
}

// WithTransaction runs fn inside a multi-document transaction. The session is
// carried on the context, so repository calls made with the callback context
// participate in the same transaction.
func (c *Client) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := c.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

// EnsureIndexes creates the unique indexes the domain invariants rely on:
// one membership per (group, user), one participation per (bet, user), one
// justification per (challenge, user), one vote per (justification, user),
// plus lookups by invite code and idempotency key.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := options.Index().SetUnique(true)
	uniqueSparse := options.Index().SetUnique(true).SetSparse(true)

	indexes := map[string][]mongo.IndexModel{
		"users": {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
		},
		"groups": {
			{Keys: bson.D{{Key: "inviteCode", Value: 1}}, Options: unique},
		},
		"group_members": {
			{Keys: bson.D{{Key: "groupId", Value: 1}, {Key: "userId", Value: 1}}, Options: unique},
		},
		"bet_participations": {
			{Keys: bson.D{{Key: "betId", Value: 1}, {Key: "userId", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "idempotencyKey", Value: 1}}, Options: uniqueSparse},
		},
		"challenge_participations": {
			{Keys: bson.D{{Key: "challengeId", Value: 1}, {Key: "userId", Value: 1}}, Options: unique},
		},
		"challenge_justifications": {
			{Keys: bson.D{{Key: "challengeId", Value: 1}, {Key: "userId", Value: 1}}, Options: unique},
		},
		"challenge_votes": {
			{Keys: bson.D{{Key: "justificationId", Value: 1}, {Key: "userId", Value: 1}}, Options: unique},
		},
	}

	for collection, models := range indexes {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return err
		}
	}
	return nil
}

// Disconnect disconnects from MongoDB
func (c *Client) Disconnect(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}
