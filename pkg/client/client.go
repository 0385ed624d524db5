package client

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"gstrecon/pkg/logger"
)

const (
	appName = "gstrecon"

	// Result documents carry whole ledgers, so keep the pool small and let
	// requests queue rather than open many large concurrent writes.
	maxPoolSize = 20
)

// Client holds the connections shared by the service, worker and migrations.
type Client struct {
	Mongo *mongo.Client
}

func NewClient() *Client {
	return &Client{}
}

func mongoOptions(uri string, connTimeout time.Duration) *options.ClientOptions {
	return options.Client().
		ApplyURI(uri).
		SetAppName(appName).
		SetMaxPoolSize(maxPoolSize).
		SetConnectTimeout(connTimeout).
		SetServerSelectionTimeout(connTimeout)
}

// ConnectMongo dials MongoDB and pings the primary. A process that cannot
// reach its database has nothing to do, so failure is fatal.
func (c *Client) ConnectMongo(log *logger.Logger, uri string, connTimeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), connTimeout)
	defer cancel()

	mc, err := mongo.Connect(ctx, mongoOptions(uri, connTimeout))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", "error", err)
	}
	if err := mc.Ping(ctx, readpref.Primary()); err != nil {
		log.Fatal("Failed to ping MongoDB primary", "error", err)
	}

	log.Info("Connected to MongoDB", "app_name", appName, "max_pool_size", maxPoolSize)
	c.Mongo = mc
}

func (c *Client) Close(log *logger.Logger, timeout time.Duration) {
	if c.Mongo == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := c.Mongo.Disconnect(ctx); err != nil {
		log.Error("Failed to disconnect from MongoDB", "error", err)
		return
	}
	c.Mongo = nil
	log.Info("Disconnected from MongoDB")
}
