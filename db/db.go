package db

import (
	"context"
	"time"

	"eventra/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	Client *mongo.Client

	UsersCollection            *mongo.Collection
	OrganizersCollection       *mongo.Collection
	EventsCollection           *mongo.Collection
	TicketPurchasesCollection  *mongo.Collection
	PackagesCollection         *mongo.Collection
	PackagePurchasesCollection *mongo.Collection
)

func Connect(cfg config.MongoConfig) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return err
	}

	Client = client
	database := client.Database(cfg.Database)
	UsersCollection = database.Collection("users")
	OrganizersCollection = database.Collection("organizers")
	EventsCollection = database.Collection("events")
	TicketPurchasesCollection = database.Collection("ticketpurchases")
	PackagesCollection = database.Collection("packages")
	PackagePurchasesCollection = database.Collection("packagepurchases")
	return nil
}

func Disconnect(ctx context.Context) error {
	if Client == nil {
		return nil
	}
	return Client.Disconnect(ctx)
}

func CreateIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	unique := options.Index().SetUnique(true)

	collectionsAndIndexes := map[*mongo.Collection][]mongo.IndexModel{
		UsersCollection: {
			{Keys: bson.D{{Key: "userid", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
		},
		OrganizersCollection: {
			{Keys: bson.D{{Key: "userid", Value: 1}}, Options: unique},
		},
		EventsCollection: {
			{Keys: bson.D{{Key: "eventid", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "ownerid", Value: 1}}},
		},
		TicketPurchasesCollection: {
			{Keys: bson.D{{Key: "purchaseid", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "userid", Value: 1}, {Key: "status", Value: 1}, {Key: "event_start_date", Value: 1}}},
			// Serves the status sweep
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "event_end_date", Value: 1}}},
		},
		PackagesCollection: {
			{Keys: bson.D{{Key: "packageid", Value: 1}}, Options: unique},
		},
		PackagePurchasesCollection: {
			{Keys: bson.D{{Key: "purchaseid", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "userid", Value: 1}}},
		},
	}

	for collection, indexes := range collectionsAndIndexes {
		if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
			return err
		}
	}
	return nil
}
