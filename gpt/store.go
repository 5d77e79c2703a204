package gpt

import (
	"context"
	"errors"
	"time"

	"eventra/db"
	"eventra/structs"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoQuotaStore keeps the quota on the organizer profile document.
type MongoQuotaStore struct{}

func (MongoQuotaStore) GetQuota(ctx context.Context, userID string) (int, error) {
	var organizer structs.Organizer
	err := db.OrganizersCollection.FindOne(ctx, bson.M{"userid": userID}).Decode(&organizer)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, ErrOrganizerNotFound
		}
		return 0, err
	}
	return organizer.GPTAccessTokenQuota, nil
}

// DecrementQuota only matches while at least one unit remains, so two
// racing calls cannot both consume the last one.
func (MongoQuotaStore) DecrementQuota(ctx context.Context, userID string) (int, bool, error) {
	after := options.After
	var organizer structs.Organizer
	err := db.OrganizersCollection.FindOneAndUpdate(ctx,
		bson.M{"userid": userID, "gpt_access_token_quota": bson.M{"$gte": 1}},
		bson.M{
			"$inc": bson.M{"gpt_access_token_quota": -1},
			"$set": bson.M{"updated_at": time.Now()},
		},
		&options.FindOneAndUpdateOptions{ReturnDocument: &after},
	).Decode(&organizer)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return organizer.GPTAccessTokenQuota, true, nil
}
