package tickets

import (
	"context"
	"errors"
	"time"

	"eventra/db"
	"eventra/globals"
	"eventra/structs"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoInventory reads and mutates the embedded category array of
// event documents.
type MongoInventory struct{}

func (MongoInventory) FindEvent(ctx context.Context, eventID string) (*structs.Event, error) {
	var event structs.Event
	err := db.EventsCollection.FindOne(ctx, bson.M{"eventid": eventID}).Decode(&event)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &event, nil
}

// DecrementRemaining is the atomic compare-and-decrement: the filter
// only matches while the category still has qty tickets left, so the
// check and the $inc cannot interleave with another purchaser.
func (MongoInventory) DecrementRemaining(ctx context.Context, eventID, categoryName string, qty int) (bool, error) {
	result, err := db.EventsCollection.UpdateOne(ctx,
		bson.M{
			"eventid": eventID,
			"tickets": bson.M{"$elemMatch": bson.M{
				"category_name":     categoryName,
				"remaining_tickets": bson.M{"$gte": qty},
			}},
		},
		bson.M{"$inc": bson.M{"tickets.$.remaining_tickets": -qty}},
	)
	if err != nil {
		return false, err
	}
	return result.ModifiedCount == 1, nil
}

func (MongoInventory) IncrementRemaining(ctx context.Context, eventID, categoryName string, qty int) error {
	_, err := db.EventsCollection.UpdateOne(ctx,
		bson.M{
			"eventid": eventID,
			"tickets": bson.M{"$elemMatch": bson.M{"category_name": categoryName}},
		},
		bson.M{"$inc": bson.M{"tickets.$.remaining_tickets": qty}},
	)
	return err
}

type MongoLedger struct{}

func (MongoLedger) Insert(ctx context.Context, purchase structs.TicketPurchase) error {
	_, err := db.TicketPurchasesCollection.InsertOne(ctx, purchase)
	return err
}

func (MongoLedger) FindByID(ctx context.Context, purchaseID, userID string) (*structs.TicketPurchase, error) {
	var purchase structs.TicketPurchase
	err := db.TicketPurchasesCollection.FindOne(ctx,
		bson.M{"purchaseid": purchaseID, "userid": userID}).Decode(&purchase)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &purchase, nil
}

func (MongoLedger) List(ctx context.Context, userID, status string, skip, limit int64) ([]structs.TicketPurchase, error) {
	filter := bson.M{"userid": userID}
	if status != "" {
		filter["status"] = status
	}
	cursor, err := db.TicketPurchasesCollection.Find(ctx, filter, &options.FindOptions{
		Skip:  &skip,
		Limit: &limit,
		Sort:  bson.D{{Key: "status", Value: 1}, {Key: "event_start_date", Value: 1}},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	purchases := []structs.TicketPurchase{}
	if err := cursor.All(ctx, &purchases); err != nil {
		return nil, err
	}
	return purchases, nil
}

func (MongoLedger) Count(ctx context.Context, userID, status string) (int64, error) {
	filter := bson.M{"userid": userID}
	if status != "" {
		filter["status"] = status
	}
	return db.TicketPurchasesCollection.CountDocuments(ctx, filter)
}

// SweepExpired flips purchases of already-ended events from active to
// done. The status guard makes re-runs no-ops, so it is safe to run
// redundantly and concurrently.
func (MongoLedger) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := db.TicketPurchasesCollection.UpdateMany(ctx,
		bson.M{"status": globals.PurchaseActive, "event_end_date": bson.M{"$lt": now}},
		bson.M{"$set": bson.M{"status": globals.PurchaseDone, "updated_at": now}},
	)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}
