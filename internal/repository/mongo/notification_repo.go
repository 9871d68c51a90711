package mongo

import (
	"context"
	"time"

	"alcyxob/gym-attendance/internal/domain"
	"alcyxob/gym-attendance/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const notificationCollectionName = "notifications"

type mongoNotificationRepository struct {
	collection *mongo.Collection
}

// NewMongoNotificationRepository creates a new Notification repository backed by MongoDB.
func NewMongoNotificationRepository(db *mongo.Database) repository.NotificationRepository {
	return &mongoNotificationRepository{
		collection: db.Collection(notificationCollectionName),
	}
}

// UpsertForRecord inserts n with $setOnInsert so a retried job never creates a
// second notification for the same record.
func (r *mongoNotificationRepository) UpsertForRecord(ctx context.Context, n *domain.Notification) (bool, error) {
	if n.TrainerID == primitive.NilObjectID || n.RecordID == primitive.NilObjectID {
		return false, repository.ErrInvalid
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	filter := bson.M{"recordId": n.RecordID, "kind": n.Kind}
	update := bson.M{
		"$setOnInsert": bson.M{
			"trainerId": n.TrainerID,
			"message":   n.Message,
			"read":      false,
			"createdAt": n.CreatedAt,
		},
	}
	result, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		// Two concurrent upserts: the loser hits the unique index
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, err
	}
	if id, ok := result.UpsertedID.(primitive.ObjectID); ok {
		n.ID = id
		return true, nil
	}
	return false, nil
}

// ListByTrainer returns a trainer's notifications, newest first.
func (r *mongoNotificationRepository) ListByTrainer(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Notification, error) {
	notifications := []domain.Notification{}
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"trainerId": trainerID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

// EnsureNotificationIndexes creates necessary indexes for the notifications collection.
func EnsureNotificationIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "recordId", Value: 1}, {Key: "kind", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "trainerId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
