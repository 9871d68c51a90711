package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Default connection timeout
const defaultTimeout = 10 * time.Second

// ConnectDB establishes a connection to MongoDB using the provided URI.
// It returns the mongo.Client which can be used to access databases and collections.
func ConnectDB(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	clientOptions := options.Client().ApplyURI(uri)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	// Ping the primary: Connect succeeds even when the server is unreachable.
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()

	err = client.Ping(pingCtx, readpref.Primary())
	if err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, err
	}

	return client, nil
}

// DisconnectDB gracefully disconnects the MongoDB client.
func DisconnectDB(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes of every collection. The open-record
// index on attendance_records is required for check-in uniqueness, so its
// failure is returned; the others are only logged.
func EnsureIndexes(ctx context.Context, db *mongo.Database, log *zap.Logger) error {
	if err := EnsureAttendanceIndexes(ctx, db.Collection(attendanceCollectionName)); err != nil {
		return err
	}

	optional := map[string]func(context.Context, *mongo.Collection) error{
		userCollectionName:          EnsureUserIndexes,
		sessionCollectionName:       EnsureSessionIndexes,
		payrollReportCollectionName: EnsurePayrollReportIndexes,
		notificationCollectionName:  EnsureNotificationIndexes,
	}
	for name, ensure := range optional {
		if err := ensure(ctx, db.Collection(name)); err != nil {
			log.Warn("failed to create indexes", zap.String("collection", name), zap.Error(err))
		}
	}
	return nil
}
