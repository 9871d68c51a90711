package mongo

import (
	"context"
	"errors"
	"time"

	"alcyxob/gym-attendance/internal/domain"
	"alcyxob/gym-attendance/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const attendanceCollectionName = "attendance_records"

// mongoAttendanceRepository implements repository.AttendanceRepository.
// Open-record uniqueness is enforced by a partial unique index, see
// EnsureAttendanceIndexes.
type mongoAttendanceRepository struct {
	collection *mongo.Collection
}

// NewMongoAttendanceRepository creates a new attendance record repository backed by MongoDB.
func NewMongoAttendanceRepository(db *mongo.Database) repository.AttendanceRepository {
	return &mongoAttendanceRepository{
		collection: db.Collection(attendanceCollectionName),
	}
}

func openFilter(extra bson.M) bson.M {
	extra["checkOutStatus"] = domain.CheckOutNotYet
	return extra
}

// FindOpenRecord returns the trainer's open record for a session.
func (r *mongoAttendanceRepository) FindOpenRecord(ctx context.Context, trainerID, sessionID primitive.ObjectID) (*domain.AttendanceRecord, error) {
	return r.findOne(ctx, openFilter(bson.M{"trainerId": trainerID, "sessionId": sessionID}))
}

// FindOpenRecordByID returns the open record with the given ID.
func (r *mongoAttendanceRepository) FindOpenRecordByID(ctx context.Context, id primitive.ObjectID) (*domain.AttendanceRecord, error) {
	return r.findOne(ctx, openFilter(bson.M{"_id": id}))
}

func (r *mongoAttendanceRepository) findOne(ctx context.Context, filter bson.M) (*domain.AttendanceRecord, error) {
	var record domain.AttendanceRecord
	err := r.collection.FindOne(ctx, filter).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// Insert stores a new open record. A duplicate key on the open-record index
// means another check-in for the same trainer and session won the race.
func (r *mongoAttendanceRepository) Insert(ctx context.Context, record *domain.AttendanceRecord) (*domain.AttendanceRecord, error) {
	if record.TrainerID == primitive.NilObjectID || record.SessionID == primitive.NilObjectID || record.CheckInInstant.IsZero() {
		return nil, repository.ErrInvalid
	}

	rec := *record
	rec.ID = primitive.NewObjectID()
	rec.CheckOutInstant = nil
	rec.CheckOutStatus = domain.CheckOutNotYet
	rec.SessionDurationMinutes = nil
	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, &rec); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, repository.ErrConflict
		}
		return nil, err
	}
	return &rec, nil
}

// UpdateCheckout closes the record only while it is still open, so concurrent
// checkouts apply at most once.
func (r *mongoAttendanceRepository) UpdateCheckout(ctx context.Context, id primitive.ObjectID, checkOut time.Time, status domain.CheckOutStatus, durationMinutes int) (*domain.AttendanceRecord, error) {
	filter := openFilter(bson.M{"_id": id})
	update := bson.M{
		"$set": bson.M{
			"checkOutInstant":        checkOut,
			"checkOutStatus":         status,
			"sessionDurationMinutes": durationMinutes,
			"updatedAt":              time.Now().UTC(),
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var record domain.AttendanceRecord
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrConflict
		}
		return nil, err
	}
	return &record, nil
}

// ListByTrainer retrieves a trainer's records checked in within [from, to).
func (r *mongoAttendanceRepository) ListByTrainer(ctx context.Context, trainerID primitive.ObjectID, from, to time.Time) ([]domain.AttendanceRecord, error) {
	records := []domain.AttendanceRecord{}
	filter := bson.M{
		"trainerId":      trainerID,
		"checkInInstant": bson.M{"$gte": from, "$lt": to},
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "checkInInstant", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// EnsureAttendanceIndexes creates necessary indexes for the attendance collection.
// The partial unique index is what makes concurrent check-ins for the same
// trainer and session fail with a duplicate key.
func EnsureAttendanceIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "trainerId", Value: 1}, {Key: "sessionId", Value: 1}},
			Options: options.Index().
				SetName("uniq_open_record").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"checkOutStatus": domain.CheckOutNotYet}),
		},
		{
			// Payroll and history queries
			Keys:    bson.D{{Key: "trainerId", Value: 1}, {Key: "checkInInstant", Value: 1}},
			Options: options.Index(),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
