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

const payrollReportCollectionName = "payroll_reports"

// mongoPayrollReportRepository implements repository.PayrollReportRepository
type mongoPayrollReportRepository struct {
	collection *mongo.Collection
}

// NewMongoPayrollReportRepository creates a new PayrollReport repository backed by MongoDB.
func NewMongoPayrollReportRepository(db *mongo.Database) repository.PayrollReportRepository {
	return &mongoPayrollReportRepository{
		collection: db.Collection(payrollReportCollectionName),
	}
}

// Create inserts new report metadata into the database.
func (r *mongoPayrollReportRepository) Create(ctx context.Context, report *domain.PayrollReport) (primitive.ObjectID, error) {
	if report.TrainerID == primitive.NilObjectID || report.S3ObjectKey == "" {
		return primitive.NilObjectID, repository.ErrInvalid
	}

	report.ID = primitive.NewObjectID()
	if report.GeneratedAt.IsZero() {
		report.GeneratedAt = time.Now().UTC()
	}

	result, err := r.collection.InsertOne(ctx, report)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByID retrieves report metadata by its ID.
func (r *mongoPayrollReportRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.PayrollReport, error) {
	var report domain.PayrollReport
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&report)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &report, nil
}

// EnsurePayrollReportIndexes creates necessary indexes for the payroll_reports collection.
func EnsurePayrollReportIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "trainerId", Value: 1}, {Key: "generatedAt", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "s3ObjectKey", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
