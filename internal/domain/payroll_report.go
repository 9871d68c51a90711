package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PayrollReport stores metadata about an exported payroll CSV.
// The actual file resides in S3.
type PayrollReport struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TrainerID   primitive.ObjectID `bson:"trainerId" json:"trainerId"`
	From        time.Time          `bson:"from" json:"from"`
	To          time.Time          `bson:"to" json:"to"`
	S3ObjectKey string             `bson:"s3ObjectKey" json:"-"` // Internal use only
	FileName    string             `bson:"fileName" json:"fileName"`
	ContentType string             `bson:"contentType" json:"contentType"`
	Size        int64              `bson:"size" json:"size"`
	GeneratedAt time.Time          `bson:"generatedAt" json:"generatedAt"`
}
