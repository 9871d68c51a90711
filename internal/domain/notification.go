package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationKind string

const NotificationLateCheckIn NotificationKind = "late_check_in"

// Notification is a message shown to a trainer, e.g. a lateness penalty notice.
type Notification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TrainerID primitive.ObjectID `bson:"trainerId" json:"trainerId"`
	RecordID  primitive.ObjectID `bson:"recordId" json:"recordId"` // At most one notification per record
	Kind      NotificationKind   `bson:"kind" json:"kind"`
	Message   string             `bson:"message" json:"message"`
	Read      bool               `bson:"read" json:"read"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
