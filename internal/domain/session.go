package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Session is a scheduled training slot assigned to exactly one trainer.
// StartTime and EndTime are wall-clock "HH:mm" values on Date.
type Session struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TrainerID primitive.ObjectID `bson:"trainerId" json:"trainerId"` // Trainer assigned to run the session
	Title     string             `bson:"title,omitempty" json:"title,omitempty"`
	Date      time.Time          `bson:"date" json:"date"`           // Calendar day, midnight in the gym's timezone
	StartTime string             `bson:"startTime" json:"startTime"` // "HH:mm"
	EndTime   string             `bson:"endTime" json:"endTime"`     // "HH:mm"
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
