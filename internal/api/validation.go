package api

import (
	"fmt"
	"time"

	"alcyxob/gym-attendance/internal/attendance"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const dateLayout = "2006-01-02"

// RegisterValidators adds the custom binding rules used by request DTOs.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		_, _, err := attendance.ParseHHMM(fl.Field().String())
		return err == nil
	})
}

// PeriodQuery selects whole calendar days, both ends inclusive.
type PeriodQuery struct {
	From string `form:"from" json:"from" binding:"required,datetime=2006-01-02"`
	To   string `form:"to" json:"to" binding:"required,datetime=2006-01-02"`
}

// Bounds returns the half-open instant range [from 00:00, day after to 00:00)
// in loc.
func (q PeriodQuery) Bounds(loc *time.Location) (time.Time, time.Time, error) {
	from, err := time.ParseInLocation(dateLayout, q.From, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := time.ParseInLocation(dateLayout, q.To, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, to.AddDate(0, 0, 1), nil
}
