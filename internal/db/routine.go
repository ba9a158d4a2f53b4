package db

import (
	"time"

	"gorm.io/gorm"
)

// Behavior levels a parent can report for the day.
const (
	BehaviorExcellent        = "EXCELLENT"
	BehaviorGood             = "GOOD"
	BehaviorAverage          = "AVERAGE"
	BehaviorNeedsImprovement = "NEEDS_IMPROVEMENT"
)

// Behaviors lists the accepted behaviorAtHome values.
var Behaviors = []string{
	BehaviorExcellent,
	BehaviorGood,
	BehaviorAverage,
	BehaviorNeedsImprovement,
}

// Routine holds one day's schedule and behavior data for one student.
// Student + RoutineDate carry a unique index so a re-submission for the
// same day replaces the existing row instead of adding another.
// Time-of-day fields are "HH:MM" strings; nil means the parent left the
// field blank. Feedback columns are only ever written together through
// ApplyFeedback, keeping the reviewed/unreviewed state all-or-nothing.
type Routine struct {
	gorm.Model
	StudentID   uint      `gorm:"index;index:idx_routine_student_date,unique"`
	Student     *Student  `gorm:"foreignKey:StudentID"`
	RoutineDate time.Time `gorm:"index:idx_routine_student_date,unique"`

	WakeUpTime          *string
	SchoolTime          *string
	BreakfastTime       *string
	BreakfastItems      *string
	LunchTime           *string
	LunchItems          *string
	ScreenTimeMinutes   *int
	NapTime             *string
	StudyTimeMinutes    *int
	BeforeClassActivity *string
	DinnerTime          *string
	DinnerItems         *string
	SleepTime           *string
	BehaviorAtHome      *string
	Notes               *string

	AdminFeedback *string
	FeedbackByID  *uint
	FeedbackBy    *User `gorm:"foreignKey:FeedbackByID"`
	FeedbackDate  *time.Time

	CreatedByID *uint
}

// Reviewed reports whether admin feedback has been attached.
func (r *Routine) Reviewed() bool {
	return r.AdminFeedback != nil && r.FeedbackByID != nil && r.FeedbackDate != nil
}

// ApplyFeedback sets the feedback text, reviewer and timestamp as one
// unit. Re-applying overwrites the previous review; there is no history.
func (r *Routine) ApplyFeedback(text string, reviewer User, at time.Time) {
	reviewerID := reviewer.ID
	r.AdminFeedback = &text
	r.FeedbackByID = &reviewerID
	r.FeedbackBy = &reviewer
	r.FeedbackDate = &at
}

// ValidBehavior reports whether value is one of the accepted behavior levels.
func ValidBehavior(value string) bool {
	for _, b := range Behaviors {
		if b == value {
			return true
		}
	}
	return false
}
