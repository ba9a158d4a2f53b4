package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dailyroutine/internal/db"
)

var (
	// ErrRoutineNotFound is returned when a routine id does not resolve.
	ErrRoutineNotFound = errors.New("routine not found")
	// ErrRoutineInvalid flags a bad routine or feedback payload; the
	// wrapped message names the offending field.
	ErrRoutineInvalid = errors.New("invalid routine")
)

const timeOfDayFormat = "15:04"

// routineContentColumns are the columns replaced by an upsert. Feedback
// columns are deliberately absent so a re-submission never clears a review.
var routineContentColumns = []string{
	"wake_up_time",
	"school_time",
	"breakfast_time",
	"breakfast_items",
	"lunch_time",
	"lunch_items",
	"screen_time_minutes",
	"nap_time",
	"study_time_minutes",
	"before_class_activity",
	"dinner_time",
	"dinner_items",
	"sleep_time",
	"behavior_at_home",
	"notes",
	"created_by_id",
	"updated_at",
}

// RoutineService owns the routine lifecycle: idempotent upsert per
// (student, date), the date/student query paths and the one-way feedback
// transition. Authorization is checked here against the caller's
// Principal before anything is written.
type RoutineService struct {
	db        *gorm.DB
	sanitizer *bluemonday.Policy
}

// RoutineInput defines the content fields of a submission. Nil pointers
// mean the field was left blank and is stored as unset.
type RoutineInput struct {
	StudentID   uint
	RoutineDate time.Time

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
}

// NewRoutineService constructs a RoutineService.
func NewRoutineService(gdb *gorm.DB) *RoutineService {
	return &RoutineService{db: gdb, sanitizer: bluemonday.StrictPolicy()}
}

// Upsert creates or replaces the routine for (input.StudentID, date).
// Parents may only submit for their own children; admins for anyone.
// The ON CONFLICT clause rides on the unique (student_id, routine_date)
// index, so concurrent submissions for the same day collapse into one
// row with last-write-wins content.
func (s *RoutineService) Upsert(p Principal, input RoutineInput) (*db.Routine, error) {
	normalized, err := s.normalizeInput(input)
	if err != nil {
		return nil, err
	}

	var student db.Student
	if err := s.db.First(&student, input.StudentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("find student: %w", err)
	}

	if !p.IsAdmin() && student.ParentID != p.UserID {
		return nil, ErrPermissionDenied
	}

	routineDate := normalizeToDate(input.RoutineDate)
	createdBy := p.UserID

	record := db.Routine{
		StudentID:           student.ID,
		RoutineDate:         routineDate,
		WakeUpTime:          normalized.WakeUpTime,
		SchoolTime:          normalized.SchoolTime,
		BreakfastTime:       normalized.BreakfastTime,
		BreakfastItems:      normalized.BreakfastItems,
		LunchTime:           normalized.LunchTime,
		LunchItems:          normalized.LunchItems,
		ScreenTimeMinutes:   normalized.ScreenTimeMinutes,
		NapTime:             normalized.NapTime,
		StudyTimeMinutes:    normalized.StudyTimeMinutes,
		BeforeClassActivity: normalized.BeforeClassActivity,
		DinnerTime:          normalized.DinnerTime,
		DinnerItems:         normalized.DinnerItems,
		SleepTime:           normalized.SleepTime,
		BehaviorAtHome:      normalized.BehaviorAtHome,
		Notes:               normalized.Notes,
		CreatedByID:         &createdBy,
	}

	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "student_id"}, {Name: "routine_date"}},
		DoUpdates: clause.AssignmentColumns(routineContentColumns),
	}).Create(&record).Error; err != nil {
		return nil, fmt.Errorf("upsert routine: %w", err)
	}

	var saved db.Routine
	if err := s.db.Preload("Student").Preload("FeedbackBy").
		Where("student_id = ? AND routine_date = ?", student.ID, routineDate).
		First(&saved).Error; err != nil {
		return nil, fmt.Errorf("reload routine: %w", err)
	}

	return &saved, nil
}

// FindByStudent returns a student's routines, most recent day first.
func (s *RoutineService) FindByStudent(studentID uint) ([]db.Routine, error) {
	var routines []db.Routine
	if err := s.db.Preload("Student").Preload("FeedbackBy").
		Where("student_id = ?", studentID).
		Order("routine_date DESC").
		Find(&routines).Error; err != nil {
		return nil, fmt.Errorf("list routines by student: %w", err)
	}
	return routines, nil
}

// FindByDate returns the routines submitted for a calendar day, each with
// its owning student resolved, ordered by student id for a stable review
// table.
func (s *RoutineService) FindByDate(date time.Time) ([]db.Routine, error) {
	var routines []db.Routine
	if err := s.db.Preload("Student").Preload("FeedbackBy").
		Where("routine_date = ?", normalizeToDate(date)).
		Order("student_id ASC").
		Find(&routines).Error; err != nil {
		return nil, fmt.Errorf("list routines by date: %w", err)
	}
	return routines, nil
}

// FindByID returns a single routine.
func (s *RoutineService) FindByID(id uint) (*db.Routine, error) {
	var routine db.Routine
	if err := s.db.Preload("Student").Preload("FeedbackBy").First(&routine, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoutineNotFound
		}
		return nil, fmt.Errorf("get routine: %w", err)
	}
	return &routine, nil
}

// SetFeedback attaches or replaces admin feedback on a routine. Admin
// only; blank text is rejected before anything is touched. Text, reviewer
// and timestamp are written together so the review state never ends up
// half set.
func (s *RoutineService) SetFeedback(p Principal, id uint, text string) (*db.Routine, error) {
	if !p.IsAdmin() {
		return nil, ErrPermissionDenied
	}

	trimmed := strings.TrimSpace(s.sanitizer.Sanitize(text))
	if trimmed == "" {
		return nil, fmt.Errorf("%w: feedback must not be empty", ErrRoutineInvalid)
	}

	routine, err := s.FindByID(id)
	if err != nil {
		return nil, err
	}

	var reviewer db.User
	if err := s.db.First(&reviewer, p.UserID).Error; err != nil {
		return nil, fmt.Errorf("find reviewer: %w", err)
	}

	routine.ApplyFeedback(trimmed, reviewer, time.Now())

	if err := s.db.Model(routine).Updates(map[string]any{
		"admin_feedback": routine.AdminFeedback,
		"feedback_by_id": routine.FeedbackByID,
		"feedback_date":  routine.FeedbackDate,
	}).Error; err != nil {
		return nil, fmt.Errorf("set feedback: %w", err)
	}

	return routine, nil
}

// Delete removes a routine. Admins may delete any; parents only those of
// their own children.
func (s *RoutineService) Delete(p Principal, id uint) error {
	routine, err := s.FindByID(id)
	if err != nil {
		return err
	}

	if !p.IsAdmin() {
		if routine.Student == nil || routine.Student.ParentID != p.UserID {
			return ErrPermissionDenied
		}
	}

	// hard delete: a soft-deleted row would still occupy the unique
	// (student_id, routine_date) index and block a later re-submission
	if err := s.db.Unscoped().Delete(&db.Routine{}, routine.ID).Error; err != nil {
		return fmt.Errorf("delete routine: %w", err)
	}
	return nil
}

func (s *RoutineService) normalizeInput(input RoutineInput) (RoutineInput, error) {
	if input.StudentID == 0 {
		return RoutineInput{}, fmt.Errorf("%w: studentId is required", ErrRoutineInvalid)
	}
	if input.RoutineDate.IsZero() {
		return RoutineInput{}, fmt.Errorf("%w: routineDate is required", ErrRoutineInvalid)
	}

	out := input

	timeFields := map[string]**string{
		"wakeUpTime":    &out.WakeUpTime,
		"schoolTime":    &out.SchoolTime,
		"breakfastTime": &out.BreakfastTime,
		"lunchTime":     &out.LunchTime,
		"napTime":       &out.NapTime,
		"dinnerTime":    &out.DinnerTime,
		"sleepTime":     &out.SleepTime,
	}
	for field, ptr := range timeFields {
		normalized, err := normalizeTimeOfDay(*ptr)
		if err != nil {
			return RoutineInput{}, fmt.Errorf("%w: %s must be HH:MM", ErrRoutineInvalid, field)
		}
		*ptr = normalized
	}

	countFields := map[string]**int{
		"screenTimeMinutes": &out.ScreenTimeMinutes,
		"studyTimeMinutes":  &out.StudyTimeMinutes,
	}
	for field, ptr := range countFields {
		if *ptr != nil && **ptr < 0 {
			return RoutineInput{}, fmt.Errorf("%w: %s must not be negative", ErrRoutineInvalid, field)
		}
	}

	if out.BehaviorAtHome != nil {
		value := strings.ToUpper(strings.TrimSpace(*out.BehaviorAtHome))
		if value == "" {
			out.BehaviorAtHome = nil
		} else if !db.ValidBehavior(value) {
			return RoutineInput{}, fmt.Errorf("%w: behaviorAtHome must be one of %s",
				ErrRoutineInvalid, strings.Join(db.Behaviors, ", "))
		} else {
			out.BehaviorAtHome = &value
		}
	}

	out.BreakfastItems = s.normalizeText(out.BreakfastItems)
	out.LunchItems = s.normalizeText(out.LunchItems)
	out.DinnerItems = s.normalizeText(out.DinnerItems)
	out.BeforeClassActivity = s.normalizeText(out.BeforeClassActivity)
	out.Notes = s.normalizeText(out.Notes)

	return out, nil
}

// normalizeText strips markup and collapses blank values to unset.
func (s *RoutineService) normalizeText(value *string) *string {
	if value == nil {
		return nil
	}
	cleaned := strings.TrimSpace(s.sanitizer.Sanitize(*value))
	if cleaned == "" {
		return nil
	}
	return &cleaned
}

// normalizeTimeOfDay validates an "HH:MM" value and re-formats it into
// canonical zero-padded form. Blank values become unset.
func normalizeTimeOfDay(value *string) (*string, error) {
	if value == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil, nil
	}

	parsed, err := time.Parse(timeOfDayFormat, trimmed)
	if err != nil {
		return nil, err
	}

	canonical := parsed.Format(timeOfDayFormat)
	return &canonical, nil
}

// normalizeToDate drops the time component so the unique index compares
// equal regardless of the caller's clock or timezone.
func normalizeToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
