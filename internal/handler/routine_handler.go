package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dailyroutine/internal/db"
	"github.com/dailyroutine/internal/service"
)

type routinePayload struct {
	StudentID   uint   `json:"studentId" binding:"required"`
	RoutineDate string `json:"routineDate" binding:"required"`

	WakeUpTime          *string `json:"wakeUpTime"`
	SchoolTime          *string `json:"schoolTime"`
	BreakfastTime       *string `json:"breakfastTime"`
	BreakfastItems      *string `json:"breakfastItems"`
	LunchTime           *string `json:"lunchTime"`
	LunchItems          *string `json:"lunchItems"`
	ScreenTimeMinutes   *int    `json:"screenTimeMinutes"`
	NapTime             *string `json:"napTime"`
	StudyTimeMinutes    *int    `json:"studyTimeMinutes"`
	BeforeClassActivity *string `json:"beforeClassActivity"`
	DinnerTime          *string `json:"dinnerTime"`
	DinnerItems         *string `json:"dinnerItems"`
	SleepTime           *string `json:"sleepTime"`
	BehaviorAtHome      *string `json:"behaviorAtHome"`
	Notes               *string `json:"notes"`
}

type feedbackPayload struct {
	Feedback string `json:"feedback" binding:"required"`
}

// SaveRoutine creates or replaces the routine for (studentId, routineDate).
func (a *API) SaveRoutine(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var payload routinePayload
	if !bindJSON(c, &payload, "studentId and routineDate are required") {
		return
	}

	routineDate, err := time.Parse(dateFormat, payload.RoutineDate)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid routineDate, expected YYYY-MM-DD")
		return
	}

	routine, err := a.routines.Upsert(principal, service.RoutineInput{
		StudentID:           payload.StudentID,
		RoutineDate:         routineDate,
		WakeUpTime:          payload.WakeUpTime,
		SchoolTime:          payload.SchoolTime,
		BreakfastTime:       payload.BreakfastTime,
		BreakfastItems:      payload.BreakfastItems,
		LunchTime:           payload.LunchTime,
		LunchItems:          payload.LunchItems,
		ScreenTimeMinutes:   payload.ScreenTimeMinutes,
		NapTime:             payload.NapTime,
		StudyTimeMinutes:    payload.StudyTimeMinutes,
		BeforeClassActivity: payload.BeforeClassActivity,
		DinnerTime:          payload.DinnerTime,
		DinnerItems:         payload.DinnerItems,
		SleepTime:           payload.SleepTime,
		BehaviorAtHome:      payload.BehaviorAtHome,
		Notes:               payload.Notes,
	})
	if err != nil {
		handleRoutineError(c, err)
		return
	}

	c.JSON(http.StatusOK, routineToPayload(*routine))
}

// GetRoutinesByStudent lists a student's routines, most recent day first.
func (a *API) GetRoutinesByStudent(c *gin.Context) {
	studentID, err := parseUintParam(c, "studentId")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	routines, err := a.routines.FindByStudent(studentID)
	if err != nil {
		handleRoutineError(c, err)
		return
	}

	c.JSON(http.StatusOK, serializeRoutines(routines))
}

// GetRoutinesByDate lists all routines submitted for a calendar day,
// each with its owning student embedded.
func (a *API) GetRoutinesByDate(c *gin.Context) {
	date, err := parseDateParam(c, "date")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	routines, err := a.routines.FindByDate(date)
	if err != nil {
		handleRoutineError(c, err)
		return
	}

	c.JSON(http.StatusOK, serializeRoutines(routines))
}

// AddFeedback attaches admin feedback to a routine. Admin only.
func (a *API) AddFeedback(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var payload feedbackPayload
	if !bindJSON(c, &payload, "feedback is required") {
		return
	}

	routine, err := a.routines.SetFeedback(principal, id, payload.Feedback)
	if err != nil {
		handleRoutineError(c, err)
		return
	}

	c.JSON(http.StatusOK, routineToPayload(*routine))
}

// DeleteRoutine removes a routine record.
func (a *API) DeleteRoutine(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := a.routines.Delete(principal, id); err != nil {
		handleRoutineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "routine deleted successfully"})
}

// GetDailySummary reports the submitted-vs-total completion for a day.
// Admin only.
func (a *API) GetDailySummary(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}
	if !principal.IsAdmin() {
		respondError(c, http.StatusForbidden, "admin role required")
		return
	}

	date, err := parseDateParam(c, "date")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	completion, err := a.summaries.CompletionForDate(date)
	if err != nil {
		handleRoutineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":           completion.Date.Format(dateFormat),
		"totalStudents":  completion.TotalStudents,
		"submittedCount": completion.SubmittedCount,
		"rate":           completion.Rate,
	})
}

func serializeRoutines(routines []db.Routine) []gin.H {
	items := make([]gin.H, 0, len(routines))
	for _, routine := range routines {
		items = append(items, routineToPayload(routine))
	}
	return items
}

func routineToPayload(routine db.Routine) gin.H {
	item := gin.H{
		"id":          routine.ID,
		"studentId":   routine.StudentID,
		"routineDate": routine.RoutineDate.Format(dateFormat),
	}

	optionalStrings := map[string]*string{
		"wakeUpTime":          routine.WakeUpTime,
		"schoolTime":          routine.SchoolTime,
		"breakfastTime":       routine.BreakfastTime,
		"breakfastItems":      routine.BreakfastItems,
		"lunchTime":           routine.LunchTime,
		"lunchItems":          routine.LunchItems,
		"napTime":             routine.NapTime,
		"beforeClassActivity": routine.BeforeClassActivity,
		"dinnerTime":          routine.DinnerTime,
		"dinnerItems":         routine.DinnerItems,
		"sleepTime":           routine.SleepTime,
		"behaviorAtHome":      routine.BehaviorAtHome,
		"notes":               routine.Notes,
	}
	for key, value := range optionalStrings {
		if value != nil {
			item[key] = *value
		}
	}

	if routine.ScreenTimeMinutes != nil {
		item["screenTimeMinutes"] = *routine.ScreenTimeMinutes
	}
	if routine.StudyTimeMinutes != nil {
		item["studyTimeMinutes"] = *routine.StudyTimeMinutes
	}

	if routine.Student != nil {
		item["student"] = studentToPayload(*routine.Student)
	} else {
		item["student"] = nil
	}

	if routine.Reviewed() {
		feedback := gin.H{
			"text": *routine.AdminFeedback,
			"date": routine.FeedbackDate.Format(time.RFC3339),
		}
		if routine.FeedbackBy != nil {
			feedback["by"] = gin.H{
				"id":       routine.FeedbackBy.ID,
				"username": routine.FeedbackBy.Username,
			}
		} else {
			feedback["by"] = gin.H{"id": *routine.FeedbackByID}
		}
		item["feedback"] = feedback
	} else {
		item["feedback"] = nil
	}

	return item
}

func handleRoutineError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRoutineNotFound):
		respondError(c, http.StatusNotFound, "routine not found")
	case errors.Is(err, service.ErrStudentNotFound):
		respondError(c, http.StatusNotFound, "student not found")
	case errors.Is(err, service.ErrRoutineInvalid):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrPermissionDenied):
		respondError(c, http.StatusForbidden, "not allowed for this routine")
	default:
		respondError(c, http.StatusInternalServerError, "operation failed")
	}
}
