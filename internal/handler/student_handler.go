package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dailyroutine/internal/db"
	"github.com/dailyroutine/internal/service"
)

type studentPayload struct {
	Name       string `json:"name" binding:"required"`
	ClassGrade string `json:"classGrade"`
	ParentID   uint   `json:"parentId"`
}

// GetStudents lists the directory: every student for admins, own
// children for parents.
func (a *API) GetStudents(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	students, err := a.students.List(principal)
	if err != nil {
		handleStudentError(c, err)
		return
	}

	items := make([]gin.H, 0, len(students))
	for _, student := range students {
		items = append(items, studentToPayload(student))
	}
	c.JSON(http.StatusOK, items)
}

// GetStudent returns a single student by id.
func (a *API) GetStudent(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	student, err := a.students.Get(id)
	if err != nil {
		handleStudentError(c, err)
		return
	}

	c.JSON(http.StatusOK, studentToPayload(*student))
}

// CreateStudent adds a student to the directory. Admin only.
func (a *API) CreateStudent(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var payload studentPayload
	if !bindJSON(c, &payload, "name is required") {
		return
	}

	student, err := a.students.Create(principal, service.StudentInput{
		Name:       payload.Name,
		ClassGrade: payload.ClassGrade,
		ParentID:   payload.ParentID,
	})
	if err != nil {
		handleStudentError(c, err)
		return
	}

	c.JSON(http.StatusOK, studentToPayload(*student))
}

// UpdateStudent edits a student's name and class grade. Admin only.
func (a *API) UpdateStudent(c *gin.Context) {
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

	var payload studentPayload
	if !bindJSON(c, &payload, "name is required") {
		return
	}

	student, err := a.students.Update(principal, id, service.StudentInput{
		Name:       payload.Name,
		ClassGrade: payload.ClassGrade,
	})
	if err != nil {
		handleStudentError(c, err)
		return
	}

	c.JSON(http.StatusOK, studentToPayload(*student))
}

// DeleteStudent removes a student. Admin only; the student's routines
// are left in place.
func (a *API) DeleteStudent(c *gin.Context) {
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

	if err := a.students.Delete(principal, id); err != nil {
		handleStudentError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "student deleted successfully"})
}

func studentToPayload(student db.Student) gin.H {
	item := gin.H{
		"id":         student.ID,
		"name":       student.Name,
		"classGrade": student.ClassGrade,
		"parentId":   student.ParentID,
	}
	if student.Parent != nil {
		item["parent"] = gin.H{
			"id":       student.Parent.ID,
			"username": student.Parent.Username,
		}
	}
	return item
}

func handleStudentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrStudentNotFound):
		respondError(c, http.StatusNotFound, "student not found")
	case errors.Is(err, service.ErrParentNotFound):
		respondError(c, http.StatusNotFound, "parent not found")
	case errors.Is(err, service.ErrStudentInvalid):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrPermissionDenied):
		respondError(c, http.StatusForbidden, "admin role required")
	default:
		respondError(c, http.StatusInternalServerError, "operation failed")
	}
}
