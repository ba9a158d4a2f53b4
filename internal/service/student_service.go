package service

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/dailyroutine/internal/db"
)

var (
	// ErrStudentNotFound is returned when a student id does not resolve.
	ErrStudentNotFound = errors.New("student not found")
	// ErrParentNotFound is returned when a student references an unknown
	// parent account.
	ErrParentNotFound = errors.New("parent not found")
	// ErrStudentInvalid flags a bad student payload.
	ErrStudentInvalid = errors.New("invalid student")
)

// StudentService is the student directory: admin-managed CRUD plus
// parent-scoped listing. Routines reference students by id only, so
// deleting a student leaves its routines in place.
type StudentService struct {
	db *gorm.DB
}

// StudentInput defines the configurable fields of a student.
type StudentInput struct {
	Name       string
	ClassGrade string
	ParentID   uint
}

// NewStudentService constructs a StudentService.
func NewStudentService(gdb *gorm.DB) *StudentService {
	return &StudentService{db: gdb}
}

// List returns students ordered by id. Admins see the whole directory;
// parents only their own children.
func (s *StudentService) List(p Principal) ([]db.Student, error) {
	var students []db.Student

	query := s.db.Preload("Parent").Order("id ASC")
	if !p.IsAdmin() {
		query = query.Where("parent_id = ?", p.UserID)
	}

	if err := query.Find(&students).Error; err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}

	return students, nil
}

// Get returns the student with the given id.
func (s *StudentService) Get(id uint) (*db.Student, error) {
	var student db.Student
	if err := s.db.Preload("Parent").First(&student, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("get student: %w", err)
	}
	return &student, nil
}

// Create adds a student to the directory. Admin only.
func (s *StudentService) Create(p Principal, input StudentInput) (*db.Student, error) {
	if !p.IsAdmin() {
		return nil, ErrPermissionDenied
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrStudentInvalid)
	}

	var parent db.User
	if err := s.db.First(&parent, input.ParentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrParentNotFound
		}
		return nil, fmt.Errorf("find parent: %w", err)
	}

	student := db.Student{
		Name:       name,
		ClassGrade: strings.TrimSpace(input.ClassGrade),
		ParentID:   parent.ID,
		Parent:     &parent,
	}
	if err := s.db.Create(&student).Error; err != nil {
		return nil, fmt.Errorf("create student: %w", err)
	}

	return &student, nil
}

// Update edits a student's name and class grade. Admin only.
func (s *StudentService) Update(p Principal, id uint, input StudentInput) (*db.Student, error) {
	if !p.IsAdmin() {
		return nil, ErrPermissionDenied
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrStudentInvalid)
	}

	var existing db.Student
	if err := s.db.First(&existing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("find student: %w", err)
	}

	existing.Name = name
	existing.ClassGrade = strings.TrimSpace(input.ClassGrade)

	if err := s.db.Save(&existing).Error; err != nil {
		return nil, fmt.Errorf("update student: %w", err)
	}

	return &existing, nil
}

// Delete removes a student from the directory. Admin only. Routines of
// the student are not cascaded; they stay queryable by id and by date.
func (s *StudentService) Delete(p Principal, id uint) error {
	if !p.IsAdmin() {
		return ErrPermissionDenied
	}

	result := s.db.Delete(&db.Student{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete student: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrStudentNotFound
	}
	return nil
}
