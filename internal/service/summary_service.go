package service

import (
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/dailyroutine/internal/db"
)

// SummaryService derives per-day completion metrics for the admin
// overview. It holds no state of its own; everything is recomputed from
// the students and routines tables on demand.
type SummaryService struct {
	db *gorm.DB
}

// DailyCompletion reports how many students have a routine submitted for
// a date. Rate is a nearest-integer percentage.
type DailyCompletion struct {
	Date           time.Time
	TotalStudents  int
	SubmittedCount int
	Rate           int
}

// NewSummaryService constructs a SummaryService.
func NewSummaryService(gdb *gorm.DB) *SummaryService {
	return &SummaryService{db: gdb}
}

// CompletionForDate counts submissions for a calendar day against the
// current student directory. With no students registered the rate is 0.
func (s *SummaryService) CompletionForDate(date time.Time) (*DailyCompletion, error) {
	var total int64
	if err := s.db.Model(&db.Student{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count students: %w", err)
	}

	var submitted int64
	if err := s.db.Model(&db.Routine{}).
		Where("routine_date = ?", normalizeToDate(date)).
		Distinct("student_id").
		Count(&submitted).Error; err != nil {
		return nil, fmt.Errorf("count submissions: %w", err)
	}

	completion := &DailyCompletion{
		Date:           normalizeToDate(date),
		TotalStudents:  int(total),
		SubmittedCount: int(submitted),
	}
	if total > 0 {
		completion.Rate = int(math.Round(float64(submitted) / float64(total) * 100))
	}

	return completion, nil
}
