package course

import (
	"time"

	"gorm.io/gorm"
)

// Enrollment tracks a student's enrollment in a course
type Enrollment struct {
	gorm.Model
	UserID     uint      `json:"user_id" gorm:"uniqueIndex:idx_enrollment_user_course;not null"`
	CourseID   uint      `json:"course_id" gorm:"uniqueIndex:idx_enrollment_user_course;index;not null"`
	Status     string    `json:"status" gorm:"default:'ENROLLED'"` // ENROLLED, COMPLETED
	EnrolledAt time.Time `json:"enrolled_at"`
	IsDeleted  bool      `json:"-" gorm:"default:false"`
}
