package course

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DefaultMaxPoints is used when an assignment carries no point value or no longer exists
const DefaultMaxPoints = 100

type Attachment struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

// Assignment is instructor-graded work attached to a course
type Assignment struct {
	gorm.Model
	CourseID     uint                           `json:"course_id" gorm:"index;not null"`
	Title        string                         `json:"title"`
	Description  string                         `json:"description"`
	Instructions string                         `json:"instructions" gorm:"type:text"`
	DueDate      time.Time                      `json:"due_date"`
	MaxPoints    int                            `json:"max_points"`
	Attachments  datatypes.JSONSlice[Attachment] `json:"attachments"`
	IsPublished  bool                           `json:"is_published" gorm:"default:false"`
	IsDeleted    bool                           `json:"-" gorm:"default:false"`
}

// PointsOrDefault returns MaxPoints, falling back to DefaultMaxPoints
func (a *Assignment) PointsOrDefault() int {
	if a == nil || a.MaxPoints <= 0 {
		return DefaultMaxPoints
	}
	return a.MaxPoints
}
