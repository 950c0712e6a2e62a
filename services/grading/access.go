package grading

import (
	"lms/models"
	courseModels "lms/models/course"
)

// Principal is the authenticated caller.
type Principal struct {
	UserID uint
	Role   string
}

func (p Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}

// CanManageCourse answers whether p is an admin or the instructor who owns c.
func CanManageCourse(p Principal, c *courseModels.Course) bool {
	if c == nil {
		return false
	}
	if p.IsAdmin() {
		return true
	}
	return p.Role == models.RoleInstructor && c.InstructorID == p.UserID
}
