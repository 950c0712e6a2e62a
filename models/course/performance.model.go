package course

import (
	"time"

	"gorm.io/datatypes"
)

type QuizScore struct {
	Quiz        uint      `json:"quiz"`
	Score       int       `json:"score"`
	Percentage  int       `json:"percentage"`
	Passed      bool      `json:"passed"`
	SubmittedAt time.Time `json:"submittedAt"`
}

type TestScore struct {
	Test        uint      `json:"test"`
	Score       int       `json:"score"`
	Percentage  int       `json:"percentage"`
	Passed      bool      `json:"passed"`
	SubmittedAt time.Time `json:"submittedAt"`
}

type AssignmentScore struct {
	Assignment  uint       `json:"assignment"`
	Score       float64    `json:"score"`
	MaxPoints   int        `json:"maxPoints"`
	Percentage  int        `json:"percentage"`
	SubmittedAt time.Time  `json:"submittedAt"`
	GradedAt    *time.Time `json:"gradedAt"`
}

// Performance is the per-(student, course) grade summary. It is derived from
// the submission tables and is always written as a whole.
type Performance struct {
	ID                   uint                                `json:"-" gorm:"primaryKey"`
	StudentID            uint                                `json:"student" gorm:"uniqueIndex:idx_performance_student_course;not null"`
	CourseID             uint                                `json:"course" gorm:"uniqueIndex:idx_performance_student_course;index;not null"`
	OverallGrade         int                                 `json:"overallGrade"`
	TotalQuizzes         int                                 `json:"totalQuizzes"`
	TotalTests           int                                 `json:"totalTests"`
	TotalAssignments     int                                 `json:"totalAssignments"`
	CompletedQuizzes     int                                 `json:"completedQuizzes"`
	CompletedTests       int                                 `json:"completedTests"`
	CompletedAssignments int                                 `json:"completedAssignments"`
	QuizScores           datatypes.JSONSlice[QuizScore]       `json:"quizScores"`
	TestScores           datatypes.JSONSlice[TestScore]       `json:"testScores"`
	AssignmentScores     datatypes.JSONSlice[AssignmentScore] `json:"assignmentScores"`
	LastUpdated          time.Time                           `json:"lastUpdated"`
}

// EmptyPerformance is the shape reported for a student with no graded work yet
func EmptyPerformance(studentID, courseID uint) Performance {
	return Performance{
		StudentID:        studentID,
		CourseID:         courseID,
		QuizScores:       datatypes.JSONSlice[QuizScore]{},
		TestScores:       datatypes.JSONSlice[TestScore]{},
		AssignmentScores: datatypes.JSONSlice[AssignmentScore]{},
	}
}
