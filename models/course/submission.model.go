package course

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// QuizAnswer is the graded result for one quiz question
type QuizAnswer struct {
	QuestionIndex  int  `json:"question_index"`
	SelectedAnswer *int `json:"selected_answer"`
	IsCorrect      bool `json:"is_correct"`
	PointsEarned   int  `json:"points_earned"`
}

// QuizSubmission is written once, when the student submits, and never changed
type QuizSubmission struct {
	gorm.Model
	StudentID   uint                           `json:"student_id" gorm:"uniqueIndex:idx_quiz_submission_student_quiz;index:idx_quiz_submission_student_course;not null"`
	QuizID      uint                           `json:"quiz_id" gorm:"uniqueIndex:idx_quiz_submission_student_quiz;not null"`
	CourseID    uint                           `json:"course_id" gorm:"index:idx_quiz_submission_student_course;not null"`
	Answers     datatypes.JSONSlice[QuizAnswer] `json:"answers"`
	Score       int                            `json:"score"`
	Percentage  int                            `json:"percentage"`
	Passed      bool                           `json:"passed"`
	TimeSpent   int                            `json:"time_spent"` // minutes
	SubmittedAt time.Time                      `json:"submitted_at"`
}

// TestAnswer is the graded result for one test question
type TestAnswer struct {
	QuestionIndex int         `json:"question_index"`
	Answer        AnswerValue `json:"answer"`
	IsCorrect     bool        `json:"is_correct"`
	PointsEarned  int         `json:"points_earned"`
}

// TestSubmission is written once, when the student submits, and never changed
type TestSubmission struct {
	gorm.Model
	StudentID   uint                           `json:"student_id" gorm:"uniqueIndex:idx_test_submission_student_test;index:idx_test_submission_student_course;not null"`
	TestID      uint                           `json:"test_id" gorm:"uniqueIndex:idx_test_submission_student_test;not null"`
	CourseID    uint                           `json:"course_id" gorm:"index:idx_test_submission_student_course;not null"`
	Answers     datatypes.JSONSlice[TestAnswer] `json:"answers"`
	Score       int                            `json:"score"`
	Percentage  int                            `json:"percentage"`
	Passed      bool                           `json:"passed"`
	TimeSpent   int                            `json:"time_spent"` // minutes
	SubmittedAt time.Time                      `json:"submitted_at"`
}

type AssignmentStatus string

const (
	AssignmentSubmitted AssignmentStatus = "submitted"
	AssignmentLate      AssignmentStatus = "late"
	AssignmentGraded    AssignmentStatus = "graded"
)

// AssignmentSubmission is created without a score and graded later by an instructor
type AssignmentSubmission struct {
	gorm.Model
	StudentID      uint                           `json:"student_id" gorm:"uniqueIndex:idx_assignment_submission_student_assignment;index:idx_assignment_submission_student_course;not null"`
	AssignmentID   uint                           `json:"assignment_id" gorm:"uniqueIndex:idx_assignment_submission_student_assignment;not null"`
	CourseID       uint                           `json:"course_id" gorm:"index:idx_assignment_submission_student_course;not null"`
	SubmissionText string                         `json:"submission_text" gorm:"type:text"`
	Attachments    datatypes.JSONSlice[Attachment] `json:"attachments"`
	Score          *float64                       `json:"score"`
	Feedback       string                         `json:"feedback"`
	GradedBy       *uint                          `json:"graded_by"`
	GradedAt       *time.Time                     `json:"graded_at"`
	SubmittedAt    time.Time                      `json:"submitted_at"`
	Status         AssignmentStatus               `json:"status" gorm:"default:'submitted'"`
}
