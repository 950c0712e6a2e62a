package grading

import (
	"context"
	"time"

	courseModels "lms/models/course"
)

// Finders in this file return (nil, nil) when the record does not exist.

// AssessmentReader loads the content documents submissions refer to.
type AssessmentReader interface {
	FindCourse(ctx context.Context, id uint) (*courseModels.Course, error)
	FindQuiz(ctx context.Context, id uint) (*courseModels.Quiz, error)
	FindTest(ctx context.Context, id uint) (*courseModels.Test, error)
	AssignmentResolver
}

// AssignmentResolver looks up a live (not deleted) assignment.
type AssignmentResolver interface {
	FindAssignment(ctx context.Context, id uint) (*courseModels.Assignment, error)
}

type EnrollmentChecker interface {
	IsEnrolled(ctx context.Context, studentID, courseID uint) (bool, error)
}

// SubmissionWriter persists graded submissions.
type SubmissionWriter interface {
	FindQuizSubmission(ctx context.Context, studentID, quizID uint) (*courseModels.QuizSubmission, error)
	FindTestSubmission(ctx context.Context, studentID, testID uint) (*courseModels.TestSubmission, error)
	FindAssignmentSubmission(ctx context.Context, id uint) (*courseModels.AssignmentSubmission, error)
	CreateQuizSubmission(ctx context.Context, sub *courseModels.QuizSubmission) error
	CreateTestSubmission(ctx context.Context, sub *courseModels.TestSubmission) error
	UpsertAssignmentSubmission(ctx context.Context, sub *courseModels.AssignmentSubmission) error
	SaveAssignmentGrade(ctx context.Context, sub *courseModels.AssignmentSubmission) error
}

// SubmissionReader lists every submission of one student in one course.
type SubmissionReader interface {
	QuizSubmissions(ctx context.Context, studentID, courseID uint) ([]courseModels.QuizSubmission, error)
	TestSubmissions(ctx context.Context, studentID, courseID uint) ([]courseModels.TestSubmission, error)
	AssignmentSubmissions(ctx context.Context, studentID, courseID uint) ([]courseModels.AssignmentSubmission, error)
}

// PublishedCounts is the number of published items of each kind in a course.
type PublishedCounts struct {
	Quizzes     int
	Tests       int
	Assignments int
}

type PublishedCounter interface {
	CountPublished(ctx context.Context, courseID uint) (PublishedCounts, error)
}

// PerformanceStore holds the aggregate records. UpsertPerformance replaces the
// record for (StudentID, CourseID) as a whole in a single statement.
type PerformanceStore interface {
	UpsertPerformance(ctx context.Context, p *courseModels.Performance) (*courseModels.Performance, error)
	FindPerformance(ctx context.Context, studentID, courseID uint) (*courseModels.Performance, error)
}

// Key identifies one Performance record.
type Key struct {
	StudentID uint
	CourseID  uint
}

// KeyLister enumerates the records a rebuild should visit.
type KeyLister interface {
	EnrolledStudents(ctx context.Context, courseID uint) ([]uint, error)
	ActiveKeys(ctx context.Context, since time.Time) ([]Key, error)
}

// GradeNotifier is told when an assignment grade has been stored.
type GradeNotifier interface {
	GradeReleased(ctx context.Context, sub *courseModels.AssignmentSubmission, assignment *courseModels.Assignment) error
}
