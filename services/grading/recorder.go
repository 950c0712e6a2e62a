package grading

import (
	"context"
	"log"
	"math"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	courseModels "lms/models/course"
)

// Recorder validates, scores and stores submissions, then refreshes the
// student's Performance record before returning.
type Recorder struct {
	assessments AssessmentReader
	enrollments EnrollmentChecker
	submissions SubmissionWriter
	aggregator  Recomputer
	notifier    GradeNotifier
	now         func() time.Time
}

func NewRecorder(assessments AssessmentReader, enrollments EnrollmentChecker, submissions SubmissionWriter, aggregator Recomputer) *Recorder {
	return &Recorder{
		assessments: assessments,
		enrollments: enrollments,
		submissions: submissions,
		aggregator:  aggregator,
		now:         time.Now,
	}
}

// WithNotifier sets the hook called after an assignment is graded.
func (r *Recorder) WithNotifier(n GradeNotifier) *Recorder {
	r.notifier = n
	return r
}

// refresh recomputes the aggregate. Its failure is logged and never undoes
// the submission that triggered it.
func (r *Recorder) refresh(ctx context.Context, studentID, courseID uint) {
	if _, err := r.aggregator.Recompute(ctx, studentID, courseID); err != nil {
		log.Printf("[GRADING] performance refresh failed student=%d course=%d: %v", studentID, courseID, err)
	}
}

func (r *Recorder) requireEnrollment(ctx context.Context, studentID, courseID uint) error {
	enrolled, err := r.enrollments.IsEnrolled(ctx, studentID, courseID)
	if err != nil {
		return errors.Wrap(err, "check enrollment")
	}
	if !enrolled {
		return newError(KindNotEnrolled, "Not enrolled in this course")
	}
	return nil
}

// SubmitQuiz grades and stores the student's only attempt at a quiz.
func (r *Recorder) SubmitQuiz(ctx context.Context, studentID, quizID uint, answers []QuizAnswerInput, timeSpent int) (*courseModels.QuizSubmission, error) {
	if answers == nil {
		return nil, ValidationError("Answers must be a list")
	}

	quiz, err := r.assessments.FindQuiz(ctx, quizID)
	if err != nil {
		return nil, errors.Wrap(err, "load quiz")
	}
	if quiz == nil {
		return nil, NotFoundError("Quiz not found")
	}
	if !quiz.IsPublished {
		return nil, newError(KindNotPublished, "Quiz is not published")
	}
	if err := r.requireEnrollment(ctx, studentID, quiz.CourseID); err != nil {
		return nil, err
	}

	existing, err := r.submissions.FindQuizSubmission(ctx, studentID, quizID)
	if err != nil {
		return nil, errors.Wrap(err, "check existing quiz submission")
	}
	if existing != nil {
		return nil, newError(KindAlreadySubmitted, "Quiz already submitted")
	}

	results, score := ScoreQuiz(quiz, answers)
	totalPoints := quiz.TotalPoints
	if totalPoints <= 0 {
		totalPoints = courseModels.SumQuizPoints(quiz.Questions)
	}
	percentage := Percentage(float64(score), float64(totalPoints))

	sub := &courseModels.QuizSubmission{
		StudentID:   studentID,
		QuizID:      quiz.ID,
		CourseID:    quiz.CourseID,
		Answers:     datatypes.JSONSlice[courseModels.QuizAnswer](results),
		Score:       score,
		Percentage:  percentage,
		Passed:      percentage >= quiz.PassingScore,
		TimeSpent:   max(timeSpent, 0),
		SubmittedAt: r.now().UTC(),
	}
	if err := r.submissions.CreateQuizSubmission(ctx, sub); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, newError(KindAlreadySubmitted, "Quiz already submitted")
		}
		return nil, errors.Wrap(err, "save quiz submission")
	}

	r.refresh(ctx, studentID, quiz.CourseID)
	return sub, nil
}

// SubmitTest grades and stores the student's only attempt at a test. The
// test must be open at the time of submission.
func (r *Recorder) SubmitTest(ctx context.Context, studentID, testID uint, answers []TestAnswerInput, timeSpent int) (*courseModels.TestSubmission, error) {
	if answers == nil {
		return nil, ValidationError("Answers must be a list")
	}

	test, err := r.assessments.FindTest(ctx, testID)
	if err != nil {
		return nil, errors.Wrap(err, "load test")
	}
	if test == nil {
		return nil, NotFoundError("Test not found")
	}
	if !test.IsPublished {
		return nil, newError(KindNotPublished, "Test is not published")
	}
	now := r.now()
	if !test.Open(now) {
		return nil, newError(KindOutOfWindow, "Test is not available at this time")
	}
	if err := r.requireEnrollment(ctx, studentID, test.CourseID); err != nil {
		return nil, err
	}

	existing, err := r.submissions.FindTestSubmission(ctx, studentID, testID)
	if err != nil {
		return nil, errors.Wrap(err, "check existing test submission")
	}
	if existing != nil {
		return nil, newError(KindAlreadySubmitted, "Test already submitted")
	}

	results, score := ScoreTest(test, answers)
	totalPoints := test.TotalPoints
	if totalPoints <= 0 {
		totalPoints = courseModels.SumTestPoints(test.Questions)
	}
	percentage := Percentage(float64(score), float64(totalPoints))

	sub := &courseModels.TestSubmission{
		StudentID:   studentID,
		TestID:      test.ID,
		CourseID:    test.CourseID,
		Answers:     datatypes.JSONSlice[courseModels.TestAnswer](results),
		Score:       score,
		Percentage:  percentage,
		Passed:      percentage >= test.PassingScore,
		TimeSpent:   max(timeSpent, 0),
		SubmittedAt: now.UTC(),
	}
	if err := r.submissions.CreateTestSubmission(ctx, sub); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, newError(KindAlreadySubmitted, "Test already submitted")
		}
		return nil, errors.Wrap(err, "save test submission")
	}

	r.refresh(ctx, studentID, test.CourseID)
	return sub, nil
}

// SubmitAssignment stores (or replaces) the student's work for an
// assignment. Nothing is graded yet, so the aggregate is left alone.
func (r *Recorder) SubmitAssignment(ctx context.Context, studentID, assignmentID uint, text string, attachments []courseModels.Attachment) (*courseModels.AssignmentSubmission, error) {
	assignment, err := r.assessments.FindAssignment(ctx, assignmentID)
	if err != nil {
		return nil, errors.Wrap(err, "load assignment")
	}
	if assignment == nil {
		return nil, NotFoundError("Assignment not found")
	}
	if !assignment.IsPublished {
		return nil, newError(KindNotPublished, "Assignment is not published")
	}
	if err := r.requireEnrollment(ctx, studentID, assignment.CourseID); err != nil {
		return nil, err
	}

	now := r.now()
	status := courseModels.AssignmentSubmitted
	if now.After(assignment.DueDate) {
		status = courseModels.AssignmentLate
	}
	if attachments == nil {
		attachments = []courseModels.Attachment{}
	}

	sub := &courseModels.AssignmentSubmission{
		StudentID:      studentID,
		AssignmentID:   assignment.ID,
		CourseID:       assignment.CourseID,
		SubmissionText: strings.TrimSpace(text),
		Attachments:    datatypes.JSONSlice[courseModels.Attachment](attachments),
		SubmittedAt:    now.UTC(),
		Status:         status,
	}
	if err := r.submissions.UpsertAssignmentSubmission(ctx, sub); err != nil {
		return nil, errors.Wrap(err, "save assignment submission")
	}
	return sub, nil
}

// GradeAssignment records an instructor's score. The score is capped to
// [0, maxPoints] rather than rejected. Re-grading is allowed.
func (r *Recorder) GradeAssignment(ctx context.Context, grader Principal, submissionID uint, score float64, feedback string) (*courseModels.AssignmentSubmission, error) {
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return nil, ValidationError("Score must be a number")
	}

	sub, err := r.submissions.FindAssignmentSubmission(ctx, submissionID)
	if err != nil {
		return nil, errors.Wrap(err, "load assignment submission")
	}
	if sub == nil {
		return nil, NotFoundError("Submission not found")
	}

	assignment, err := r.assessments.FindAssignment(ctx, sub.AssignmentID)
	if err != nil {
		return nil, errors.Wrap(err, "load assignment")
	}
	if assignment == nil {
		return nil, NotFoundError("Assignment not found")
	}

	c, err := r.assessments.FindCourse(ctx, assignment.CourseID)
	if err != nil {
		return nil, errors.Wrap(err, "load course")
	}
	if c == nil {
		return nil, NotFoundError("Course not found")
	}
	if !CanManageCourse(grader, c) {
		return nil, newError(KindUnauthorized, "Not authorized")
	}

	clamped := math.Min(math.Max(score, 0), float64(assignment.PointsOrDefault()))
	gradedBy := grader.UserID
	gradedAt := r.now().UTC()

	sub.Score = &clamped
	sub.Feedback = strings.TrimSpace(feedback)
	sub.GradedBy = &gradedBy
	sub.GradedAt = &gradedAt
	sub.Status = courseModels.AssignmentGraded

	if err := r.submissions.SaveAssignmentGrade(ctx, sub); err != nil {
		return nil, errors.Wrap(err, "save assignment grade")
	}

	r.refresh(ctx, sub.StudentID, sub.CourseID)

	if r.notifier != nil {
		if err := r.notifier.GradeReleased(ctx, sub, assignment); err != nil {
			log.Printf("[GRADING] grade notification failed submission=%d: %v", sub.ID, err)
		}
	}
	return sub, nil
}
