package database

import (
	"context"
	"lms/models"
	courseModels "lms/models/course"
	"lms/services/grading"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// The methods below back the grading service. Finders return (nil, nil)
// when nothing matches.

func first[T any](tx *gorm.DB, dest *T) (*T, error) {
	if err := tx.First(dest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return dest, nil
}

func (d DbInstance) FindUser(ctx context.Context, id uint) (*models.User, error) {
	return first(d.Db.WithContext(ctx).Where("id = ? AND is_deleted = ?", id, false), &models.User{})
}

func (d DbInstance) FindCourse(ctx context.Context, id uint) (*courseModels.Course, error) {
	return first(d.Db.WithContext(ctx).Where("id = ? AND is_deleted = ?", id, false), &courseModels.Course{})
}

func (d DbInstance) FindQuiz(ctx context.Context, id uint) (*courseModels.Quiz, error) {
	return first(d.Db.WithContext(ctx).Where("id = ? AND is_deleted = ?", id, false), &courseModels.Quiz{})
}

func (d DbInstance) FindTest(ctx context.Context, id uint) (*courseModels.Test, error) {
	return first(d.Db.WithContext(ctx).Where("id = ? AND is_deleted = ?", id, false), &courseModels.Test{})
}

func (d DbInstance) FindAssignment(ctx context.Context, id uint) (*courseModels.Assignment, error) {
	return first(d.Db.WithContext(ctx).Where("id = ? AND is_deleted = ?", id, false), &courseModels.Assignment{})
}

func (d DbInstance) IsEnrolled(ctx context.Context, studentID, courseID uint) (bool, error) {
	var count int64
	err := d.Db.WithContext(ctx).Model(&courseModels.Enrollment{}).
		Where("user_id = ? AND course_id = ? AND is_deleted = ?", studentID, courseID, false).
		Count(&count).Error
	return count > 0, err
}

func (d DbInstance) FindQuizSubmission(ctx context.Context, studentID, quizID uint) (*courseModels.QuizSubmission, error) {
	return first(d.Db.WithContext(ctx).Where("student_id = ? AND quiz_id = ?", studentID, quizID), &courseModels.QuizSubmission{})
}

func (d DbInstance) FindTestSubmission(ctx context.Context, studentID, testID uint) (*courseModels.TestSubmission, error) {
	return first(d.Db.WithContext(ctx).Where("student_id = ? AND test_id = ?", studentID, testID), &courseModels.TestSubmission{})
}

func (d DbInstance) FindAssignmentSubmission(ctx context.Context, id uint) (*courseModels.AssignmentSubmission, error) {
	return first(d.Db.WithContext(ctx).Where("id = ?", id), &courseModels.AssignmentSubmission{})
}

func (d DbInstance) CreateQuizSubmission(ctx context.Context, sub *courseModels.QuizSubmission) error {
	return d.Db.WithContext(ctx).Create(sub).Error
}

func (d DbInstance) CreateTestSubmission(ctx context.Context, sub *courseModels.TestSubmission) error {
	return d.Db.WithContext(ctx).Create(sub).Error
}

// UpsertAssignmentSubmission inserts or replaces the student's work for an
// assignment. Grading fields of an existing row are kept; sub is reloaded
// so the caller sees them.
func (d DbInstance) UpsertAssignmentSubmission(ctx context.Context, sub *courseModels.AssignmentSubmission) error {
	db := d.Db.WithContext(ctx)
	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "student_id"}, {Name: "assignment_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"course_id", "submission_text", "attachments", "submitted_at", "status", "updated_at",
		}),
	}).Create(sub).Error
	if err != nil {
		return err
	}
	var stored courseModels.AssignmentSubmission
	if err := db.Where("student_id = ? AND assignment_id = ?", sub.StudentID, sub.AssignmentID).First(&stored).Error; err != nil {
		return err
	}
	*sub = stored
	return nil
}

func (d DbInstance) SaveAssignmentGrade(ctx context.Context, sub *courseModels.AssignmentSubmission) error {
	return d.Db.WithContext(ctx).Model(sub).Select("score", "feedback", "graded_by", "graded_at", "status", "updated_at").Updates(sub).Error
}

func (d DbInstance) QuizSubmissions(ctx context.Context, studentID, courseID uint) ([]courseModels.QuizSubmission, error) {
	var subs []courseModels.QuizSubmission
	err := d.Db.WithContext(ctx).Where("student_id = ? AND course_id = ?", studentID, courseID).
		Order("submitted_at asc, id asc").Find(&subs).Error
	return subs, err
}

func (d DbInstance) TestSubmissions(ctx context.Context, studentID, courseID uint) ([]courseModels.TestSubmission, error) {
	var subs []courseModels.TestSubmission
	err := d.Db.WithContext(ctx).Where("student_id = ? AND course_id = ?", studentID, courseID).
		Order("submitted_at asc, id asc").Find(&subs).Error
	return subs, err
}

func (d DbInstance) AssignmentSubmissions(ctx context.Context, studentID, courseID uint) ([]courseModels.AssignmentSubmission, error) {
	var subs []courseModels.AssignmentSubmission
	err := d.Db.WithContext(ctx).Where("student_id = ? AND course_id = ?", studentID, courseID).
		Order("submitted_at asc, id asc").Find(&subs).Error
	return subs, err
}

// ListAssignmentSubmissions returns every submission for an assignment, newest first
func (d DbInstance) ListAssignmentSubmissions(ctx context.Context, assignmentID uint) ([]courseModels.AssignmentSubmission, error) {
	var subs []courseModels.AssignmentSubmission
	err := d.Db.WithContext(ctx).Where("assignment_id = ?", assignmentID).
		Order("submitted_at desc, id desc").Find(&subs).Error
	return subs, err
}

func (d DbInstance) CountPublished(ctx context.Context, courseID uint) (grading.PublishedCounts, error) {
	var quizzes, tests, assignments int64
	db := d.Db.WithContext(ctx)

	if err := db.Model(&courseModels.Quiz{}).Where("course_id = ? AND is_published = ? AND is_deleted = ?", courseID, true, false).Count(&quizzes).Error; err != nil {
		return grading.PublishedCounts{}, err
	}
	if err := db.Model(&courseModels.Test{}).Where("course_id = ? AND is_published = ? AND is_deleted = ?", courseID, true, false).Count(&tests).Error; err != nil {
		return grading.PublishedCounts{}, err
	}
	if err := db.Model(&courseModels.Assignment{}).Where("course_id = ? AND is_published = ? AND is_deleted = ?", courseID, true, false).Count(&assignments).Error; err != nil {
		return grading.PublishedCounts{}, err
	}

	return grading.PublishedCounts{
		Quizzes:     int(quizzes),
		Tests:       int(tests),
		Assignments: int(assignments),
	}, nil
}

var performanceColumns = []string{
	"overall_grade",
	"total_quizzes", "total_tests", "total_assignments",
	"completed_quizzes", "completed_tests", "completed_assignments",
	"quiz_scores", "test_scores", "assignment_scores",
	"last_updated",
}

// UpsertPerformance replaces the record for (StudentID, CourseID) in one
// INSERT ... ON CONFLICT statement, so readers never see a partial record.
func (d DbInstance) UpsertPerformance(ctx context.Context, p *courseModels.Performance) (*courseModels.Performance, error) {
	doc := *p
	doc.ID = 0

	err := d.Db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "student_id"}, {Name: "course_id"}},
		DoUpdates: clause.AssignmentColumns(performanceColumns),
	}).Create(&doc).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (d DbInstance) FindPerformance(ctx context.Context, studentID, courseID uint) (*courseModels.Performance, error) {
	return first(d.Db.WithContext(ctx).Where("student_id = ? AND course_id = ?", studentID, courseID), &courseModels.Performance{})
}

// StudentPerformances lists a student's records, most recently updated first
func (d DbInstance) StudentPerformances(ctx context.Context, studentID uint) ([]courseModels.Performance, error) {
	var perfs []courseModels.Performance
	err := d.Db.WithContext(ctx).Where("student_id = ?", studentID).
		Order("last_updated desc").Find(&perfs).Error
	return perfs, err
}

// CoursePerformances lists the records of a course, best grade first
func (d DbInstance) CoursePerformances(ctx context.Context, courseID uint) ([]courseModels.Performance, error) {
	var perfs []courseModels.Performance
	err := d.Db.WithContext(ctx).Where("course_id = ?", courseID).
		Order("overall_grade desc, student_id asc").Find(&perfs).Error
	return perfs, err
}

func (d DbInstance) EnrolledStudents(ctx context.Context, courseID uint) ([]uint, error) {
	var ids []uint
	err := d.Db.WithContext(ctx).Model(&courseModels.Enrollment{}).
		Where("course_id = ? AND is_deleted = ?", courseID, false).
		Order("user_id asc").Pluck("user_id", &ids).Error
	return ids, err
}

// ActiveKeys lists the distinct (student, course) pairs with a submission
// created or changed since the given time
func (d DbInstance) ActiveKeys(ctx context.Context, since time.Time) ([]grading.Key, error) {
	db := d.Db.WithContext(ctx)
	seen := make(map[grading.Key]bool)
	var keys []grading.Key

	for _, model := range []interface{}{
		&courseModels.QuizSubmission{},
		&courseModels.TestSubmission{},
		&courseModels.AssignmentSubmission{},
	} {
		var rows []struct {
			StudentID uint
			CourseID  uint
		}
		tx := db.Model(model).Distinct("student_id", "course_id")
		if !since.IsZero() {
			tx = tx.Where("updated_at >= ?", since)
		}
		if err := tx.Scan(&rows).Error; err != nil {
			return nil, err
		}
		for _, row := range rows {
			key := grading.Key{StudentID: row.StudentID, CourseID: row.CourseID}
			if !seen[key] {
				seen[key] = true
				keys = append(keys, key)
			}
		}
	}
	return keys, nil
}
