package grading

import (
	"context"
	"sync"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	courseModels "lms/models/course"
)

// memStore is an in-memory stand-in for database.DbInstance.
type memStore struct {
	mu sync.Mutex

	nextID         uint
	courses        map[uint]courseModels.Course
	quizzes        map[uint]courseModels.Quiz
	tests          map[uint]courseModels.Test
	assignments    map[uint]courseModels.Assignment
	enrolled       map[Key]bool
	quizSubs       []courseModels.QuizSubmission
	testSubs       []courseModels.TestSubmission
	assignmentSubs []courseModels.AssignmentSubmission
	performances   map[Key]courseModels.Performance

	readDelay     time.Duration
	upsertErr     error
	afterQuizRead func()
	upserts       int
}

func newMemStore() *memStore {
	return &memStore{
		courses:      map[uint]courseModels.Course{},
		quizzes:      map[uint]courseModels.Quiz{},
		tests:        map[uint]courseModels.Test{},
		assignments:  map[uint]courseModels.Assignment{},
		enrolled:     map[Key]bool{},
		performances: map[Key]courseModels.Performance{},
	}
}

func (s *memStore) id() uint {
	s.nextID++
	return s.nextID
}

func (s *memStore) addCourse(instructorID uint) courseModels.Course {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := courseModels.Course{InstructorID: instructorID, IsPublished: true, Status: "ACTIVE"}
	c.ID = s.id()
	s.courses[c.ID] = c
	return c
}

func (s *memStore) addQuiz(q courseModels.Quiz) courseModels.Quiz {
	s.mu.Lock()
	defer s.mu.Unlock()
	q.ID = s.id()
	s.quizzes[q.ID] = q
	return q
}

func (s *memStore) addTest(t courseModels.Test) courseModels.Test {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.id()
	s.tests[t.ID] = t
	return t
}

func (s *memStore) addAssignment(a courseModels.Assignment) courseModels.Assignment {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.id()
	s.assignments[a.ID] = a
	return a
}

func (s *memStore) removeAssignment(id uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.assignments, id)
}

func (s *memStore) enroll(studentID, courseID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enrolled[Key{StudentID: studentID, CourseID: courseID}] = true
}

func (s *memStore) addQuizSubmission(sub courseModels.QuizSubmission) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub.ID = s.id()
	s.quizSubs = append(s.quizSubs, sub)
}

func (s *memStore) addAssignmentSubmission(sub courseModels.AssignmentSubmission) courseModels.AssignmentSubmission {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub.ID = s.id()
	s.assignmentSubs = append(s.assignmentSubs, sub)
	return sub
}

func (s *memStore) wait(ctx context.Context) error {
	if s.readDelay <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.readDelay):
		return nil
	}
}

// AssessmentReader

func (s *memStore) FindCourse(_ context.Context, id uint) (*courseModels.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.courses[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (s *memStore) FindQuiz(_ context.Context, id uint) (*courseModels.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.quizzes[id]
	if !ok {
		return nil, nil
	}
	return &q, nil
}

func (s *memStore) FindTest(_ context.Context, id uint) (*courseModels.Test, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tests[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (s *memStore) FindAssignment(_ context.Context, id uint) (*courseModels.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.assignments[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (s *memStore) IsEnrolled(_ context.Context, studentID, courseID uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enrolled[Key{StudentID: studentID, CourseID: courseID}], nil
}

// SubmissionWriter

func (s *memStore) FindQuizSubmission(_ context.Context, studentID, quizID uint) (*courseModels.QuizSubmission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.quizSubs {
		if sub.StudentID == studentID && sub.QuizID == quizID {
			return &sub, nil
		}
	}
	return nil, nil
}

func (s *memStore) FindTestSubmission(_ context.Context, studentID, testID uint) (*courseModels.TestSubmission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.testSubs {
		if sub.StudentID == studentID && sub.TestID == testID {
			return &sub, nil
		}
	}
	return nil, nil
}

func (s *memStore) FindAssignmentSubmission(_ context.Context, id uint) (*courseModels.AssignmentSubmission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.assignmentSubs {
		if sub.ID == id {
			return &sub, nil
		}
	}
	return nil, nil
}

func (s *memStore) CreateQuizSubmission(_ context.Context, sub *courseModels.QuizSubmission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.quizSubs {
		if existing.StudentID == sub.StudentID && existing.QuizID == sub.QuizID {
			return gorm.ErrDuplicatedKey
		}
	}
	sub.ID = s.id()
	s.quizSubs = append(s.quizSubs, *sub)
	return nil
}

func (s *memStore) CreateTestSubmission(_ context.Context, sub *courseModels.TestSubmission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.testSubs {
		if existing.StudentID == sub.StudentID && existing.TestID == sub.TestID {
			return gorm.ErrDuplicatedKey
		}
	}
	sub.ID = s.id()
	s.testSubs = append(s.testSubs, *sub)
	return nil
}

func (s *memStore) UpsertAssignmentSubmission(_ context.Context, sub *courseModels.AssignmentSubmission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.assignmentSubs {
		if existing.StudentID == sub.StudentID && existing.AssignmentID == sub.AssignmentID {
			existing.CourseID = sub.CourseID
			existing.SubmissionText = sub.SubmissionText
			existing.Attachments = sub.Attachments
			existing.SubmittedAt = sub.SubmittedAt
			existing.Status = sub.Status
			s.assignmentSubs[i] = existing
			*sub = existing
			return nil
		}
	}
	sub.ID = s.id()
	s.assignmentSubs = append(s.assignmentSubs, *sub)
	return nil
}

func (s *memStore) SaveAssignmentGrade(_ context.Context, sub *courseModels.AssignmentSubmission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.assignmentSubs {
		if existing.ID == sub.ID {
			existing.Score = sub.Score
			existing.Feedback = sub.Feedback
			existing.GradedBy = sub.GradedBy
			existing.GradedAt = sub.GradedAt
			existing.Status = sub.Status
			s.assignmentSubs[i] = existing
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// SubmissionReader

func (s *memStore) QuizSubmissions(ctx context.Context, studentID, courseID uint) ([]courseModels.QuizSubmission, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	var out []courseModels.QuizSubmission
	for _, sub := range s.quizSubs {
		if sub.StudentID == studentID && sub.CourseID == courseID {
			out = append(out, sub)
		}
	}
	hook := s.afterQuizRead
	s.mu.Unlock()

	if hook != nil {
		hook()
	}
	return out, nil
}

func (s *memStore) TestSubmissions(ctx context.Context, studentID, courseID uint) ([]courseModels.TestSubmission, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []courseModels.TestSubmission
	for _, sub := range s.testSubs {
		if sub.StudentID == studentID && sub.CourseID == courseID {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (s *memStore) AssignmentSubmissions(ctx context.Context, studentID, courseID uint) ([]courseModels.AssignmentSubmission, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []courseModels.AssignmentSubmission
	for _, sub := range s.assignmentSubs {
		if sub.StudentID == studentID && sub.CourseID == courseID {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (s *memStore) CountPublished(_ context.Context, courseID uint) (PublishedCounts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var counts PublishedCounts
	for _, q := range s.quizzes {
		if q.CourseID == courseID && q.IsPublished {
			counts.Quizzes++
		}
	}
	for _, t := range s.tests {
		if t.CourseID == courseID && t.IsPublished {
			counts.Tests++
		}
	}
	for _, a := range s.assignments {
		if a.CourseID == courseID && a.IsPublished {
			counts.Assignments++
		}
	}
	return counts, nil
}

// PerformanceStore

func (s *memStore) UpsertPerformance(_ context.Context, p *courseModels.Performance) (*courseModels.Performance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.upsertErr != nil {
		return nil, s.upsertErr
	}
	s.upserts++
	doc := *p
	s.performances[Key{StudentID: p.StudentID, CourseID: p.CourseID}] = doc
	return &doc, nil
}

func (s *memStore) FindPerformance(_ context.Context, studentID, courseID uint) (*courseModels.Performance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.performances[Key{StudentID: studentID, CourseID: courseID}]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// KeyLister

func (s *memStore) EnrolledStudents(_ context.Context, courseID uint) ([]uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []uint
	for key := range s.enrolled {
		if key.CourseID == courseID {
			ids = append(ids, key.StudentID)
		}
	}
	return ids, nil
}

func (s *memStore) ActiveKeys(_ context.Context, _ time.Time) ([]Key, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := map[Key]bool{}
	var keys []Key
	add := func(k Key) {
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	for _, sub := range s.quizSubs {
		add(Key{StudentID: sub.StudentID, CourseID: sub.CourseID})
	}
	for _, sub := range s.testSubs {
		add(Key{StudentID: sub.StudentID, CourseID: sub.CourseID})
	}
	for _, sub := range s.assignmentSubs {
		add(Key{StudentID: sub.StudentID, CourseID: sub.CourseID})
	}
	return keys, nil
}

func newTestAggregator(s *memStore, timeout time.Duration) *Aggregator {
	return NewAggregator(s, s, s, s, timeout)
}

func quizQuestions(correct ...int) datatypes.JSONSlice[courseModels.QuizQuestion] {
	questions := make([]courseModels.QuizQuestion, 0, len(correct))
	for _, c := range correct {
		questions = append(questions, courseModels.QuizQuestion{
			Question:      "q",
			Options:       []string{"a", "b", "c", "d"},
			CorrectAnswer: c,
			Points:        1,
		})
	}
	return datatypes.JSONSlice[courseModels.QuizQuestion](questions)
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }
