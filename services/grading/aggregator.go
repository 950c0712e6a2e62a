package grading

import (
	"context"
	"hash/fnv"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	courseModels "lms/models/course"
)

const DefaultAggregationTimeout = 5 * time.Second

const lockStripes = 64

// Recomputer rebuilds the Performance record for one key.
type Recomputer interface {
	Recompute(ctx context.Context, studentID, courseID uint) (*courseModels.Performance, error)
}

// Aggregator folds every submission of a student in a course into one
// Performance record. It never patches a stored record: each call re-reads
// the submission tables and replaces the record as a whole.
type Aggregator struct {
	submissions SubmissionReader
	assignments AssignmentResolver
	counts      PublishedCounter
	store       PerformanceStore
	timeout     time.Duration
	now         func() time.Time

	// recomputes of the same key are serialized so a slow reader cannot
	// overwrite a result that was computed from newer submissions
	locks [lockStripes]sync.Mutex
}

func NewAggregator(submissions SubmissionReader, assignments AssignmentResolver, counts PublishedCounter, store PerformanceStore, timeout time.Duration) *Aggregator {
	if timeout <= 0 {
		timeout = DefaultAggregationTimeout
	}
	return &Aggregator{
		submissions: submissions,
		assignments: assignments,
		counts:      counts,
		store:       store,
		timeout:     timeout,
		now:         time.Now,
	}
}

func (a *Aggregator) lockFor(studentID, courseID uint) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(strconv.FormatUint(uint64(studentID), 10)))
	h.Write([]byte{':'})
	h.Write([]byte(strconv.FormatUint(uint64(courseID), 10)))
	return &a.locks[h.Sum32()%lockStripes]
}

type snapshot struct {
	quizzes     []courseModels.QuizSubmission
	tests       []courseModels.TestSubmission
	assignments []courseModels.AssignmentSubmission
	maxPoints   map[uint]int
	counts      PublishedCounts
}

// Recompute re-reads all submissions for (studentID, courseID) and upserts
// the resulting Performance record.
func (a *Aggregator) Recompute(ctx context.Context, studentID, courseID uint) (*courseModels.Performance, error) {
	mu := a.lockFor(studentID, courseID)
	mu.Lock()
	defer mu.Unlock()

	snap, err := a.read(ctx, studentID, courseID)
	if err != nil {
		return nil, err
	}

	perf := fold(studentID, courseID, snap)
	perf.LastUpdated = a.now().UTC()

	saved, err := a.store.UpsertPerformance(ctx, &perf)
	if err != nil {
		return nil, errors.Wrapf(err, "upsert performance student=%d course=%d", studentID, courseID)
	}
	return saved, nil
}

// read gathers the submission sets and published counts concurrently. The
// whole fan-out is bounded by the aggregator timeout.
func (a *Aggregator) read(ctx context.Context, studentID, courseID uint) (*snapshot, error) {
	readCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	snap := &snapshot{}
	g, gctx := errgroup.WithContext(readCtx)

	g.Go(func() error {
		subs, err := a.submissions.QuizSubmissions(gctx, studentID, courseID)
		if err != nil {
			return errors.Wrap(err, "read quiz submissions")
		}
		snap.quizzes = subs
		return nil
	})
	g.Go(func() error {
		subs, err := a.submissions.TestSubmissions(gctx, studentID, courseID)
		if err != nil {
			return errors.Wrap(err, "read test submissions")
		}
		snap.tests = subs
		return nil
	})
	g.Go(func() error {
		subs, err := a.submissions.AssignmentSubmissions(gctx, studentID, courseID)
		if err != nil {
			return errors.Wrap(err, "read assignment submissions")
		}
		snap.assignments = subs
		return nil
	})
	g.Go(func() error {
		counts, err := a.counts.CountPublished(gctx, courseID)
		if err != nil {
			return errors.Wrap(err, "count published items")
		}
		snap.counts = counts
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	maxPoints, err := a.resolveMaxPoints(readCtx, snap.assignments)
	if err != nil {
		return nil, err
	}
	snap.maxPoints = maxPoints
	return snap, nil
}

// resolveMaxPoints looks up the current point value of every assignment that
// was submitted to. Missing assignments resolve to DefaultMaxPoints.
func (a *Aggregator) resolveMaxPoints(ctx context.Context, subs []courseModels.AssignmentSubmission) (map[uint]int, error) {
	maxPoints := make(map[uint]int, len(subs))
	for _, sub := range subs {
		if _, ok := maxPoints[sub.AssignmentID]; ok {
			continue
		}
		assignment, err := a.assignments.FindAssignment(ctx, sub.AssignmentID)
		if err != nil {
			return nil, errors.Wrapf(err, "resolve assignment %d", sub.AssignmentID)
		}
		maxPoints[sub.AssignmentID] = assignment.PointsOrDefault()
	}
	return maxPoints, nil
}

func fold(studentID, courseID uint, snap *snapshot) courseModels.Performance {
	perf := courseModels.EmptyPerformance(studentID, courseID)

	sort.SliceStable(snap.quizzes, func(i, j int) bool {
		return submittedBefore(snap.quizzes[i].SubmittedAt, snap.quizzes[i].ID, snap.quizzes[j].SubmittedAt, snap.quizzes[j].ID)
	})
	sort.SliceStable(snap.tests, func(i, j int) bool {
		return submittedBefore(snap.tests[i].SubmittedAt, snap.tests[i].ID, snap.tests[j].SubmittedAt, snap.tests[j].ID)
	})
	sort.SliceStable(snap.assignments, func(i, j int) bool {
		return submittedBefore(snap.assignments[i].SubmittedAt, snap.assignments[i].ID, snap.assignments[j].SubmittedAt, snap.assignments[j].ID)
	})

	var percentages []int

	for _, sub := range snap.quizzes {
		perf.QuizScores = append(perf.QuizScores, courseModels.QuizScore{
			Quiz:        sub.QuizID,
			Score:       sub.Score,
			Percentage:  sub.Percentage,
			Passed:      sub.Passed,
			SubmittedAt: sub.SubmittedAt,
		})
		percentages = append(percentages, sub.Percentage)
	}

	for _, sub := range snap.tests {
		perf.TestScores = append(perf.TestScores, courseModels.TestScore{
			Test:        sub.TestID,
			Score:       sub.Score,
			Percentage:  sub.Percentage,
			Passed:      sub.Passed,
			SubmittedAt: sub.SubmittedAt,
		})
		percentages = append(percentages, sub.Percentage)
	}

	for _, sub := range snap.assignments {
		maxPoints := snap.maxPoints[sub.AssignmentID]
		if maxPoints <= 0 {
			maxPoints = courseModels.DefaultMaxPoints
		}
		score := 0.0
		percentage := 0
		if sub.Score != nil {
			score = *sub.Score
			percentage = Percentage(score, float64(maxPoints))
		}
		perf.AssignmentScores = append(perf.AssignmentScores, courseModels.AssignmentScore{
			Assignment:  sub.AssignmentID,
			Score:       score,
			MaxPoints:   maxPoints,
			Percentage:  percentage,
			SubmittedAt: sub.SubmittedAt,
			GradedAt:    sub.GradedAt,
		})
		percentages = append(percentages, percentage)
	}

	perf.OverallGrade = OverallGrade(percentages)
	perf.TotalQuizzes = snap.counts.Quizzes
	perf.TotalTests = snap.counts.Tests
	perf.TotalAssignments = snap.counts.Assignments
	perf.CompletedQuizzes = len(perf.QuizScores)
	perf.CompletedTests = len(perf.TestScores)
	perf.CompletedAssignments = len(perf.AssignmentScores)
	return perf
}

// OverallGrade is the rounded mean of the nonzero percentages. A zero counts
// as "not contributing", so a genuine 0% does not pull the mean down.
func OverallGrade(percentages []int) int {
	sum, n := 0, 0
	for _, p := range percentages {
		if p == 0 {
			continue
		}
		sum += p
		n++
	}
	if n == 0 {
		return 0
	}
	return roundHalfUp(float64(sum) / float64(n))
}

func submittedBefore(at time.Time, id uint, otherAt time.Time, otherID uint) bool {
	if !at.Equal(otherAt) {
		return at.Before(otherAt)
	}
	return id < otherID
}
