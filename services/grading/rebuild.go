package grading

import (
	"context"
	"log"
	"time"

	"github.com/pkg/errors"
)

// Rebuilder replays the aggregation for many keys. A failed key is logged
// and skipped; the rest still run.
type Rebuilder struct {
	keys       KeyLister
	aggregator Recomputer
}

func NewRebuilder(keys KeyLister, aggregator Recomputer) *Rebuilder {
	return &Rebuilder{keys: keys, aggregator: aggregator}
}

// RebuildResult counts the keys visited by a rebuild.
type RebuildResult struct {
	Rebuilt int `json:"rebuilt"`
	Failed  int `json:"failed"`
}

// RebuildCourse recomputes the record of every student enrolled in courseID.
func (b *Rebuilder) RebuildCourse(ctx context.Context, courseID uint) (RebuildResult, error) {
	students, err := b.keys.EnrolledStudents(ctx, courseID)
	if err != nil {
		return RebuildResult{}, errors.Wrapf(err, "list students of course %d", courseID)
	}
	keys := make([]Key, 0, len(students))
	for _, studentID := range students {
		keys = append(keys, Key{StudentID: studentID, CourseID: courseID})
	}
	return b.rebuild(ctx, keys), nil
}

// RebuildActive recomputes every key with submission activity since the
// given time. A zero time visits every key that has submissions.
func (b *Rebuilder) RebuildActive(ctx context.Context, since time.Time) (RebuildResult, error) {
	keys, err := b.keys.ActiveKeys(ctx, since)
	if err != nil {
		return RebuildResult{}, errors.Wrap(err, "list active keys")
	}
	return b.rebuild(ctx, keys), nil
}

func (b *Rebuilder) rebuild(ctx context.Context, keys []Key) RebuildResult {
	var result RebuildResult
	for _, key := range keys {
		if ctx.Err() != nil {
			result.Failed += len(keys) - result.Rebuilt - result.Failed
			break
		}
		if _, err := b.aggregator.Recompute(ctx, key.StudentID, key.CourseID); err != nil {
			log.Printf("[PERFORMANCE] rebuild failed student=%d course=%d: %v", key.StudentID, key.CourseID, err)
			result.Failed++
			continue
		}
		result.Rebuilt++
	}
	return result
}
