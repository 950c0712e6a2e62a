package utils

import (
	"context"
	"log"
	"time"

	"github.com/jinzhu/now"
	"github.com/robfig/cron/v3"
)

// RebuildWindowStart is the start of the previous day, so a sweep that runs
// shortly after midnight still covers the whole day before it
func RebuildWindowStart(at time.Time) time.Time {
	return now.With(at).BeginningOfDay().AddDate(0, 0, -1)
}

// InitializePerformanceScheduler recomputes the records with recent
// submission activity on the given cron spec. It returns the started cron so
// the caller can stop it on shutdown.
func InitializePerformanceScheduler(spec string, rebuild func(ctx context.Context, since time.Time) error) (*cron.Cron, error) {
	log.Println("[PERFORMANCE-SCHEDULER] Initializing performance scheduler...")

	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		since := RebuildWindowStart(time.Now())
		log.Printf("[PERFORMANCE-SCHEDULER] Rebuilding records active since %s", since.Format(time.RFC3339))
		if err := rebuild(context.Background(), since); err != nil {
			log.Printf("[PERFORMANCE-SCHEDULER] Rebuild failed: %v", err)
		}
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	log.Printf("[PERFORMANCE-SCHEDULER] Performance scheduler started - schedule %q", spec)
	return c, nil
}
