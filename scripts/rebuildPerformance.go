package main

import (
	"context"
	"flag"
	"lms/config"
	"lms/database"
	"lms/services/grading"
	"log"
	"time"
)

// Recomputes Performance records from the submission tables.
//
//	go run scripts/rebuildPerformance.go                 # every key with submissions
//	go run scripts/rebuildPerformance.go -course 12      # every student enrolled in course 12
//	go run scripts/rebuildPerformance.go -since 2026-01-31
func main() {
	courseID := flag.Uint("course", 0, "rebuild only the students enrolled in this course")
	sinceStr := flag.String("since", "", "rebuild only keys with submissions changed since this date (YYYY-MM-DD)")
	flag.Parse()

	// Load config and connect to database
	config.LoadConfig()
	database.ConnectDb()

	store := database.Database
	aggregator := grading.NewAggregator(store, store, store, store, config.AppConfig.AggregationTimeout)
	rebuilder := grading.NewRebuilder(store, aggregator)

	ctx := context.Background()
	var (
		result grading.RebuildResult
		err    error
	)

	if *courseID > 0 {
		log.Printf("Rebuilding performance for course %d...", *courseID)
		result, err = rebuilder.RebuildCourse(ctx, *courseID)
	} else {
		var since time.Time
		if *sinceStr != "" {
			since, err = time.Parse("2006-01-02", *sinceStr)
			if err != nil {
				log.Fatalf("Invalid -since value %q: %v", *sinceStr, err)
			}
		}
		log.Println("Rebuilding performance for active students...")
		result, err = rebuilder.RebuildActive(ctx, since)
	}
	if err != nil {
		log.Fatalf("Rebuild failed: %v", err)
	}

	log.Printf("Rebuild complete: %d rebuilt, %d failed", result.Rebuilt, result.Failed)
}
