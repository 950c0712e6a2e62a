package controllers

import (
	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"
	"log"

	"github.com/gofiber/fiber/v2"
)

// GetCoursePerformance returns the caller's record for an enrolled course.
// A student with no graded work yet gets the zero record.
func GetCoursePerformance(c *fiber.Ctx) error {
	user, ok := principal(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("course_id").(uint)
	ctx := c.UserContext()

	course, err := database.Database.FindCourse(ctx, courseID)
	if err != nil {
		log.Printf("[PERFORMANCE] fetch course failed: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch course!", nil)
	}
	if course == nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	enrolled, err := database.Database.IsEnrolled(ctx, user.UserID, courseID)
	if err != nil {
		log.Printf("[PERFORMANCE] check enrollment failed: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch performance!", nil)
	}
	if !enrolled {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Not enrolled in this course!", nil)
	}

	perf, err := database.Database.FindPerformance(ctx, user.UserID, courseID)
	if err != nil {
		log.Printf("[PERFORMANCE] fetch performance failed: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch performance!", nil)
	}
	if perf == nil {
		empty := courseModels.EmptyPerformance(user.UserID, courseID)
		perf = &empty
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Performance fetched successfully!", perf)
}

// GetMyPerformance lists the caller's records across courses, most recent first
func GetMyPerformance(c *fiber.Ctx) error {
	user, ok := principal(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	perfs, err := database.Database.StudentPerformances(c.UserContext(), user.UserID)
	if err != nil {
		log.Printf("[PERFORMANCE] list performances failed: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch performance!", nil)
	}
	if perfs == nil {
		perfs = []courseModels.Performance{}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Performance fetched successfully!", perfs)
}

func GetCourseStudentsPerformance(c *fiber.Ctx) error {
	user, ok := principal(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("course_id").(uint)
	if _, status, msg := managedCourse(c, user, courseID); status != 0 {
		return middleware.JsonResponse(c, status, false, msg, nil)
	}

	perfs, err := database.Database.CoursePerformances(c.UserContext(), courseID)
	if err != nil {
		log.Printf("[PERFORMANCE] list course performances failed: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch performance!", nil)
	}
	if perfs == nil {
		perfs = []courseModels.Performance{}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Performance fetched successfully!", perfs)
}

// RebuildCoursePerformance recomputes the record of every enrolled student
func RebuildCoursePerformance(c *fiber.Ctx) error {
	user, ok := principal(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("course_id").(uint)
	if _, status, msg := managedCourse(c, user, courseID); status != 0 {
		return middleware.JsonResponse(c, status, false, msg, nil)
	}

	result, err := rebuilder.RebuildCourse(c.UserContext(), courseID)
	if err != nil {
		log.Printf("[PERFORMANCE] rebuild course %d failed: %v", courseID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to rebuild performance!", nil)
	}

	log.Printf("[PERFORMANCE] course %d rebuilt by user %d: %d ok, %d failed", courseID, user.UserID, result.Rebuilt, result.Failed)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Performance rebuilt successfully!", result)
}
