package controllers

import (
	"lms/database"
	"lms/middleware"
	validators "lms/validators/course"
	"log"

	"github.com/gofiber/fiber/v2"
)

func SubmitQuiz(c *fiber.Ctx) error {
	user, ok := principal(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	quizID := c.Locals("id").(uint)
	reqData := c.Locals("validatedQuizSubmission").(*validators.SubmitQuizRequest)

	sub, err := recorder.SubmitQuiz(c.UserContext(), user.UserID, quizID, reqData.Answers, reqData.TimeSpent)
	if err != nil {
		return gradingError(c, err, "submit quiz")
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Quiz submitted successfully!", sub)
}

// GetQuizSubmission returns the caller's own submission for a quiz
func GetQuizSubmission(c *fiber.Ctx) error {
	user, ok := principal(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	quizID := c.Locals("id").(uint)

	sub, err := database.Database.FindQuizSubmission(c.UserContext(), user.UserID, quizID)
	if err != nil {
		log.Printf("[GRADING] fetch quiz submission failed: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch submission!", nil)
	}
	if sub == nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Submission not found!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Submission fetched successfully!", sub)
}

func SubmitTest(c *fiber.Ctx) error {
	user, ok := principal(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	testID := c.Locals("id").(uint)
	reqData := c.Locals("validatedTestSubmission").(*validators.SubmitTestRequest)

	sub, err := recorder.SubmitTest(c.UserContext(), user.UserID, testID, reqData.Answers, reqData.TimeSpent)
	if err != nil {
		return gradingError(c, err, "submit test")
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Test submitted successfully!", sub)
}

func GetTestSubmission(c *fiber.Ctx) error {
	user, ok := principal(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	testID := c.Locals("id").(uint)

	sub, err := database.Database.FindTestSubmission(c.UserContext(), user.UserID, testID)
	if err != nil {
		log.Printf("[GRADING] fetch test submission failed: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch submission!", nil)
	}
	if sub == nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Submission not found!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Submission fetched successfully!", sub)
}

func SubmitAssignment(c *fiber.Ctx) error {
	user, ok := principal(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	assignmentID := c.Locals("id").(uint)
	reqData := c.Locals("validatedAssignmentSubmission").(*validators.SubmitAssignmentRequest)

	sub, err := recorder.SubmitAssignment(c.UserContext(), user.UserID, assignmentID, reqData.SubmissionText, reqData.Attachments)
	if err != nil {
		return gradingError(c, err, "submit assignment")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Assignment submitted successfully!", sub)
}

// GetAssignmentSubmissions lists every submission for an assignment, for
// the course owner or an admin
func GetAssignmentSubmissions(c *fiber.Ctx) error {
	user, ok := principal(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	assignmentID := c.Locals("id").(uint)
	ctx := c.UserContext()

	assignment, err := database.Database.FindAssignment(ctx, assignmentID)
	if err != nil {
		log.Printf("[GRADING] fetch assignment failed: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch assignment!", nil)
	}
	if assignment == nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Assignment not found!", nil)
	}

	if _, status, msg := managedCourse(c, user, assignment.CourseID); status != 0 {
		return middleware.JsonResponse(c, status, false, msg, nil)
	}

	subs, err := database.Database.ListAssignmentSubmissions(ctx, assignmentID)
	if err != nil {
		log.Printf("[GRADING] list assignment submissions failed: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch submissions!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Submissions fetched successfully!", subs)
}

func GradeAssignment(c *fiber.Ctx) error {
	user, ok := principal(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	submissionID := c.Locals("submission_id").(uint)
	reqData := c.Locals("validatedGrade").(*validators.GradeAssignmentRequest)

	sub, err := recorder.GradeAssignment(c.UserContext(), user, submissionID, *reqData.Score, reqData.Feedback)
	if err != nil {
		return gradingError(c, err, "grade assignment")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Assignment graded successfully!", sub)
}
