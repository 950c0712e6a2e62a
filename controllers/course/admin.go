package controllers

import (
	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"
	"lms/services/grading"
	validators "lms/validators/course"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
)

// managedCourse loads a course the caller may manage. On failure the status
// and message to send are returned instead; status is 0 on success.
func managedCourse(c *fiber.Ctx, user grading.Principal, courseID uint) (*courseModels.Course, int, string) {
	course, err := database.Database.FindCourse(c.UserContext(), courseID)
	if err != nil {
		log.Printf("[COURSE] fetch course %d failed: %v", courseID, err)
		return nil, fiber.StatusInternalServerError, "Failed to fetch course!"
	}
	if course == nil {
		return nil, fiber.StatusNotFound, "Course not found!"
	}
	if !grading.CanManageCourse(user, course) {
		return nil, fiber.StatusForbidden, "You do not have permission to manage this course!"
	}
	return course, 0, ""
}

func CreateCourse(c *fiber.Ctx) error {
	user, ok := principal(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData := c.Locals("validatedCourse").(*validators.CreateCourseRequest)

	course := courseModels.Course{
		Title:        reqData.Title,
		Description:  reqData.Description,
		InstructorID: user.UserID,
		Status:       "DRAFT",
	}
	if err := database.Database.Db.WithContext(c.UserContext()).Create(&course).Error; err != nil {
		log.Printf("[COURSE] create course failed: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course created successfully!", course)
}

func PublishCourse(c *fiber.Ctx) error {
	user, ok := principal(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("id").(uint)
	reqData := c.Locals("validatedPublish").(*validators.PublishRequest)

	course, status, msg := managedCourse(c, user, courseID)
	if status != 0 {
		return middleware.JsonResponse(c, status, false, msg, nil)
	}

	course.IsPublished = *reqData.IsPublished
	course.Status = "INACTIVE"
	if course.IsPublished {
		course.Status = "ACTIVE"
	}
	if err := database.Database.Db.WithContext(c.UserContext()).Model(course).
		Select("is_published", "status", "updated_at").Updates(course).Error; err != nil {
		log.Printf("[COURSE] publish course %d failed: %v", courseID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course updated successfully!", course)
}

// ============ Assessments ============

func CreateQuiz(c *fiber.Ctx) error {
	user, ok := principal(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("id").(uint)
	reqData := c.Locals("validatedQuiz").(*validators.CreateQuizRequest)

	if _, status, msg := managedCourse(c, user, courseID); status != 0 {
		return middleware.JsonResponse(c, status, false, msg, nil)
	}

	questions := reqData.ToQuestions()
	quiz := courseModels.Quiz{
		CourseID:     courseID,
		Title:        reqData.Title,
		Description:  reqData.Description,
		Questions:    datatypes.JSONSlice[courseModels.QuizQuestion](questions),
		TotalPoints:  courseModels.SumQuizPoints(questions),
		TimeLimit:    reqData.TimeLimit,
		PassingScore: reqData.PassingScore,
	}
	if err := database.Database.Db.WithContext(c.UserContext()).Create(&quiz).Error; err != nil {
		log.Printf("[COURSE] create quiz failed: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create quiz!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Quiz created successfully!", quiz)
}

func CreateTest(c *fiber.Ctx) error {
	user, ok := principal(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("id").(uint)
	reqData := c.Locals("validatedTest").(*validators.CreateTestRequest)

	if _, status, msg := managedCourse(c, user, courseID); status != 0 {
		return middleware.JsonResponse(c, status, false, msg, nil)
	}

	questions := reqData.ToQuestions()
	test := courseModels.Test{
		CourseID:     courseID,
		Title:        reqData.Title,
		Description:  reqData.Description,
		Questions:    datatypes.JSONSlice[courseModels.TestQuestion](questions),
		TotalPoints:  courseModels.SumTestPoints(questions),
		TimeLimit:    reqData.TimeLimit,
		PassingScore: reqData.PassingScore,
		StartDate:    reqData.StartDate.UTC(),
		EndDate:      reqData.EndDate.UTC(),
	}
	if err := database.Database.Db.WithContext(c.UserContext()).Create(&test).Error; err != nil {
		log.Printf("[COURSE] create test failed: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create test!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Test created successfully!", test)
}

func CreateAssignment(c *fiber.Ctx) error {
	user, ok := principal(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("id").(uint)
	reqData := c.Locals("validatedAssignment").(*validators.CreateAssignmentRequest)

	if _, status, msg := managedCourse(c, user, courseID); status != 0 {
		return middleware.JsonResponse(c, status, false, msg, nil)
	}

	attachments := reqData.Attachments
	if attachments == nil {
		attachments = []courseModels.Attachment{}
	}
	maxPoints := reqData.MaxPoints
	if maxPoints == 0 {
		maxPoints = courseModels.DefaultMaxPoints
	}

	assignment := courseModels.Assignment{
		CourseID:     courseID,
		Title:        reqData.Title,
		Description:  reqData.Description,
		Instructions: reqData.Instructions,
		DueDate:      reqData.DueDate.UTC(),
		MaxPoints:    maxPoints,
		Attachments:  datatypes.JSONSlice[courseModels.Attachment](attachments),
	}
	if err := database.Database.Db.WithContext(c.UserContext()).Create(&assignment).Error; err != nil {
		log.Printf("[COURSE] create assignment failed: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create assignment!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Assignment created successfully!", assignment)
}

// setPublished flips is_published on one assessment row after checking the
// caller manages the course it belongs to
func setPublished(c *fiber.Ctx, model interface{}, id, courseID uint, label string) error {
	user, ok := principal(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData := c.Locals("validatedPublish").(*validators.PublishRequest)

	if _, status, msg := managedCourse(c, user, courseID); status != 0 {
		return middleware.JsonResponse(c, status, false, msg, nil)
	}

	if err := database.Database.Db.WithContext(c.UserContext()).Model(model).
		Where("id = ?", id).Update("is_published", *reqData.IsPublished).Error; err != nil {
		log.Printf("[COURSE] publish %s %d failed: %v", label, id, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update "+label+"!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Updated successfully!", fiber.Map{
		"id":           id,
		"is_published": *reqData.IsPublished,
	})
}

func PublishQuiz(c *fiber.Ctx) error {
	id := c.Locals("id").(uint)
	quiz, err := database.Database.FindQuiz(c.UserContext(), id)
	if err != nil {
		log.Printf("[COURSE] fetch quiz %d failed: %v", id, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch quiz!", nil)
	}
	if quiz == nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quiz not found!", nil)
	}
	return setPublished(c, &courseModels.Quiz{}, id, quiz.CourseID, "quiz")
}

func PublishTest(c *fiber.Ctx) error {
	id := c.Locals("id").(uint)
	test, err := database.Database.FindTest(c.UserContext(), id)
	if err != nil {
		log.Printf("[COURSE] fetch test %d failed: %v", id, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch test!", nil)
	}
	if test == nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Test not found!", nil)
	}
	return setPublished(c, &courseModels.Test{}, id, test.CourseID, "test")
}

func PublishAssignment(c *fiber.Ctx) error {
	id := c.Locals("id").(uint)
	assignment, err := database.Database.FindAssignment(c.UserContext(), id)
	if err != nil {
		log.Printf("[COURSE] fetch assignment %d failed: %v", id, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch assignment!", nil)
	}
	if assignment == nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Assignment not found!", nil)
	}
	return setPublished(c, &courseModels.Assignment{}, id, assignment.CourseID, "assignment")
}
