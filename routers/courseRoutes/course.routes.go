package courseRoutes

import (
	controllers "lms/controllers/course"
	"lms/middleware"
	"lms/models"
	validators "lms/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes sets up the student-facing course, submission and
// performance routes
func SetupCourseRoutes(app *fiber.App) {
	staff := middleware.RequireRoles(models.RoleInstructor, models.RoleAdmin)

	// Enrollment
	courseGroup := app.Group("/course", middleware.JWTMiddleware)
	courseGroup.Post("/:id/enroll", validators.ParamID("id", "Course ID"), controllers.EnrollInCourse)

	// Quizzes
	quizGroup := app.Group("/quizzes", middleware.JWTMiddleware)
	quizGroup.Post("/:id/submit", validators.ParamID("id", "Quiz ID"), validators.SubmitQuiz(), controllers.SubmitQuiz)
	quizGroup.Get("/:id/submission", validators.ParamID("id", "Quiz ID"), controllers.GetQuizSubmission)

	// Tests
	testGroup := app.Group("/tests", middleware.JWTMiddleware)
	testGroup.Post("/:id/submit", validators.ParamID("id", "Test ID"), validators.SubmitTest(), controllers.SubmitTest)
	testGroup.Get("/:id/submission", validators.ParamID("id", "Test ID"), controllers.GetTestSubmission)

	// Assignments
	assignmentGroup := app.Group("/assignments", middleware.JWTMiddleware)
	assignmentGroup.Post("/:id/submit", validators.ParamID("id", "Assignment ID"), validators.SubmitAssignment(), controllers.SubmitAssignment)
	assignmentGroup.Get("/:id/submissions", staff, validators.ParamID("id", "Assignment ID"), controllers.GetAssignmentSubmissions)
	assignmentGroup.Put("/submissions/:submission_id/grade", staff, validators.ParamID("submission_id", "Submission ID"), validators.GradeAssignment(), controllers.GradeAssignment)

	// Performance
	performanceGroup := app.Group("/performance", middleware.JWTMiddleware)
	performanceGroup.Get("/my", controllers.GetMyPerformance)
	performanceGroup.Get("/course/:course_id", validators.ParamID("course_id", "Course ID"), controllers.GetCoursePerformance)
	performanceGroup.Get("/course/:course_id/students", staff, validators.ParamID("course_id", "Course ID"), controllers.GetCourseStudentsPerformance)
	performanceGroup.Post("/course/:course_id/rebuild", staff, validators.ParamID("course_id", "Course ID"), controllers.RebuildCoursePerformance)
}
