package courseRoutes

import (
	controllers "lms/controllers/course"
	"lms/middleware"
	"lms/models"
	validators "lms/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupAdminCourseRoutes sets up course and assessment management for
// instructors and admins
func SetupAdminCourseRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin", middleware.JWTMiddleware, middleware.RequireRoles(models.RoleInstructor, models.RoleAdmin))

	// Courses
	adminGroup.Post("/course", validators.CreateCourse(), controllers.CreateCourse)
	adminGroup.Put("/course/:id/publish", validators.ParamID("id", "Course ID"), validators.Publish(), controllers.PublishCourse)

	// Assessments
	adminGroup.Post("/course/:id/quiz", validators.ParamID("id", "Course ID"), validators.CreateQuiz(), controllers.CreateQuiz)
	adminGroup.Post("/course/:id/test", validators.ParamID("id", "Course ID"), validators.CreateTest(), controllers.CreateTest)
	adminGroup.Post("/course/:id/assignment", validators.ParamID("id", "Course ID"), validators.CreateAssignment(), controllers.CreateAssignment)

	adminGroup.Put("/quiz/:id/publish", validators.ParamID("id", "Quiz ID"), validators.Publish(), controllers.PublishQuiz)
	adminGroup.Put("/test/:id/publish", validators.ParamID("id", "Test ID"), validators.Publish(), controllers.PublishTest)
	adminGroup.Put("/assignment/:id/publish", validators.ParamID("id", "Assignment ID"), validators.Publish(), controllers.PublishAssignment)
}
