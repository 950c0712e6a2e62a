package courseValidator

import (
	"lms/models/course"
	"lms/services/grading"

	"github.com/gofiber/fiber/v2"
)

type SubmitQuizRequest struct {
	Answers   []grading.QuizAnswerInput `json:"answers" validate:"required"`
	TimeSpent int                       `json:"time_spent" validate:"gte=0"`
}

type SubmitTestRequest struct {
	Answers   []grading.TestAnswerInput `json:"answers" validate:"required"`
	TimeSpent int                       `json:"time_spent" validate:"gte=0"`
}

type SubmitAssignmentRequest struct {
	SubmissionText string              `json:"submission_text" validate:"max=20000"`
	Attachments    []course.Attachment `json:"attachments" validate:"max=20"`
}

type GradeAssignmentRequest struct {
	Score    *float64 `json:"score" validate:"required"`
	Feedback string   `json:"feedback" validate:"max=5000"`
}

// SubmitQuiz validates a quiz submission. An empty answer list is accepted,
// a missing one is not.
func SubmitQuiz() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(SubmitQuizRequest)
		if ok, err := parseBody(c, reqData); !ok {
			return err
		}

		c.Locals("validatedQuizSubmission", reqData)
		return c.Next()
	}
}

func SubmitTest() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(SubmitTestRequest)
		if ok, err := parseBody(c, reqData); !ok {
			return err
		}

		c.Locals("validatedTestSubmission", reqData)
		return c.Next()
	}
}

func SubmitAssignment() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(SubmitAssignmentRequest)
		if ok, err := parseBody(c, reqData); !ok {
			return err
		}

		c.Locals("validatedAssignmentSubmission", reqData)
		return c.Next()
	}
}

func GradeAssignment() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(GradeAssignmentRequest)
		if ok, err := parseBody(c, reqData); !ok {
			return err
		}

		c.Locals("validatedGrade", reqData)
		return c.Next()
	}
}
