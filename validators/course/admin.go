package courseValidator

import (
	"fmt"
	"lms/middleware"
	"lms/models/course"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// ============ Course Validators ============

type CreateCourseRequest struct {
	Title       string `json:"title" validate:"required,min=3,max=200"`
	Description string `json:"description" validate:"max=5000"`
}

func CreateCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CreateCourseRequest)
		if ok, err := parseBody(c, reqData); !ok {
			return err
		}
		reqData.Title = strings.TrimSpace(reqData.Title)
		reqData.Description = strings.TrimSpace(reqData.Description)

		c.Locals("validatedCourse", reqData)
		return c.Next()
	}
}

type PublishRequest struct {
	IsPublished *bool `json:"is_published" validate:"required"`
}

// Publish validates publish/unpublish toggles for courses and assessments
func Publish() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(PublishRequest)
		if ok, err := parseBody(c, reqData); !ok {
			return err
		}

		c.Locals("validatedPublish", reqData)
		return c.Next()
	}
}

// ============ Assessment Validators ============

type QuizQuestionRequest struct {
	Question      string   `json:"question" validate:"required"`
	Options       []string `json:"options" validate:"required,min=2,dive,required"`
	CorrectAnswer int      `json:"correct_answer" validate:"gte=0"`
	Points        int      `json:"points" validate:"gte=0"`
}

type CreateQuizRequest struct {
	Title        string                `json:"title" validate:"required,min=3,max=200"`
	Description  string                `json:"description" validate:"max=5000"`
	Questions    []QuizQuestionRequest `json:"questions" validate:"required,min=1,dive"`
	TimeLimit    int                   `json:"time_limit" validate:"gte=0"`
	PassingScore int                   `json:"passing_score" validate:"gte=0,lte=100"`
}

// ToQuestions converts the request into stored questions
func (r *CreateQuizRequest) ToQuestions() []course.QuizQuestion {
	questions := make([]course.QuizQuestion, 0, len(r.Questions))
	for _, q := range r.Questions {
		questions = append(questions, course.QuizQuestion{
			Question:      strings.TrimSpace(q.Question),
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			Points:        q.Points,
		})
	}
	return questions
}

func CreateQuiz() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CreateQuizRequest)
		if ok, err := parseBody(c, reqData); !ok {
			return err
		}

		errors := make(map[string]string)
		for i, q := range reqData.Questions {
			if q.CorrectAnswer >= len(q.Options) {
				errors[fmt.Sprintf("questions[%d].correct_answer", i)] = "Correct answer must reference one of the options!"
			}
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedQuiz", reqData)
		return c.Next()
	}
}

type TestQuestionRequest struct {
	Question      string              `json:"question" validate:"required"`
	QuestionType  course.QuestionType `json:"question_type" validate:"required,oneof=multiple-choice true-false short-answer essay"`
	Options       []string            `json:"options"`
	CorrectAnswer course.AnswerValue  `json:"correct_answer"`
	Points        int                 `json:"points" validate:"gte=0"`
	Explanation   string              `json:"explanation"`
}

type CreateTestRequest struct {
	Title        string                `json:"title" validate:"required,min=3,max=200"`
	Description  string                `json:"description" validate:"max=5000"`
	Questions    []TestQuestionRequest `json:"questions" validate:"required,min=1,dive"`
	TimeLimit    int                   `json:"time_limit" validate:"gte=0"`
	PassingScore int                   `json:"passing_score" validate:"gte=0,lte=100"`
	StartDate    time.Time             `json:"start_date"`
	EndDate      time.Time             `json:"end_date"`
}

func (r *CreateTestRequest) ToQuestions() []course.TestQuestion {
	questions := make([]course.TestQuestion, 0, len(r.Questions))
	for _, q := range r.Questions {
		questions = append(questions, course.TestQuestion{
			Question:      strings.TrimSpace(q.Question),
			QuestionType:  q.QuestionType,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			Points:        q.Points,
			Explanation:   q.Explanation,
		})
	}
	return questions
}

func CreateTest() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CreateTestRequest)
		if ok, err := parseBody(c, reqData); !ok {
			return err
		}

		errors := make(map[string]string)
		if reqData.StartDate.IsZero() {
			errors["start_date"] = "start_date is required!"
		}
		if reqData.EndDate.IsZero() {
			errors["end_date"] = "end_date is required!"
		} else if reqData.EndDate.Before(reqData.StartDate) {
			errors["end_date"] = "end_date must not be before start_date!"
		}
		for i, q := range reqData.Questions {
			if q.QuestionType.AutoGraded() && q.CorrectAnswer.IsEmpty() {
				errors[fmt.Sprintf("questions[%d].correct_answer", i)] = "Correct answer is required for auto-graded questions!"
			}
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedTest", reqData)
		return c.Next()
	}
}

type CreateAssignmentRequest struct {
	Title        string              `json:"title" validate:"required,min=3,max=200"`
	Description  string              `json:"description" validate:"max=5000"`
	Instructions string              `json:"instructions" validate:"max=20000"`
	DueDate      time.Time           `json:"due_date"`
	MaxPoints    int                 `json:"max_points" validate:"gte=0"`
	Attachments  []course.Attachment `json:"attachments" validate:"max=20"`
}

func CreateAssignment() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CreateAssignmentRequest)
		if ok, err := parseBody(c, reqData); !ok {
			return err
		}
		if reqData.DueDate.IsZero() {
			return middleware.ValidationErrorResponse(c, map[string]string{"due_date": "due_date is required!"})
		}

		c.Locals("validatedAssignment", reqData)
		return c.Next()
	}
}
