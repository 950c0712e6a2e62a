package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lms/config"
	controllers "lms/controllers/course"
	"lms/database"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"
	courseRoutes "lms/routers/courseRoutes"
	"lms/services/grading"
)

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testEnv struct {
	app        *fiber.App
	db         database.DbInstance
	instructor string
	student    string
	studentID  uint
	outsider   string
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	config.AppConfig = &config.Config{JWTKey: "test-secret", AggregationTimeout: time.Second}

	db, err := database.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, database.Migrate(db))

	store := database.DbInstance{Db: db}
	database.Database = store

	aggregator := grading.NewAggregator(store, store, store, store, config.AppConfig.AggregationTimeout)
	controllers.InitGrading(grading.NewRecorder(store, store, store, aggregator), grading.NewRebuilder(store, aggregator))

	app := fiber.New()
	courseRoutes.SetupCourseRoutes(app)
	courseRoutes.SetupAdminCourseRoutes(app)

	env := &testEnv{app: app, db: store}
	env.instructor, _ = env.user(t, "instructor@example.com", models.RoleInstructor)
	env.student, env.studentID = env.user(t, "student@example.com", models.RoleStudent)
	env.outsider, _ = env.user(t, "other@example.com", models.RoleStudent)
	return env
}

func (e *testEnv) user(t *testing.T, email, role string) (string, uint) {
	t.Helper()
	u := models.User{Name: email, Email: email, Role: role}
	require.NoError(t, e.db.Db.Create(&u).Error)
	token, err := middleware.GenerateJWT(u.ID, role)
	require.NoError(t, err)
	return token, u.ID
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

// publishedCourse creates and publishes a course owned by the instructor and
// enrolls the student in it
func (e *testEnv) publishedCourse(t *testing.T) uint {
	t.Helper()
	status, res := e.do(t, http.MethodPost, "/admin/course", e.instructor, map[string]interface{}{
		"title": "Linear Algebra", "description": "Vectors and matrices",
	})
	require.Equal(t, http.StatusCreated, status, res.Message)
	course := decode[courseModels.Course](t, res.Data)

	status, res = e.do(t, http.MethodPut, fmt.Sprintf("/admin/course/%d/publish", course.ID), e.instructor, map[string]interface{}{"is_published": true})
	require.Equal(t, http.StatusOK, status, res.Message)

	status, res = e.do(t, http.MethodPost, fmt.Sprintf("/course/%d/enroll", course.ID), e.student, nil)
	require.Equal(t, http.StatusOK, status, res.Message)
	return course.ID
}

func (e *testEnv) publishedQuiz(t *testing.T, courseID uint) uint {
	t.Helper()
	status, res := e.do(t, http.MethodPost, fmt.Sprintf("/admin/course/%d/quiz", courseID), e.instructor, map[string]interface{}{
		"title":         "Warm up",
		"passing_score": 50,
		"questions": []map[string]interface{}{
			{"question": "1+1", "options": []string{"1", "2"}, "correct_answer": 1, "points": 1},
			{"question": "2+2", "options": []string{"4", "5"}, "correct_answer": 0, "points": 3},
		},
	})
	require.Equal(t, http.StatusCreated, status, res.Message)
	quiz := decode[courseModels.Quiz](t, res.Data)
	assert.Equal(t, 4, quiz.TotalPoints)

	status, res = e.do(t, http.MethodPut, fmt.Sprintf("/admin/quiz/%d/publish", quiz.ID), e.instructor, map[string]interface{}{"is_published": true})
	require.Equal(t, http.StatusOK, status, res.Message)
	return quiz.ID
}

func TestSubmitQuizAndReadPerformance(t *testing.T) {
	e := setup(t)
	courseID := e.publishedCourse(t)
	quizID := e.publishedQuiz(t, courseID)

	status, res := e.do(t, http.MethodPost, fmt.Sprintf("/quizzes/%d/submit", quizID), e.student, map[string]interface{}{
		"answers":    []map[string]interface{}{{"selected_answer": 0}, {"selected_answer": 0}},
		"time_spent": 5,
	})
	require.Equal(t, http.StatusCreated, status, res.Message)
	sub := decode[courseModels.QuizSubmission](t, res.Data)
	assert.Equal(t, 3, sub.Score)
	assert.Equal(t, 75, sub.Percentage)
	assert.True(t, sub.Passed)

	status, res = e.do(t, http.MethodPost, fmt.Sprintf("/quizzes/%d/submit", quizID), e.student, map[string]interface{}{
		"answers": []interface{}{},
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Quiz already submitted", res.Message)

	status, res = e.do(t, http.MethodGet, fmt.Sprintf("/quizzes/%d/submission", quizID), e.student, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, sub.ID, decode[courseModels.QuizSubmission](t, res.Data).ID)

	status, res = e.do(t, http.MethodGet, fmt.Sprintf("/performance/course/%d", courseID), e.student, nil)
	require.Equal(t, http.StatusOK, status, res.Message)
	var perf map[string]interface{}
	require.NoError(t, json.Unmarshal(res.Data, &perf))
	assert.EqualValues(t, 75, perf["overallGrade"])
	assert.EqualValues(t, 1, perf["completedQuizzes"])
	assert.EqualValues(t, 1, perf["totalQuizzes"])
	assert.EqualValues(t, courseID, perf["course"])
	assert.Len(t, perf["quizScores"], 1)
	assert.Contains(t, perf, "lastUpdated")

	status, res = e.do(t, http.MethodGet, "/performance/my", e.student, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]courseModels.Performance](t, res.Data), 1)
}

func TestSubmitQuizValidation(t *testing.T) {
	e := setup(t)
	courseID := e.publishedCourse(t)
	quizID := e.publishedQuiz(t, courseID)

	status, res := e.do(t, http.MethodPost, fmt.Sprintf("/quizzes/%d/submit", quizID), e.student, map[string]interface{}{"time_spent": 1})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, decode[map[string]string](t, res.Data), "answers")

	status, _ = e.do(t, http.MethodPost, "/quizzes/abc/submit", e.student, map[string]interface{}{"answers": []interface{}{}})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = e.do(t, http.MethodPost, "/quizzes/9999/submit", e.student, map[string]interface{}{"answers": []interface{}{}})
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = e.do(t, http.MethodPost, fmt.Sprintf("/quizzes/%d/submit", quizID), e.outsider, map[string]interface{}{"answers": []interface{}{}})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = e.do(t, http.MethodPost, fmt.Sprintf("/quizzes/%d/submit", quizID), "", map[string]interface{}{"answers": []interface{}{}})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestPerformanceBeforeAnyGrade(t *testing.T) {
	e := setup(t)
	courseID := e.publishedCourse(t)
	e.publishedQuiz(t, courseID)

	status, res := e.do(t, http.MethodGet, fmt.Sprintf("/performance/course/%d", courseID), e.student, nil)
	require.Equal(t, http.StatusOK, status)
	var perf map[string]interface{}
	require.NoError(t, json.Unmarshal(res.Data, &perf))
	assert.EqualValues(t, 0, perf["overallGrade"])
	assert.Equal(t, []interface{}{}, perf["quizScores"])

	status, _ = e.do(t, http.MethodGet, fmt.Sprintf("/performance/course/%d", courseID), e.outsider, nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestAssignmentGradingFlow(t *testing.T) {
	e := setup(t)
	courseID := e.publishedCourse(t)

	status, res := e.do(t, http.MethodPost, fmt.Sprintf("/admin/course/%d/assignment", courseID), e.instructor, map[string]interface{}{
		"title":      "Proofs",
		"due_date":   time.Now().Add(24 * time.Hour).UTC().Format(time.RFC3339),
		"max_points": 10,
	})
	require.Equal(t, http.StatusCreated, status, res.Message)
	assignment := decode[courseModels.Assignment](t, res.Data)

	status, _ = e.do(t, http.MethodPost, fmt.Sprintf("/assignments/%d/submit", assignment.ID), e.student, map[string]interface{}{"submission_text": "draft"})
	assert.Equal(t, http.StatusBadRequest, status, "unpublished assignment")

	status, _ = e.do(t, http.MethodPut, fmt.Sprintf("/admin/assignment/%d/publish", assignment.ID), e.instructor, map[string]interface{}{"is_published": true})
	require.Equal(t, http.StatusOK, status)

	status, res = e.do(t, http.MethodPost, fmt.Sprintf("/assignments/%d/submit", assignment.ID), e.student, map[string]interface{}{
		"submission_text": "QED",
		"attachments":     []map[string]string{{"filename": "proof.pdf", "url": "https://files.example.com/proof.pdf"}},
	})
	require.Equal(t, http.StatusOK, status, res.Message)
	sub := decode[courseModels.AssignmentSubmission](t, res.Data)
	assert.Equal(t, courseModels.AssignmentSubmitted, sub.Status)

	status, _ = e.do(t, http.MethodPut, fmt.Sprintf("/assignments/submissions/%d/grade", sub.ID), e.student, map[string]interface{}{"score": 5})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = e.do(t, http.MethodPut, fmt.Sprintf("/assignments/submissions/%d/grade", sub.ID), e.instructor, map[string]interface{}{})
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, res = e.do(t, http.MethodPut, fmt.Sprintf("/assignments/submissions/%d/grade", sub.ID), e.instructor, map[string]interface{}{
		"score": 15, "feedback": "Nice",
	})
	require.Equal(t, http.StatusOK, status, res.Message)
	graded := decode[courseModels.AssignmentSubmission](t, res.Data)
	require.NotNil(t, graded.Score)
	assert.Equal(t, 10.0, *graded.Score)
	assert.Equal(t, courseModels.AssignmentGraded, graded.Status)

	status, res = e.do(t, http.MethodGet, fmt.Sprintf("/assignments/%d/submissions", assignment.ID), e.instructor, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]courseModels.AssignmentSubmission](t, res.Data), 1)

	status, res = e.do(t, http.MethodGet, fmt.Sprintf("/performance/course/%d/students", courseID), e.instructor, nil)
	require.Equal(t, http.StatusOK, status)
	perfs := decode[[]courseModels.Performance](t, res.Data)
	require.Len(t, perfs, 1)
	assert.Equal(t, 100, perfs[0].OverallGrade)
	assert.Equal(t, e.studentID, perfs[0].StudentID)

	status, res = e.do(t, http.MethodPost, fmt.Sprintf("/performance/course/%d/rebuild", courseID), e.instructor, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, grading.RebuildResult{Rebuilt: 1}, decode[grading.RebuildResult](t, res.Data))
}

func TestCourseManagementRequiresOwnership(t *testing.T) {
	e := setup(t)
	courseID := e.publishedCourse(t)
	otherInstructor, _ := e.user(t, "second@example.com", models.RoleInstructor)

	status, _ := e.do(t, http.MethodPost, "/admin/course", e.student, map[string]interface{}{"title": "Nope"})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = e.do(t, http.MethodPost, fmt.Sprintf("/admin/course/%d/quiz", courseID), otherInstructor, map[string]interface{}{
		"title":     "Not mine",
		"questions": []map[string]interface{}{{"question": "q", "options": []string{"a", "b"}, "correct_answer": 0}},
	})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = e.do(t, http.MethodGet, fmt.Sprintf("/performance/course/%d/students", courseID), otherInstructor, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, res := e.do(t, http.MethodPost, fmt.Sprintf("/admin/course/%d/quiz", courseID), e.instructor, map[string]interface{}{
		"title":     "Bad key",
		"questions": []map[string]interface{}{{"question": "q", "options": []string{"a", "b"}, "correct_answer": 5}},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, decode[map[string]string](t, res.Data), "questions[0].correct_answer")

	status, _ = e.do(t, http.MethodPost, fmt.Sprintf("/course/%d/enroll", courseID), e.student, nil)
	assert.Equal(t, http.StatusConflict, status)
}

func TestSubmitTestWindow(t *testing.T) {
	e := setup(t)
	courseID := e.publishedCourse(t)

	create := func(start, end time.Time) uint {
		status, res := e.do(t, http.MethodPost, fmt.Sprintf("/admin/course/%d/test", courseID), e.instructor, map[string]interface{}{
			"title":      "Midterm",
			"start_date": start.UTC().Format(time.RFC3339),
			"end_date":   end.UTC().Format(time.RFC3339),
			"questions": []map[string]interface{}{
				{"question": "Pick both", "question_type": "multiple-choice", "correct_answer": []int{1, 2}, "points": 2},
				{"question": "Explain", "question_type": "essay", "points": 2},
			},
		})
		require.Equal(t, http.StatusCreated, status, res.Message)
		test := decode[courseModels.Test](t, res.Data)
		status, _ = e.do(t, http.MethodPut, fmt.Sprintf("/admin/test/%d/publish", test.ID), e.instructor, map[string]interface{}{"is_published": true})
		require.Equal(t, http.StatusOK, status)
		return test.ID
	}

	open := create(time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	closed := create(time.Now().Add(-2*time.Hour), time.Now().Add(-time.Hour))

	status, res := e.do(t, http.MethodPost, fmt.Sprintf("/tests/%d/submit", closed), e.student, map[string]interface{}{"answers": []interface{}{}})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Test is not available at this time", res.Message)

	status, res = e.do(t, http.MethodPost, fmt.Sprintf("/tests/%d/submit", open), e.student, map[string]interface{}{
		"answers": []map[string]interface{}{{"answer": []int{1, 2}}, {"answer": "because"}},
	})
	require.Equal(t, http.StatusCreated, status, res.Message)
	sub := decode[courseModels.TestSubmission](t, res.Data)
	assert.Equal(t, 2, sub.Score)
	assert.Equal(t, 50, sub.Percentage)

	status, _ = e.do(t, http.MethodGet, fmt.Sprintf("/tests/%d/submission", closed), e.student, nil)
	assert.Equal(t, http.StatusNotFound, status)
}
