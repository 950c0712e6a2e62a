package grading

import (
	"math"

	courseModels "lms/models/course"
)

// QuizAnswerInput is one answer as sent by the student. QuestionIndex
// defaults to the answer's position in the list.
type QuizAnswerInput struct {
	QuestionIndex  *int `json:"question_index"`
	SelectedAnswer *int `json:"selected_answer"`
}

type TestAnswerInput struct {
	QuestionIndex *int                     `json:"question_index"`
	Answer        courseModels.AnswerValue `json:"answer"`
}

// ScoreQuizQuestion grades one quiz answer: the selected option index must
// equal the correct one. There is no partial credit.
func ScoreQuizQuestion(q courseModels.QuizQuestion, selected *int) (bool, int) {
	if selected == nil || *selected != q.CorrectAnswer {
		return false, 0
	}
	return true, q.Weight()
}

// ScoreTestQuestion grades one test answer. Only multiple-choice and
// true-false questions are graded here; short-answer and essay answers
// always earn zero until graded by hand.
func ScoreTestQuestion(q courseModels.TestQuestion, submitted courseModels.AnswerValue) (bool, int) {
	if !q.QuestionType.AutoGraded() {
		return false, 0
	}
	if q.CorrectAnswer.IsEmpty() || submitted.IsEmpty() {
		return false, 0
	}
	if !submitted.Equal(q.CorrectAnswer) {
		return false, 0
	}
	return true, q.Weight()
}

// resolveIndex maps answer i to a question index, or -1 when the answer
// should be ignored.
func resolveIndex(explicit *int, position, questions int, seen map[int]bool) int {
	idx := position
	if explicit != nil {
		idx = *explicit
	}
	if idx < 0 || idx >= questions || seen[idx] {
		return -1
	}
	seen[idx] = true
	return idx
}

// ScoreQuiz grades every answer against quiz. Answers pointing at a question
// that does not exist, or at one already answered, are dropped.
func ScoreQuiz(quiz *courseModels.Quiz, answers []QuizAnswerInput) ([]courseModels.QuizAnswer, int) {
	results := make([]courseModels.QuizAnswer, 0, len(answers))
	seen := make(map[int]bool, len(answers))
	score := 0

	for i, answer := range answers {
		idx := resolveIndex(answer.QuestionIndex, i, len(quiz.Questions), seen)
		if idx < 0 {
			continue
		}
		isCorrect, points := ScoreQuizQuestion(quiz.Questions[idx], answer.SelectedAnswer)
		score += points
		results = append(results, courseModels.QuizAnswer{
			QuestionIndex:  idx,
			SelectedAnswer: answer.SelectedAnswer,
			IsCorrect:      isCorrect,
			PointsEarned:   points,
		})
	}
	return results, score
}

func ScoreTest(test *courseModels.Test, answers []TestAnswerInput) ([]courseModels.TestAnswer, int) {
	results := make([]courseModels.TestAnswer, 0, len(answers))
	seen := make(map[int]bool, len(answers))
	score := 0

	for i, answer := range answers {
		idx := resolveIndex(answer.QuestionIndex, i, len(test.Questions), seen)
		if idx < 0 {
			continue
		}
		isCorrect, points := ScoreTestQuestion(test.Questions[idx], answer.Answer)
		score += points
		results = append(results, courseModels.TestAnswer{
			QuestionIndex: idx,
			Answer:        answer.Answer,
			IsCorrect:     isCorrect,
			PointsEarned:  points,
		})
	}
	return results, score
}

// Percentage is round(100 * score / total), or 0 when total is not positive.
func Percentage(score, total float64) int {
	if total <= 0 {
		return 0
	}
	return roundHalfUp(100 * score / total)
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
