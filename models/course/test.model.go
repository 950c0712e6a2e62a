package course

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple-choice"
	QuestionTrueFalse      QuestionType = "true-false"
	QuestionShortAnswer    QuestionType = "short-answer"
	QuestionEssay          QuestionType = "essay"
)

// AutoGraded reports whether answers of this type are scored on submission.
func (t QuestionType) AutoGraded() bool {
	return t == QuestionMultipleChoice || t == QuestionTrueFalse
}

func (t QuestionType) Valid() bool {
	switch t {
	case QuestionMultipleChoice, QuestionTrueFalse, QuestionShortAnswer, QuestionEssay:
		return true
	}
	return false
}

// TestQuestion is a typed question; the shape of CorrectAnswer depends on QuestionType
type TestQuestion struct {
	Question      string       `json:"question"`
	QuestionType  QuestionType `json:"question_type"`
	Options       []string     `json:"options"`
	CorrectAnswer AnswerValue  `json:"correct_answer"`
	Points        int          `json:"points"`
	Explanation   string       `json:"explanation"`
}

func (q TestQuestion) Weight() int {
	if q.Points < 1 {
		return 1
	}
	return q.Points
}

// Test is a scheduled assessment, open only between StartDate and EndDate
type Test struct {
	gorm.Model
	CourseID     uint                             `json:"course_id" gorm:"index;not null"`
	Title        string                           `json:"title"`
	Description  string                           `json:"description"`
	Questions    datatypes.JSONSlice[TestQuestion] `json:"questions"`
	TotalPoints  int                              `json:"total_points"`
	TimeLimit    int                              `json:"time_limit"`    // minutes
	PassingScore int                              `json:"passing_score"` // percentage
	StartDate    time.Time                        `json:"start_date"`
	EndDate      time.Time                        `json:"end_date"`
	IsPublished  bool                             `json:"is_published" gorm:"default:false"`
	IsDeleted    bool                             `json:"-" gorm:"default:false"`
}

// Open reports whether at falls inside the test window, bounds included.
func (t Test) Open(at time.Time) bool {
	return !at.Before(t.StartDate) && !at.After(t.EndDate)
}

func SumTestPoints(questions []TestQuestion) int {
	total := 0
	for _, q := range questions {
		total += q.Weight()
	}
	return total
}
