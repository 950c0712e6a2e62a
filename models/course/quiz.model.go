package course

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// QuizQuestion is a single-choice question; CorrectAnswer is an index into Options
type QuizQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correct_answer"`
	Points        int      `json:"points"`
}

// Weight returns the points awarded for a correct answer (at least 1).
func (q QuizQuestion) Weight() int {
	if q.Points < 1 {
		return 1
	}
	return q.Points
}

// Quiz is a single-attempt assessment attached to a course
type Quiz struct {
	gorm.Model
	CourseID     uint                             `json:"course_id" gorm:"index;not null"`
	Title        string                           `json:"title"`
	Description  string                           `json:"description"`
	Questions    datatypes.JSONSlice[QuizQuestion] `json:"questions"`
	TotalPoints  int                              `json:"total_points"`
	TimeLimit    int                              `json:"time_limit"`    // minutes
	PassingScore int                              `json:"passing_score"` // percentage
	IsPublished  bool                             `json:"is_published" gorm:"default:false"`
	IsDeleted    bool                             `json:"-" gorm:"default:false"`
}

// SumQuizPoints totals the weights of all questions
func SumQuizPoints(questions []QuizQuestion) int {
	total := 0
	for _, q := range questions {
		total += q.Weight()
	}
	return total
}
