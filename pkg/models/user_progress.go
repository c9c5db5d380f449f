package models

// DateLayout is the calendar date format used for LastActiveDate
const DateLayout = "2006-01-02"

// UserProgress tracks the learner's daily streak and correct answers
type UserProgress struct {
	Streak         int    `json:"streak"`
	LastActiveDate string `json:"last_active_date"` // Calendar date of the last correct answer
	TotalCorrect   int    `json:"total_correct"`
}
