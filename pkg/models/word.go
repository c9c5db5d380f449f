package models

import "time"

// MasteryThreshold is the number of correct spellings after which a word counts as mastered
const MasteryThreshold = 3

// WordEntry represents an English word with its Russian translation
type WordEntry struct {
	ID           string    `json:"id"`
	English      string    `json:"english"`
	Russian      string    `json:"russian"`
	CreatedAt    time.Time `json:"created_at"`
	MasteryCount int       `json:"mastery_count"` // Correct spelling answers in quest mode
}

// IsMastered reports whether the word reached the mastery threshold
func (w WordEntry) IsMastered() bool {
	return w.MasteryCount >= MasteryThreshold
}

// WordList is a named collection of words, newest first
type WordList struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Words []WordEntry `json:"words"`
}

// Clone returns a deep copy of the list
func (l WordList) Clone() WordList {
	words := make([]WordEntry, len(l.Words))
	copy(words, l.Words)
	l.Words = words
	return l
}
