package quest

import (
	"errors"
	"math/rand"
	"strings"

	"github.com/example/wordquest/pkg/models"
)

// MaxDistractors is the number of wrong options offered next to the answer
const MaxDistractors = 3

// ErrNotEnoughWords is returned when a session is requested for an empty list
var ErrNotEnoughWords = errors.New("add words first")

// Direction says which side of a word is shown and which one is asked for
type Direction string

const (
	// Forward shows English and asks for Russian
	Forward Direction = "en-ru"
	// Reverse shows Russian and asks for English
	Reverse Direction = "ru-en"
)

// ChallengeItem is one word of a quest together with its answer options
type ChallengeItem struct {
	Word      models.WordEntry
	Direction Direction
	Options   []string
}

// Prompt is the side of the word shown to the learner
func (c ChallengeItem) Prompt() string {
	if c.Direction == Forward {
		return c.Word.English
	}
	return c.Word.Russian
}

// Answer is the side of the word the learner has to give
func (c ChallengeItem) Answer() string {
	return answerFor(c.Word, c.Direction)
}

// IsCorrect compares an answer case-insensitively, ignoring surrounding spaces
func (c ChallengeItem) IsCorrect(answer string) bool {
	return strings.EqualFold(strings.TrimSpace(answer), c.Answer())
}

func answerFor(w models.WordEntry, d Direction) string {
	if d == Forward {
		return w.Russian
	}
	return w.English
}

// Session is an ordered set of challenge items
type Session struct {
	Items []ChallengeItem
}

// NewSession builds a shuffled quest over words. Every item gets a random
// direction and up to MaxDistractors distinct wrong options taken from the
// other words.
func NewSession(words []models.WordEntry, rnd *rand.Rand) (*Session, error) {
	if len(words) < 1 {
		return nil, ErrNotEnoughWords
	}

	items := make([]ChallengeItem, 0, len(words))
	for i, w := range words {
		direction := Forward
		if rnd.Intn(2) == 1 {
			direction = Reverse
		}
		answer := answerFor(w, direction)

		// Candidate distractors: distinct answers of the other words
		seen := map[string]bool{strings.ToLower(answer): true}
		candidates := make([]string, 0, len(words)-1)
		for j, other := range words {
			if j == i || other.ID == w.ID {
				continue
			}
			option := answerFor(other, direction)
			key := strings.ToLower(option)
			if option == "" || seen[key] {
				continue
			}
			seen[key] = true
			candidates = append(candidates, option)
		}

		options := append([]string{answer}, sample(candidates, MaxDistractors, rnd)...)
		shuffle(options, rnd)

		items = append(items, ChallengeItem{Word: w, Direction: direction, Options: options})
	}

	shuffle(items, rnd)
	return &Session{Items: items}, nil
}

// sample picks up to n elements without replacement using a partial Fisher-Yates pass
func sample(pool []string, n int, rnd *rand.Rand) []string {
	if n > len(pool) {
		n = len(pool)
	}
	for i := 0; i < n; i++ {
		j := i + rnd.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:n]
}

func shuffle[T any](s []T, rnd *rand.Rand) {
	rnd.Shuffle(len(s), func(i, j int) {
		s[i], s[j] = s[j], s[i]
	})
}
