package quest

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/wordquest/pkg/models"
)

func testWords() []models.WordEntry {
	return []models.WordEntry{
		{ID: "1", English: "dog", Russian: "собака"},
		{ID: "2", English: "cat", Russian: "кошка"},
		{ID: "3", English: "bird", Russian: "птица"},
		{ID: "4", English: "fish", Russian: "рыба"},
		{ID: "5", English: "horse", Russian: "лошадь"},
		{ID: "6", English: "cow", Russian: "корова"},
	}
}

func countFold(options []string, s string) int {
	n := 0
	for _, o := range options {
		if strings.EqualFold(o, s) {
			n++
		}
	}
	return n
}

func TestNewSession_Shape(t *testing.T) {
	words := testWords()
	session, err := NewSession(words, rand.New(rand.NewSource(7)))
	require.NoError(t, err)
	require.Len(t, session.Items, len(words))

	seen := map[string]bool{}
	for _, item := range session.Items {
		seen[item.Word.ID] = true
		assert.Equal(t, 1, countFold(item.Options, item.Answer()), "answer must appear exactly once")
		assert.Len(t, item.Options, MaxDistractors+1)

		distinct := map[string]bool{}
		for _, o := range item.Options {
			distinct[strings.ToLower(o)] = true
			// distractors come from the same side as the answer
			if item.Direction == Forward {
				assert.NotEqual(t, item.Word.English, o)
			}
		}
		assert.Len(t, distinct, len(item.Options))
	}
	assert.Len(t, seen, len(words))
}

func TestNewSession_DeterministicWithSeed(t *testing.T) {
	a, err := NewSession(testWords(), rand.New(rand.NewSource(42)))
	require.NoError(t, err)
	b, err := NewSession(testWords(), rand.New(rand.NewSource(42)))
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestNewSession_SingleWord(t *testing.T) {
	session, err := NewSession(testWords()[:1], rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	require.Len(t, session.Items, 1)
	assert.Equal(t, []string{session.Items[0].Answer()}, session.Items[0].Options)
}

func TestNewSession_SharedTranslationsAreDeduplicated(t *testing.T) {
	words := []models.WordEntry{
		{ID: "1", English: "house", Russian: "дом"},
		{ID: "2", English: "home", Russian: "Дом"},
		{ID: "3", English: "cat", Russian: "кошка"},
	}

	for seed := int64(0); seed < 20; seed++ {
		session, err := NewSession(words, rand.New(rand.NewSource(seed)))
		require.NoError(t, err)
		for _, item := range session.Items {
			assert.Equal(t, 1, countFold(item.Options, item.Answer()))
		}
	}
}

func TestNewSession_Empty(t *testing.T) {
	_, err := NewSession(nil, rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, ErrNotEnoughWords)
}

func TestNewSession_BothDirectionsOccur(t *testing.T) {
	words := make([]models.WordEntry, 0, 40)
	for i := 0; i < 40; i++ {
		words = append(words, models.WordEntry{ID: string(rune('a' + i)), English: "w" + string(rune('a'+i)), Russian: "r" + string(rune('a'+i))})
	}
	session, err := NewSession(words, rand.New(rand.NewSource(3)))
	require.NoError(t, err)

	directions := map[Direction]int{}
	for _, item := range session.Items {
		directions[item.Direction]++
	}
	assert.Positive(t, directions[Forward])
	assert.Positive(t, directions[Reverse])
}

func TestChallengeItem_PromptAndAnswer(t *testing.T) {
	w := models.WordEntry{English: "dog", Russian: "собака"}

	forward := ChallengeItem{Word: w, Direction: Forward}
	assert.Equal(t, "dog", forward.Prompt())
	assert.Equal(t, "собака", forward.Answer())
	assert.True(t, forward.IsCorrect("  СОБАКА "))

	reverse := ChallengeItem{Word: w, Direction: Reverse}
	assert.Equal(t, "собака", reverse.Prompt())
	assert.Equal(t, "dog", reverse.Answer())
	assert.False(t, reverse.IsCorrect("cat"))
}
