package quest

import (
	"sync"

	"github.com/example/wordquest/pkg/models"
)

// Card is the visible state of the flip-card deck
type Card struct {
	Word     models.WordEntry
	Index    int
	Total    int
	Revealed bool
}

// Shown is the side currently facing the learner
func (c Card) Shown() string {
	if c.Revealed {
		return c.Word.Russian
	}
	return c.Word.English
}

// Deck walks a word list as flip cards. It keeps no score and loops forever.
type Deck struct {
	mu       sync.Mutex
	words    []models.WordEntry
	index    int
	revealed bool
}

// NewDeck creates a deck in list order
func NewDeck(words []models.WordEntry) (*Deck, error) {
	if len(words) < 1 {
		return nil, ErrNotEnoughWords
	}
	return &Deck{words: append([]models.WordEntry(nil), words...)}, nil
}

// Current returns the card on top
func (d *Deck) Current() Card {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.card()
}

// Flip shows or hides the translation
func (d *Deck) Flip() Card {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.revealed = !d.revealed
	return d.card()
}

// Next moves to the following word, wrapping around, with the translation hidden
func (d *Deck) Next() Card {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.index = (d.index + 1) % len(d.words)
	d.revealed = false
	return d.card()
}

func (d *Deck) card() Card {
	return Card{
		Word:     d.words[d.index],
		Index:    d.index,
		Total:    len(d.words),
		Revealed: d.revealed,
	}
}
