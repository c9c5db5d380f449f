package quest

import (
	"context"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/wordquest/pkg/models"
)

type fakeTimer struct {
	delay   time.Duration
	fn      func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	wasActive := !t.stopped
	t.stopped = true
	return wasActive
}

// manualTimers collects scheduled callbacks until the test fires them
type manualTimers struct {
	timers []*fakeTimer
}

func (m *manualTimers) AfterFunc(d time.Duration, f func()) Timer {
	t := &fakeTimer{delay: d, fn: f}
	m.timers = append(m.timers, t)
	return t
}

func (m *manualTimers) fire() {
	pending := m.timers
	m.timers = nil
	for _, t := range pending {
		if !t.stopped {
			t.stopped = true
			t.fn()
		}
	}
}

type progressRecorder struct {
	days []time.Time
}

func (p *progressRecorder) RecordCorrectAnswer(_ context.Context, today time.Time) (models.UserProgress, error) {
	p.days = append(p.days, today)
	return models.UserProgress{Streak: 1, TotalCorrect: len(p.days)}, nil
}

type masteryRecorder struct {
	ids []string
}

func (m *masteryRecorder) IncrementMastery(_ context.Context, wordID string) error {
	m.ids = append(m.ids, wordID)
	return nil
}

type fixture struct {
	engine   *Engine
	timers   *manualTimers
	progress *progressRecorder
	mastery  *masteryRecorder
	advanced []State
}

func newFixture() *fixture {
	f := &fixture{
		timers:   &manualTimers{},
		progress: &progressRecorder{},
		mastery:  &masteryRecorder{},
	}
	today := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)
	f.engine = NewEngine(f.progress, f.mastery,
		WithRand(rand.New(rand.NewSource(1))),
		WithAfterFunc(f.timers.AfterFunc),
		WithDelays(800*time.Millisecond, time.Second),
		WithClock(func() time.Time { return today }),
		WithOnAdvance(func(s State) { f.advanced = append(f.advanced, s) }),
	)
	return f
}

func wrongOption(item ChallengeItem) string {
	for _, o := range item.Options {
		if o != item.Answer() {
			return o
		}
	}
	return "definitely wrong"
}

func TestEngine_StartRequiresWords(t *testing.T) {
	f := newFixture()

	_, err := f.engine.Start(nil)
	assert.ErrorIs(t, err, ErrNotEnoughWords)

	_, ok := f.engine.State()
	assert.False(t, ok)
}

func TestEngine_ChoiceThenSpelling(t *testing.T) {
	f := newFixture()
	state, err := f.engine.Start(testWords())
	require.NoError(t, err)
	assert.Equal(t, StepChoice, state.Step)
	assert.Equal(t, 0, state.Index)
	assert.Equal(t, len(testWords()), state.Total)
	item := state.Item

	// wrong choice: stay, no progress
	state, err = f.engine.Choose(wrongOption(item))
	require.NoError(t, err)
	assert.Equal(t, FeedbackIncorrect, state.Feedback)
	assert.Equal(t, StepChoice, state.Step)

	// correct choice: feedback now, spelling after the delay
	state, err = f.engine.Choose(item.Answer())
	require.NoError(t, err)
	assert.Equal(t, FeedbackCorrect, state.Feedback)
	assert.True(t, state.Pending)
	assert.Equal(t, StepChoice, state.Step)

	_, err = f.engine.Choose(item.Answer())
	assert.ErrorIs(t, err, ErrTransitionPending)

	assert.Empty(t, f.progress.days)
	assert.Empty(t, f.mastery.ids)

	f.timers.fire()
	state, _ = f.engine.State()
	assert.Equal(t, StepSpelling, state.Step)
	assert.Equal(t, FeedbackNone, state.Feedback)
	require.Len(t, f.advanced, 1)
	assert.Equal(t, StepSpelling, f.advanced[0].Step)

	// wrong spelling: stay, no progress
	state, err = f.engine.Spell(context.Background(), "nope")
	require.NoError(t, err)
	assert.Equal(t, FeedbackIncorrect, state.Feedback)
	assert.Empty(t, f.progress.days)

	// correct spelling, any casing and padding
	state, err = f.engine.Spell(context.Background(), "  "+strings.ToUpper(item.Answer())+" ")
	require.NoError(t, err)
	assert.Equal(t, FeedbackCorrect, state.Feedback)
	assert.Len(t, f.progress.days, 1)
	assert.Equal(t, []string{item.Word.ID}, f.mastery.ids)
	assert.Equal(t, item.Word.MasteryCount+1, state.Item.Word.MasteryCount)

	f.timers.fire()
	state, _ = f.engine.State()
	assert.Equal(t, StepChoice, state.Step)
	assert.Equal(t, 1, state.Index)
	assert.NotEqual(t, item.Word.ID, state.Item.Word.ID)
}

func TestEngine_CompletesAfterOnePass(t *testing.T) {
	f := newFixture()
	words := testWords()[:3]
	_, err := f.engine.Start(words)
	require.NoError(t, err)

	for i := 0; i < len(words); i++ {
		state, _ := f.engine.State()
		require.Equal(t, StepChoice, state.Step)
		_, err := f.engine.Choose(state.Item.Answer())
		require.NoError(t, err)
		f.timers.fire()
		_, err = f.engine.Spell(context.Background(), state.Item.Answer())
		require.NoError(t, err)
		f.timers.fire()
	}

	state, ok := f.engine.State()
	assert.True(t, ok)
	assert.Equal(t, StepComplete, state.Step)
	assert.Equal(t, len(words), state.Index)
	assert.Len(t, f.mastery.ids, len(words))
	assert.Len(t, f.progress.days, len(words))

	_, err = f.engine.Choose("anything")
	assert.ErrorIs(t, err, ErrSessionComplete)

	last := f.advanced[len(f.advanced)-1]
	assert.Equal(t, StepComplete, last.Step)
}

func TestEngine_ChoiceAloneDoesNotCountMastery(t *testing.T) {
	f := newFixture()
	state, err := f.engine.Start(testWords())
	require.NoError(t, err)

	_, err = f.engine.Choose(state.Item.Answer())
	require.NoError(t, err)
	f.timers.fire()

	assert.Empty(t, f.mastery.ids)
	assert.Empty(t, f.progress.days)
}

func TestEngine_WrongStepAndEmptyInput(t *testing.T) {
	f := newFixture()

	_, err := f.engine.Choose("x")
	assert.ErrorIs(t, err, ErrNoSession)

	state, err := f.engine.Start(testWords())
	require.NoError(t, err)

	_, err = f.engine.Spell(context.Background(), state.Item.Answer())
	assert.ErrorIs(t, err, ErrWrongStep)

	_, err = f.engine.Choose("  ")
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = f.engine.Choose(state.Item.Answer())
	require.NoError(t, err)
	f.timers.fire()

	_, err = f.engine.Spell(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyInput)
	assert.Empty(t, f.progress.days)
}

func TestEngine_IncorrectFeedbackClears(t *testing.T) {
	f := newFixture()
	state, err := f.engine.Start(testWords())
	require.NoError(t, err)

	_, err = f.engine.Choose(wrongOption(state.Item))
	require.NoError(t, err)
	require.Len(t, f.timers.timers, 1)
	assert.Equal(t, 800*time.Millisecond, f.timers.timers[0].delay)

	f.timers.fire()
	state, _ = f.engine.State()
	assert.Equal(t, FeedbackNone, state.Feedback)
	assert.Equal(t, StepChoice, state.Step)
	assert.Empty(t, f.advanced)
}

func TestEngine_ExitCancelsPendingTransition(t *testing.T) {
	f := newFixture()
	state, err := f.engine.Start(testWords())
	require.NoError(t, err)

	_, err = f.engine.Choose(state.Item.Answer())
	require.NoError(t, err)
	require.Len(t, f.timers.timers, 1)
	pending := f.timers.timers[0]

	f.engine.Exit()
	assert.True(t, pending.stopped)

	// a callback that slipped through must not touch the discarded session
	pending.fn()

	state, ok := f.engine.State()
	assert.False(t, ok)
	assert.Equal(t, StepIdle, state.Step)
	assert.Empty(t, f.advanced)
}

func TestEngine_RestartIgnoresStaleTimers(t *testing.T) {
	f := newFixture()
	state, err := f.engine.Start(testWords())
	require.NoError(t, err)
	_, err = f.engine.Choose(state.Item.Answer())
	require.NoError(t, err)
	stale := f.timers.timers[0]

	_, err = f.engine.Start(testWords())
	require.NoError(t, err)
	stale.fn()

	state, _ = f.engine.State()
	assert.Equal(t, StepChoice, state.Step)
	assert.Equal(t, 0, state.Index)
	assert.False(t, state.Pending)
}

func TestEngine_RealTimers(t *testing.T) {
	advanced := make(chan State, 1)
	e := NewEngine(&progressRecorder{}, &masteryRecorder{},
		WithDelays(5*time.Millisecond, 5*time.Millisecond),
		WithOnAdvance(func(s State) { advanced <- s }),
	)
	state, err := e.Start(testWords()[:2])
	require.NoError(t, err)

	_, err = e.Choose(state.Item.Answer())
	require.NoError(t, err)

	select {
	case s := <-advanced:
		assert.Equal(t, StepSpelling, s.Step)
	case <-time.After(2 * time.Second):
		t.Fatal("transition to spelling did not happen")
	}
}
