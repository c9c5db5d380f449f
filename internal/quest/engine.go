// Package quest drives practice sessions over a word list: the scored
// choice-then-spelling quest and unscored flip cards.
package quest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/example/wordquest/pkg/models"
)

// Step is the phase of the current item
type Step string

const (
	StepIdle     Step = "idle"
	StepChoice   Step = "choice"
	StepSpelling Step = "spelling"
	StepComplete Step = "complete"
)

// Feedback is the transient verdict on the last answer
type Feedback string

const (
	FeedbackNone      Feedback = ""
	FeedbackCorrect   Feedback = "correct"
	FeedbackIncorrect Feedback = "incorrect"
)

// Engine errors
var (
	ErrNoSession         = errors.New("no quest in progress")
	ErrWrongStep         = errors.New("answer does not match the current step")
	ErrTransitionPending = errors.New("moving on to the next step")
	ErrSessionComplete   = errors.New("quest is complete")
	ErrEmptyInput        = errors.New("answer is empty")
)

// ProgressRecorder counts correct spelling answers towards the daily streak
type ProgressRecorder interface {
	RecordCorrectAnswer(ctx context.Context, today time.Time) (models.UserProgress, error)
}

// MasteryRecorder increments a word's mastery count
type MasteryRecorder interface {
	IncrementMastery(ctx context.Context, wordID string) error
}

// Timer is a cancellable delayed task
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f to run after d
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// State is a snapshot of the quest
type State struct {
	Step     Step
	Index    int
	Total    int
	Item     ChallengeItem
	Feedback Feedback
	// Pending is set while a correct answer waits for its delayed transition
	Pending bool
}

// Engine is the quest state machine. Idle → Choice(i) → Spelling(i) →
// Choice(i+1) … → Complete. It is safe for concurrent use.
type Engine struct {
	mu sync.Mutex

	progress      ProgressRecorder
	mastery       MasteryRecorder
	rnd           *rand.Rand
	afterFunc     AfterFunc
	now           func() time.Time
	choiceDelay   time.Duration
	spellingDelay time.Duration
	onAdvance     func(State)
	logger        *slog.Logger

	session     *Session
	index       int
	step        Step
	feedback    Feedback
	pending     bool
	generation  uint64 // bumped on start and exit; stale timers compare against it
	feedbackSeq uint64
	timers      []Timer
}

// Option configures an Engine
type Option func(*Engine)

// WithRand fixes the randomness source, e.g. for reproducible sessions
func WithRand(rnd *rand.Rand) Option {
	return func(e *Engine) { e.rnd = rnd }
}

// WithDelays sets how long feedback is shown after a choice and a spelling
func WithDelays(choice, spelling time.Duration) Option {
	return func(e *Engine) {
		e.choiceDelay = choice
		e.spellingDelay = spelling
	}
}

// WithAfterFunc replaces the timer implementation
func WithAfterFunc(f AfterFunc) Option {
	return func(e *Engine) { e.afterFunc = f }
}

// WithClock sets the source of "today" for streak updates
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithOnAdvance registers a callback run after every delayed step change
func WithOnAdvance(f func(State)) Option {
	return func(e *Engine) { e.onAdvance = f }
}

// WithLogger sets the engine logger
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// NewEngine creates an idle engine
func NewEngine(progress ProgressRecorder, mastery MasteryRecorder, opts ...Option) *Engine {
	e := &Engine{
		progress:      progress,
		mastery:       mastery,
		rnd:           rand.New(rand.NewSource(time.Now().UnixNano())),
		afterFunc:     realAfterFunc,
		now:           time.Now,
		choiceDelay:   800 * time.Millisecond,
		spellingDelay: time.Second,
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		step:          StepIdle,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start begins a new quest over words, replacing any running one
func (e *Engine) Start(words []models.WordEntry) (State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	session, err := NewSession(words, e.rnd)
	if err != nil {
		return State{}, err
	}

	e.reset()
	e.session = session
	e.step = StepChoice
	e.logger.Info("quest started", "items", len(session.Items))
	return e.snapshot(), nil
}

// Exit discards the session and cancels pending transitions
func (e *Engine) Exit() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session != nil {
		e.logger.Info("quest exited", "index", e.index, "total", len(e.session.Items))
	}
	e.reset()
}

// State returns the current snapshot and whether a session exists
func (e *Engine) State() (State, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot(), e.session != nil
}

// Choose answers the multiple-choice step. A correct option moves on to
// spelling after the choice delay; a wrong one can be retried.
func (e *Engine) Choose(option string) (State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.accepting(StepChoice); err != nil {
		return e.snapshot(), err
	}
	if strings.TrimSpace(option) == "" {
		return e.snapshot(), ErrEmptyInput
	}

	item := e.session.Items[e.index]
	if !strings.EqualFold(option, item.Answer()) {
		answersTotal.WithLabelValues(string(StepChoice), string(FeedbackIncorrect)).Inc()
		e.showIncorrect()
		return e.snapshot(), nil
	}

	answersTotal.WithLabelValues(string(StepChoice), string(FeedbackCorrect)).Inc()
	e.feedback = FeedbackCorrect
	e.pending = true
	e.schedule(e.choiceDelay, func() bool {
		e.step = StepSpelling
		e.feedback = FeedbackNone
		e.pending = false
		return true
	})
	return e.snapshot(), nil
}

// Spell answers the spelling step. A correct answer counts towards the
// streak and the word's mastery, then the quest moves to the next item.
func (e *Engine) Spell(ctx context.Context, input string) (State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.accepting(StepSpelling); err != nil {
		return e.snapshot(), err
	}
	if strings.TrimSpace(input) == "" {
		return e.snapshot(), ErrEmptyInput
	}

	item := &e.session.Items[e.index]
	if !item.IsCorrect(input) {
		answersTotal.WithLabelValues(string(StepSpelling), string(FeedbackIncorrect)).Inc()
		e.showIncorrect()
		return e.snapshot(), nil
	}

	answersTotal.WithLabelValues(string(StepSpelling), string(FeedbackCorrect)).Inc()
	if _, err := e.progress.RecordCorrectAnswer(ctx, e.now()); err != nil {
		e.logger.Error("failed to record correct answer", "error", err)
	}
	if err := e.mastery.IncrementMastery(ctx, item.Word.ID); err != nil {
		e.logger.Error("failed to increment mastery", "word_id", item.Word.ID, "error", err)
	}
	item.Word.MasteryCount++

	e.feedback = FeedbackCorrect
	e.pending = true
	e.schedule(e.spellingDelay, func() bool {
		e.index++
		if e.index >= len(e.session.Items) {
			e.index = len(e.session.Items)
			e.step = StepComplete
			e.logger.Info("quest complete", "items", len(e.session.Items))
		} else {
			e.step = StepChoice
		}
		e.feedback = FeedbackNone
		e.pending = false
		return true
	})
	return e.snapshot(), nil
}

// accepting checks that an answer for step can be taken. Callers hold e.mu.
func (e *Engine) accepting(step Step) error {
	switch {
	case e.session == nil:
		return ErrNoSession
	case e.step == StepComplete:
		return ErrSessionComplete
	case e.pending:
		return ErrTransitionPending
	case e.step != step:
		return ErrWrongStep
	}
	return nil
}

// showIncorrect flags a wrong answer until the feedback delay passes
func (e *Engine) showIncorrect() {
	e.feedback = FeedbackIncorrect
	e.feedbackSeq++
	seq := e.feedbackSeq
	delay := e.choiceDelay
	if e.step == StepSpelling {
		delay = e.spellingDelay
	}
	e.schedule(delay, func() bool {
		if e.feedbackSeq == seq && e.feedback == FeedbackIncorrect {
			e.feedback = FeedbackNone
		}
		return false
	})
}

// schedule runs mutate after d unless the session was replaced or exited.
// When mutate returns true the OnAdvance callback receives the new state.
// Callers hold e.mu.
func (e *Engine) schedule(d time.Duration, mutate func() bool) {
	generation := e.generation
	var timer Timer
	timer = e.afterFunc(d, func() {
		e.mu.Lock()
		if e.generation != generation || e.session == nil {
			e.mu.Unlock()
			return
		}
		e.forget(timer)
		notify := mutate()
		state := e.snapshot()
		onAdvance := e.onAdvance
		e.mu.Unlock()

		if notify && onAdvance != nil {
			onAdvance(state)
		}
	})
	e.timers = append(e.timers, timer)
}

func (e *Engine) forget(timer Timer) {
	for i, t := range e.timers {
		if t == timer {
			e.timers = append(e.timers[:i], e.timers[i+1:]...)
			return
		}
	}
}

// reset cancels timers and drops the session. Callers hold e.mu.
func (e *Engine) reset() {
	for _, t := range e.timers {
		t.Stop()
	}
	e.timers = nil
	e.generation++
	e.session = nil
	e.index = 0
	e.step = StepIdle
	e.feedback = FeedbackNone
	e.pending = false
}

func (e *Engine) snapshot() State {
	if e.session == nil {
		return State{Step: StepIdle}
	}
	state := State{
		Step:     e.step,
		Index:    e.index,
		Total:    len(e.session.Items),
		Feedback: e.feedback,
		Pending:  e.pending,
	}
	if e.index < len(e.session.Items) {
		item := e.session.Items[e.index]
		item.Options = append([]string(nil), item.Options...)
		state.Item = item
	}
	return state
}
