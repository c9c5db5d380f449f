// Package progress keeps the learner's daily streak and correct answer total.
package progress

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/example/wordquest/internal/storage"
	"github.com/example/wordquest/pkg/models"
)

// Tracker owns the persisted UserProgress
type Tracker struct {
	mu       sync.Mutex
	kv       storage.KV
	progress models.UserProgress
	logger   *slog.Logger
}

// Load restores progress from kv; missing or corrupt data starts from zero
func Load(ctx context.Context, kv storage.KV, logger *slog.Logger) (*Tracker, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	t := &Tracker{kv: kv, logger: logger}

	var p models.UserProgress
	_, err := storage.LoadJSON(ctx, kv, storage.KeyProgress, &p)
	switch {
	case errors.Is(err, storage.ErrCorrupt):
		logger.Warn("stored progress is corrupt, starting over", "error", err)
		p = models.UserProgress{}
	case err != nil:
		return nil, err
	}
	t.progress = sanitize(p)
	return t, nil
}

// Progress returns the current progress
func (t *Tracker) Progress() models.UserProgress {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.progress
}

// RecordCorrectAnswer counts a correct spelling answer given on today
func (t *Tracker) RecordCorrectAnswer(ctx context.Context, today time.Time) (models.UserProgress, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	next := Advance(t.progress, today)
	if err := storage.SaveJSON(ctx, t.kv, storage.KeyProgress, next); err != nil {
		return t.progress, err
	}
	t.progress = next

	t.logger.Debug("correct answer recorded", "streak", next.Streak, "total_correct", next.TotalCorrect)
	return next, nil
}

// Advance applies one correct answer on today to p.
// The streak grows once per calendar day, resets to 1 after a skipped day
// and stays put for further answers on the same day.
func Advance(p models.UserProgress, today time.Time) models.UserProgress {
	todayStr := today.Format(models.DateLayout)
	yesterdayStr := today.AddDate(0, 0, -1).Format(models.DateLayout)

	switch p.LastActiveDate {
	case todayStr:
		// already counted today
	case yesterdayStr:
		p.Streak++
	default:
		p.Streak = 1
	}
	p.LastActiveDate = todayStr
	p.TotalCorrect++
	return p
}

// StreakAtRisk reports whether the streak ends unless the learner answers today
func StreakAtRisk(p models.UserProgress, today time.Time) bool {
	return p.Streak > 0 && p.LastActiveDate == today.AddDate(0, 0, -1).Format(models.DateLayout)
}

func sanitize(p models.UserProgress) models.UserProgress {
	if p.Streak < 0 {
		p.Streak = 0
	}
	if p.TotalCorrect < 0 {
		p.TotalCorrect = 0
	}
	// An active day always counts towards the streak
	if p.LastActiveDate != "" && p.Streak == 0 {
		p.Streak = 1
	}
	return p
}
