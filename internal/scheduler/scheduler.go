// Package scheduler runs the daily streak reminder.
package scheduler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/example/wordquest/internal/progress"
	"github.com/example/wordquest/pkg/models"
)

// DefaultReminderHour is used when the configured hour is out of range
const DefaultReminderHour = 18

// ProgressSource lists known chats and their streaks
type ProgressSource interface {
	ChatIDs(ctx context.Context) ([]int64, error)
	ChatProgress(ctx context.Context, chatID int64) (models.UserProgress, error)
}

// Notifier interface for sending notifications
type Notifier interface {
	SendStreakReminder(chatID int64, streak int) error
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	source    ProgressSource
	notifier  Notifier
	hour      int
	now       func() time.Time
	logger    *slog.Logger
}

// New creates a scheduler that reminds at hour, local time
func New(source ProgressSource, notifier Notifier, hour int, logger *slog.Logger) *Scheduler {
	if hour < 0 || hour > 23 {
		hour = DefaultReminderHour
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.Local),
		source:    source,
		notifier:  notifier,
		hour:      hour,
		now:       time.Now,
		logger:    logger,
	}
}

// Hour is the local hour the daily reminder runs at
func (s *Scheduler) Hour() int {
	return s.hour
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start() error {
	at := fmt.Sprintf("%02d:00", s.hour)
	if _, err := s.scheduler.Every(1).Day().At(at).Do(func() {
		s.checkAndSendReminders(context.Background())
	}); err != nil {
		return fmt.Errorf("failed to schedule reminders: %w", err)
	}

	s.scheduler.StartAsync()
	s.logger.Info("reminder scheduler started", "at", at)
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// checkAndSendReminders notifies every chat whose streak ends today
// without practice. It returns the number of reminders sent.
func (s *Scheduler) checkAndSendReminders(ctx context.Context) int {
	chatIDs, err := s.source.ChatIDs(ctx)
	if err != nil {
		s.logger.Error("failed to list chats for reminders", "error", err)
		return 0
	}

	today := s.now()
	sent := 0
	for _, chatID := range chatIDs {
		p, err := s.source.ChatProgress(ctx, chatID)
		if err != nil {
			s.logger.Error("failed to load progress", "chat_id", chatID, "error", err)
			continue
		}
		if !progress.StreakAtRisk(p, today) {
			continue
		}
		if err := s.notifier.SendStreakReminder(chatID, p.Streak); err != nil {
			s.logger.Error("failed to send reminder", "chat_id", chatID, "error", err)
			continue
		}
		sent++
	}

	s.logger.Info("streak reminders sent", "chats", len(chatIDs), "sent", sent)
	return sent
}

// RunManualCheck forces a check for a specific chat
func (s *Scheduler) RunManualCheck(ctx context.Context, chatID int64) (bool, error) {
	p, err := s.source.ChatProgress(ctx, chatID)
	if err != nil {
		return false, err
	}
	if !progress.StreakAtRisk(p, s.now()) {
		return false, nil
	}
	return true, s.notifier.SendStreakReminder(chatID, p.Streak)
}
