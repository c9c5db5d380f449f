package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/wordquest/pkg/models"
)

type fakeSource struct {
	progress map[int64]models.UserProgress
	failing  map[int64]bool
	listErr  error
}

func (f *fakeSource) ChatIDs(context.Context) ([]int64, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	ids := make([]int64, 0, len(f.progress))
	for id := range f.progress {
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *fakeSource) ChatProgress(_ context.Context, chatID int64) (models.UserProgress, error) {
	if f.failing[chatID] {
		return models.UserProgress{}, errors.New("storage down")
	}
	return f.progress[chatID], nil
}

type fakeNotifier struct {
	sent map[int64]int
	err  error
}

func (f *fakeNotifier) SendStreakReminder(chatID int64, streak int) error {
	if f.err != nil {
		return f.err
	}
	if f.sent == nil {
		f.sent = make(map[int64]int)
	}
	f.sent[chatID] = streak
	return nil
}

func newTestScheduler(source ProgressSource, notifier Notifier) *Scheduler {
	s := New(source, notifier, 18, nil)
	s.now = func() time.Time { return time.Date(2026, 10, 19, 18, 0, 0, 0, time.UTC) }
	return s
}

func TestCheckAndSendReminders_OnlyAtRiskChats(t *testing.T) {
	source := &fakeSource{
		progress: map[int64]models.UserProgress{
			1: {Streak: 4, LastActiveDate: "2026-10-18"}, // at risk
			2: {Streak: 2, LastActiveDate: "2026-10-19"}, // practised today
			3: {Streak: 3, LastActiveDate: "2026-10-10"}, // already lost
			4: {},                                        // never practised
		},
		failing: map[int64]bool{},
	}
	notifier := &fakeNotifier{}

	sent := newTestScheduler(source, notifier).checkAndSendReminders(context.Background())

	assert.Equal(t, 1, sent)
	assert.Equal(t, map[int64]int{1: 4}, notifier.sent)
}

func TestCheckAndSendReminders_SkipsFailingChats(t *testing.T) {
	source := &fakeSource{
		progress: map[int64]models.UserProgress{
			1: {Streak: 1, LastActiveDate: "2026-10-18"},
			2: {Streak: 5, LastActiveDate: "2026-10-18"},
		},
		failing: map[int64]bool{1: true},
	}
	notifier := &fakeNotifier{}

	sent := newTestScheduler(source, notifier).checkAndSendReminders(context.Background())

	assert.Equal(t, 1, sent)
	assert.Equal(t, map[int64]int{2: 5}, notifier.sent)
}

func TestCheckAndSendReminders_ListError(t *testing.T) {
	source := &fakeSource{listErr: errors.New("boom")}
	notifier := &fakeNotifier{}

	assert.Zero(t, newTestScheduler(source, notifier).checkAndSendReminders(context.Background()))
	assert.Empty(t, notifier.sent)
}

func TestRunManualCheck(t *testing.T) {
	source := &fakeSource{progress: map[int64]models.UserProgress{
		7: {Streak: 2, LastActiveDate: "2026-10-18"},
		8: {Streak: 2, LastActiveDate: "2026-10-19"},
	}}
	notifier := &fakeNotifier{}
	s := newTestScheduler(source, notifier)

	reminded, err := s.RunManualCheck(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, reminded)

	reminded, err = s.RunManualCheck(context.Background(), 8)
	require.NoError(t, err)
	assert.False(t, reminded)
}

func TestNew_ClampsHour(t *testing.T) {
	s := New(&fakeSource{}, &fakeNotifier{}, 30, nil)
	assert.Equal(t, DefaultReminderHour, s.Hour())
	assert.Equal(t, 7, New(&fakeSource{}, &fakeNotifier{}, 7, nil).Hour())
}

func TestStartStop(t *testing.T) {
	s := New(&fakeSource{}, &fakeNotifier{}, 7, nil)
	require.NoError(t, s.Start())
	s.Stop()
}
