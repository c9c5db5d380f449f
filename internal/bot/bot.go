// Package bot is the Telegram chat interface of the trainer. Every chat is an
// independent learner with its own word lists, streak and quest.
package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/wordquest/internal/progress"
	"github.com/example/wordquest/internal/quest"
	"github.com/example/wordquest/internal/storage"
	"github.com/example/wordquest/internal/words"
	"github.com/example/wordquest/pkg/models"
)

// KeyKnownChats lists every chat that ever talked to the bot
const KeyKnownChats = "known_chats"

// Sender is the part of the Telegram API the bot uses
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

// Reminder checks a single chat's streak on demand
type Reminder interface {
	RunManualCheck(ctx context.Context, chatID int64) (bool, error)
	Hour() int
}

// MenuButton represents a button in the menu
type MenuButton struct {
	Text         string
	CallbackData string
}

// createKeyboard creates a keyboard from menu buttons
func createKeyboard(buttons [][]MenuButton) tgbotapi.InlineKeyboardMarkup {
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, row := range buttons {
		var keyboardRow []tgbotapi.InlineKeyboardButton
		for _, button := range row {
			keyboardRow = append(keyboardRow, tgbotapi.NewInlineKeyboardButtonData(button.Text, button.CallbackData))
		}
		keyboard = append(keyboard, keyboardRow)
	}
	return tgbotapi.NewInlineKeyboardMarkup(keyboard...)
}

// inputMode is what the next plain text message of a chat means
type inputMode int

const (
	inputWord inputMode = iota
	inputImport
	inputListName
)

// learner is the state of one chat
type learner struct {
	chatID  int64
	store   *words.Store
	tracker *progress.Tracker
	engine  *quest.Engine

	mu   sync.Mutex
	mode inputMode
	deck *quest.Deck
}

func (l *learner) currentMode() inputMode {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.mode
}

func (l *learner) setInputMode(mode inputMode) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.mode = mode
}

func (l *learner) currentDeck() *quest.Deck {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.deck
}

func (l *learner) setDeck(deck *quest.Deck) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.deck = deck
}

// Bot represents the Telegram bot application
type Bot struct {
	api      Sender
	kv       storage.KV
	resolver words.Resolver
	reminder Reminder
	config   *BotConfig
	client   *http.Client
	logger   *slog.Logger
	now      func() time.Time

	mu       sync.Mutex
	learners map[int64]*learner
}

// New creates a new bot instance. kv is shared by all chats; every chat
// gets its own key prefix.
func New(api Sender, kv storage.KV, resolver words.Resolver, config *BotConfig, logger *slog.Logger) *Bot {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Bot{
		api:      api,
		kv:       kv,
		resolver: resolver,
		config:   config,
		client:   &http.Client{Timeout: config.DownloadTimeout},
		logger:   logger,
		now:      time.Now,
		learners: make(map[int64]*learner),
	}
}

// SetReminder enables the /remind command
func (b *Bot) SetReminder(r Reminder) {
	b.reminder = r
}

// Run handles updates until the channel closes or ctx is done
func (b *Bot) Run(ctx context.Context, updates <-chan tgbotapi.Update) error {
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				b.HandleUpdate(ctx, update)
			}()
		}
	}
}

// HandleUpdate handles one incoming update from Telegram
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	ctx, cancel := context.WithTimeout(ctx, b.config.UpdateTimeout)
	defer cancel()

	switch {
	case update.Message != nil && update.Message.Chat != nil:
		b.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		b.handleCallbackQuery(ctx, update.CallbackQuery)
	}
}

// Close stops all running quests
func (b *Bot) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, l := range b.learners {
		l.engine.Exit()
	}
}

func chatKV(kv storage.KV, chatID int64) storage.KV {
	return storage.WithPrefix(kv, "chat:"+strconv.FormatInt(chatID, 10)+":")
}

// learnerFor returns the chat's state, loading it on first use
func (b *Bot) learnerFor(ctx context.Context, chatID int64) (*learner, error) {
	b.mu.Lock()
	l, ok := b.learners[chatID]
	b.mu.Unlock()
	if ok {
		return l, nil
	}

	logger := b.logger.With("chat_id", chatID)
	kv := chatKV(b.kv, chatID)
	store, err := words.Load(ctx, kv, b.resolver, words.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to load word lists: %w", err)
	}
	tracker, err := progress.Load(ctx, kv, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}

	l = &learner{chatID: chatID, store: store, tracker: tracker}
	l.engine = quest.NewEngine(tracker, store,
		quest.WithDelays(b.config.ChoiceFeedbackDelay, b.config.SpellingFeedbackDelay),
		quest.WithClock(b.now),
		quest.WithLogger(logger),
		quest.WithOnAdvance(func(state quest.State) {
			b.sendQuestState(chatID, state)
		}),
	)

	b.mu.Lock()
	defer b.mu.Unlock()
	if existing, ok := b.learners[chatID]; ok {
		return existing, nil
	}
	if err := b.registerChat(ctx, chatID); err != nil {
		return nil, err
	}
	b.learners[chatID] = l
	return l, nil
}

// registerChat records chatID under KeyKnownChats. Callers hold b.mu.
func (b *Bot) registerChat(ctx context.Context, chatID int64) error {
	var known []int64
	_, err := storage.LoadJSON(ctx, b.kv, KeyKnownChats, &known)
	switch {
	case errors.Is(err, storage.ErrCorrupt):
		b.logger.Warn("known chats are corrupt, starting over", "error", err)
		known = nil
	case err != nil:
		return err
	}
	for _, id := range known {
		if id == chatID {
			return nil
		}
	}
	if err := storage.SaveJSON(ctx, b.kv, KeyKnownChats, append(known, chatID)); err != nil {
		return err
	}
	b.logger.Info("new chat registered", "chat_id", chatID)
	return nil
}

// ChatIDs implements scheduler.ProgressSource
func (b *Bot) ChatIDs(ctx context.Context) ([]int64, error) {
	var known []int64
	if _, err := storage.LoadJSON(ctx, b.kv, KeyKnownChats, &known); err != nil {
		return nil, err
	}
	return known, nil
}

// ChatProgress implements scheduler.ProgressSource
func (b *Bot) ChatProgress(ctx context.Context, chatID int64) (models.UserProgress, error) {
	b.mu.Lock()
	l, ok := b.learners[chatID]
	b.mu.Unlock()
	if ok {
		return l.tracker.Progress(), nil
	}

	tracker, err := progress.Load(ctx, chatKV(b.kv, chatID), b.logger)
	if err != nil {
		return models.UserProgress{}, err
	}
	return tracker.Progress(), nil
}

// SendStreakReminder implements scheduler.Notifier
func (b *Bot) SendStreakReminder(chatID int64, streak int) error {
	text := fmt.Sprintf("🔥 Твоя серия: %d дн. Ответь правильно хотя бы раз сегодня, чтобы её не потерять!", streak)
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = createKeyboard([][]MenuButton{
		{{Text: "🎯 Начать квест", CallbackData: callbackQuestStart}},
	})
	_, err := b.api.Send(msg)
	return err
}

// sendMessage sends msg, logging failures
func (b *Bot) sendMessage(msg tgbotapi.Chattable) {
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("failed to send message", "error", err)
	}
}

func (b *Bot) sendText(chatID int64, text string) {
	b.sendMessage(tgbotapi.NewMessage(chatID, text))
}

// download fetches an uploaded file
func (b *Bot) download(ctx context.Context, fileID string) (io.ReadCloser, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to get file URL: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("failed to download file: status %d", resp.StatusCode)
	}
	return resp.Body, nil
}
