// Package words owns the learner's named word lists and persists them
// through the key-value storage contract.
package words

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/wordquest/internal/storage"
	"github.com/example/wordquest/pkg/models"
)

// Default list created for a new learner
const (
	DefaultListID   = "default"
	DefaultListName = "My First Words"
)

// Resolver translates an English word; it never fails outward
type Resolver interface {
	Resolve(ctx context.Context, word string) models.TranslationResult
}

// ImportResult summarises a bulk import
type ImportResult struct {
	Imported int
	Skipped  int
}

// Store holds all word lists and the active list selection
type Store struct {
	mu       sync.Mutex
	kv       storage.KV
	resolver Resolver
	lists    []models.WordList
	activeID string

	newID  func() string
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Store
type Option func(*Store)

// WithLogger sets the store logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithClock overrides the creation timestamp source
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides how word and list ids are generated
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// Load restores the store from kv. Missing or unreadable data falls back to
// a single empty default list.
func Load(ctx context.Context, kv storage.KV, resolver Resolver, opts ...Option) (*Store, error) {
	s := &Store{
		kv:       kv,
		resolver: resolver,
		newID:    uuid.NewString,
		now:      time.Now,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}

	var lists []models.WordList
	found, err := storage.LoadJSON(ctx, kv, storage.KeyAllLists, &lists)
	switch {
	case errors.Is(err, storage.ErrCorrupt):
		s.logger.Warn("stored word lists are corrupt, starting over", "error", err)
		lists = nil
	case err != nil:
		return nil, err
	case found && len(lists) == 0:
		s.logger.Warn("stored word lists are empty, starting over")
	}
	if len(lists) == 0 {
		lists = []models.WordList{defaultList()}
	}
	s.lists = lists

	activeID, _, err := kv.Get(ctx, storage.KeyActiveListID)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", storage.KeyActiveListID, err)
	}
	if indexOfList(lists, activeID) < 0 {
		activeID = lists[0].ID
	}
	s.activeID = activeID

	return s, nil
}

func defaultList() models.WordList {
	return models.WordList{ID: DefaultListID, Name: DefaultListName, Words: []models.WordEntry{}}
}

// Lists returns a copy of all lists
func (s *Store) Lists() []models.WordList {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneLists(s.lists)
}

// List returns a copy of the list with the given id
func (s *Store) List(listID string) (models.WordList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOfList(s.lists, listID)
	if i < 0 {
		return models.WordList{}, fmt.Errorf("%w: %s", ErrListNotFound, listID)
	}
	return s.lists[i].Clone(), nil
}

// ActiveList returns a copy of the currently selected list
func (s *Store) ActiveList() models.WordList {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lists[indexOfList(s.lists, s.activeID)].Clone()
}

// SetActiveList selects the list the learner works with
func (s *Store) SetActiveList(ctx context.Context, listID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if indexOfList(s.lists, listID) < 0 {
		return fmt.Errorf("%w: %s", ErrListNotFound, listID)
	}
	return s.commit(ctx, s.lists, listID)
}

// MasteredCount returns how many words of the list reached the mastery threshold
func (s *Store) MasteredCount(listID string) int {
	list, err := s.List(listID)
	if err != nil {
		return 0
	}
	count := 0
	for _, w := range list.Words {
		if w.IsMastered() {
			count++
		}
	}
	return count
}

// AddWord translates english and prepends it to the list
func (s *Store) AddWord(ctx context.Context, listID, english string) (models.WordEntry, error) {
	word := normalize(english)
	if word == "" {
		return models.WordEntry{}, ErrEmptyInput
	}
	if err := s.checkNew(listID, word); err != nil {
		return models.WordEntry{}, err
	}

	result := s.resolver.Resolve(ctx, word)
	if result.Degraded() {
		return models.WordEntry{}, fmt.Errorf("%w: %s", ErrTranslationUnavailable, word)
	}
	entry := s.newEntry(result)

	s.mu.Lock()
	defer s.mu.Unlock()

	// The list may have changed while the translation was in flight
	i := indexOfList(s.lists, listID)
	if i < 0 {
		return models.WordEntry{}, fmt.Errorf("%w: %s", ErrListNotFound, listID)
	}
	if containsWord(s.lists[i], entry.English) {
		return models.WordEntry{}, fmt.Errorf("%w: %s", ErrDuplicateEntry, entry.English)
	}

	lists := cloneLists(s.lists)
	lists[i].Words = append([]models.WordEntry{entry}, lists[i].Words...)
	if err := s.commit(ctx, lists, s.activeID); err != nil {
		return models.WordEntry{}, err
	}

	s.logger.Info("word added", "list", listID, "english", entry.English, "tier", result.Tier)
	return entry, nil
}

func (s *Store) checkNew(listID, word string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOfList(s.lists, listID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrListNotFound, listID)
	}
	if containsWord(s.lists[i], word) {
		return fmt.Errorf("%w: %s", ErrDuplicateEntry, word)
	}
	return nil
}

// BulkAddWords imports every new word of rawText (separated by newlines or
// commas). Words are translated one after another; a word whose translation
// fails is skipped and the batch goes on.
func (s *Store) BulkAddWords(ctx context.Context, listID, rawText string) (ImportResult, error) {
	tokens := Tokenize(rawText)
	if len(tokens) == 0 {
		return ImportResult{}, ErrEmptyInput
	}

	s.mu.Lock()
	i := indexOfList(s.lists, listID)
	if i < 0 {
		s.mu.Unlock()
		return ImportResult{}, fmt.Errorf("%w: %s", ErrListNotFound, listID)
	}
	var result ImportResult
	pending := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if containsWord(s.lists[i], token) {
			result.Skipped++
			continue
		}
		pending = append(pending, token)
	}
	s.mu.Unlock()

	entries := make([]models.WordEntry, 0, len(pending))
	for n, token := range pending {
		if ctx.Err() != nil {
			s.logger.Warn("bulk import interrupted", "list", listID, "remaining", len(pending)-n, "error", ctx.Err())
			result.Skipped += len(pending) - n
			break
		}
		translation := s.resolver.Resolve(ctx, token)
		if translation.Degraded() {
			s.logger.Warn("bulk import skipped word", "list", listID, "english", token)
			result.Skipped++
			continue
		}
		entries = append(entries, s.newEntry(translation))
	}

	if len(entries) == 0 {
		return result, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i = indexOfList(s.lists, listID)
	if i < 0 {
		return ImportResult{}, fmt.Errorf("%w: %s", ErrListNotFound, listID)
	}

	lists := cloneLists(s.lists)
	fresh := make([]models.WordEntry, 0, len(entries))
	for _, entry := range entries {
		if containsWord(lists[i], entry.English) || containsEntry(fresh, entry.English) {
			result.Skipped++
			continue
		}
		fresh = append(fresh, entry)
	}
	lists[i].Words = append(fresh, lists[i].Words...)
	// Keep what was already translated even if the caller gave up meanwhile
	if err := s.commit(context.WithoutCancel(ctx), lists, s.activeID); err != nil {
		return ImportResult{}, err
	}

	result.Imported = len(fresh)
	s.logger.Info("bulk import finished", "list", listID, "imported", result.Imported, "skipped", result.Skipped)
	return result, nil
}

// DeleteWord removes a word from the list; missing words are ignored
func (s *Store) DeleteWord(ctx context.Context, listID, wordID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOfList(s.lists, listID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrListNotFound, listID)
	}
	j := indexOfWord(s.lists[i].Words, wordID)
	if j < 0 {
		return nil
	}

	lists := cloneLists(s.lists)
	lists[i].Words = append(lists[i].Words[:j], lists[i].Words[j+1:]...)
	return s.commit(ctx, lists, s.activeID)
}

// IncrementMastery bumps the mastery count of the word wherever it lives
func (s *Store) IncrementMastery(ctx context.Context, wordID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lists := cloneLists(s.lists)
	found := false
	for i := range lists {
		if j := indexOfWord(lists[i].Words, wordID); j >= 0 {
			lists[i].Words[j].MasteryCount++
			found = true
		}
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrWordNotFound, wordID)
	}
	return s.commit(ctx, lists, s.activeID)
}

// CreateList adds an empty list and makes it active
func (s *Store) CreateList(ctx context.Context, name string) (models.WordList, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.WordList{}, fmt.Errorf("%w: list name cannot be empty", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list := models.WordList{ID: s.newID(), Name: name, Words: []models.WordEntry{}}
	lists := append(cloneLists(s.lists), list)
	if err := s.commit(ctx, lists, list.ID); err != nil {
		return models.WordList{}, err
	}
	return list.Clone(), nil
}

// DeleteList removes a list. The last remaining list cannot be deleted.
func (s *Store) DeleteList(ctx context.Context, listID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOfList(s.lists, listID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrListNotFound, listID)
	}
	if len(s.lists) <= 1 {
		return ErrLastList
	}

	lists := cloneLists(s.lists)
	lists = append(lists[:i], lists[i+1:]...)
	activeID := s.activeID
	if activeID == listID {
		activeID = lists[0].ID
	}
	return s.commit(ctx, lists, activeID)
}

// commit persists the new state and swaps it in. Callers hold s.mu.
func (s *Store) commit(ctx context.Context, lists []models.WordList, activeID string) error {
	if err := storage.SaveJSON(ctx, s.kv, storage.KeyAllLists, lists); err != nil {
		return err
	}
	if activeID != s.activeID {
		if err := s.kv.Set(ctx, storage.KeyActiveListID, activeID); err != nil {
			// Put the previous lists back so storage matches memory again
			if rerr := storage.SaveJSON(context.WithoutCancel(ctx), s.kv, storage.KeyAllLists, s.lists); rerr != nil {
				s.logger.Error("failed to restore word lists", "error", rerr)
			}
			return fmt.Errorf("failed to save %s: %w", storage.KeyActiveListID, err)
		}
	}
	s.lists = lists
	s.activeID = activeID
	return nil
}

func (s *Store) newEntry(result models.TranslationResult) models.WordEntry {
	return models.WordEntry{
		ID:           s.newID(),
		English:      normalize(result.English),
		Russian:      normalize(result.Russian),
		CreatedAt:    s.now(),
		MasteryCount: 0,
	}
}

// Tokenize splits raw text on newlines and commas into unique lower-cased words
func Tokenize(rawText string) []string {
	fields := strings.FieldsFunc(rawText, func(r rune) bool {
		return r == '\n' || r == '\r' || r == ','
	})

	seen := make(map[string]bool, len(fields))
	tokens := make([]string, 0, len(fields))
	for _, field := range fields {
		token := normalize(field)
		if token == "" || seen[token] {
			continue
		}
		seen[token] = true
		tokens = append(tokens, token)
	}
	return tokens
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func containsWord(list models.WordList, english string) bool {
	return containsEntry(list.Words, english)
}

func containsEntry(entries []models.WordEntry, english string) bool {
	for _, w := range entries {
		if strings.EqualFold(w.English, english) {
			return true
		}
	}
	return false
}

func indexOfList(lists []models.WordList, id string) int {
	for i, l := range lists {
		if l.ID == id {
			return i
		}
	}
	return -1
}

func indexOfWord(entries []models.WordEntry, id string) int {
	for i, w := range entries {
		if w.ID == id {
			return i
		}
	}
	return -1
}

func cloneLists(lists []models.WordList) []models.WordList {
	out := make([]models.WordList, len(lists))
	for i, l := range lists {
		out[i] = l.Clone()
	}
	return out
}
