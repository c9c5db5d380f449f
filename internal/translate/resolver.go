// Package translate resolves English words to Russian through an ordered
// chain of strategies: built-in dictionary, public translation API and a
// generative model. Resolution never fails; when every tier gives up the
// result is marked degraded.
package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/example/wordquest/pkg/models"
)

// RetryMessage is what the learner sees when no tier could translate a word
const RetryMessage = "Попробуй еще раз"

// Translator is a machine-translation service (tier 2)
type Translator interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// Generator is a structured-generation model (tier 3).
// It returns the raw text of a JSON object {english, russian}.
type Generator interface {
	GenerateTranslation(ctx context.Context, word string) (string, error)
}

// Resolver runs the translation tiers in order
type Resolver struct {
	translator        Translator
	generator         Generator
	translateTimeout  time.Duration
	generationTimeout time.Duration
	logger            *slog.Logger
}

// Option configures a Resolver
type Option func(*Resolver)

// WithTranslator enables the public API tier
func WithTranslator(t Translator, timeout time.Duration) Option {
	return func(r *Resolver) {
		r.translator = t
		r.translateTimeout = timeout
	}
}

// WithGenerator enables the generative model tier
func WithGenerator(g Generator, timeout time.Duration) Option {
	return func(r *Resolver) {
		r.generator = g
		r.generationTimeout = timeout
	}
}

// WithLogger sets the logger used for tier failures
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// NewResolver creates a resolver. Without options only the dictionary tier is active.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		translateTimeout:  4 * time.Second,
		generationTimeout: 5 * time.Second,
		logger:            slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the best available translation of word
func (r *Resolver) Resolve(ctx context.Context, word string) models.TranslationResult {
	clean := strings.ToLower(strings.TrimSpace(word))
	if clean == "" {
		return degraded(word)
	}

	if russian, ok := lookupDictionary(clean); ok {
		tierOutcomesTotal.WithLabelValues(string(models.TierDictionary), outcomeHit).Inc()
		return resolved(word, russian, models.TierDictionary)
	}
	tierOutcomesTotal.WithLabelValues(string(models.TierDictionary), outcomeMiss).Inc()

	russian, err := r.viaPublicAPI(ctx, clean)
	if err == nil {
		return resolved(word, russian, models.TierPublicAPI)
	}
	r.logTierFailure(models.TierPublicAPI, clean, err)

	result, err := r.viaGenerator(ctx, word)
	if err == nil {
		return result
	}
	r.logTierFailure(models.TierGenerative, clean, err)

	return degraded(word)
}

func (r *Resolver) logTierFailure(tier models.TranslationTier, word string, err error) {
	if errors.Is(err, errTierDisabled) {
		return
	}
	r.logger.Warn("translation tier failed", "tier", tier, "word", word, "error", err)
}

var (
	errTierDisabled  = errors.New("tier disabled")
	errNoImprovement = errors.New("translation equals input")
)

func (r *Resolver) viaPublicAPI(ctx context.Context, word string) (string, error) {
	tier := string(models.TierPublicAPI)
	if r.translator == nil {
		tierOutcomesTotal.WithLabelValues(tier, outcomeSkipped).Inc()
		return "", errTierDisabled
	}

	ctx, cancel := context.WithTimeout(ctx, r.translateTimeout)
	defer cancel()

	start := time.Now()
	translation, err := r.translator.Translate(ctx, word, "en", "ru")
	tierDuration.WithLabelValues(tier).Observe(time.Since(start).Seconds())
	if err != nil {
		tierOutcomesTotal.WithLabelValues(tier, outcomeFailure).Inc()
		return "", err
	}

	translation = strings.ToLower(strings.TrimSpace(translation))
	if translation == "" || translation == word {
		tierOutcomesTotal.WithLabelValues(tier, outcomeMiss).Inc()
		return "", errNoImprovement
	}

	tierOutcomesTotal.WithLabelValues(tier, outcomeHit).Inc()
	return translation, nil
}

// generated is the JSON object the model is asked to return
type generated struct {
	English string `json:"english"`
	Russian string `json:"russian"`
}

func (r *Resolver) viaGenerator(ctx context.Context, word string) (models.TranslationResult, error) {
	tier := string(models.TierGenerative)
	if r.generator == nil {
		tierOutcomesTotal.WithLabelValues(tier, outcomeSkipped).Inc()
		return models.TranslationResult{}, errTierDisabled
	}

	ctx, cancel := context.WithTimeout(ctx, r.generationTimeout)
	defer cancel()

	start := time.Now()
	text, err := r.generator.GenerateTranslation(ctx, word)
	tierDuration.WithLabelValues(tier).Observe(time.Since(start).Seconds())
	if err != nil {
		tierOutcomesTotal.WithLabelValues(tier, outcomeFailure).Inc()
		return models.TranslationResult{}, err
	}

	var out generated
	if err := json.Unmarshal([]byte(extractJSON(text)), &out); err != nil {
		tierOutcomesTotal.WithLabelValues(tier, outcomeFailure).Inc()
		return models.TranslationResult{}, fmt.Errorf("failed to parse model output: %w", err)
	}

	russian := strings.TrimSpace(out.Russian)
	if russian == "" {
		tierOutcomesTotal.WithLabelValues(tier, outcomeMiss).Inc()
		return models.TranslationResult{}, errors.New("model returned no translation")
	}

	english := strings.TrimSpace(out.English)
	if english == "" {
		english = word
	}

	tierOutcomesTotal.WithLabelValues(tier, outcomeHit).Inc()
	return resolved(english, russian, models.TierGenerative), nil
}

// extractJSON strips markdown fences and surrounding prose from model output
func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end < start {
		return text
	}
	return text[start : end+1]
}

// Close tears down the network clients
func (r *Resolver) Close() error {
	var errs []error
	for _, c := range []interface{}{r.translator, r.generator} {
		if closer, ok := c.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func resolved(english, russian string, tier models.TranslationTier) models.TranslationResult {
	return models.TranslationResult{
		English: english,
		Russian: russian,
		Status:  models.TranslationResolved,
		Tier:    tier,
	}
}

func degraded(word string) models.TranslationResult {
	return models.TranslationResult{
		English: word,
		Russian: RetryMessage,
		Status:  models.TranslationDegraded,
		Tier:    models.TierNone,
	}
}
