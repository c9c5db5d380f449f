package bot

import (
	"time"
)

// BotConfig represents the configuration for the bot
type BotConfig struct {
	// How long answer feedback stays before the quest moves on
	ChoiceFeedbackDelay   time.Duration
	SpellingFeedbackDelay time.Duration
	// Words listed by /words, each with a delete button
	MaxWordsShown int
	// Upper bound for downloading an uploaded import file
	DownloadTimeout time.Duration
	// Upper bound for handling one update, including bulk imports
	UpdateTimeout time.Duration
}

// DefaultConfig returns the default bot configuration
func DefaultConfig() *BotConfig {
	return &BotConfig{
		ChoiceFeedbackDelay:   800 * time.Millisecond,
		SpellingFeedbackDelay: time.Second,
		MaxWordsShown:         30,
		DownloadTimeout:       30 * time.Second,
		UpdateTimeout:         10 * time.Minute,
	}
}
