package models

// TranslationStatus tells a real translation apart from a degraded one
type TranslationStatus string

const (
	// TranslationResolved means one of the tiers produced a translation
	TranslationResolved TranslationStatus = "resolved"
	// TranslationDegraded means every tier failed and Russian holds a retry notice
	TranslationDegraded TranslationStatus = "degraded"
)

// TranslationTier names the strategy that produced a translation
type TranslationTier string

const (
	TierDictionary TranslationTier = "dictionary"
	TierPublicAPI  TranslationTier = "public_api"
	TierGenerative TranslationTier = "generative"
	TierNone       TranslationTier = "none"
)

// TranslationResult is the outcome of resolving an English word
type TranslationResult struct {
	English string            `json:"english"`
	Russian string            `json:"russian"`
	Status  TranslationStatus `json:"status"`
	Tier    TranslationTier   `json:"tier"`
}

// Degraded reports whether the result is a fallback notice rather than a translation
func (r TranslationResult) Degraded() bool {
	return r.Status == TranslationDegraded
}
