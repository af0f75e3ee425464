package core

import (
	"errors"
	"fmt"
	"time"
)

// EmailTag is one of the fixed set of triage categories. The labels are
// part of the storage and provider contract, emoji included, and must not
// be reworded without migrating stored data.
type EmailTag string

const (
	TagCriticalBug    EmailTag = "🔴 Bug: Critical/Data loss"
	TagFunctionalBug  EmailTag = "🟠 Bug: Functional"
	TagVisualBug      EmailTag = "🟡 Bug: Visual/UI"
	TagUXPushback     EmailTag = "🎨 Design/UX Pushback"
	TagContentIssue   EmailTag = "🎭 Content Issue"
	TagFeatureRequest EmailTag = "💡 Feature Request"
	TagHowTo          EmailTag = "❓ How-to/Confusion"
	TagPraise         EmailTag = "❤️ Praise"
	TagRefundChurn    EmailTag = "💸 Refund/Churn"
	TagHiringCollab   EmailTag = "🤝 Hiring/Collab"
	TagBlank          EmailTag = "⚪️ Blank Message"
)

// AllTags returns every valid tag in severity order (most severe first).
func AllTags() []EmailTag {
	return []EmailTag{
		TagCriticalBug,
		TagFunctionalBug,
		TagVisualBug,
		TagUXPushback,
		TagContentIssue,
		TagFeatureRequest,
		TagHowTo,
		TagPraise,
		TagRefundChurn,
		TagHiringCollab,
		TagBlank,
	}
}

// Valid reports whether the tag is one of the known categories.
func (t EmailTag) Valid() bool {
	for _, known := range AllTags() {
		if t == known {
			return true
		}
	}
	return false
}

// UserInfo identifies the sender as reported by the upstream inbox.
type UserInfo struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// EmailContent is the subject/body pair of the inbound email.
type EmailContent struct {
	Subject *string `json:"subject"`
	Text    *string `json:"text"`
}

// SourceInfo names the upstream channel the message arrived through.
type SourceInfo struct {
	Name *string `json:"name"`
}

// ConversationInfo carries the upstream conversation identifiers.
type ConversationInfo struct {
	ID           *string  `json:"id"`
	WaitingSince *float64 `json:"waiting_since"`
}

// InboundMessage is the canonical record written to the inbox store.
// Every leaf is nullable rather than omitted, so consumers can rely on
// the full shape being present. Records are immutable once appended.
type InboundMessage struct {
	ID           *string          `json:"id"`
	Conversation ConversationInfo `json:"conversation"`
	User         UserInfo         `json:"user"`
	Email        EmailContent     `json:"email"`
	Source       SourceInfo       `json:"source"`
}

// StoredMessage pairs an inbox record with the key the store assigned at
// append time. Keys are unique and ordered by insertion, not by any
// timestamp the payload itself carries.
type StoredMessage struct {
	Key     string         `json:"key"`
	Message InboundMessage `json:"message"`
}

// Classification is the structured judgment produced for one email.
type Classification struct {
	Tag             EmailTag  `json:"tag"`
	ConfidenceScore float64   `json:"confidence_score"`
	CleanedMessage  string    `json:"cleaned_message"`
	ExtractedName   string    `json:"extracted_name"`
	ModelUsed       string    `json:"model_used"`
	ClassifiedAt    time.Time `json:"classified_at"`
	ProcessingID    string    `json:"processing_id"`
}

var (
	// ErrStorageUnavailable is returned when the inbox store cannot be
	// reached for an append, read or subscribe.
	ErrStorageUnavailable = errors.New("inbox store unavailable")

	// ErrClassifierUnavailable is returned when no API key is configured.
	// It fails before any network attempt.
	ErrClassifierUnavailable = errors.New("classifier unavailable: no API key configured")

	// ErrClassifierProvider is returned when the provider call fails or
	// its response cannot be parsed into a valid Classification.
	ErrClassifierProvider = errors.New("classifier provider error")
)

// ValidateClassification enforces the output contract on a provider
// response: a known tag and a confidence score inside [0,1]. The provider
// is an untrusted producer, so violations are rejected rather than coerced.
func ValidateClassification(c *Classification) error {
	if !c.Tag.Valid() {
		return fmt.Errorf("%w: tag %q is outside the known set", ErrClassifierProvider, string(c.Tag))
	}
	if c.ConfidenceScore < 0 || c.ConfidenceScore > 1 {
		return fmt.Errorf("%w: confidence score %v is outside [0,1]", ErrClassifierProvider, c.ConfidenceScore)
	}
	return nil
}
