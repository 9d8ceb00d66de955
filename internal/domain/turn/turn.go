// Package turn defines the per-turn input/output contract with the dialogue
// runtime and the persisted conversation context.
package turn

import (
	"time"

	"github.com/nuvet/searchdialog/internal/domain/entity"
	"github.com/nuvet/searchdialog/internal/domain/spec"
	"github.com/nuvet/searchdialog/internal/domain/suggestion"
)

// Intent labels the dialogue runtime sends.
const (
	IntentSearchProduct  = "buscar_producto"
	IntentSearchOffer    = "buscar_oferta"
	IntentModifySearch   = "modificar_busqueda"
	IntentCompleteOrder  = "completar_pedido"
	IntentAffirm         = "afirmar"
	IntentDeny           = "denegar"
)

// Input is one user turn as classified by the NLU collaborator.
type Input struct {
	ConversationID string       `json:"conversation_id"`
	Intent         string       `json:"intent"`
	Confidence     float64      `json:"confidence,omitempty"`
	Text           string       `json:"text"`
	Entities       []entity.Raw `json:"entities"`
}

// IsSearchIntent reports whether the intent starts or continues a search.
func (in Input) IsSearchIntent() bool {
	return in.Intent == IntentSearchProduct || in.Intent == IntentSearchOffer
}

// IsModificationIntent reports whether the intent modifies the prior search.
func (in Input) IsModificationIntent() bool {
	switch in.Intent {
	case IntentModifySearch, "quitar_filtro", "agregar_filtro", "modificar_multiple":
		return true
	}
	return false
}

// Search completion status values recorded in history.
const (
	StatusCompleted = "completed"
	StatusModified  = "modified"
)

// HistoryRecord is one completed search in the conversation history.
type HistoryRecord struct {
	Timestamp  time.Time `json:"timestamp"`
	Kind       spec.Kind `json:"type"`
	Parameters spec.Spec `json:"parameters"`
	Status     string    `json:"status"`
}

// Engagement levels derived from turn outcomes.
const (
	EngagementSatisfied       = "satisfied"
	EngagementAwaitingConfirm = "awaiting_confirmation"
	EngagementAwaitingParams  = "awaiting_parameters"
	EngagementTopicChanged    = "topic_changed"
	EngagementNeedsHelp       = "needs_help"
	EngagementEngaged         = "engaged"
)

// User experience levels, from completed search count.
const (
	ExperienceNovice = "novice"
	ExperienceExpert = "expert"
)

// expertSearchThreshold is the completed-search count above which a user
// is treated as an expert.
const expertSearchThreshold = 10

// Context is the persisted per-conversation state, checked out at turn
// start and checked back in at turn end.
type Context struct {
	Pending    suggestion.Pending `json:"pending_suggestion"`
	History    []HistoryRecord    `json:"search_history"`
	Engagement string             `json:"engagement_level,omitempty"`
	Sentiment  string             `json:"user_sentiment,omitempty"`
	LastIntent string             `json:"last_intent,omitempty"`
}

// CompletedSearches counts history records with completed status.
func (c Context) CompletedSearches() int {
	n := 0
	for _, r := range c.History {
		if r.Status == StatusCompleted {
			n++
		}
	}
	return n
}

// LastSearch returns the most recent history record, if any.
func (c Context) LastSearch() (HistoryRecord, bool) {
	if len(c.History) == 0 {
		return HistoryRecord{}, false
	}
	return c.History[len(c.History)-1], true
}

// ExperienceLevel derives the user's experience from completed searches.
func (c Context) ExperienceLevel() string {
	if c.CompletedSearches() > expertSearchThreshold {
		return ExperienceExpert
	}
	return ExperienceNovice
}

// StateChange is one key/value write against the persisted context.
type StateChange struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// State change keys.
const (
	KeyPendingSuggestion = "pending_suggestion"
	KeySearchHistory     = "search_history"
	KeyEngagementLevel   = "engagement_level"
	KeyUserSentiment     = "user_sentiment"
)

// Message is one user-facing directive: free text plus an optional
// structured payload for the downstream search executor.
type Message struct {
	Text    string         `json:"text"`
	Payload map[string]any `json:"payload,omitempty"`
}

// Output is the full result of processing one turn.
type Output struct {
	Events   []StateChange `json:"events"`
	Messages []Message     `json:"messages"`
}
