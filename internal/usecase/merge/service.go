// Package merge is the conversation state merger: it folds one classified
// turn into the persisted conversation context and decides what happens
// next, from executing a search to asking the user to clarify.
package merge

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/nuvet/searchdialog/internal/domain/suggestion"
	"github.com/nuvet/searchdialog/internal/domain/turn"
	"github.com/nuvet/searchdialog/internal/metrics"
)

// ErrEmptyConversationID rejects turns with no conversation identity.
var ErrEmptyConversationID = errors.New("conversation id is empty")

// Turn outcomes, for metrics.
const (
	outcomeSearch       = "search"
	outcomeModification = "modification"
	outcomeSuggestion   = "suggestion"
	outcomeConfirmation = "confirmation"
	outcomeHelp         = "help"
	outcomeError        = "error"
)

const msgTrouble = "Tuve un problema procesando tu mensaje. ¿Podés repetirlo?"

// Service orchestrates one turn: pending-suggestion lifecycle, entity
// validation, comparison and modification detection, and state persistence.
type Service struct {
	repo          Repository
	vocab         Vocabulary
	suggester     Suggester
	normalizer    Normalizer
	comparisons   ComparisonDetector
	modifications ModificationDetector
	assistant     Assistant
	clock         func() time.Time
	logger        *zap.Logger
}

// New creates the merger. assistant may be nil; the rule-based
// modification fallback then handles what the detector cannot.
func New(
	repo Repository,
	vocab Vocabulary,
	suggester Suggester,
	normalizer Normalizer,
	comparisons ComparisonDetector,
	modifications ModificationDetector,
	assistant Assistant,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:          repo,
		vocab:         vocab,
		suggester:     suggester,
		normalizer:    normalizer,
		comparisons:   comparisons,
		modifications: modifications,
		assistant:     assistant,
		clock:         time.Now,
		logger:        logger,
	}
}

// txn accumulates the outcome of one turn before it is persisted.
type txn struct {
	in      turn.Input
	state   turn.Context
	out     turn.Output
	now     time.Time
	outcome string
}

func (t *txn) say(text string) {
	t.out.Messages = append(t.out.Messages, turn.Message{Text: text})
}

func (t *txn) sayPayload(text string, payload map[string]any) {
	t.out.Messages = append(t.out.Messages, turn.Message{Text: text, Payload: payload})
}

func (t *txn) event(key string, value any) {
	t.out.Events = append(t.out.Events, turn.StateChange{Key: key, Value: value})
}

func (t *txn) setPending(p suggestion.Pending) {
	t.state.Pending = p
	t.event(turn.KeyPendingSuggestion, p)
}

func (t *txn) clearPending() {
	if t.state.Pending.IsZero() {
		return
	}
	t.state.Pending = suggestion.Pending{}
	t.event(turn.KeyPendingSuggestion, nil)
}

func (t *txn) setEngagement(level string) {
	if t.state.Engagement == level {
		return
	}
	t.state.Engagement = level
	t.event(turn.KeyEngagementLevel, level)
}

func (t *txn) setSentiment(sentiment string) {
	if t.state.Sentiment == sentiment {
		return
	}
	t.state.Sentiment = sentiment
	t.event(turn.KeyUserSentiment, sentiment)
}

func (t *txn) appendHistory(rec turn.HistoryRecord) {
	t.state.History = append(t.state.History, rec)
	t.event(turn.KeySearchHistory, t.state.History)
}

// ProcessTurn folds one turn into the conversation context. It never
// fails on malformed content; a panic anywhere in the pipeline degrades
// to an apology message and leaves the stored context untouched.
func (s *Service) ProcessTurn(ctx context.Context, in turn.Input) (turn.Output, error) {
	if in.ConversationID == "" {
		return turn.Output{}, ErrEmptyConversationID
	}

	state, err := s.repo.Get(ctx, in.ConversationID)
	if err != nil {
		s.logger.Warn("conversation context load failed, starting fresh",
			zap.String("conversation_id", in.ConversationID), zap.Error(err))
		state = turn.Context{}
	}

	t := &txn{in: in, state: state, now: s.clock(), outcome: outcomeHelp}
	s.safeProcess(ctx, t)

	if t.outcome != outcomeError {
		t.state.LastIntent = in.Intent
		if err := s.repo.Put(ctx, in.ConversationID, t.state); err != nil {
			s.logger.Error("conversation context save failed",
				zap.String("conversation_id", in.ConversationID), zap.Error(err))
		}
	}

	metrics.TurnsTotal.WithLabelValues(in.Intent, t.outcome).Inc()
	return t.out, nil
}

// Reset discards the stored context so the next turn starts a fresh
// conversation.
func (s *Service) Reset(ctx context.Context, conversationID string) error {
	if conversationID == "" {
		return ErrEmptyConversationID
	}
	if err := s.repo.Delete(ctx, conversationID); err != nil {
		return err
	}
	s.logger.Info("conversation context reset",
		zap.String("conversation_id", conversationID))
	return nil
}

func (s *Service) safeProcess(ctx context.Context, t *txn) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("turn processing panicked",
				zap.String("conversation_id", t.in.ConversationID),
				zap.String("intent", t.in.Intent),
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
			t.out = turn.Output{Messages: []turn.Message{{Text: msgTrouble}}}
			t.outcome = outcomeError
		}
	}()
	s.process(ctx, t)
}

func (s *Service) process(ctx context.Context, t *txn) {
	if sentiment := detectSentiment(t.in.Text); sentiment != "" {
		t.setSentiment(sentiment)
	}

	if handled := s.resolvePending(ctx, t); handled {
		return
	}

	switch {
	case t.in.IsModificationIntent():
		s.modifyFlow(ctx, t)
	case t.in.IsSearchIntent() || t.in.Intent == turn.IntentCompleteOrder:
		s.searchFlow(t)
	case t.in.Intent == turn.IntentAffirm || t.in.Intent == turn.IntentDeny:
		// nothing was pending, so there is nothing to confirm or reject
		t.say("No hay nada pendiente de confirmar. Decime qué querés buscar.")
		t.setEngagement(turn.EngagementNeedsHelp)
		t.outcome = outcomeHelp
	default:
		t.say("Puedo ayudarte a buscar productos veterinarios u ofertas. ¿Qué estás buscando?")
		t.setEngagement(turn.EngagementNeedsHelp)
		t.outcome = outcomeHelp
	}
}
