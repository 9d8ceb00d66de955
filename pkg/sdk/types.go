package searchdialog

import (
	"github.com/nuvet/searchdialog/internal/domain/entity"
	"github.com/nuvet/searchdialog/internal/domain/turn"
)

// Entity is one entity as extracted by the NLU collaborator. Type may be
// a compound tag ("comparador_mas_descuento", "estado_vence_pronto");
// the engine normalizes it.
type Entity struct {
	Type       string
	Value      string
	Role       string
	Group      string
	Confidence float64
}

// TurnInput is one classified user turn.
type TurnInput struct {
	ConversationID string
	Intent         string
	Confidence     float64
	Text           string
	Entities       []Entity
}

// Message is one user-facing directive: free text plus an optional
// structured payload for the downstream search executor.
type Message struct {
	Text    string
	Payload map[string]any
}

// StateChange is one key/value write against the conversation context.
type StateChange struct {
	Key   string
	Value any
}

// TurnOutput is the full result of processing one turn.
type TurnOutput struct {
	Messages []Message
	Events   []StateChange
}

func toTurnInput(in TurnInput) turn.Input {
	raws := make([]entity.Raw, len(in.Entities))
	for i, e := range in.Entities {
		raws[i] = entity.Raw{
			Entity:     e.Type,
			Value:      e.Value,
			Role:       e.Role,
			Group:      e.Group,
			Confidence: e.Confidence,
		}
	}
	return turn.Input{
		ConversationID: in.ConversationID,
		Intent:         in.Intent,
		Confidence:     in.Confidence,
		Text:           in.Text,
		Entities:       raws,
	}
}

func fromTurnOutput(out turn.Output) TurnOutput {
	res := TurnOutput{}
	if len(out.Messages) > 0 {
		res.Messages = make([]Message, len(out.Messages))
		for i, m := range out.Messages {
			res.Messages[i] = Message{Text: m.Text, Payload: m.Payload}
		}
	}
	if len(out.Events) > 0 {
		res.Events = make([]StateChange, len(out.Events))
		for i, e := range out.Events {
			res.Events[i] = StateChange{Key: e.Key, Value: e.Value}
		}
	}
	return res
}
