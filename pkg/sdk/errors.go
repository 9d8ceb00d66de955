package searchdialog

import (
	"github.com/nuvet/searchdialog/internal/domain"
	mergeuc "github.com/nuvet/searchdialog/internal/usecase/merge"
)

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrEmptyConversationID  = mergeuc.ErrEmptyConversationID
	ErrAssistantUnavailable = domain.ErrAssistantUnavailable
)
