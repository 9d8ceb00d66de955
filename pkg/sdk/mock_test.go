package searchdialog

import (
	"context"

	"github.com/nuvet/searchdialog/internal/domain/turn"
	healthuc "github.com/nuvet/searchdialog/internal/usecase/health"
)

// --- turnUseCase mock ---

type mockTurnUC struct {
	processFn func(ctx context.Context, in turn.Input) (turn.Output, error)
	resetFn   func(ctx context.Context, conversationID string) error
}

func (m *mockTurnUC) ProcessTurn(ctx context.Context, in turn.Input) (turn.Output, error) {
	return m.processFn(ctx, in)
}

func (m *mockTurnUC) Reset(ctx context.Context, conversationID string) error {
	return m.resetFn(ctx, conversationID)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	checkFn func(ctx context.Context) healthuc.Report
}

func (m *mockHealthUC) Check(ctx context.Context) healthuc.Report {
	return m.checkFn(ctx)
}
