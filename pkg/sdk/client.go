package searchdialog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/nuvet/searchdialog/internal/db"
	dbRedis "github.com/nuvet/searchdialog/internal/db/redis"
	"github.com/nuvet/searchdialog/internal/domain/turn"
	"github.com/nuvet/searchdialog/internal/repository/convctx"
	openaiAssist "github.com/nuvet/searchdialog/internal/transport/openai"
	comparisonuc "github.com/nuvet/searchdialog/internal/usecase/comparison"
	healthuc "github.com/nuvet/searchdialog/internal/usecase/health"
	mergeuc "github.com/nuvet/searchdialog/internal/usecase/merge"
	modificationuc "github.com/nuvet/searchdialog/internal/usecase/modification"
	normalizeuc "github.com/nuvet/searchdialog/internal/usecase/normalize"
	"github.com/nuvet/searchdialog/internal/usecase/similarity"
	"github.com/nuvet/searchdialog/internal/vocabulary"
)

const defaultReadinessTimeout = 10 * time.Second

// Внутренние интерфейсы для подмены в тестах.
type turnUseCase interface {
	ProcessTurn(ctx context.Context, in turn.Input) (turn.Output, error)
	Reset(ctx context.Context, conversationID string) error
}

// Client is the searchdialog SDK entry point.
type Client struct {
	store     db.Store
	turns     turnUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New creates a searchdialog Client and connects to the database.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("searchdialog: database address required (use WithRedis)")
	}

	vocab, err := buildVocabulary(cfg)
	if err != nil {
		return nil, err
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Username: cfg.username,
		Password: cfg.password,
		DB:       cfg.dbIndex,
	})
	if err != nil {
		return nil, fmt.Errorf("searchdialog: create redis store: %w", err)
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("searchdialog: database not ready: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		store.Close()
		return nil, err
	}
	return wireClient(store, vocab, cfg, obs), nil
}

func buildVocabulary(cfg *clientConfig) (*vocabulary.Tables, error) {
	switch {
	case cfg.vocabTables != nil:
		return vocabulary.New(cfg.vocabTables), nil
	case cfg.vocabPath != "":
		t, err := vocabulary.Load(cfg.vocabPath)
		if err != nil {
			return nil, fmt.Errorf("searchdialog: load vocabulary: %w", err)
		}
		return t, nil
	default:
		return nil, errors.New(
			"searchdialog: vocabulary required (use WithVocabulary or WithVocabularyFile)",
		)
	}
}

func wireClient(store db.Store, vocab *vocabulary.Tables, cfg *clientConfig, obs *observer) *Client {
	logger := zap.NewNop()

	// Pass nil interface (not typed nil pointer!) if the assistant is not configured.
	var assistant mergeuc.Assistant
	var checker healthuc.AssistantChecker
	if cfg.assistant != nil && cfg.assistant.APIKey != "" {
		a := openaiAssist.NewAssistant(&openaiAssist.Config{
			APIKey:      cfg.assistant.APIKey,
			BaseURL:     cfg.assistant.BaseURL,
			Model:       cfg.assistant.Model,
			Temperature: cfg.assistant.Temperature,
			Logger:      logger,
		})
		assistant = a
		checker = a
	}

	contextRepo := convctx.New(store, cfg.keyPrefix, cfg.contextTTL)
	mergeSvc := mergeuc.New(
		contextRepo,
		vocab,
		similarity.NewEngine(vocab, logger),
		normalizeuc.New(logger),
		comparisonuc.New(time.Now, logger),
		modificationuc.New(logger),
		assistant,
		logger,
	)
	healthSvc := healthuc.New(store, checker)

	return &Client{
		store:     store,
		turns:     mergeSvc,
		healthSvc: healthSvc,
		obs:       obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// ProcessTurn folds one classified turn into the stored conversation
// context and returns the resulting messages and state changes.
func (c *Client) ProcessTurn(ctx context.Context, in TurnInput) (out TurnOutput, err error) {
	start := time.Now()
	defer func() { c.obs.observe("process_turn", start, err) }()

	res, err := c.turns.ProcessTurn(ctx, toTurnInput(in))
	if err != nil {
		return TurnOutput{}, err
	}
	return fromTurnOutput(res), nil
}

// Reset discards the stored context for a conversation so its next turn
// starts from scratch.
func (c *Client) Reset(ctx context.Context, conversationID string) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("reset", start, err) }()

	return c.turns.Reset(ctx, conversationID)
}
