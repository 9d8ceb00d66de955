package searchdialog

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	addrs    []string
	username string
	password string
	dbIndex  int

	keyPrefix  string
	contextTTL time.Duration

	vocabPath   string
	vocabTables map[string][]string

	assistant *AssistantConfig

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// AssistantConfig configures the optional language model fallback used
// when the rule-based modification path cannot decide.
type AssistantConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
}

// WithRedis configures the client to connect to a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRedisDB selects a logical Redis database. Default: 0.
func WithRedisDB(db int) Option {
	return optionFunc(func(c *clientConfig) {
		c.dbIndex = db
	})
}

// WithKeyPrefix sets the storage key prefix for conversation contexts.
// Default: "dialog:ctx:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithContextTTL sets how long an idle conversation context survives.
// Default: 24 hours.
func WithContextTTL(ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.contextTTL = ttl
	})
}

// WithVocabularyFile loads the entity lookup tables from a YAML file.
func WithVocabularyFile(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.vocabPath = path
	})
}

// WithVocabulary sets the entity lookup tables directly, keyed by entity
// type. Takes precedence over WithVocabularyFile.
func WithVocabulary(tables map[string][]string) Option {
	return optionFunc(func(c *clientConfig) {
		c.vocabTables = tables
	})
}

// WithAssistant enables the language model assistant.
func WithAssistant(cfg AssistantConfig) Option {
	return optionFunc(func(c *clientConfig) {
		c.assistant = &cfg
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
