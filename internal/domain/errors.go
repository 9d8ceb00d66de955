// Package domain holds sentinel errors shared across layers.
package domain

import "errors"

var (
	// ErrAssistantUnavailable signals a language model assistant failure.
	ErrAssistantUnavailable = errors.New("assistant unavailable")
)
