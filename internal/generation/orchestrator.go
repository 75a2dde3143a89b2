// Package generation routes structured-generation requests across the
// primary and fallback text backends and decides when escalation is
// permitted.
package generation

import (
	"context"

	"brandforge/internal/llm"
	"brandforge/internal/logger"
)

// StructuredGenerator is the backend contract: generate a JSON object from
// a prompt or fail with a classified error.
type StructuredGenerator interface {
	GenerateStructured(ctx context.Context, prompt string) (map[string]any, error)
	Name() string
}

// Validator checks the shape of a parsed response. It runs identically
// regardless of which backend answered.
type Validator func(result map[string]any) error

// Orchestrator tries the primary backend, classifies failures, and
// escalates to the fallback only when policy permits.
//
// Rate limits never escalate. The fallback backend costs materially more
// per call and rate limits are transient, so paying a premium to work
// around them is disallowed outright.
type Orchestrator struct {
	primary         StructuredGenerator
	fallback        StructuredGenerator
	fallbackEnabled bool
}

// NewOrchestrator wires the two backends. fallback may be nil when no
// fallback credentials are configured; escalation is then forced off no
// matter what enabled says.
func NewOrchestrator(primary, fallback StructuredGenerator, enabled bool) *Orchestrator {
	return &Orchestrator{
		primary:         primary,
		fallback:        fallback,
		fallbackEnabled: enabled && fallback != nil,
	}
}

// Generate runs one generation call through the fallback state machine.
func (o *Orchestrator) Generate(ctx context.Context, prompt string, validate Validator) (map[string]any, error) {
	result, primaryErr := o.callBackend(ctx, o.primary, prompt, validate)
	if primaryErr == nil {
		return result, nil
	}

	if llm.IsRateLimit(primaryErr) {
		logger.Warn("Primary backend rate limited, escalation suppressed",
			"backend", o.primary.Name())
		return nil, llm.NewError(llm.KindRateLimited, 429,
			"generation is rate limited right now, please retry in a few minutes", primaryErr)
	}

	if !o.fallbackEnabled {
		msg := "primary backend failed and fallback escalation is disabled by policy"
		if o.fallback == nil {
			msg = "primary backend failed and no fallback backend is configured"
		}
		return nil, llm.NewError(llm.KindPrimaryFailedNoFallback, 0, msg, primaryErr)
	}

	// Escalation has a direct cost implication, so it is always loud.
	logger.Warn("Escalating to fallback backend",
		"primary", o.primary.Name(),
		"fallback", o.fallback.Name(),
		"primary_error", primaryErr.Error())

	result, fallbackErr := o.callBackend(ctx, o.fallback, prompt, validate)
	if fallbackErr == nil {
		logger.Info("Fallback backend succeeded", "backend", o.fallback.Name())
		return result, nil
	}

	return nil, llm.NewError(llm.KindBothProvidersFailed, 0,
		"both generation backends failed", fallbackErr)
}

// callBackend performs one backend call plus shape validation.
func (o *Orchestrator) callBackend(ctx context.Context, backend StructuredGenerator, prompt string, validate Validator) (map[string]any, error) {
	result, err := backend.GenerateStructured(ctx, prompt)
	if err != nil {
		return nil, err
	}
	if validate != nil {
		if err := validate(result); err != nil {
			return nil, llm.NewError(llm.KindInvalidResponseShape, 0,
				"backend returned JSON missing required fields", err)
		}
	}
	return result, nil
}
