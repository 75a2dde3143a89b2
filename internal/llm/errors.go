package llm

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies generation failures. Classification happens once,
// at the gateway/orchestrator boundary, and is never recomputed downstream.
type ErrorKind string

const (
	// KindRateLimited means the backend returned 429 or a quota signal.
	// Terminal for the current call; never triggers fallback escalation.
	KindRateLimited ErrorKind = "rate_limited"
	// KindModelUnavailable means a requested model returned 404. The
	// primary gateway retries the next candidate internally; callers only
	// see this kind when every candidate is exhausted.
	KindModelUnavailable ErrorKind = "model_unavailable"
	// KindInvalidResponseShape means the backend returned valid JSON that
	// is missing required fields.
	KindInvalidResponseShape ErrorKind = "invalid_response_shape"
	// KindMalformedJSON means the backend output did not parse as JSON
	// even after fence stripping.
	KindMalformedJSON ErrorKind = "malformed_json"
	// KindPrimaryFailedNoFallback means the primary failed with a
	// non-rate-limit error and escalation was unavailable.
	KindPrimaryFailedNoFallback ErrorKind = "primary_failed_no_fallback"
	// KindBothProvidersFailed means the primary and the fallback both failed.
	KindBothProvidersFailed ErrorKind = "both_providers_failed"
	// KindPartialCampaignFailure means one platform/category pair failed
	// inside a multi-pair run. Logged and skipped by campaign assembly,
	// surfaced only when every pair for a platform failed.
	KindPartialCampaignFailure ErrorKind = "partial_campaign_failure"
	// KindProviderError covers any other backend failure (auth, network,
	// server error). Eligible for fallback escalation.
	KindProviderError ErrorKind = "provider_error"
)

// GenerationError is the error type surfaced by every gateway and by the
// orchestrator. Kind is machine-readable; Message is for humans.
type GenerationError struct {
	Kind    ErrorKind
	Message string
	Status  int
	Err     error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// NewError builds a GenerationError with the given kind and message.
func NewError(kind ErrorKind, status int, msg string, err error) *GenerationError {
	return &GenerationError{Kind: kind, Message: msg, Status: status, Err: err}
}

// KindOf returns the classified kind of err, or KindProviderError when err
// carries no classification.
func KindOf(err error) ErrorKind {
	var ge *GenerationError
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return KindProviderError
}

// IsRateLimit reports whether err represents a rate-limit or quota
// exhaustion condition. It checks the classified kind first, then the
// HTTP status, then quota markers in the message text.
func IsRateLimit(err error) bool {
	if err == nil {
		return false
	}
	var ge *GenerationError
	if errors.As(err, &ge) {
		if ge.Kind == KindRateLimited {
			return true
		}
		if ge.Status == 429 {
			return true
		}
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "quota") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "resource_exhausted")
}
