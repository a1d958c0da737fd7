// Package apperr defines the typed error taxonomy shared by every stage of
// the query pipeline. Every constructor attaches a machine-readable Code so
// callers can branch with errors.As instead of string matching.
package apperr

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error classification.
type Code string

const (
	CodeInvalidRequest      Code = "INVALID_REQUEST"
	CodeUnauthorized        Code = "UNAUTHORIZED"
	CodeRetrievalBackend    Code = "RETRIEVAL_BACKEND_ERROR"
	CodeReranker            Code = "RERANKER_ERROR"
	CodeLLMProvider         Code = "LLM_PROVIDER_ERROR"
	CodeCitationValidation  Code = "CITATION_VALIDATION_ERROR"
	CodeTimeout             Code = "TIMEOUT_ERROR"
	CodeCancellation        Code = "CANCELLATION_ERROR"
)

// Error is the common shape every taxonomy member satisfies.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, target) match any *Error target carrying the same Code.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Code == other.Code
	}
	return false
}

func newErr(code Code, msg string, cause error) *Error {
	return &Error{Code: code, Message: msg, Err: cause}
}

// InvalidRequest — empty query, missing user context, malformed fields. Terminal.
func InvalidRequest(msg string) error {
	return newErr(CodeInvalidRequest, msg, nil)
}

// Unauthorized — user context fails well-formedness, or ACL resolution rejects
// all documents implicitly.
func Unauthorized(msg string) error {
	return newErr(CodeUnauthorized, msg, nil)
}

// appError is the name under which the typed errors below embed *Error: an
// embedded field named Error would hide the promoted Error() method.
type appError = Error

// RetrievalBackend ∈ {vector, lexical, both}. Non-fatal unless Which == "both";
// callers should only surface this when both backends failed.
type RetrievalBackend struct {
	*appError
	Which string
}

func (e *RetrievalBackend) Unwrap() error { return e.appError }

func RetrievalBackendErr(which string, cause error) error {
	return &RetrievalBackend{
		appError: newErr(CodeRetrievalBackend, fmt.Sprintf("retrieval backend(s) failed: %s", which), cause),
		Which: which,
	}
}

// Reranker — fatal only when the tenant has fallbackOnError disabled.
func Reranker(cause error) error {
	return newErr(CodeReranker, "reranker failed", cause)
}

// LLMProvider — raised only after primary plus all fallback providers and
// retries are exhausted.
type LLMProviderError struct {
	*appError
	Provider string
}

func (e *LLMProviderError) Unwrap() error { return e.appError }

func LLMProvider(provider string, cause error) error {
	return &LLMProviderError{
		appError: newErr(CodeLLMProvider, fmt.Sprintf("llm provider %q exhausted", provider), cause),
		Provider: provider,
	}
}

// CitationValidation — raised only by the enhanced quality-policy variant.
func CitationValidation(msg string) error {
	return newErr(CodeCitationValidation, msg, nil)
}

// Timeout — per-stage or overall deadline exceeded.
type TimeoutErr struct {
	*appError
	Stage string
}

func (e *TimeoutErr) Unwrap() error { return e.appError }

func Timeout(stage string, cause error) error {
	return &TimeoutErr{
		appError: newErr(CodeTimeout, fmt.Sprintf("timeout in stage %q", stage), cause),
		Stage: stage,
	}
}

// Cancellation — externally initiated cancellation (context.Canceled et al).
func Cancellation(cause error) error {
	return newErr(CodeCancellation, "request cancelled", cause)
}
