package ai

import (
	"context"
	"net/http"
	"strings"

	"github.com/myrjola/ikigai/internal/errors"
	"github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

// Kind classifies a failed completion so callers can render a message and offer a retry.
type Kind string

const (
	KindConfig            Kind = "ConfigError"
	KindSafetyBlocked     Kind = "SafetyBlocked"
	KindRateLimited       Kind = "RateLimited"
	KindMalformedResponse Kind = "MalformedResponse"
	KindNetworkFailure    Kind = "NetworkFailure"
)

var (
	// ErrSafetyBlocked is returned by backends when the provider refused the request on content policy grounds.
	ErrSafetyBlocked = errors.NewSentinel("blocked by safety filter")
	// ErrNoCredential is returned when no API key is configured.
	ErrNoCredential = errors.NewSentinel("no AI credential configured")
	// ErrMalformed is returned by Decode when no JSON object could be extracted.
	ErrMalformed = errors.NewSentinel("malformed response")
)

var userMessages = map[Kind]string{ //nolint:gochecknoglobals // lookup table.
	KindConfig:            "The AI service is not configured. Please contact the administrator.",
	KindSafetyBlocked:     "The AI declined to answer because of its content policy. Please rephrase your answers and try again.",
	KindRateLimited:       "The AI service is busy right now. Please wait a moment and try again.",
	KindMalformedResponse: "The AI returned an unexpected answer. Please try again.",
	KindNetworkFailure:    "Could not reach the AI service. Please check your connection and try again.",
}

// Error is the only error type returned by Client.Complete.
type Error struct {
	Kind  Kind
	cause error
}

// NewError tags cause with kind.
func NewError(kind Kind, cause error) *Error {
	return &Error{Kind: kind, cause: cause}
}

func (e *Error) Error() string {
	if e.cause == nil {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.cause.Error()
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Message is the user-facing explanation of the failure.
func (e *Error) Message() string {
	return userMessages[e.Kind]
}

// KindOf returns the kind of err or an empty Kind if err did not come from this package.
func KindOf(err error) Kind {
	var aiErr *Error
	if errors.As(err, &aiErr) {
		return aiErr.Kind
	}
	return ""
}

// Classify maps an error from a backend to an *Error.
func Classify(err error) *Error {
	var aiErr *Error
	if errors.As(err, &aiErr) {
		return aiErr
	}
	switch {
	case errors.Is(err, ErrNoCredential):
		return NewError(KindConfig, err)
	case errors.Is(err, ErrSafetyBlocked):
		return NewError(KindSafetyBlocked, err)
	case errors.Is(err, ErrMalformed):
		return NewError(KindMalformedResponse, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return NewError(KindNetworkFailure, err)
	}

	if kind, ok := classifyStatus(statusOf(err)); ok {
		return NewError(kind, err)
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "429"), strings.Contains(msg, "RESOURCE_EXHAUSTED"),
		strings.Contains(strings.ToLower(msg), "quota"):
		return NewError(KindRateLimited, err)
	case strings.Contains(msg, "SAFETY"), strings.Contains(strings.ToLower(msg), "content_filter"):
		return NewError(KindSafetyBlocked, err)
	case strings.Contains(msg, "API key not valid"), strings.Contains(msg, "API_KEY_INVALID"):
		return NewError(KindConfig, err)
	}
	return NewError(KindNetworkFailure, err)
}

type providerStatus struct {
	code   int
	status string
}

// statusOf extracts the HTTP status reported by either provider SDK.
func statusOf(err error) providerStatus {
	var genaiErr genai.APIError
	if errors.As(err, &genaiErr) {
		return providerStatus{code: genaiErr.Code, status: genaiErr.Status}
	}
	var genaiErrPtr *genai.APIError
	if errors.As(err, &genaiErrPtr) && genaiErrPtr != nil {
		return providerStatus{code: genaiErrPtr.Code, status: genaiErrPtr.Status}
	}
	var openaiErr *openai.APIError
	if errors.As(err, &openaiErr) {
		return providerStatus{code: openaiErr.HTTPStatusCode, status: openaiErr.Type}
	}
	var requestErr *openai.RequestError
	if errors.As(err, &requestErr) {
		return providerStatus{code: requestErr.HTTPStatusCode, status: ""}
	}
	return providerStatus{code: 0, status: ""}
}

func classifyStatus(s providerStatus) (Kind, bool) {
	switch {
	case s.code == http.StatusTooManyRequests, s.status == "RESOURCE_EXHAUSTED", s.status == "insufficient_quota":
		return KindRateLimited, true
	case s.code == http.StatusUnauthorized, s.code == http.StatusForbidden,
		s.status == "UNAUTHENTICATED", s.status == "PERMISSION_DENIED":
		return KindConfig, true
	case s.code != 0:
		return KindNetworkFailure, true
	}
	return "", false
}
