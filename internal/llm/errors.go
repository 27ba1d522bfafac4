package llm

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a failed optimization call
type ErrorCode string

// Error codes, one per terminal failure state of a call
const (
	CodeCredentialMissing ErrorCode = "credential-missing"
	CodeCallFailed        ErrorCode = "call-failed"
	CodeTimeout           ErrorCode = "timeout"
	CodeInvalidResponse   ErrorCode = "invalid-response"
	CodeRateLimited       ErrorCode = "rate-limited"
	CodeQuotaExceeded     ErrorCode = "quota-exceeded"
)

// Sentinels for errors.Is. They match any *Error carrying the same code.
var (
	ErrCredentialMissing = &Error{Code: CodeCredentialMissing, Message: "API key is required"}
	ErrCallFailed        = &Error{Code: CodeCallFailed, Message: "API call failed"}
	ErrTimeout           = &Error{Code: CodeTimeout, Message: "request timed out"}
	ErrInvalidResponse   = &Error{Code: CodeInvalidResponse, Message: "invalid response"}
	ErrRateLimited       = &Error{Code: CodeRateLimited, Message: "rate limited"}
	ErrQuotaExceeded     = &Error{Code: CodeQuotaExceeded, Message: "quota exceeded"}
)

// Error represents a failed provider call
type Error struct {
	Code     ErrorCode
	Message  string
	Status   int
	Provider ProviderName
	Cause    error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Provider != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Provider)
	}
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches on error code so callers can use the package sentinels
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func newError(code ErrorCode, provider ProviderName, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Provider: provider, Cause: cause}
}

// CodeOf returns the code of an *Error in err's chain, or "" when there is none
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// classifyStatus maps a non-2xx HTTP status to an error
func classifyStatus(provider ProviderName, status int, body string) *Error {
	var code ErrorCode
	var message string
	switch status {
	case 429:
		code, message = CodeRateLimited, "rate limited by provider"
	case 403:
		code, message = CodeQuotaExceeded, "quota exceeded or access denied"
	default:
		code, message = CodeCallFailed, "provider returned an error"
	}
	if body != "" {
		message = fmt.Sprintf("%s: %s", message, truncate(body, 200))
	}
	return &Error{Code: code, Message: message, Status: status, Provider: provider}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
