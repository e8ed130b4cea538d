package embeddings

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Provider failure kinds. Match with errors.Is against any error returned by a
// Service. The chat providers in package llm report the same kinds.
var (
	// ErrConfiguration means no credential (or model) is configured. Raised before network I/O.
	ErrConfiguration = errors.New("provider not configured")

	// ErrAuth means the provider rejected the credential (HTTP 401).
	ErrAuth = errors.New("provider rejected credentials")

	// ErrRateLimited means HTTP 429 without a billing indication. Retrying later may succeed.
	ErrRateLimited = errors.New("provider rate limit reached")

	// ErrQuotaExceeded means HTTP 429 caused by an exhausted quota or billing problem.
	ErrQuotaExceeded = errors.New("provider quota exceeded")

	// ErrProvider covers every other provider-side failure, including timeouts.
	ErrProvider = errors.New("provider error")
)

// ProviderError carries the classified kind together with the provider's own message.
type ProviderError struct {
	Kind       error
	StatusCode int
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%v (status %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%v: %s", e.Kind, e.Message)
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *ProviderError) Unwrap() []error {
	errs := []error{e.Kind}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// Classify maps a provider HTTP status and message onto the failure taxonomy.
func Classify(status int, message string) *ProviderError {
	kind := ErrProvider
	switch status {
	case http.StatusUnauthorized:
		kind = ErrAuth
	case http.StatusTooManyRequests:
		if isQuotaMessage(message) {
			kind = ErrQuotaExceeded
		} else {
			kind = ErrRateLimited
		}
	}

	return &ProviderError{
		Kind:       kind,
		StatusCode: status,
		Message:    strings.TrimSpace(message),
	}
}

func isQuotaMessage(message string) bool {
	m := strings.ToLower(message)
	return strings.Contains(m, "quota") || strings.Contains(m, "billing")
}

// TransportError wraps a failure that happened before a status code was seen.
// An expired request deadline is reported as ErrProvider with a timeout message.
func TransportError(err error, timeout time.Duration) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &ProviderError{
			Kind:    ErrProvider,
			Message: fmt.Sprintf("request timed out after %s", timeout),
			Err:     err,
		}
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return &ProviderError{Kind: ErrProvider, Message: err.Error(), Err: err}
}

// WithTimeout bounds a single provider call.
func WithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
