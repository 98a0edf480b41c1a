package gemini

import (
	"errors"
	"fmt"
	"strings"
)

// ExtractError is a transient extraction failure returned by the
// service. RateLimited marks an explicit quota signal; callers pick the
// cooldown length from it. Both kinds stay within the retry budget.
type ExtractError struct {
	StatusCode  int
	RateLimited bool
	Message     string
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("gemini status %d: %s", e.StatusCode, e.Message)
}

// IsRateLimited reports whether err carries an explicit quota signal.
// Errors from other extractor implementations are matched on the quota
// markers the service puts in its messages.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	var ee *ExtractError
	if errors.As(err, &ee) {
		return ee.RateLimited
	}
	msg := err.Error()
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "RESOURCE_EXHAUSTED") ||
		strings.Contains(msg, "ResourceExhausted")
}

func classifyStatus(statusCode int, body []byte) *ExtractError {
	msg := string(body)
	return &ExtractError{
		StatusCode:  statusCode,
		RateLimited: statusCode == 429 || strings.Contains(msg, "RESOURCE_EXHAUSTED"),
		Message:     truncate(msg, 512),
	}
}
