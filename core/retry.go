package core

import (
	"math"
	"math/rand/v2"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	defaultInitialRetryDelay   = 500 * time.Millisecond
	defaultMaxRetryDelay       = 10 * time.Second
	defaultMaxHeaderRetryDelay = 30 * time.Second
	maxJitter                  = 0.1
)

// RetryPolicy computes the delay between attempts of one logical call.
type RetryPolicy struct {
	InitialDelay   time.Duration
	MaxDelay       time.Duration
	MaxHeaderDelay time.Duration

	// Jitter returns a value in [0, 1). Defaults to math/rand/v2.
	Jitter func() float64
	// Now is used to resolve HTTP-date retry hints.
	Now func() time.Time
}

// DefaultRetryPolicy returns the policy used by every client.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		InitialDelay:   defaultInitialRetryDelay,
		MaxDelay:       defaultMaxRetryDelay,
		MaxHeaderDelay: defaultMaxHeaderRetryDelay,
	}
}

// ShouldRetry reports whether a response with status should be retried
// after attempt retries have already been made.
func ShouldRetry(status, attempt, maxRetries int) bool {
	if status != http.StatusTooManyRequests && status != http.StatusServiceUnavailable {
		return false
	}
	return attempt < maxRetries
}

// Delay returns how long to wait before retry number attempt+1.
//
// Server hints (retry-after-ms, then retry-after) take precedence and are
// capped at MaxHeaderDelay. Without a usable hint the delay is exponential
// backoff capped at MaxDelay, scaled by 1+jitter with jitter in [0, 0.1).
func (p RetryPolicy) Delay(header http.Header, attempt int) time.Duration {
	maxHeader := p.MaxHeaderDelay
	if maxHeader <= 0 {
		maxHeader = defaultMaxHeaderRetryDelay
	}
	if hint, ok := p.headerDelay(header, maxHeader); ok {
		return hint
	}
	return p.backoff(attempt)
}

func (p RetryPolicy) backoff(attempt int) time.Duration {
	initial := p.InitialDelay
	if initial <= 0 {
		initial = defaultInitialRetryDelay
	}
	maxDelay := p.MaxDelay
	if maxDelay <= 0 {
		maxDelay = defaultMaxRetryDelay
	}
	if attempt < 0 {
		attempt = 0
	}

	base := math.Min(initial.Seconds()*math.Pow(2, float64(attempt)), maxDelay.Seconds())

	jitter := rand.Float64
	if p.Jitter != nil {
		jitter = p.Jitter
	}
	j := jitter() * maxJitter

	return time.Duration(base * (1 + j) * float64(time.Second))
}

var retryAfterSeconds = regexp.MustCompile(`^\s*\d+\s*$`)

// headerDelay reads the server hint and clamps it to [0, limit]. Values are
// clamped before conversion so huge hints cannot overflow a Duration.
func (p RetryPolicy) headerDelay(header http.Header, limit time.Duration) (time.Duration, bool) {
	if header == nil {
		return 0, false
	}

	if raw := strings.TrimSpace(header.Get("retry-after-ms")); raw != "" {
		ms, err := strconv.ParseFloat(raw, 64)
		if err == nil && !math.IsNaN(ms) && !math.IsInf(ms, 0) {
			ms = math.Min(math.Max(ms, 0), float64(limit.Milliseconds()))
			return time.Duration(ms * float64(time.Millisecond)), true
		}
	}

	raw := header.Get("retry-after")
	if strings.TrimSpace(raw) == "" {
		return 0, false
	}

	if retryAfterSeconds.MatchString(raw) {
		seconds, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil || seconds >= int64(limit/time.Second) {
			return limit, true
		}
		return time.Duration(seconds) * time.Second, true
	}

	date, err := http.ParseTime(strings.TrimSpace(raw))
	if err != nil {
		return 0, false
	}

	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	return min(max(date.Sub(now()), 0), limit), true
}
