package errsink

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AdaSouls/Cardano-Backend/internal/metrics"
)

const defaultRingSize = 256

// Failure is one recorded failure. Recording is observability only: it never
// changes what the failing operation returns to its caller.
type Failure struct {
	ID      string    `json:"id"`
	Time    time.Time `json:"time"`
	Scope   string    `json:"scope"`
	Message string    `json:"message"`
}

// Recorder accepts failures from anywhere in the service.
type Recorder interface {
	RecordFailure(ctx context.Context, scope string, err error)
}

// Sink logs failures, keeps the most recent ones in a ring for the admin
// surface, and optionally pushes them to a webhook channel with a per-scope
// cooldown so a flapping provider cannot flood the channel.
type Sink struct {
	logger   *slog.Logger
	webhook  *WebhookNotifier
	cooldown time.Duration

	mu       sync.Mutex
	ring     []Failure
	next     int
	filled   bool
	lastSent map[string]time.Time
}

type Option func(*Sink)

// WithWebhook enables webhook delivery for recorded failures.
func WithWebhook(n *WebhookNotifier, cooldown time.Duration) Option {
	return func(s *Sink) {
		s.webhook = n
		s.cooldown = cooldown
	}
}

func NewSink(logger *slog.Logger, opts ...Option) *Sink {
	s := &Sink{
		logger:   logger.With("component", "errsink"),
		ring:     make([]Failure, defaultRingSize),
		lastSent: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ Recorder = (*Sink)(nil)

func (s *Sink) RecordFailure(ctx context.Context, scope string, err error) {
	if err == nil {
		return
	}

	f := Failure{
		ID:      uuid.NewString(),
		Time:    time.Now().UTC(),
		Scope:   scope,
		Message: err.Error(),
	}

	s.logger.Error("failure recorded", "scope", scope, "failure_id", f.ID, "error", err)
	metrics.FailuresRecordedTotal.WithLabelValues(scope).Inc()

	s.mu.Lock()
	s.ring[s.next] = f
	s.next = (s.next + 1) % len(s.ring)
	if s.next == 0 {
		s.filled = true
	}
	notify := s.webhook != nil && s.cooldownElapsedLocked(scope, f.Time)
	s.mu.Unlock()

	if notify {
		// Fire and forget: webhook latency must not slow the caller down.
		go func() {
			sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
			defer cancel()
			if err := s.webhook.Notify(sendCtx, f); err != nil {
				s.logger.Warn("failure webhook delivery failed", "scope", scope, "error", err)
				return
			}
			metrics.AlertsSentTotal.WithLabelValues("webhook").Inc()
		}()
	}
}

// Recent returns up to limit failures, newest first.
func (s *Sink) Recent(limit int) []Failure {
	s.mu.Lock()
	defer s.mu.Unlock()

	size := s.next
	if s.filled {
		size = len(s.ring)
	}
	if limit <= 0 || limit > size {
		limit = size
	}

	out := make([]Failure, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (s.next - i + len(s.ring)) % len(s.ring)
		out = append(out, s.ring[idx])
	}
	return out
}

// cooldownElapsedLocked reports whether scope is outside its cooldown window
// and marks it sent. Callers hold the lock.
func (s *Sink) cooldownElapsedLocked(scope string, now time.Time) bool {
	if last, ok := s.lastSent[scope]; ok && now.Sub(last) < s.cooldown {
		metrics.AlertsCooldownSkipped.WithLabelValues("webhook").Inc()
		return false
	}
	s.lastSent[scope] = now
	return true
}
