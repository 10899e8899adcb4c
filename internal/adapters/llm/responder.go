package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/PabloGalante/liora-api/internal/domain"
	"github.com/PabloGalante/liora-api/internal/observability"
)

// Replies used when the model cannot produce one. The caller always gets text.
const (
	EmptyReplyFallback = "I'm here with you 💙"
	ErrorFallback      = "I'm having a little trouble right now. Let's try again soon 💛"
)

type BreakerSettings struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	MinRequests      uint32
	FailureThreshold float64
}

// ResponderConfig configures Responder.
type ResponderConfig struct {
	Persona Persona
	Timeout time.Duration
	Breaker BreakerSettings
	Metrics *observability.Collector // optional
}

// Responder turns an LLMClient into a total function: every call yields a
// reply, falling back to a fixed message on timeout, transport errors, empty
// output or an open circuit. There are no retries.
type Responder struct {
	client  domain.LLMClient
	persona Persona
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker
	metrics *observability.Collector
}

func NewResponder(client domain.LLMClient, cfg ResponderConfig) *Responder {
	bs := cfg.Breaker
	settings := gobreaker.Settings{
		Name:        "generator",
		MaxRequests: bs.MaxRequests,
		Interval:    bs.Interval,
		Timeout:     bs.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < bs.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= bs.FailureThreshold
		},
		// A caller that went away or a blank reply says nothing about
		// upstream health. Our own timeout surfaces as DeadlineExceeded and
		// still counts.
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, context.Canceled) ||
				errors.Is(err, ErrEmptyReply)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			observability.Logger().Warn("circuit breaker state changed",
				"breaker", name, "from", from.String(), "to", to.String())
		},
	}
	if bs.FailureThreshold <= 0 {
		settings.ReadyToTrip = nil // gobreaker default: 5 consecutive failures
	}

	return &Responder{
		client:  client,
		persona: cfg.Persona,
		timeout: cfg.Timeout,
		breaker: gobreaker.NewCircuitBreaker(settings),
		metrics: cfg.Metrics,
	}
}

// Persona returns the persona sent with every request.
func (r *Responder) Persona() Persona {
	return r.persona
}

// Respond sends persona + window + userText to the model and returns its reply
// or a fallback.
func (r *Responder) Respond(ctx context.Context, window []domain.WindowTurn, userText string) string {
	log := observability.LoggerFromContext(ctx)

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := r.breaker.Execute(func() (interface{}, error) {
		return r.client.GenerateReply(ctx, r.persona.Instruction(), window, userText)
	})
	if r.metrics != nil {
		r.metrics.GeneratorDuration.Observe(time.Since(start).Seconds())
	}

	if err == nil {
		if text, _ := out.(string); strings.TrimSpace(text) != "" {
			r.observe("generated")
			return text
		}
		err = ErrEmptyReply
	}

	r.observe("fallback")
	if errors.Is(err, ErrEmptyReply) {
		log.Warn("generator returned empty reply, using fallback")
		return EmptyReplyFallback
	}

	log.Error("generator failed, using fallback",
		"error", err,
		"breaker_state", r.breaker.State().String(),
		"window_len", len(window))
	return ErrorFallback
}

func (r *Responder) observe(outcome string) {
	if r.metrics != nil {
		r.metrics.GeneratorOutcomes.WithLabelValues(outcome).Inc()
	}
}
