package event

import (
	"context"
	"sync"
	"time"

	"github.com/stretchkit/progression/internal/logger"
	"github.com/stretchkit/progression/internal/metrics"
)

// ResilientConfig configures the ResilientPublisher
type ResilientConfig struct {
	MaxRetries int
	RetryDelay time.Duration
}

// ResilientPublisher wraps an Event Bus to add retry logic and dead letter queuing.
// Subscribers see at-least-once delivery; they must tolerate duplicates.
type ResilientPublisher struct {
	inner      Bus
	config     ResilientConfig
	deadLetter *DeadLetterWriter
	wg         sync.WaitGroup
}

// NewResilientPublisher creates a new ResilientPublisher. deadLetter may be nil
// to disable dead-lettering (events are dropped after the final retry).
func NewResilientPublisher(inner Bus, config ResilientConfig, deadLetter *DeadLetterWriter) *ResilientPublisher {
	return &ResilientPublisher{
		inner:      inner,
		config:     config,
		deadLetter: deadLetter,
	}
}

// Publish attempts to publish an event. If it fails, it initiates a background retry loop.
// It returns nil to the caller immediately if the event is accepted for processing (even if
// the first attempt fails). This decouples the caller from the retry mechanism.
func (p *ResilientPublisher) Publish(ctx context.Context, event Event) error {
	metrics.EventsPublished.WithLabelValues(string(event.Type)).Inc()

	err := p.inner.Publish(ctx, event)
	if err == nil {
		return nil
	}

	metrics.EventHandlerErrors.WithLabelValues(string(event.Type)).Inc()
	logger.FromContext(ctx).Warn("Failed to publish event, initiating async retry",
		"event_type", event.Type,
		"error", err,
		"retries", p.config.MaxRetries)

	// Detached retry: the original operation context may already be done.
	p.wg.Add(1)
	go p.retryLoop(event, err)

	return nil
}

func (p *ResilientPublisher) retryLoop(event Event, lastErr error) {
	defer p.wg.Done()

	ctx := context.Background()
	log := logger.FromContext(ctx)

	for i := 1; i <= p.config.MaxRetries; i++ {
		time.Sleep(p.config.RetryDelay * time.Duration(i)) // linear backoff

		err := p.inner.Publish(ctx, event)
		if err == nil {
			log.Info("Successfully published event after retry",
				"event_type", event.Type,
				"attempt", i)
			return
		}
		lastErr = err

		log.Warn("Retry failed",
			"event_type", event.Type,
			"attempt", i,
			"error", err)
	}

	if p.deadLetter != nil {
		if err := p.deadLetter.Write(event, p.config.MaxRetries+1, lastErr); err != nil {
			log.Error("Failed to write to dead letter file", "error", err)
		}
	}
}

// Subscribe delegates to the inner bus
func (p *ResilientPublisher) Subscribe(eventType Type, handler Handler) {
	p.inner.Subscribe(eventType, handler)
}

// Shutdown waits for in-flight retry loops to finish
func (p *ResilientPublisher) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
