package llm

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

const (
	// DefaultRetryInitialInterval is the initial delay for exponential backoff.
	DefaultRetryInitialInterval = 1 * time.Second
	// DefaultRetryMaxInterval is the maximum interval between retries.
	DefaultRetryMaxInterval = 5 * time.Minute
	// DefaultRetryMaxElapsedTime is the maximum total time spent retrying.
	DefaultRetryMaxElapsedTime = 5 * time.Minute
	// retryMultiplier is the multiplier for exponential backoff.
	retryMultiplier = 2.0
	// retryRandomizationFactor is the jitter applied to each backoff interval.
	retryRandomizationFactor = 0.2
)

// RetryOptions configures the retry decorator. Zero values fall back to the
// package defaults above.
type RetryOptions struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsedTime  time.Duration
}

// WrapWithRetry wraps a Client so that retryable errors (rate limits, 5xx
// provider errors) are retried with exponential backoff. Rate-limit errors
// carrying a retry-after hint are waited out before the next attempt.
// Non-retryable errors are returned immediately.
func WrapWithRetry(client Client, logger zerolog.Logger, opts *RetryOptions) Client {
	if opts == nil {
		opts = &RetryOptions{}
	}
	rc := &retryClient{
		client:          client,
		logger:          logger.With().Str("component", "llmRetry").Logger(),
		initialInterval: opts.InitialInterval,
		maxInterval:     opts.MaxInterval,
		maxElapsedTime:  opts.MaxElapsedTime,
	}
	if rc.initialInterval <= 0 {
		rc.initialInterval = DefaultRetryInitialInterval
	}
	if rc.maxInterval <= 0 {
		rc.maxInterval = DefaultRetryMaxInterval
	}
	if rc.maxElapsedTime <= 0 {
		rc.maxElapsedTime = DefaultRetryMaxElapsedTime
	}
	return rc
}

// retryClient decorates a Client with backoff-based retries.
type retryClient struct {
	client          Client
	logger          zerolog.Logger
	initialInterval time.Duration
	maxInterval     time.Duration
	maxElapsedTime  time.Duration
}

// Synchronous implements Client.Synchronous with retries.
func (c *retryClient) Synchronous(ctx context.Context, req *Request) (*Response, error) {
	var resp *Response
	operation := func() error {
		var err error
		resp, err = c.client.Synchronous(ctx, req)
		return c.classify(ctx, err)
	}

	if err := backoff.RetryNotify(operation, c.newBackOff(ctx), c.notify); err != nil {
		return nil, err
	}
	return resp, nil
}

// Stream implements Client.Stream. Only opening the stream is retried;
// mid-stream failures surface through Stream.Err.
func (c *retryClient) Stream(ctx context.Context, req *Request) (Stream, error) {
	var stream Stream
	operation := func() error {
		var err error
		stream, err = c.client.Stream(ctx, req)
		return c.classify(ctx, err)
	}

	if err := backoff.RetryNotify(operation, c.newBackOff(ctx), c.notify); err != nil {
		return nil, err
	}
	return stream, nil
}

// classify decides whether an error should be retried. Rate-limit errors with
// a retry-after hint are waited out here so the next backoff attempt lands
// after the provider's window.
func (c *retryClient) classify(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if !IsRetryableError(err) {
		return backoff.Permanent(err)
	}

	if retryAfter := ExtractRetryAfter(err); retryAfter != nil {
		c.logger.Warn().
			Dur("retry_after", *retryAfter).
			Msg("Rate limited, honoring retry-after before next attempt")
		select {
		case <-ctx.Done():
			return backoff.Permanent(ctx.Err())
		case <-time.After(*retryAfter):
		}
	}
	return err
}

func (c *retryClient) newBackOff(ctx context.Context) backoff.BackOffContext {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initialInterval
	b.MaxInterval = c.maxInterval
	b.MaxElapsedTime = c.maxElapsedTime
	b.Multiplier = retryMultiplier
	b.RandomizationFactor = retryRandomizationFactor
	return backoff.WithContext(b, ctx)
}

func (c *retryClient) notify(err error, next time.Duration) {
	c.logger.Debug().
		Err(err).
		Dur("next_attempt_in", next).
		Msg("Retrying LLM request")
}

var _ Client = (*retryClient)(nil)
