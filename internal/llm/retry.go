package llm

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sync"
	"time"
)

type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Jitter      float64
	IsRetryable func(error) bool
	Sleep       func(context.Context, time.Duration) error
}

// DefaultIsRetryable retries transient upstream failures but never cancellation.
func DefaultIsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var upstream *UpstreamServiceError
	if errors.As(err, &upstream) {
		return upstream.Temporary()
	}
	return false
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type retryClient struct {
	next Client
	cfg  RetryConfig

	mu  sync.Mutex
	rnd *rand.Rand
}

// WithRetry wraps a client with bounded exponential backoff.
func WithRetry(next Client, cfg RetryConfig) Client {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = 500 * time.Millisecond
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = 4 * time.Second
	}
	if cfg.IsRetryable == nil {
		cfg.IsRetryable = DefaultIsRetryable
	}
	if cfg.Sleep == nil {
		cfg.Sleep = sleepContext
	}
	return &retryClient{
		next: next,
		cfg:  cfg,
		rnd:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *retryClient) Provider() string { return c.next.Provider() }

func (c *retryClient) Model() string { return c.next.Model() }

func (c *retryClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	var lastErr error
	attempt := 0
	for attempt < c.cfg.MaxAttempts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		resp, err := c.next.Chat(ctx, req)
		attempt++
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !c.cfg.IsRetryable(err) || attempt == c.cfg.MaxAttempts {
			break
		}
		if err := c.cfg.Sleep(ctx, c.delay(attempt-1)); err != nil {
			return nil, err
		}
	}

	var upstream *UpstreamServiceError
	if errors.As(lastErr, &upstream) {
		upstream.Attempts = attempt
		return nil, upstream
	}
	return nil, lastErr
}

func (c *retryClient) delay(attempt int) time.Duration {
	d := time.Duration(float64(c.cfg.BaseDelay) * math.Pow(2, float64(attempt)))
	if d > c.cfg.MaxDelay {
		d = c.cfg.MaxDelay
	}
	if c.cfg.Jitter > 0 {
		c.mu.Lock()
		j := c.rnd.Float64()
		c.mu.Unlock()
		d += time.Duration(float64(d) * c.cfg.Jitter * j)
	}
	return d
}
