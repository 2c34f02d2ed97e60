package database

import (
	"context"
	"fmt"
	"time"

	"getconnected/internal/common/config"
	"getconnected/internal/common/logger"

	"github.com/cenkalti/backoff/v5"
)

// Target is a backing service the process waits for before serving.
type Target struct {
	Name string
	Ping func(ctx context.Context) error
}

// WaitPolicy bounds WaitFor.
type WaitPolicy struct {
	MaxAttempts     uint
	InitialInterval time.Duration
	PingTimeout     time.Duration
}

// PolicyFromConfig converts the startup section of the configuration.
func PolicyFromConfig(cfg config.StartupConfig) WaitPolicy {
	p := WaitPolicy{
		InitialInterval: config.GetDuration(cfg.InitialInterval),
		PingTimeout:     config.GetDuration(cfg.PingTimeout),
	}
	if cfg.MaxAttempts > 0 {
		p.MaxAttempts = uint(cfg.MaxAttempts)
	}
	return p
}

// WaitFor pings t with exponential backoff until it answers, the policy's
// attempts are spent or ctx ends. Each failed attempt is logged with the
// delay before the next one.
func WaitFor(ctx context.Context, t Target, policy WaitPolicy, log logger.Logger) error {
	if policy.MaxAttempts == 0 {
		policy.MaxAttempts = 1
	}
	if policy.PingTimeout <= 0 {
		policy.PingTimeout = 3 * time.Second
	}
	b := backoff.NewExponentialBackOff()
	if policy.InitialInterval > 0 {
		b.InitialInterval = policy.InitialInterval
	}

	attempts := 0
	ping := func() (struct{}, error) {
		attempts++
		pingCtx, cancel := context.WithTimeout(ctx, policy.PingTimeout)
		defer cancel()
		return struct{}{}, t.Ping(pingCtx)
	}
	notify := func(err error, next time.Duration) {
		log.Warn("backing service not ready, retrying", map[string]interface{}{
			"target":  t.Name,
			"attempt": attempts,
			"next":    next.String(),
			"error":   err.Error(),
		})
	}

	_, err := backoff.Retry(ctx, ping,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(policy.MaxAttempts),
		backoff.WithNotify(notify),
	)
	if err != nil {
		return fmt.Errorf("%s unreachable after %d attempts: %w", t.Name, attempts, err)
	}
	if attempts > 1 {
		log.Info("backing service ready", map[string]interface{}{
			"target":   t.Name,
			"attempts": attempts,
		})
	}
	return nil
}
