package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/sirupsen/logrus"
)

// completeWithRetry wraps one LLM call in the shared retry policy: up to
// attempts tries with an exponential base-2 backoff starting at baseDelay.
// Each attempt runs under its own attemptTimeout deadline, so a hung call
// fails that attempt alone and the remaining attempts still get their full
// budget. No delay follows the final attempt. Errors are captured and
// returned, never re-raised past this boundary.
func completeWithRetry(
	ctx context.Context,
	log *logrus.Logger,
	attempts uint,
	baseDelay time.Duration,
	attemptTimeout time.Duration,
	call func(ctx context.Context) (string, error),
) (string, error) {
	// retry.Attempts(0) means retry forever, which is never what we want here
	if attempts == 0 {
		attempts = 1
	}

	var out string

	err := retry.Do(
		func() error {
			attemptCtx := ctx
			if attemptTimeout > 0 {
				var cancel context.CancelFunc
				attemptCtx, cancel = context.WithTimeout(ctx, attemptTimeout)
				defer cancel()
			}

			text, err := call(attemptCtx)
			if err != nil {
				return err
			}
			out = text
			return nil
		},
		retry.Attempts(attempts),
		retry.Delay(baseDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.WithError(err).WithField("attempt", n+1).Warn("LLM call failed, retrying")
		}),
	)
	if err != nil {
		return "", fmt.Errorf("after %d attempt(s): %w", attempts, err)
	}

	return out, nil
}
