// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package provision

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/sirupsen/logrus"
)

// RetryPolicy controls retries of downstream calls on transient
// failures. Disabled by default: the provisioner itself does not
// retry unless the caller opts in.
type RetryPolicy struct {
	Enabled    bool
	MaxTries   uint
	MaxElapsed time.Duration
}

// DefaultRetryPolicy is the policy applied when retries are enabled
// without further tuning.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Enabled:    true,
		MaxTries:   5,
		MaxElapsed: 2 * time.Minute,
	}
}

// withRetry runs op under the policy. Non-transient errors are marked
// permanent so backoff stops immediately.
func withRetry[T any](ctx context.Context, policy RetryPolicy, log logrus.FieldLogger, op func() (T, error)) (T, error) {
	if !policy.Enabled {
		return op()
	}

	attempt := func() (T, error) {
		v, err := op()
		if err != nil && !isTransient(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}

	return backoff.Retry(ctx, attempt,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(policy.MaxTries),
		backoff.WithMaxElapsedTime(policy.MaxElapsed),
		backoff.WithNotify(func(err error, next time.Duration) {
			log.WithError(err).WithField("backoff", next).Warn("Transient failure, retrying")
		}),
	)
}
