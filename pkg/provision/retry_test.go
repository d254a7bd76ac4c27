// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package provision

import (
	"context"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quickRetryPolicy() RetryPolicy {
	return RetryPolicy{Enabled: true, MaxTries: 4, MaxElapsed: 30 * time.Second}
}

func TestWithRetry_Disabled(t *testing.T) {
	calls := 0
	_, err := withRetry(context.Background(), RetryPolicy{}, logrus.StandardLogger(), func() (string, error) {
		calls++
		return "", &azcore.ResponseError{StatusCode: 429}
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls, "retries are off by default")
}

func TestWithRetry_TransientThenSuccess(t *testing.T) {
	calls := 0
	got, err := withRetry(context.Background(), quickRetryPolicy(), logrus.StandardLogger(), func() (string, error) {
		calls++
		if calls < 3 {
			return "", &azcore.ResponseError{StatusCode: 429, ErrorCode: "TooManyRequests"}
		}
		return "done", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "done", got)
	assert.Equal(t, 3, calls)
}

func TestWithRetry_PermanentStopsImmediately(t *testing.T) {
	calls := 0
	_, err := withRetry(context.Background(), quickRetryPolicy(), logrus.StandardLogger(), func() (string, error) {
		calls++
		return "", &azcore.ResponseError{StatusCode: 409, ErrorCode: "Conflict"}
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls, "conflicts are not retried")
	assert.Equal(t, KindConflict, classify(err))
}

func TestWithRetry_ExhaustsTries(t *testing.T) {
	calls := 0
	_, err := withRetry(context.Background(), quickRetryPolicy(), logrus.StandardLogger(), func() (string, error) {
		calls++
		return "", &azcore.ResponseError{StatusCode: 503}
	})
	require.Error(t, err)
	assert.Equal(t, 4, calls)
}
