// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package provision

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
)

// ErrorKind classifies a downstream provisioning failure. The
// classification is advisory: callers decide whether to retry, abort,
// or surface the failure to an operator.
type ErrorKind string

const (
	KindNotFound           ErrorKind = "NotFound"
	KindAccessDenied       ErrorKind = "AccessDenied"
	KindInvalidCredentials ErrorKind = "InvalidCredentials"
	KindConflict           ErrorKind = "Conflict"
	KindThrottled          ErrorKind = "Throttled"
	KindServiceInternal    ErrorKind = "ServiceInternal"
	KindTimeout            ErrorKind = "Timeout"
	KindQuotaExceeded      ErrorKind = "QuotaExceeded"
	KindInvalidRequest     ErrorKind = "InvalidRequest"
	KindNetwork            ErrorKind = "Network"
	KindUnknown            ErrorKind = "Unknown"
)

// ProvisioningError wraps a rejection from the downstream provisioning
// service, carrying whatever diagnostic it returned. The tool performs
// no local recovery; malformed inputs surface here rather than being
// caught earlier.
type ProvisioningError struct {
	Op         string
	Kind       ErrorKind
	Code       string
	StatusCode int
	Err        error
}

func (e *ProvisioningError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s (%s): %v", e.Op, e.Kind, e.Code, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *ProvisioningError) Unwrap() error { return e.Err }

// wrapErr converts a downstream error into a *ProvisioningError,
// preserving the service's error code and HTTP status when available.
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	pe := &ProvisioningError{Op: op, Kind: classify(err), Err: err}
	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		pe.Code = respErr.ErrorCode
		pe.StatusCode = respErr.StatusCode
	}
	return pe
}

// classify maps downstream errors to an ErrorKind. Structured
// *azcore.ResponseError data is preferred; string matching remains as
// a fallback for errors that escape the ARM pipeline.
func classify(err error) ErrorKind {
	if err == nil {
		return ""
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}

	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		switch respErr.StatusCode {
		case 400:
			return KindInvalidRequest
		case 401:
			return KindInvalidCredentials
		case 403:
			return KindAccessDenied
		case 404:
			return KindNotFound
		case 408, 504:
			return KindTimeout
		case 409:
			return KindConflict
		case 429:
			return KindThrottled
		}
		switch {
		case strings.Contains(respErr.ErrorCode, "QuotaExceeded"),
			strings.Contains(respErr.ErrorCode, "LimitExceeded"):
			return KindQuotaExceeded
		case respErr.StatusCode >= 500:
			return KindServiceInternal
		}
	}

	errStr := err.Error()
	switch {
	case strings.Contains(errStr, "ResourceNotFound"),
		strings.Contains(errStr, "NotFound"):
		return KindNotFound

	case strings.Contains(errStr, "AuthorizationFailed"),
		strings.Contains(errStr, "Forbidden"):
		return KindAccessDenied

	case strings.Contains(errStr, "AuthenticationFailed"),
		strings.Contains(errStr, "InvalidAuthenticationToken"),
		strings.Contains(errStr, "Unauthorized"):
		return KindInvalidCredentials

	case strings.Contains(errStr, "Conflict"),
		strings.Contains(errStr, "AlreadyExists"),
		strings.Contains(errStr, "RegistryNameNotAvailable"):
		return KindConflict

	case strings.Contains(errStr, "TooManyRequests"),
		strings.Contains(errStr, "Throttling"):
		return KindThrottled

	case strings.Contains(errStr, "QuotaExceeded"),
		strings.Contains(errStr, "LimitExceeded"):
		return KindQuotaExceeded

	case strings.Contains(errStr, "Timeout"),
		strings.Contains(errStr, "deadline exceeded"):
		return KindTimeout

	case strings.Contains(errStr, "InvalidParameter"),
		strings.Contains(errStr, "BadRequest"):
		return KindInvalidRequest

	case strings.Contains(errStr, "connection refused"),
		strings.Contains(errStr, "no such host"),
		strings.Contains(errStr, "dial"):
		return KindNetwork

	case strings.Contains(errStr, "InternalServerError"):
		return KindServiceInternal
	}

	return KindUnknown
}

// isTransient reports whether an error belongs to a class worth
// retrying. Conflicts and authorization failures are permanent.
func isTransient(err error) bool {
	switch classify(err) {
	case KindThrottled, KindTimeout, KindNetwork, KindServiceInternal:
		return true
	}
	return false
}
