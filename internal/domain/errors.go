package domain

import "errors"

var (
	// ErrInvalidProfile is returned when user profile fields are out of range
	ErrInvalidProfile = errors.New("invalid user profile")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrGenerationFailed is returned when full plan generation fails
	ErrGenerationFailed = errors.New("plan generation failed")

	// ErrSwapFailed is returned when a single meal swap fails
	ErrSwapFailed = errors.New("meal swap failed")

	// ErrGatewayFailure is returned when the content provider is unreachable or errored
	ErrGatewayFailure = errors.New("content provider request failed")

	// ErrMalformedResponse is returned when the content provider returns
	// unparseable or schema-violating data
	ErrMalformedResponse = errors.New("malformed content provider response")

	// ErrNoActivePlan is returned for plan operations while no plan is held
	ErrNoActivePlan = errors.New("no active plan")

	// ErrStaleOperation is returned when a result arrives after the plan it
	// targeted was reset or regenerated; callers discard it silently
	ErrStaleOperation = errors.New("stale operation discarded")

	// ErrNotFound is returned when a stored entry does not exist
	ErrNotFound = errors.New("entry not found")

	// ErrCacheMiss is returned when a key is not present in the store
	ErrCacheMiss = errors.New("cache miss")
)
