package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrAccountMismatch  = fmt.Errorf("authenticated account does not match requested account")
	ErrTimeout          = fmt.Errorf("operation timed out")

	// Remote call errors
	ErrRateLimited      = fmt.Errorf("rate limited")
	ErrRetriesExhausted = fmt.Errorf("retries exhausted")
	ErrAPIRequest       = fmt.Errorf("API request failed")

	// Fetch errors
	ErrFetchFailed  = fmt.Errorf("fetch failed")
	ErrPartialFetch = fmt.Errorf("fetch incomplete")

	// Snapshot errors
	ErrSnapshotFormat = fmt.Errorf("malformed snapshot")
	ErrSnapshotIO     = fmt.Errorf("snapshot file error")

	// Input validation errors
	ErrNotAffirmed     = fmt.Errorf("destructive operation not affirmed")
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
