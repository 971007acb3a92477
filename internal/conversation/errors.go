package conversation

import "errors"

// Boundary error tags. The HTTP layer checks these with errors.Is and maps
// them to status codes; everything else surfaces as internal_error.
var (
	ErrRateLimited         = errors.New("rate_limited")
	ErrModelUnconfigured   = errors.New("model_unconfigured")
	ErrProviderUnavailable = errors.New("provider_error")
	ErrNotFound            = errors.New("not_found")
)
