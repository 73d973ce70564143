package models

import "errors"

// Pipeline error taxonomy. Everything except ErrExtractionFailed is
// recoverable by a lower-confidence fallback tier.
var (
	// ErrFetchTimeout means one fetch attempt exceeded its deadline; the
	// fetcher moves on to the next proxy in the chain.
	ErrFetchTimeout = errors.New("fetch timed out")

	// ErrFetchBlocked means the target or a relay refused the request
	// (CORS shell, 403, captcha page); also just advances the chain.
	ErrFetchBlocked = errors.New("fetch blocked")

	// ErrFetchExhausted means the direct request and every proxy relay
	// failed. The pipeline degrades to URL-heuristic extraction.
	ErrFetchExhausted = errors.New("all fetch strategies exhausted")

	// ErrExtractionIncomplete means a required field (name or price) was
	// missing after every selector tier. The run still emits a record,
	// with a downgraded quality tag and placeholders where needed.
	ErrExtractionIncomplete = errors.New("extraction incomplete")

	// ErrExtractionFailed means even URL heuristics could not produce a
	// product name. Fatal for the invocation, surfaced to the caller.
	ErrExtractionFailed = errors.New("could not extract product data, try a different product URL")

	// ErrNotFound is returned by stores when no product matches an ID.
	ErrNotFound = errors.New("product not found")
)
