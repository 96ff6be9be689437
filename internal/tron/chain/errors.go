package chain

import "errors"

var (
	// ErrNetwork reports a transport or HTTP failure.
	ErrNetwork = errors.New("chain network error")
	// ErrAuth reports a missing or rejected credential.
	ErrAuth = errors.New("chain credential rejected")
	// ErrNotFound reports a height that is not produced yet or unknown.
	ErrNotFound = errors.New("block not found")
	// ErrMalformedResponse reports a response that cannot be classified.
	ErrMalformedResponse = errors.New("malformed chain response")
)
