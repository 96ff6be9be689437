package syncer

import "errors"

var (
	// ErrStaleRefresh marks results superseded by a newer refresh.
	ErrStaleRefresh = errors.New("refresh superseded by a newer one")
	// ErrTotalFailure marks a pass in which no requested height could be fetched.
	ErrTotalFailure = errors.New("no block could be fetched")
	// ErrEmptyFilter rejects a blank filter query.
	ErrEmptyFilter = errors.New("filter query is empty")
)
