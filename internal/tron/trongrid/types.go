// Package trongrid implements the chain accessor on top of the TronGrid HTTP API.
package trongrid

import "time"

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// RPCMetrics records metrics for upstream calls.
	RPCMetrics interface {
		Observe(operation string, err error, started time.Time)
	}
)
