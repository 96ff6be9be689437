// Package chain defines the chain accessor contracts shared by the sync components.
package chain

import (
	"context"
	"time"
)

// Source provides the chain head and blocks by height.
type Source interface {
	Head(ctx context.Context) (*Block, error)
	BlockByHeight(ctx context.Context, height uint64) (*Block, error)
}

// Block is a block as returned by the upstream provider.
type Block struct {
	Height    uint64
	Hash      string
	Timestamp time.Time
	Witness   string
	TxCount   uint32
}
