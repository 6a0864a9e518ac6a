package engine

import (
	"github.com/kestrel-chess/kestrel/pkg/common"
)

const (
	DefaultMaxDepth = 20
	MaxDepthLimit   = 64
)

type Options struct {
	// Hash is the transposition table size in megabytes.
	Hash     int
	MaxDepth int
	// NewPosition creates a rules backend position from a FEN.
	NewPosition func(fen string) (common.Position, error)
}

func NewOptions(newPosition func(fen string) (common.Position, error)) Options {
	return Options{
		Hash:        1,
		MaxDepth:    DefaultMaxDepth,
		NewPosition: newPosition,
	}
}
