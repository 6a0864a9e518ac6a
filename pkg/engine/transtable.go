package engine

import (
	"math"

	. "github.com/kestrel-chess/kestrel/pkg/common"
)

const (
	boundLower = 1 << iota
	boundUpper
)

const boundExact = boundLower | boundUpper

func roundPowerOfTwo(size int) int {
	var x = 1
	for (x << 1) <= size {
		x <<= 1
	}
	return x
}

//16 bytes
type transEntry struct {
	key   uint64
	move  Move
	score int16
	depth int8
	bound uint8
}

// transTable maps position keys to earlier search results. The search does
// not consult it yet; it is recreated on every SetPosition.
type transTable struct {
	megabytes int
	entries   []transEntry
	mask      uint64
	used      int
}

func newTransTable(megabytes int) *transTable {
	var size = roundPowerOfTwo(1024 * 1024 * Max(megabytes, 1) / 16)
	return &transTable{
		megabytes: megabytes,
		entries:   make([]transEntry, size),
		mask:      uint64(size - 1),
	}
}

func (tt *transTable) Size() int {
	return tt.megabytes
}

// Len returns the number of occupied entries.
func (tt *transTable) Len() int {
	return tt.used
}

func (tt *transTable) Clear() {
	for i := range tt.entries {
		tt.entries[i] = transEntry{}
	}
	tt.used = 0
}

func (tt *transTable) Read(key uint64) (depth, score, bound int, move Move, ok bool) {
	var entry = &tt.entries[key&tt.mask]
	if entry.bound != 0 && entry.key == key {
		score = int(entry.score)
		move = entry.move
		depth = int(entry.depth)
		bound = int(entry.bound)
		ok = true
	}
	return
}

// Update stores an entry. score is clamped to the int16 range of the entry.
func (tt *transTable) Update(key uint64, depth, score, bound int, move Move) {
	var entry = &tt.entries[key&tt.mask]
	if entry.bound == 0 {
		tt.used++
	} else if entry.key == key && depth < int(entry.depth) && bound != boundExact {
		return
	}
	entry.key = key
	entry.score = int16(Max(-math.MaxInt16, Min(score, math.MaxInt16)))
	entry.depth = int8(depth)
	entry.bound = uint8(bound)
	entry.move = move
}
