package rules

import (
	"github.com/kestrel-chess/kestrel/pkg/common"
)

const (
	seventyFiveMoveRule = 150
	fivefoldRepetition  = 5
)

// history tracks what the draw rules need across Apply/Undo: the position
// keys of the game so far and the halfmove clock after each ply.
type history struct {
	keys   []uint64
	rule50 []int
}

func newHistory(key uint64, rule50 int) history {
	return history{
		keys:   []uint64{key},
		rule50: []int{rule50},
	}
}

func (h *history) push(key uint64, resetRule50 bool) {
	var rule50 = 0
	if !resetRule50 {
		rule50 = h.rule50[len(h.rule50)-1] + 1
	}
	h.keys = append(h.keys, key)
	h.rule50 = append(h.rule50, rule50)
}

func (h *history) pop() {
	h.keys = h.keys[:len(h.keys)-1]
	h.rule50 = h.rule50[:len(h.rule50)-1]
}

func (h *history) isDraw(b common.Board) bool {
	var rule50 = h.rule50[len(h.rule50)-1]
	return rule50 >= seventyFiveMoveRule ||
		h.repetitions(rule50) >= fivefoldRepetition ||
		insufficientMaterial(b)
}

func (h *history) repetitions(rule50 int) int {
	var last = len(h.keys) - 1
	var key = h.keys[last]
	var count = 1
	for i := last - 2; i >= 0 && i >= last-rule50; i -= 2 {
		if h.keys[i] == key {
			count++
		}
	}
	return count
}

func insufficientMaterial(b common.Board) bool {
	var heavy uint64
	for _, piece := range [...]int{common.Pawn, common.Rook, common.Queen} {
		heavy |= b.PieceMask(piece, common.White) | b.PieceMask(piece, common.Black)
	}
	if heavy != 0 {
		return false
	}
	var wn = b.PieceMask(common.Knight, common.White)
	var bn = b.PieceMask(common.Knight, common.Black)
	var wb = b.PieceMask(common.Bishop, common.White)
	var bb = b.PieceMask(common.Bishop, common.Black)
	var minors = common.PopCount(wn | bn | wb | bb)
	if minors <= 1 {
		return true
	}
	// Only bishops left, all on squares of one colour.
	if wn|bn == 0 {
		var dark, light int
		for x := wb | bb; x != 0; x &= x - 1 {
			if common.IsDarkSquare(common.FirstOne(x)) {
				dark++
			} else {
				light++
			}
		}
		return dark == 0 || light == 0
	}
	return false
}

// resetsRule50 reports whether m zeroes the halfmove clock.
func resetsRule50(m common.Move) bool {
	return m.MovingPiece() == common.Pawn || m.IsCapture()
}
