package eval

import (
	. "github.com/kestrel-chess/kestrel/pkg/common"
)

type EvaluationService struct {
	*Tables
}

func NewEvaluationService() *EvaluationService {
	return &EvaluationService{Tables: DefaultTables()}
}

func NewEvaluationServiceWithTables(t *Tables) *EvaluationService {
	return &EvaluationService{Tables: t}
}

// relativeSquare maps sq to the PST index for side.
func relativeSquare(side Color, sq int) int {
	if side == Black {
		return FlipSquare(sq)
	}
	return sq
}

// Evaluate returns material plus piece-square score from the point of view
// of the side to move.
func (e *EvaluationService) Evaluate(p Board) int {
	var us = p.SideToMove()
	var result = 0
	for piece := Pawn; piece <= King; piece++ {
		result += e.sideScore(p, piece, us) - e.sideScore(p, piece, us.Opponent())
	}
	return result
}

func (e *EvaluationService) sideScore(p Board, piece int, side Color) int {
	var score = 0
	for x := p.PieceMask(piece, side); x != 0; x &= x - 1 {
		var sq = FirstOne(x)
		score += e.Values[piece] + e.PST[piece][relativeSquare(side, sq)]
	}
	return score
}

// Delta returns how much m improves the evaluation for the side to move,
// without making the move. For every legal m:
//
//	Evaluate(after m) == -Evaluate(before) - Delta(before, m)
func (e *EvaluationService) Delta(p Board, m Move) int {
	var us = p.SideToMove()
	var them = us.Opponent()
	var from, to = m.From(), m.To()
	var piece = p.PieceAt(from)

	var result = e.quietDelta(us, piece, from, to)

	if m.IsCastling() {
		var base = from &^ 7
		if m.IsQueenSide() {
			result += e.quietDelta(us, Rook, base, base+3)
		} else {
			result += e.quietDelta(us, Rook, base+7, base+5)
		}
	} else if m.IsEnPassant() {
		var captureSquare = to - 8
		if us == Black {
			captureSquare = to + 8
		}
		result += e.Values[Pawn] + e.PST[Pawn][relativeSquare(them, captureSquare)]
	} else if captured := p.PieceAt(to); captured != Empty {
		result += e.Values[captured] + e.PST[captured][relativeSquare(them, to)]
	}

	if promotion := m.Promotion(); promotion != Empty {
		var relTo = relativeSquare(us, to)
		result += e.Values[promotion] - e.Values[Pawn] +
			e.PST[promotion][relTo] - e.PST[Pawn][relTo]
	}

	return result
}

func (e *EvaluationService) quietDelta(side Color, piece, from, to int) int {
	return e.PST[piece][relativeSquare(side, to)] - e.PST[piece][relativeSquare(side, from)]
}
