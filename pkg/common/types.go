package common

import "time"

const InitialPositionFen = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

type Color int

const (
	White Color = iota
	Black
)

func (c Color) Opponent() Color {
	return c ^ 1
}

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

const (
	Empty int = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

const (
	MaxMoves = 256
)

// Board is the read-only view of a position used by evaluation.
type Board interface {
	SideToMove() Color
	// PieceAt returns the piece type on sq or Empty.
	PieceAt(sq int) int
	PieceMask(piece int, side Color) uint64
}

// Position is the rules collaborator. Apply and Undo follow stack
// discipline; Undo restores the exact state that preceded the matching Apply.
type Position interface {
	Board
	Key() uint64
	Apply(m Move)
	Undo()
	// LegalMoves appends the legal moves to buffer[:0]. The order is stable
	// for a given position.
	LegalMoves(buffer []Move) []Move
	ParseMove(lan string) (Move, error)
	// IsTerminal reports checkmate, stalemate or a draw by rule.
	IsTerminal() bool
	FEN() string
}

type LimitsType struct {
	Depth int
}

type SearchParams struct {
	Limits   LimitsType
	Progress func(si SearchInfo)
}

// SearchInfo is a single root move report.
type SearchInfo struct {
	ID    string
	Move  Move
	Depth int
	Score int
	Delta int
	Nodes int64
	Time  time.Duration
}
