package rules

import (
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/notnil/chess"

	"github.com/kestrel-chess/kestrel/pkg/common"
)

// Notnil is a position backed by github.com/notnil/chess. Positions there
// are immutable values, so Undo restores the previous pointer.
type Notnil struct {
	pos     *chess.Position
	stack   []*chess.Position
	history history
	// moves caches the valid moves of pos until the next Apply or Undo.
	moves       []*chess.Move
	movesCached bool
}

func NewNotnil(fen string) (p *Notnil, err error) {
	fen, rule50, err := normalizeFEN(fen)
	if err != nil {
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			p = nil
			err = fmt.Errorf("%w: %q: %v", common.ErrMalformedSpec, fen, r)
		}
	}()
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrMalformedSpec, err)
	}
	p = &Notnil{
		pos: chess.NewGame(opt).Position(),
	}
	p.history = newHistory(p.Key(), rule50)
	return p, nil
}

var pieceTypes = [...]int{
	chess.NoPieceType: common.Empty,
	chess.King:        common.King,
	chess.Queen:       common.Queen,
	chess.Rook:        common.Rook,
	chess.Bishop:      common.Bishop,
	chess.Knight:      common.Knight,
	chess.Pawn:        common.Pawn,
}

func (p *Notnil) SideToMove() common.Color {
	if p.pos.Turn() == chess.White {
		return common.White
	}
	return common.Black
}

func (p *Notnil) PieceAt(sq int) int {
	return pieceTypes[p.pos.Board().Piece(chess.Square(sq)).Type()]
}

func (p *Notnil) PieceMask(piece int, side common.Color) uint64 {
	var color = chess.White
	if side == common.Black {
		color = chess.Black
	}
	var board = p.pos.Board()
	var result uint64
	for sq := 0; sq < 64; sq++ {
		var pc = board.Piece(chess.Square(sq))
		if pc != chess.NoPiece && pc.Color() == color && pieceTypes[pc.Type()] == piece {
			result |= common.SquareMask(sq)
		}
	}
	return result
}

// Key hashes placement, side, castling rights and en passant square. The
// library's own hash also covers the move clocks, which would hide
// repetitions.
func (p *Notnil) Key() uint64 {
	var fields = strings.Fields(p.pos.String())
	var h = fnv.New64a()
	h.Write([]byte(strings.Join(fields[:4], " ")))
	return h.Sum64()
}

func (p *Notnil) FEN() string {
	return p.pos.String()
}

func (p *Notnil) Apply(m common.Move) {
	var native = p.findNative(m)
	if native == nil {
		panic(fmt.Errorf("%w: %v in %v", common.ErrIllegalMove, m, p.FEN()))
	}
	p.stack = append(p.stack, p.pos)
	p.pos = p.pos.Update(native)
	p.movesCached = false
	p.history.push(p.Key(), resetsRule50(m))
}

func (p *Notnil) Undo() {
	var last = len(p.stack) - 1
	p.pos = p.stack[last]
	p.stack[last] = nil
	p.stack = p.stack[:last]
	p.history.pop()
	p.movesCached = false
}

func (p *Notnil) LegalMoves(buffer []common.Move) []common.Move {
	var result = buffer[:0]
	for _, native := range p.validMoves() {
		result = append(result, p.fromNative(native))
	}
	return result
}

func (p *Notnil) ParseMove(lan string) (common.Move, error) {
	var buffer [common.MaxMoves]common.Move
	for _, m := range p.LegalMoves(buffer[:]) {
		if strings.EqualFold(m.String(), lan) {
			return m, nil
		}
	}
	return common.MoveEmpty, fmt.Errorf("%w: %v in %v", common.ErrIllegalMove, lan, p.FEN())
}

func (p *Notnil) IsTerminal() bool {
	return len(p.validMoves()) == 0 ||
		p.history.isDraw(p)
}

func (p *Notnil) findNative(m common.Move) *chess.Move {
	for _, native := range p.validMoves() {
		if int(native.S1()) == m.From() &&
			int(native.S2()) == m.To() &&
			pieceTypes[native.Promo()] == m.Promotion() {
			return native
		}
	}
	return nil
}

func (p *Notnil) validMoves() []*chess.Move {
	if !p.movesCached {
		p.moves = p.pos.ValidMoves()
		p.movesCached = true
	}
	return p.moves
}

func (p *Notnil) fromNative(native *chess.Move) common.Move {
	var from = int(native.S1())
	var to = int(native.S2())
	switch {
	case native.HasTag(chess.EnPassant):
		return common.MakeEnPassant(from, to)
	case native.HasTag(chess.KingSideCastle), native.HasTag(chess.QueenSideCastle):
		return common.MakeCastle(from, to)
	}
	var moving = p.PieceAt(from)
	var captured = p.PieceAt(to)
	if moving == common.Pawn {
		return common.MakePawnMove(from, to, captured, pieceTypes[native.Promo()])
	}
	return common.MakeMove(from, to, moving, captured)
}
