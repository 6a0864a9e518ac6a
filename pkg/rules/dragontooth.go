package rules

import (
	"fmt"
	"strings"

	"github.com/dylhunn/dragontoothmg"

	"github.com/kestrel-chess/kestrel/pkg/common"
)

// Dragontooth is a position backed by the dragontoothmg bitboard move
// generator.
type Dragontooth struct {
	board   dragontoothmg.Board
	undos   []func()
	history history
	// moves caches the legal moves of board until the next Apply or Undo.
	moves       []dragontoothmg.Move
	movesCached bool
}

func NewDragontooth(fen string) (p *Dragontooth, err error) {
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
	p = &Dragontooth{
		board: dragontoothmg.ParseFen(fen),
	}
	p.history = newHistory(p.board.Hash(), rule50)
	return p, nil
}

func (p *Dragontooth) SideToMove() common.Color {
	if p.board.Wtomove {
		return common.White
	}
	return common.Black
}

func (p *Dragontooth) bitboards(side common.Color) *dragontoothmg.Bitboards {
	if side == common.White {
		return &p.board.White
	}
	return &p.board.Black
}

func (p *Dragontooth) PieceMask(piece int, side common.Color) uint64 {
	var bb = p.bitboards(side)
	switch piece {
	case common.Pawn:
		return bb.Pawns
	case common.Knight:
		return bb.Knights
	case common.Bishop:
		return bb.Bishops
	case common.Rook:
		return bb.Rooks
	case common.Queen:
		return bb.Queens
	case common.King:
		return bb.Kings
	}
	return 0
}

func (p *Dragontooth) PieceAt(sq int) int {
	var mask = common.SquareMask(sq)
	for _, bb := range [...]*dragontoothmg.Bitboards{&p.board.White, &p.board.Black} {
		if bb.All&mask == 0 {
			continue
		}
		switch {
		case bb.Pawns&mask != 0:
			return common.Pawn
		case bb.Knights&mask != 0:
			return common.Knight
		case bb.Bishops&mask != 0:
			return common.Bishop
		case bb.Rooks&mask != 0:
			return common.Rook
		case bb.Queens&mask != 0:
			return common.Queen
		case bb.Kings&mask != 0:
			return common.King
		}
	}
	return common.Empty
}

func (p *Dragontooth) Key() uint64 {
	return p.board.Hash()
}

func (p *Dragontooth) FEN() string {
	return p.board.ToFen()
}

func (p *Dragontooth) Apply(m common.Move) {
	p.undos = append(p.undos, p.board.Apply(toDragontooth(m)))
	p.history.push(p.board.Hash(), resetsRule50(m))
	p.movesCached = false
}

func (p *Dragontooth) Undo() {
	var last = len(p.undos) - 1
	p.undos[last]()
	p.undos[last] = nil
	p.undos = p.undos[:last]
	p.history.pop()
	p.movesCached = false
}

func (p *Dragontooth) LegalMoves(buffer []common.Move) []common.Move {
	var result = buffer[:0]
	for _, dm := range p.legalMoves() {
		result = append(result, p.fromDragontooth(dm))
	}
	return result
}

func (p *Dragontooth) ParseMove(lan string) (common.Move, error) {
	var buffer [common.MaxMoves]common.Move
	for _, m := range p.LegalMoves(buffer[:]) {
		if strings.EqualFold(m.String(), lan) {
			return m, nil
		}
	}
	return common.MoveEmpty, fmt.Errorf("%w: %v in %v", common.ErrIllegalMove, lan, p.FEN())
}

func (p *Dragontooth) IsTerminal() bool {
	return len(p.legalMoves()) == 0 ||
		p.history.isDraw(p)
}

func (p *Dragontooth) legalMoves() []dragontoothmg.Move {
	if !p.movesCached {
		p.moves = p.board.GenerateLegalMoves()
		p.movesCached = true
	}
	return p.moves
}

func (p *Dragontooth) fromDragontooth(dm dragontoothmg.Move) common.Move {
	var from = int(dm.From())
	var to = int(dm.To())
	var moving = p.PieceAt(from)
	var captured = p.PieceAt(to)
	switch moving {
	case common.Pawn:
		if captured == common.Empty && common.File(from) != common.File(to) {
			return common.MakeEnPassant(from, to)
		}
		return common.MakePawnMove(from, to, captured, int(dm.Promote()))
	case common.King:
		if to-from == 2 || from-to == 2 {
			return common.MakeCastle(from, to)
		}
	}
	return common.MakeMove(from, to, moving, captured)
}

// toDragontooth packs m in dragontoothmg layout: destination in bits 0-5,
// origin in bits 6-11, promotion piece in bits 12-14.
func toDragontooth(m common.Move) dragontoothmg.Move {
	return dragontoothmg.Move(uint16(m.To()) |
		uint16(m.From())<<6 |
		uint16(m.Promotion())<<12)
}
