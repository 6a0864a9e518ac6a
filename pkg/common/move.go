package common

type Move int32

const MoveEmpty = Move(0)

const (
	flagEnPassant = 1 << (21 + iota)
	flagKingSideCastle
	flagQueenSideCastle
)

func MakeMove(from, to, movingPiece, capturedPiece int) Move {
	return Move(from ^ (to << 6) ^ (movingPiece << 12) ^ (capturedPiece << 15))
}

func MakePawnMove(from, to, capturedPiece, promotion int) Move {
	return Move(from ^ (to << 6) ^ (Pawn << 12) ^ (capturedPiece << 15) ^ (promotion << 18))
}

func MakeEnPassant(from, to int) Move {
	return MakePawnMove(from, to, Pawn, Empty) | flagEnPassant
}

func MakeCastle(from, to int) Move {
	var m = MakeMove(from, to, King, Empty)
	if to < from {
		return m | flagQueenSideCastle
	}
	return m | flagKingSideCastle
}

func (m Move) From() int {
	return int(m & 63)
}

func (m Move) To() int {
	return int((m >> 6) & 63)
}

func (m Move) MovingPiece() int {
	return int((m >> 12) & 7)
}

func (m Move) CapturedPiece() int {
	return int((m >> 15) & 7)
}

func (m Move) Promotion() int {
	return int((m >> 18) & 7)
}

func (m Move) IsCapture() bool {
	return m.CapturedPiece() != Empty
}

func (m Move) IsEnPassant() bool {
	return m&flagEnPassant != 0
}

func (m Move) IsCastling() bool {
	return m&(flagKingSideCastle|flagQueenSideCastle) != 0
}

func (m Move) IsQueenSide() bool {
	return m&flagQueenSideCastle != 0
}

func (m Move) String() string {
	if m == MoveEmpty {
		return "0000"
	}
	var sPromotion = ""
	if m.Promotion() != Empty {
		sPromotion = string("nbrq"[m.Promotion()-Knight])
	}
	return SquareName(m.From()) + SquareName(m.To()) + sPromotion
}
