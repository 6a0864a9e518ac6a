package eval

import (
	"strings"
	"testing"
	"unicode"

	"lukechampine.com/frand"

	. "github.com/kestrel-chess/kestrel/pkg/common"
	"github.com/kestrel-chess/kestrel/pkg/rules"
)

var testFENs = []string{
	InitialPositionFen,
	"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
	"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R b KQkq - 0 1",
	"rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq f6 0 3",
	"8/7p/p5pb/4k3/P1pPn3/8/P5PP/1rB2RK1 b - d3 0 28",
	"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
	"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1",
	"r2q1rk1/pP1p2pp/Q4n2/bbp1p3/Np6/1B3NBn/pPPP1PPP/R3K2R b KQ - 0 1",
	"8/P7/8/8/8/8/7p/K5k1 b - - 0 1",
	"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	"r1bqk2r/pppp1ppp/2n2n2/2b1p3/2B1P3/5N2/PPPP1PPP/RNBQK2R w KQkq - 4 4",
	// rights and en passant squares the board cannot support
	"4k3/8/8/8/8/8/8/4K2R w KQ - 0 1",
	"4k3/8/8/8/8/8/8/R3K3 w KQ - 0 1",
	"r3k3/8/8/8/8/8/8/4K3 b kq - 0 1",
	"4k3/8/8/8/8/8/3P4/4K3 w - e3 0 1",
}

func TestTablesOrientation(t *testing.T) {
	var tables = DefaultTables()
	var tests = []struct {
		piece int
		sq    int
		want  int
	}{
		{Pawn, MakeSquare(fileOf("e"), 1), -20},
		{Pawn, MakeSquare(fileOf("a"), 6), 50},
		{Knight, MakeSquare(fileOf("g"), 0), -40},
		{Knight, MakeSquare(fileOf("f"), 2), 10},
		{King, MakeSquare(fileOf("g"), 0), 30},
		{Rook, MakeSquare(fileOf("d"), 0), 5},
	}
	for _, test := range tests {
		var got = tables.PST[test.piece][test.sq]
		if got != test.want {
			t.Error(test.piece, SquareName(test.sq), got, test.want)
		}
	}
}

func fileOf(s string) int {
	return int(s[0] - 'a')
}

func TestEvaluateStartpos(t *testing.T) {
	var e = NewEvaluationService()
	for _, name := range rules.Names() {
		var newPosition, _ = rules.Get(name)
		var p, err = newPosition(InitialPositionFen)
		if err != nil {
			t.Fatal(err)
		}
		if score := e.Evaluate(p); score != 0 {
			t.Error(name, score)
		}
	}
}

func TestDeltaKnightDevelopment(t *testing.T) {
	var e = NewEvaluationService()
	var newPosition, _ = rules.Get(rules.DefaultBackend)
	var p, err = newPosition(InitialPositionFen)
	if err != nil {
		t.Fatal(err)
	}
	var tests = []struct {
		move  string
		delta int
	}{
		{"g1f3", 50},
		{"b1c3", 50},
		{"g1h3", 10},
		{"e2e4", 40},
		{"a2a3", 0},
	}
	for _, test := range tests {
		m, err := p.ParseMove(test.move)
		if err != nil {
			t.Fatal(test.move, err)
		}
		if delta := e.Delta(p, m); delta != test.delta {
			t.Error(test.move, delta, test.delta)
		}
	}
}

type deltaClasses struct {
	quiet, captures, enPassant, castles, promotions int
}

func (c *deltaClasses) add(m Move) {
	switch {
	case m.IsEnPassant():
		c.enPassant++
	case m.IsCastling():
		c.castles++
	case m.Promotion() != Empty:
		c.promotions++
	case m.IsCapture():
		c.captures++
	default:
		c.quiet++
	}
}

func checkDelta(t *testing.T, e *EvaluationService, p Position, m Move) {
	var before = e.Evaluate(p)
	var delta = e.Delta(p, m)
	p.Apply(m)
	var after = e.Evaluate(p)
	p.Undo()
	if after != -before-delta {
		t.Error(p.FEN(), m, before, delta, after)
	}
}

func TestDeltaIdentity(t *testing.T) {
	var e = NewEvaluationService()
	for _, name := range rules.Names() {
		var newPosition, _ = rules.Get(name)
		var classes deltaClasses
		for _, fen := range testFENs {
			var p, err = newPosition(fen)
			if err != nil {
				t.Fatal(name, fen, err)
			}
			for _, m := range p.LegalMoves(nil) {
				classes.add(m)
				checkDelta(t, e, p, m)
			}
		}
		if classes.quiet == 0 || classes.captures == 0 || classes.enPassant == 0 ||
			classes.castles == 0 || classes.promotions == 0 {
			t.Error(name, "move classes not covered", classes)
		}
	}
}

func TestDeltaIdentityRandomGames(t *testing.T) {
	var e = NewEvaluationService()
	var newPosition, _ = rules.Get(rules.DefaultBackend)
	var buffer [MaxMoves]Move
	for game := 0; game < 20; game++ {
		var p, err = newPosition(testFENs[game%len(testFENs)])
		if err != nil {
			t.Fatal(err)
		}
		for ply := 0; ply < 100 && !p.IsTerminal(); ply++ {
			var ml = p.LegalMoves(buffer[:])
			for _, m := range ml {
				checkDelta(t, e, p, m)
			}
			p.Apply(ml[frand.Intn(len(ml))])
		}
	}
}

func TestEvalMirror(t *testing.T) {
	var e = NewEvaluationService()
	var newPosition, _ = rules.Get(rules.DefaultBackend)
	for _, fen := range testFENs {
		var p1, err = newPosition(fen)
		if err != nil {
			t.Fatal(fen, err)
		}
		p2, err := newPosition(mirrorFEN(fen))
		if err != nil {
			t.Fatal(mirrorFEN(fen), err)
		}
		var score1 = e.Evaluate(p1)
		var score2 = e.Evaluate(p2)
		if score1 != score2 {
			t.Error(fen, score1, score2)
		}
	}
}

// mirrorFEN flips the board vertically and swaps colours.
func mirrorFEN(fen string) string {
	var fields = strings.Fields(fen)
	var ranks = strings.Split(fields[0], "/")
	for i, j := 0, len(ranks)-1; i < j; i, j = i+1, j-1 {
		ranks[i], ranks[j] = ranks[j], ranks[i]
	}
	fields[0] = swapCase(strings.Join(ranks, "/"))
	if fields[1] == "w" {
		fields[1] = "b"
	} else {
		fields[1] = "w"
	}
	if fields[2] != "-" {
		var castling = swapCase(fields[2])
		var sb strings.Builder
		for _, ch := range "KQkq" {
			if strings.ContainsRune(castling, ch) {
				sb.WriteRune(ch)
			}
		}
		fields[2] = sb.String()
	}
	if fields[3] != "-" {
		fields[3] = string(fields[3][0]) + string('1'+'8'-fields[3][1])
	}
	return strings.Join(fields, " ")
}

func swapCase(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsUpper(r) {
			return unicode.ToLower(r)
		}
		return unicode.ToUpper(r)
	}, s)
}
