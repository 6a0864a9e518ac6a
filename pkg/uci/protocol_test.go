package uci

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/kestrel-chess/kestrel/pkg/common"
	"github.com/kestrel-chess/kestrel/pkg/engine"
	"github.com/kestrel-chess/kestrel/pkg/eval"
	"github.com/kestrel-chess/kestrel/pkg/rules"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// blockingEngine reports one move and then waits for cancellation.
type blockingEngine struct {
	specs []string
	moves [][]string
}

func (e *blockingEngine) SetPosition(spec string) error {
	e.specs = append(e.specs, spec)
	return nil
}

func (e *blockingEngine) PlayMoves(moves []string) error {
	e.moves = append(e.moves, moves)
	return nil
}

func (e *blockingEngine) Search(ctx context.Context, searchParams common.SearchParams) (common.SearchInfo, error) {
	var si = common.SearchInfo{
		Move:  common.MakeMove(common.MakeSquare(6, 0), common.MakeSquare(5, 2), common.Knight, common.Empty),
		Depth: 1,
		Score: -50,
		Delta: 50,
		Nodes: 21,
	}
	searchParams.Progress(si)
	<-ctx.Done()
	return si, ctx.Err()
}

func runProtocol(eng Engine, options []Option, input string) (string, string) {
	var out, log syncBuffer
	var protocol = New("Kestrel", "Kestrel developers", "test", eng, options, zerolog.New(&log))
	protocol.Run(context.Background(), strings.NewReader(input), &out)
	return out.String(), log.String()
}

func TestSearchDepthOne(t *testing.T) {
	var newPosition, _ = rules.Get(rules.DefaultBackend)
	var eng = engine.NewEngine(engine.NewOptions(newPosition), eval.NewEvaluationService(), zerolog.Nop())
	var out, log = runProtocol(eng, nil,
		"uci\nisready\nposition startpos moves e2e4\ngo depth 1\n")

	var lines = strings.Split(strings.TrimSpace(out), "\n")
	var want = []string{"id name Kestrel test", "id author Kestrel developers", "uciok", "readyok"}
	for i := range want {
		if i >= len(lines) || lines[i] != want[i] {
			t.Fatal(out)
		}
	}
	var infos = 0
	for _, line := range lines[len(want):] {
		if !strings.HasPrefix(line, "info depth 1 currmove ") {
			t.Error(line)
		}
		if !strings.Contains(line, " score cp ") || !strings.Contains(line, " string delta ") {
			t.Error(line)
		}
		infos++
	}
	if infos != 20 {
		t.Error(infos, out)
	}
	if log != "" {
		t.Error(log)
	}
}

func TestBusyWhileThinking(t *testing.T) {
	var eng = &blockingEngine{}
	var out, log = runProtocol(eng, nil,
		"go infinite\nposition startpos\nisready\nstop\n")
	if len(eng.specs) != 0 {
		t.Error(eng.specs)
	}
	if !strings.Contains(log, common.ErrEngineBusy.Error()) {
		t.Error(log)
	}
	if !strings.Contains(out, "info depth 1 currmove g1f3 score cp -50 nodes 21 string delta 50") {
		t.Error(out)
	}
	if !strings.Contains(out, "readyok") {
		t.Error(out)
	}
}

func TestQuitStopsSearch(t *testing.T) {
	var eng = &blockingEngine{}
	var done = make(chan struct{})
	go func() {
		defer close(done)
		runProtocol(eng, nil, "go\nquit\nposition startpos\n")
	}()
	<-done
	if len(eng.specs) != 0 {
		t.Error(eng.specs)
	}
}

func TestPositionCommand(t *testing.T) {
	const fen = "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1"
	var tests = []struct {
		input string
		spec  string
		moves []string
	}{
		{"position startpos", "startpos", nil},
		{"position startpos moves e2e4 e7e5", "startpos", []string{"e2e4", "e7e5"}},
		{"position fen " + fen, "fen " + fen, nil},
		{"position fen " + fen + " moves a5a4", "fen " + fen, []string{"a5a4"}},
		{"ucinewgame", "startpos", nil},
	}
	for _, test := range tests {
		var eng = &blockingEngine{}
		var _, log = runProtocol(eng, nil, test.input+"\n")
		if log != "" {
			t.Error(test.input, log)
		}
		if len(eng.specs) != 1 || eng.specs[0] != test.spec {
			t.Error(test.input, eng.specs)
		}
		if test.moves == nil {
			if len(eng.moves) != 0 {
				t.Error(test.input, eng.moves)
			}
		} else if len(eng.moves) != 1 || strings.Join(eng.moves[0], " ") != strings.Join(test.moves, " ") {
			t.Error(test.input, eng.moves)
		}
	}
}

func TestSetOption(t *testing.T) {
	var maxDepth = 20
	var options = []Option{
		&IntOption{Name: "MaxDepth", Min: 1, Max: 64, Value: &maxDepth},
	}
	var out, log = runProtocol(&blockingEngine{}, options,
		"uci\nsetoption name MaxDepth value 7\nsetoption name MaxDepth value 100\nsetoption name Foo value 1\n")
	if maxDepth != 7 {
		t.Error(maxDepth)
	}
	if !strings.Contains(out, "option name MaxDepth type spin default 20 min 1 max 64") {
		t.Error(out)
	}
	if strings.Count(log, "command failed") != 2 {
		t.Error(log)
	}
}

func TestUnknownCommand(t *testing.T) {
	var _, log = runProtocol(&blockingEngine{}, nil, "xyzzy\n")
	if !strings.Contains(log, "command not found") {
		t.Error(log)
	}
}

func TestParseLimits(t *testing.T) {
	var tests = []struct {
		args  string
		depth int
	}{
		{"", 0},
		{"depth 5", 5},
		{"infinite", 0},
		{"wtime 1000 depth 3", 3},
		{"depth", 0},
	}
	for _, test := range tests {
		var limits = parseLimits(strings.Fields(test.args))
		if limits.Depth != test.depth {
			t.Error(test.args, limits.Depth)
		}
	}
}
