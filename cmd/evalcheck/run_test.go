package main

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/kestrel-chess/kestrel/pkg/rules"
)

func TestFenFromLine(t *testing.T) {
	var tests = []struct {
		line string
		fen  string
	}{
		{"8/8/4k3/8/8/3K4/8/8 w - - 0 1", "8/8/4k3/8/8/3K4/8/8 w - - 0 1"},
		{"8/8/4k3/8/8/3K4/8/8 w - - bm Kd4; id \"x\";", "8/8/4k3/8/8/3K4/8/8 w - -"},
		{"8/8/4k3/8/8/3K4/8/8 b - -", "8/8/4k3/8/8/3K4/8/8 b - -"},
	}
	for _, test := range tests {
		var fen, err = fenFromLine(test.line)
		if err != nil || fen != test.fen {
			t.Error(test.line, fen, err)
		}
	}
	if _, err := fenFromLine("8/8/8 w"); err == nil {
		t.Error("expected error")
	}
}

func TestRunBuiltinPositions(t *testing.T) {
	for _, name := range rules.Names() {
		config = Config{
			Rules:       name,
			Depth:       1,
			Playouts:    1,
			Plies:       40,
			Concurrency: 2,
		}
		var result, err = run(context.Background(), zerolog.Nop())
		if err != nil {
			t.Fatal(name, err)
		}
		if result.positions == 0 || result.moves == 0 {
			t.Error(name, result)
		}
		if result.mismatches != 0 {
			t.Error(name, result.mismatches)
		}
	}
}
