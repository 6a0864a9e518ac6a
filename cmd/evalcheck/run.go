package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"lukechampine.com/frand"

	"github.com/kestrel-chess/kestrel/pkg/common"
	"github.com/kestrel-chess/kestrel/pkg/eval"
	"github.com/kestrel-chess/kestrel/pkg/rules"
)

type stats struct {
	positions  int64
	moves      int64
	mismatches int64
}

func run(ctx context.Context, logger zerolog.Logger) (stats, error) {
	var result stats
	newPosition, err := rules.Get(config.Rules)
	if err != nil {
		return result, err
	}
	fens, err := loadPositions(config.Input)
	if err != nil {
		return result, err
	}

	g, ctx := errgroup.WithContext(ctx)

	var jobs = make(chan string)
	g.Go(func() error {
		defer close(jobs)
		for _, fen := range fens {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case jobs <- fen:
			}
		}
		return nil
	})

	for i := 0; i < common.Max(1, config.Concurrency); i++ {
		g.Go(func() error {
			var c = &checker{
				evaluator: eval.NewEvaluationService(),
				logger:    logger,
				stats:     &result,
			}
			for fen := range jobs {
				p, err := newPosition(fen)
				if err != nil {
					return err
				}
				atomic.AddInt64(&result.positions, 1)
				c.walk(p, config.Depth)
				for j := 0; j < config.Playouts; j++ {
					c.playout(p, config.Plies)
				}
			}
			return nil
		})
	}

	err = g.Wait()
	return result, err
}

type checker struct {
	evaluator *eval.EvaluationService
	logger    zerolog.Logger
	stats     *stats
	buffers   [][]common.Move
}

func (c *checker) buffer(height int) []common.Move {
	for len(c.buffers) <= height {
		c.buffers = append(c.buffers, make([]common.Move, 0, common.MaxMoves))
	}
	return c.buffers[height]
}

// checkMove applies m and verifies the delta identity, leaving m applied.
func (c *checker) checkMove(p common.Position, m common.Move, evaluation int) int {
	var delta = c.evaluator.Delta(p, m)
	var fen = p.FEN()
	p.Apply(m)
	atomic.AddInt64(&c.stats.moves, 1)
	var full = c.evaluator.Evaluate(p)
	if full != -evaluation-delta {
		atomic.AddInt64(&c.stats.mismatches, 1)
		c.logger.Error().
			Str("fen", fen).
			Stringer("move", m).
			Int("delta", delta).
			Int("want", full).
			Int("got", -evaluation-delta).
			Msg("delta mismatch")
	}
	return full
}

func (c *checker) checkRestored(p common.Position, key uint64, fen string, m common.Move) {
	if p.Key() != key || p.FEN() != fen {
		atomic.AddInt64(&c.stats.mismatches, 1)
		c.logger.Error().
			Str("fen", fen).
			Str("restored", p.FEN()).
			Stringer("move", m).
			Msg("undo mismatch")
	}
}

func (c *checker) walk(p common.Position, depth int) {
	c.walkFrom(p, depth, 0)
}

func (c *checker) walkFrom(p common.Position, depth, height int) {
	if depth == 0 {
		return
	}
	var key, fen = p.Key(), p.FEN()
	var evaluation = c.evaluator.Evaluate(p)
	for _, m := range p.LegalMoves(c.buffer(height)) {
		c.checkMove(p, m, evaluation)
		c.walkFrom(p, depth-1, height+1)
		p.Undo()
		c.checkRestored(p, key, fen, m)
	}
}

func (c *checker) playout(p common.Position, plies int) {
	var key, fen = p.Key(), p.FEN()
	var played = 0
	var evaluation = c.evaluator.Evaluate(p)
	for ; played < plies && !p.IsTerminal(); played++ {
		var ml = p.LegalMoves(c.buffer(0))
		var m = ml[frand.Intn(len(ml))]
		evaluation = c.checkMove(p, m, evaluation)
	}
	for ; played > 0; played-- {
		p.Undo()
	}
	c.checkRestored(p, key, fen, common.MoveEmpty)
}

func loadPositions(path string) ([]string, error) {
	var r io.Reader = strings.NewReader(positionsTxt)
	if path != "" {
		var f, err = os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	var result []string
	var scanner = bufio.NewScanner(r)
	for scanner.Scan() {
		var line = strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		var fen, err = fenFromLine(line)
		if err != nil {
			return nil, err
		}
		result = append(result, fen)
	}
	return result, scanner.Err()
}

// fenFromLine keeps the placement, side, castling and en passant fields of
// an EPD or FEN line and the clocks when present.
func fenFromLine(line string) (string, error) {
	var fields = strings.Fields(line)
	if len(fields) < 4 {
		return "", fmt.Errorf("%w: %q", common.ErrMalformedSpec, line)
	}
	if len(fields) >= 6 && isNumber(fields[4]) && isNumber(fields[5]) {
		return strings.Join(fields[:6], " "), nil
	}
	return strings.Join(fields[:4], " "), nil
}

func isNumber(s string) bool {
	var _, err = strconv.Atoi(s)
	return err == nil
}
