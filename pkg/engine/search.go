package engine

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"

	. "github.com/kestrel-chess/kestrel/pkg/common"
)

const valueInfinity = math.MaxInt32

// Search reports a score for every root move at every depth from 1 to the
// maximum depth. Every root move is searched full width without pruning.
// ctx is checked only between root moves so that a cancelled search never
// reports a partially searched score.
func (e *Engine) Search(ctx context.Context, searchParams SearchParams) (SearchInfo, error) {
	if !e.searching.CompareAndSwap(false, true) {
		return SearchInfo{}, ErrEngineBusy
	}
	defer e.searching.Store(false)
	if e.position == nil {
		return SearchInfo{}, ErrNoPosition
	}

	var maxDepth = e.MaxDepth
	if searchParams.Limits.Depth > 0 {
		maxDepth = searchParams.Limits.Depth
	}
	maxDepth = Max(1, Min(maxDepth, MaxDepthLimit))

	var start = time.Now()
	var id = uuid.NewString()
	var logger = e.logger.With().Str("search", id).Logger()
	logger.Info().
		Str("fen", e.position.FEN()).
		Int("depth", maxDepth).
		Msg("search started")

	e.nodes = 0
	e.stack = make([][]Move, maxDepth+1)
	for i := range e.stack {
		e.stack[i] = make([]Move, 0, MaxMoves)
	}

	var p = e.position
	var evaluation = e.evaluator.Evaluate(p)
	var rootMoves = p.LegalMoves(make([]Move, 0, MaxMoves))
	var result = SearchInfo{ID: id}

	for depth := 1; depth <= maxDepth; depth++ {
		for _, move := range rootMoves {
			if err := ctx.Err(); err != nil {
				result.Nodes = e.nodes
				result.Time = time.Since(start)
				logger.Info().Err(err).
					Int("depth", depth).
					Int64("nodes", e.nodes).
					Msg("search stopped")
				return result, err
			}
			var delta = e.evaluator.Delta(p, move)
			p.Apply(move)
			var score = e.negamax(depth, -evaluation-delta, 1)
			p.Undo()
			result = SearchInfo{
				ID:    id,
				Move:  move,
				Depth: depth,
				Score: score,
				Delta: delta,
				Nodes: e.nodes,
				Time:  time.Since(start),
			}
			if searchParams.Progress != nil {
				searchParams.Progress(result)
			}
		}
		logger.Debug().
			Int("depth", depth).
			Int64("nodes", e.nodes).
			Dur("elapsed", time.Since(start)).
			Msg("depth complete")
	}

	result.Nodes = e.nodes
	result.Time = time.Since(start)
	logger.Info().
		Int64("nodes", result.Nodes).
		Dur("elapsed", result.Time).
		Msg("search finished")
	return result, nil
}

// negamax returns the score of the current position from the point of view
// of the side that moved into it. evaluation is the static score for the
// side to move.
func (e *Engine) negamax(depth, evaluation, height int) int {
	e.nodes++
	var p = e.position
	if depth == 0 || p.IsTerminal() {
		return -evaluation
	}
	var value = -valueInfinity
	var ml = p.LegalMoves(e.stack[height])
	for _, move := range ml {
		var delta = e.evaluator.Delta(p, move)
		p.Apply(move)
		var score = -e.negamax(depth-1, -evaluation-delta, height+1)
		p.Undo()
		if score > value {
			value = score
		}
	}
	return value
}
