package engine

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"

	. "github.com/kestrel-chess/kestrel/pkg/common"
)

var ErrNoPosition = errors.New("no position set")

type Evaluator interface {
	Evaluate(p Board) int
	Delta(p Board, m Move) int
}

type Engine struct {
	Options
	evaluator  Evaluator
	logger     zerolog.Logger
	position   Position
	transTable *transTable
	// searching is held by Search and by every position mutation, so the
	// engine never runs two of them at once.
	searching  atomic.Bool
	nodes      int64
	stack      [][]Move
}

// NewEngine creates an engine set up on the initial position.
func NewEngine(options Options, evaluator Evaluator, logger zerolog.Logger) *Engine {
	var e = &Engine{
		Options:   options,
		evaluator: evaluator,
		logger:    logger,
	}
	if err := e.SetPosition("startpos"); err != nil {
		panic(err)
	}
	return e
}

// SetPosition accepts "startpos", "fen <FEN>" or a bare FEN. The
// transposition table is reset whether or not the position is accepted. After
// a failure the engine has no position until the next successful call.
func (e *Engine) SetPosition(spec string) (err error) {
	if !e.searching.CompareAndSwap(false, true) {
		return ErrEngineBusy
	}
	defer e.searching.Store(false)
	e.transTable = newTransTable(e.Hash)
	e.position = nil

	var fen = strings.TrimSpace(spec)
	if fen == "startpos" {
		fen = InitialPositionFen
	} else if strings.HasPrefix(fen, "fen ") {
		fen = strings.TrimSpace(fen[len("fen "):])
	}

	defer func() {
		if r := recover(); r != nil {
			e.position = nil
			err = fmt.Errorf("%w: %q: %v", ErrMalformedSpec, spec, r)
		}
	}()
	position, err := e.NewPosition(fen)
	if err != nil {
		return err
	}
	e.position = position
	e.logger.Debug().Str("fen", position.FEN()).Msg("position set")
	return nil
}

// PlayMoves applies moves in order and stops at the first one that fails.
func (e *Engine) PlayMoves(moves []string) error {
	for i, move := range moves {
		if err := e.PlayMove(move); err != nil {
			return fmt.Errorf("move %v: %w", i+1, err)
		}
	}
	return nil
}

// PlayMove applies a move given in long algebraic notation (e2e4, e7e8q).
func (e *Engine) PlayMove(lan string) (err error) {
	if !e.searching.CompareAndSwap(false, true) {
		return ErrEngineBusy
	}
	defer e.searching.Store(false)
	if e.position == nil {
		return ErrNoPosition
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v: %v", ErrIllegalMove, lan, r)
		}
	}()
	move, err := e.position.ParseMove(lan)
	if err != nil {
		return err
	}
	e.position.Apply(move)
	return nil
}

// FEN returns the current position or an empty string when none is set.
func (e *Engine) FEN() string {
	if e.position == nil {
		return ""
	}
	return e.position.FEN()
}

// IsSearching reports whether a search or a position change is running.
func (e *Engine) IsSearching() bool {
	return e.searching.Load()
}
