package uci

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/exp/slices"

	"github.com/kestrel-chess/kestrel/pkg/common"
)

type Engine interface {
	SetPosition(spec string) error
	PlayMoves(moves []string) error
	Search(ctx context.Context, searchParams common.SearchParams) (common.SearchInfo, error)
}

type Protocol struct {
	name         string
	author       string
	version      string
	options      []Option
	engine       Engine
	logger       zerolog.Logger
	out          io.Writer
	thinking     bool
	engineOutput chan common.SearchInfo
	cancel       context.CancelFunc
}

func New(name, author, version string, engine Engine, options []Option, logger zerolog.Logger) *Protocol {
	return &Protocol{
		name:    name,
		author:  author,
		version: version,
		engine:  engine,
		options: options,
		logger:  logger,
	}
}

// Run reads commands from in until quit or end of input. On end of input a
// running search is allowed to finish; quit stops it.
func (uci *Protocol) Run(ctx context.Context, in io.Reader, out io.Writer) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	uci.out = out

	var commands = make(chan string)
	var quit = make(chan struct{})

	go func() {
		defer close(commands)
		readCommands(ctx, in, commands, quit)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-quit:
			if uci.cancel != nil {
				uci.cancel()
			}
			return
		case si, ok := <-uci.engineOutput:
			if ok {
				fmt.Fprintln(uci.out, searchInfoToUci(si))
			} else {
				uci.thinking = false
				uci.cancel = nil
				uci.engineOutput = nil
				if commands == nil {
					return
				}
			}
		case commandLine, ok := <-commands:
			if !ok {
				commands = nil
				if !uci.thinking {
					return
				}
				continue
			}
			var err = uci.handle(ctx, commandLine)
			if err != nil {
				uci.logger.Warn().Err(err).Str("command", commandLine).Msg("command failed")
			}
		}
	}
}

func readCommands(ctx context.Context, in io.Reader, commands chan<- string, quit chan<- struct{}) {
	var scanner = bufio.NewScanner(in)
	for scanner.Scan() {
		var commandLine = strings.TrimSpace(scanner.Text())
		if commandLine == "quit" {
			close(quit)
			return
		}
		if commandLine != "" {
			select {
			case commands <- commandLine:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (uci *Protocol) handle(ctx context.Context, commandLine string) error {
	var fields = strings.Fields(commandLine)
	if len(fields) == 0 {
		return nil
	}
	var commandName = fields[0]
	fields = fields[1:]

	if commandName == "isready" {
		return uci.isReadyCommand(fields)
	}

	if uci.thinking {
		if commandName == "stop" {
			uci.cancel()
			return nil
		}
		return common.ErrEngineBusy
	}

	var h func(fields []string) error

	switch commandName {
	case "uci":
		h = uci.uciCommand
	case "setoption":
		h = uci.setOptionCommand
	case "position":
		h = uci.positionCommand
	case "ucinewgame":
		h = uci.uciNewGameCommand
	case "go":
		return uci.goCommand(ctx, fields)
	case "stop":
		return nil
	}

	if h == nil {
		return errors.New("command not found")
	}

	return h(fields)
}

func (uci *Protocol) uciCommand(fields []string) error {
	fmt.Fprintf(uci.out, "id name %s %s\n", uci.name, uci.version)
	fmt.Fprintf(uci.out, "id author %s\n", uci.author)
	for _, option := range uci.options {
		fmt.Fprintln(uci.out, option.UciString())
	}
	fmt.Fprintln(uci.out, "uciok")
	return nil
}

func (uci *Protocol) setOptionCommand(fields []string) error {
	if len(fields) < 4 {
		return errors.New("invalid setoption arguments")
	}
	var name, value = fields[1], fields[3]
	for _, option := range uci.options {
		if strings.EqualFold(option.UciName(), name) {
			return option.Set(value)
		}
	}
	return errors.New("unhandled option")
}

func (uci *Protocol) isReadyCommand(fields []string) error {
	fmt.Fprintln(uci.out, "readyok")
	return nil
}

func (uci *Protocol) positionCommand(fields []string) error {
	if len(fields) == 0 {
		return errors.New("invalid position arguments")
	}
	var token = fields[0]
	var spec string
	var movesIndex = slices.Index(fields, "moves")
	if token == "startpos" {
		spec = token
	} else if token == "fen" {
		if movesIndex == -1 {
			spec = strings.Join(fields, " ")
		} else {
			spec = strings.Join(fields[:movesIndex], " ")
		}
	} else {
		return errors.New("unknown position command")
	}
	if err := uci.engine.SetPosition(spec); err != nil {
		return err
	}
	if movesIndex >= 0 && movesIndex+1 < len(fields) {
		return uci.engine.PlayMoves(fields[movesIndex+1:])
	}
	return nil
}

func (uci *Protocol) uciNewGameCommand(fields []string) error {
	return uci.engine.SetPosition("startpos")
}

func (uci *Protocol) goCommand(ctx context.Context, fields []string) error {
	var limits = parseLimits(fields)
	var searchCtx, cancel = context.WithCancel(ctx)
	var engineOutput = make(chan common.SearchInfo, 16)
	uci.cancel = cancel
	uci.thinking = true
	uci.engineOutput = engineOutput
	go func() {
		defer close(engineOutput)
		defer cancel()
		var _, err = uci.engine.Search(searchCtx, common.SearchParams{
			Limits: limits,
			Progress: func(si common.SearchInfo) {
				select {
				case engineOutput <- si:
				case <-ctx.Done():
				}
			},
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			uci.logger.Error().Err(err).Msg("search failed")
		}
	}()
	return nil
}

func searchInfoToUci(si common.SearchInfo) string {
	var sb = &strings.Builder{}
	fmt.Fprintf(sb, "info depth %v currmove %v score cp %v nodes %v",
		si.Depth, si.Move, si.Score, si.Nodes)
	fmt.Fprintf(sb, " string delta %v", si.Delta)
	return sb.String()
}

func parseLimits(args []string) (result common.LimitsType) {
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "depth":
			if i+1 < len(args) {
				result.Depth, _ = strconv.Atoi(args[i+1])
				i++
			}
		}
	}
	return
}
