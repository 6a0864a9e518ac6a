// Command evalcheck verifies the incremental evaluation against the full
// evaluation, and apply/undo restoration, over a set of positions.
package main

import (
	"context"
	_ "embed"
	"flag"
	"os"
	"runtime"
	"strings"

	"github.com/rs/zerolog"

	"github.com/kestrel-chess/kestrel/pkg/rules"
)

//go:embed positions.txt
var positionsTxt string

type Config struct {
	Input       string
	Rules       string
	Depth       int
	Playouts    int
	Plies       int
	Concurrency int
}

var config Config

func main() {
	flag.StringVar(&config.Input, "input", "", "FEN or EPD file, one position per line (default: built-in set)")
	flag.StringVar(&config.Rules, "rules", rules.DefaultBackend, "rules backend: "+strings.Join(rules.Names(), ", "))
	flag.IntVar(&config.Depth, "depth", 2, "tree depth checked from every position")
	flag.IntVar(&config.Playouts, "playouts", 0, "random games played from every position")
	flag.IntVar(&config.Plies, "plies", 200, "maximum length of a random game")
	flag.IntVar(&config.Concurrency, "concurrency", runtime.NumCPU(), "number of workers")
	flag.Parse()

	var logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	logger.Info().Interface("config", config).Msg("evalcheck")

	var result, err = run(context.Background(), logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("evalcheck failed")
	}
	logger.Info().
		Int64("positions", result.positions).
		Int64("moves", result.moves).
		Int64("mismatches", result.mismatches).
		Msg("done")
	if result.mismatches != 0 {
		os.Exit(1)
	}
}
