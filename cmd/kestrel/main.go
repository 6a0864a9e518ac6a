package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"strings"

	"github.com/rs/zerolog"

	"github.com/kestrel-chess/kestrel/pkg/engine"
	"github.com/kestrel-chess/kestrel/pkg/eval"
	"github.com/kestrel-chess/kestrel/pkg/rules"
	"github.com/kestrel-chess/kestrel/pkg/uci"
)

const (
	name   = "Kestrel"
	author = "Kestrel developers"
)

var (
	versionName = "0.1.0"
	buildDate   = "(null)"
	gitRevision = "(null)"
	flgRules    string
	flgDepth    int
	flgLogLevel string
)

func main() {
	flag.StringVar(&flgRules, "rules", rules.DefaultBackend, "rules backend: "+strings.Join(rules.Names(), ", "))
	flag.IntVar(&flgDepth, "depth", engine.DefaultMaxDepth, "maximum search depth")
	flag.StringVar(&flgLogLevel, "loglevel", "info", "log level")
	flag.Parse()

	var level, err = zerolog.ParseLevel(flgLogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	var logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	logger.Info().
		Str("version", versionName).
		Str("buildDate", buildDate).
		Str("gitRevision", gitRevision).
		Str("runtime", runtime.Version()).
		Str("goarch", runtime.GOARCH).
		Str("goos", runtime.GOOS).
		Str("rules", flgRules).
		Msg(name)

	newPosition, err := rules.Get(flgRules)
	if err != nil {
		logger.Fatal().Err(err).Msg("bad configuration")
	}

	var options = engine.NewOptions(newPosition)
	options.MaxDepth = flgDepth
	var eng = engine.NewEngine(options, eval.NewEvaluationService(), logger)

	var protocol = uci.New(name, author, versionName, eng,
		[]uci.Option{
			&uci.IntOption{Name: "Hash", Min: 1, Max: 1 << 10, Value: &eng.Options.Hash},
			&uci.IntOption{Name: "MaxDepth", Min: 1, Max: engine.MaxDepthLimit, Value: &eng.Options.MaxDepth},
		},
		logger,
	)

	var ctx, stop = signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	protocol.Run(ctx, os.Stdin, os.Stdout)
}
