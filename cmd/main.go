package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"suitea/cmd/csv"
	"suitea/config"
	"suitea/report"
	"suitea/store"
	"suitea/suite"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

// handler is a function that handles a module/subcommand.
type handler func(ctx context.Context, args []string) error

// modules maps module names to their handlers. Every store backend is
// registered under its own name.
var modules = map[string]handler{
	"analyze": runAnalyze,
}

func init() {
	for _, name := range store.Names() {
		modules[name] = storeHandler(name)
	}
}

var errUsage = errors.New("usage")

func main() {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000000",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := dispatch(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr)
			usage(os.Stderr)
		}
		stop()
		os.Exit(exitCode(err))
	}
}

// dispatch picks the module from args[0] and forwards the rest to it.
// With no module, or a flag in first position, it runs analyze.
func dispatch(ctx context.Context, args []string) error {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return runAnalyze(ctx, args)
	}

	moduleName := args[0]
	handler, ok := modules[moduleName]
	if !ok {
		return fmt.Errorf("%w: unknown module: %s", errUsage, moduleName)
	}

	return handler(ctx, args[1:])
}

// exitCode maps pipeline errors to the process status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, suite.ErrSourceNotFound), errors.Is(err, suite.ErrSourceNotDir):
		return 2
	case errors.Is(err, suite.ErrNoLogs):
		return 3
	default:
		return 1
	}
}

// parseFlags layers command-line flags over config.Load. Only flags that
// were given override the file and environment.
func parseFlags(name string, args []string) (config.Config, error) {
	def := config.Default()

	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	configPath := fs.String("config", "", "optional YAML settings file")
	logDir := fs.String("logs", def.LogDir, "directory with seq_/omp_ log files")
	runsCSV := fs.String("csv", def.RunsCSV, "per-run output CSV")
	speedupCSV := fs.String("speedup_csv", def.SpeedupCSV, "speedup/efficiency output CSV")
	threads := fs.Int("threads", def.DefaultThreads, "thread count for omp logs without one (0 = leave unknown)")
	workers := fs.Int("workers", def.Workers, "concurrent file reads (0 = GOMAXPROCS)")
	verbose := fs.BoolP("verbose", "v", def.Verbose, "debug logging")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return config.Config{}, err
		}
		return config.Config{}, fmt.Errorf("%w: %s: %v", errUsage, name, err)
	}
	if fs.NArg() > 0 {
		return config.Config{}, fmt.Errorf("%w: %s: unexpected arguments: %s", errUsage, name, strings.Join(fs.Args(), " "))
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return config.Config{}, err
	}

	if fs.Changed("logs") {
		cfg.LogDir = *logDir
	}
	if fs.Changed("csv") {
		cfg.RunsCSV = *runsCSV
	}
	if fs.Changed("speedup_csv") {
		cfg.SpeedupCSV = *speedupCSV
	}
	if fs.Changed("threads") {
		cfg.DefaultThreads = *threads
	}
	if fs.Changed("workers") {
		cfg.Workers = *workers
	}
	if fs.Changed("verbose") {
		cfg.Verbose = *verbose
	}

	if cfg.Verbose {
		log.SetLevel(log.DebugLevel)
	}
	return cfg, cfg.Validate()
}

func pipelineOptions(cfg config.Config) suite.Options {
	return suite.Options{
		LogDir:         cfg.LogDir,
		DefaultThreads: cfg.DefaultThreads,
		Workers:        cfg.Workers,
	}
}

func runAnalyze(ctx context.Context, args []string) error {
	cfg, err := parseFlags("analyze", args)
	if errors.Is(err, pflag.ErrHelp) {
		usage(os.Stdout)
		return nil
	}
	if err != nil {
		return err
	}

	_, err = analyze(ctx, cfg, os.Stdout)
	return err
}

// analyze runs the pipeline, writes both CSVs and prints the summary to out.
func analyze(ctx context.Context, cfg config.Config, out io.Writer) (*suite.Result, error) {
	res, err := suite.Run(ctx, pipelineOptions(cfg))
	if err != nil {
		return nil, err
	}

	if err := csv.WriteRuns(cfg.RunsCSV, res.Records); err != nil {
		return nil, err
	}
	fmt.Fprintf(out, "Wrote %s (%d rows)\n\n", cfg.RunsCSV, len(res.Records))
	report.Runs(out, res.Records)

	if cfg.Verbose {
		fmt.Fprintln(out)
		report.Groups(out, res.Groups)
	}

	if res.Speedup.NoParallel {
		log.Warnf("[analyze] no parallel runs, %s not written", cfg.SpeedupCSV)
		return res, nil
	}
	if len(res.Speedup.Rows) == 0 {
		log.Warnf("[analyze] no parallel run has a sequential baseline, %s not written", cfg.SpeedupCSV)
		return res, nil
	}

	if err := csv.WriteSpeedup(cfg.SpeedupCSV, res.Speedup.Rows); err != nil {
		return nil, err
	}
	fmt.Fprintf(out, "\nWrote %s (%d rows)\n\n", cfg.SpeedupCSV, len(res.Speedup.Rows))
	report.Speedup(out, res.Speedup.Rows)

	return res, nil
}

// storeHandler returns the create-schema|load|drop handler for a backend.
func storeHandler(name string) handler {
	return func(ctx context.Context, args []string) error {
		if len(args) == 0 {
			return fmt.Errorf(`%w: missing action for %s (expected: "create-schema|load|drop")`, errUsage, name)
		}

		action := args[0]
		switch action {
		case "create-schema", "drop":
			if len(args) > 1 {
				return fmt.Errorf("%w: %s %s takes no arguments", errUsage, name, action)
			}
		case "load":
		default:
			return fmt.Errorf("%w: unknown action for %s: %s", errUsage, name, action)
		}

		// Parse before connecting so flag errors don't need a live backend.
		var res *suite.Result
		if action == "load" {
			cfg, err := parseFlags(name+" load", args[1:])
			if errors.Is(err, pflag.ErrHelp) {
				usage(os.Stdout)
				return nil
			}
			if err != nil {
				return err
			}
			if res, err = suite.Run(ctx, pipelineOptions(cfg)); err != nil {
				return err
			}
		}

		sink, cleanup, err := store.Open(ctx, name)
		if err != nil {
			return err
		}
		defer cleanup()

		switch action {
		case "create-schema":
			return sink.CreateSchema(ctx)
		case "drop":
			return sink.Drop(ctx)
		default:
			return sink.Load(ctx, res.Records, res.Speedup.Rows)
		}
	}
}

func usage(w io.Writer) {
	prog := os.Args[0]
	fmt.Fprintln(w, "usage:")
	fmt.Fprintf(w, "  %s [analyze] [--logs DIR] [--csv FILE] [--speedup_csv FILE] [--threads P] [--workers N] [--config FILE] [-v]\n", prog)
	for _, name := range store.Names() {
		fmt.Fprintf(w, "  %s %s create-schema|drop\n", prog, name)
		fmt.Fprintf(w, "  %s %s load [analyze flags]\n", prog, name)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "exit status: 0 ok, 1 error, 2 logs directory missing, 3 no recognised logs")
}
