package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/jschaf/sqlnull"
	"github.com/jschaf/sqlnull/internal/errs"
	"github.com/jschaf/sqlnull/internal/flags"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const flagHelp = `
sqlnull infers whether columns selected by SQLite queries can be null.
`

// Flags may also be set with SQLNULL_ prefixed environment variables, like
// SQLNULL_LOG_LEVEL, or from a plain config file passed with -config.
const envPrefix = "SQLNULL"

func run(ctx context.Context, args []string, stdout io.Writer) error {
	rootFlagSet := flag.NewFlagSet("sqlnull", flag.ContinueOnError)
	rootCmd := &ffcli.Command{
		ShortUsage: "sqlnull <subcommand> [options...]",
		LongHelp:   flagHelp[1 : len(flagHelp)-1], // remove lead/trail newlines
		FlagSet:    rootFlagSet,
		Subcommands: []*ffcli.Command{
			newInferCmd(stdout),
			newScanCmd(stdout),
		},
	}
	rootCmd.Exec = func(ctx context.Context, args []string) error {
		fmt.Fprintln(stdout, ffcli.DefaultUsageFunc(rootCmd))
		return flag.ErrHelp
	}
	return rootCmd.ParseAndRun(ctx, args)
}

func ffOptions() []ff.Option {
	return []ff.Option{
		ff.WithEnvVarPrefix(envPrefix),
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ff.PlainParser),
	}
}

func newLogger(lvl zapcore.Level) (*zap.Logger, error) {
	logCfg := zap.NewDevelopmentConfig()
	logCfg.Level = zap.NewAtomicLevelAt(lvl)
	logger, err := logCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("create zap logger: %w", err)
	}
	return logger, nil
}

func newInferCmd(stdout io.Writer) *ffcli.Command {
	fset := flag.NewFlagSet("infer", flag.ContinueOnError)
	column := fset.String("column", "", "column to infer nullability for")
	table := fset.String("table", "", "base table of the column, not an alias")
	query := fset.String("query", "", "query text; only the first statement is used")
	queryFile := fset.String("query-file", "", "file to read the query from instead of -query")
	logLevel := flags.Level(fset, "log-level", zapcore.InfoLevel, "log level; debug explains each verdict")
	_ = fset.String("config", "", "config file with one flag per line, like: table author")
	return &ffcli.Command{
		Name:       "infer",
		ShortUsage: "sqlnull infer -column <name> -table <name> (-query <sql> | -query-file <path>)",
		ShortHelp:  "prints the nullability of one column of a query",
		FlagSet:    fset,
		Options:    ffOptions(),
		Exec: func(ctx context.Context, args []string) error {
			if *column == "" || *table == "" {
				return fmt.Errorf("sqlnull infer: -column and -table must be set")
			}
			if (*query == "") == (*queryFile == "") {
				return fmt.Errorf("sqlnull infer: exactly one of -query or -query-file must be set")
			}
			q := *query
			if *queryFile != "" {
				src, err := os.ReadFile(*queryFile)
				if err != nil {
					return fmt.Errorf("read query file: %w", err)
				}
				q = string(src)
			}
			logger, err := newLogger(*logLevel)
			if err != nil {
				return err
			}
			defer logger.Sync() // nolint
			inferrer := sqlnull.NewInferrer(sqlnull.WithLogger(logger.Sugar()))
			_, err = fmt.Fprintln(stdout, inferrer.Infer(*column, *table, q))
			return err
		},
	}
}

func newScanCmd(stdout io.Writer) *ffcli.Command {
	fset := flag.NewFlagSet("scan", flag.ContinueOnError)
	queryGlobs := flags.Strings(fset, "query-glob", nil,
		"query files to scan; supports doublestar globs like queries/**/*.sql; repeatable")
	format := fset.String("format", "text", "report format: text or json")
	output := fset.String("output", "", "file to write the report to; defaults to stdout")
	logLevel := flags.Level(fset, "log-level", zapcore.InfoLevel, "log level; debug explains each verdict")
	_ = fset.String("config", "", "config file with one flag per line, like: format json")
	return &ffcli.Command{
		Name:       "scan",
		ShortUsage: "sqlnull scan [options...] [<glob>...]",
		ShortHelp:  "reports the nullability of every result column in query files",
		FlagSet:    fset,
		Options:    ffOptions(),
		Exec: func(ctx context.Context, args []string) (mErr error) {
			var write func(sqlnull.Report, io.Writer) error
			switch *format {
			case "text":
				write = sqlnull.Report.WriteText
			case "json":
				write = sqlnull.Report.WriteJSON
			default:
				return fmt.Errorf("sqlnull scan: unknown -format %q; want text or json", *format)
			}
			patterns := append(append([]string(nil), *queryGlobs...), args...)
			if len(patterns) == 0 {
				return fmt.Errorf("sqlnull scan: at least one -query-glob must be specified")
			}
			report, scanErr := sqlnull.Scan(sqlnull.ScanOptions{
				Patterns: patterns,
				LogLevel: *logLevel,
			})

			w := stdout
			if *output != "" {
				f, err := os.Create(*output)
				if err != nil {
					return fmt.Errorf("create report file: %w", err)
				}
				defer errs.Capture(&mErr, f.Close, "close report file")
				w = f
			}
			if err := write(report, w); err != nil {
				return err
			}
			return scanErr
		},
	}
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Printf("ERROR: %s\n", err.Error())
		os.Exit(1)
	}
}
