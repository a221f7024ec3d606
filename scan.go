package sqlnull

import (
	"encoding/json"
	"fmt"
	gotok "go/token"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/bmatcuk/doublestar"
	"github.com/jschaf/sqlnull/internal/ast"
	"github.com/jschaf/sqlnull/internal/errs"
	"github.com/jschaf/sqlnull/internal/infer"
	"github.com/jschaf/sqlnull/internal/parser"
	"github.com/jschaf/sqlnull/internal/texts"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ScanOptions control which query files Scan reads.
type ScanOptions struct {
	// Glob patterns for SQL query files, like "queries/**/*.sql". Supports
	// doublestar globs.
	Patterns []string
	// What log level to log at. Ignored if Logger is set.
	LogLevel zapcore.Level
	// Logger overrides the development logger built from LogLevel.
	Logger *zap.SugaredLogger
}

// Report is the nullability of every result column of every SELECT statement
// in a set of query files.
type Report struct {
	Statements []StatementReport `json:"statements"`
}

// StatementReport describes one SELECT statement.
type StatementReport struct {
	// Name of the statement, from a preceding comment like:
	//     -- name: FindAuthors :many
	// Empty if the statement has no name comment.
	Name string `json:"name,omitempty"`
	// Position of the statement as "file:line:column".
	Pos     string         `json:"pos"`
	Columns []ColumnReport `json:"columns"`
}

// ColumnReport is the verdict for one result column.
type ColumnReport struct {
	// Name of the output column, or the expression text if the column has no
	// name.
	Name string `json:"name"`
	// Table and Column are the base table and column read by a result column
	// that's a column reference. Both are empty otherwise.
	Table   string        `json:"table,omitempty"`
	Column  string        `json:"column,omitempty"`
	Verdict infer.Verdict `json:"verdict"`
}

// Scan parses every query file matching opts.Patterns and infers the
// nullability of each result column of each SELECT statement. Statements that
// aren't selects are skipped. Syntax errors in any file are returned together
// after all files are read, along with the report for the valid files.
func Scan(opts ScanOptions) (Report, error) {
	// Preconditions.
	if len(opts.Patterns) == 0 {
		return Report{}, fmt.Errorf("got 0 query file patterns, at least 1 must be set")
	}

	// Logger.
	l := opts.Logger
	if l == nil {
		logCfg := zap.NewDevelopmentConfig()
		logCfg.Level = zap.NewAtomicLevelAt(opts.LogLevel)
		logger, err := logCfg.Build()
		if err != nil {
			return Report{}, fmt.Errorf("create zap logger: %w", err)
		}
		defer logger.Sync() // nolint
		l = logger.Sugar()
	}

	files, err := expandGlobs(opts.Patterns)
	if err != nil {
		return Report{}, err
	}
	l.Debugf("scanning %d query files", len(files))

	inferrer := infer.NewInferrer(infer.WithLogger(l))
	var report Report
	var mErr error
	for _, file := range files {
		stmts, err := scanFile(file, inferrer, l)
		if err != nil {
			mErr = multierr.Append(mErr, err)
			continue
		}
		report.Statements = append(report.Statements, stmts...)
	}
	return report, mErr
}

// expandGlobs returns the sorted, unique files matching any of patterns. Every
// pattern must match at least one file.
func expandGlobs(patterns []string) ([]string, error) {
	seen := make(map[string]struct{})
	files := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		matches, err := doublestar.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("expand query file glob %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no query files match glob %q", pattern)
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files, nil
}

func scanFile(path string, inferrer *infer.Inferrer, l *zap.SugaredLogger) (stmts []StatementReport, mErr error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open query file: %w", err)
	}
	defer errs.Capture(&mErr, f.Close, "close query file")
	src, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read query file %q: %w", path, err)
	}

	fset := gotok.NewFileSet()
	astFile, err := parser.ParseFile(fset, path, src, 0)
	if err != nil {
		return nil, fmt.Errorf("parse query file %q: %w", path, err)
	}

	for _, stmt := range astFile.Stmts {
		sel, ok := stmt.(*ast.SelectStmt)
		if !ok {
			l.Debugf("skip %T at %s", stmt, fset.Position(stmt.Pos()))
			continue
		}
		report := StatementReport{
			Name:    stmtName(sel.Doc),
			Pos:     fset.Position(sel.Pos()).String(),
			Columns: make([]ColumnReport, 0, len(sel.Columns)),
		}
		tokFile := fset.File(sel.Pos())
		for _, col := range infer.ResultColumns(sel) {
			c := ColumnReport{Name: col.Name, Table: col.Table, Column: col.Column}
			if c.Name == "" {
				lo, hi := tokFile.Offset(col.Expr.Pos()), tokFile.Offset(col.Expr.End())
				c.Name = texts.OneLine(string(src[lo:hi]))
			}
			if col.Table != "" {
				c.Verdict = inferrer.InferStmt(col.Column, col.Table, sel)
			}
			report.Columns = append(report.Columns, c)
		}
		stmts = append(stmts, report)
	}
	return stmts, nil
}

// stmtName returns the name from a doc comment line like "-- name: Foo :one".
func stmtName(doc *ast.CommentGroup) string {
	if doc == nil {
		return ""
	}
	for _, c := range doc.List {
		text := strings.TrimSpace(strings.TrimPrefix(c.Text, "--"))
		if !strings.HasPrefix(text, "name:") {
			continue
		}
		if fields := strings.Fields(strings.TrimPrefix(text, "name:")); len(fields) > 0 {
			return fields[0]
		}
	}
	return ""
}

// WriteText writes the report as aligned text, one block per statement.
func (r Report) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, stmt := range r.Statements {
		if i > 0 {
			fmt.Fprintln(tw)
		}
		name := stmt.Name
		if name == "" {
			name = "(unnamed)"
		}
		fmt.Fprintf(tw, "%s %s\n", stmt.Pos, name)
		for _, col := range stmt.Columns {
			src := "-"
			if col.Table != "" {
				src = col.Table + "." + col.Column
			}
			fmt.Fprintf(tw, "\t%s\t%s\t%s\n", col.Name, src, col.Verdict)
		}
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("write text report: %w", err)
	}
	return nil
}

// WriteJSON writes the report as indented JSON.
func (r Report) WriteJSON(w io.Writer) error {
	if r.Statements == nil {
		r.Statements = []StatementReport{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("write json report: %w", err)
	}
	return nil
}
