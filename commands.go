package main

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/mcncl/terse/internal/analyzer"
	"github.com/mcncl/terse/internal/batch"
	"github.com/mcncl/terse/internal/bridge"
	"github.com/mcncl/terse/internal/config"
	"github.com/mcncl/terse/internal/errors"
	"github.com/mcncl/terse/internal/formatter"
	"github.com/mcncl/terse/internal/models"
	"github.com/mcncl/terse/internal/parser"
	"gopkg.in/yaml.v3"
)

// IOFlags selects where a command reads from and writes to.
type IOFlags struct {
	Input  string `help:"Path to input file (.zst and .gz are decompressed). If not specified, reads from stdin." short:"i" type:"path"`
	Output string `help:"Path to output file. If not specified, writes to stdout." short:"o" type:"path"`
}

// DecodeCmd converts terse to JSON or CBOR.
type DecodeCmd struct {
	IOFlags `embed:""`
	CBOR    bool `help:"Write CBOR instead of JSON." name:"cbor"`
}

// Run executes the decode command
func (c *DecodeCmd) Run(ctx *Context) error {
	v, _, err := ctx.decodeInput(c.Input)
	if err != nil {
		return err
	}

	if c.CBOR {
		data, err := bridge.ToCBOR(v)
		if err != nil {
			return err
		}
		return ctx.writeOutput(c.Output, data, false)
	}

	data, err := bridge.ToJSON(v, ctx.jsonIndent())
	if err != nil {
		return err
	}
	return ctx.writeOutput(c.Output, data, true)
}

// EncodeCmd converts JSON or CBOR to terse.
type EncodeCmd struct {
	IOFlags  `embed:""`
	CBOR     bool   `help:"Read CBOR instead of JSON." name:"cbor"`
	KeyStyle string `help:"Rewrite object keys: preserve, camel, pascal, snake or kebab."`
	Strict   bool   `help:"Reject comments and trailing commas in JSON input."`
}

// Run executes the encode command
func (c *EncodeCmd) Run(ctx *Context) error {
	data, source, err := ctx.readInput(c.Input)
	if err != nil {
		return err
	}

	start := time.Now()
	var v *models.Value
	if c.CBOR {
		v, err = bridge.FromCBOR(data)
	} else {
		v, err = bridge.FromJSON(data, ctx.Config.BridgeOptions())
	}
	if err != nil {
		return err
	}
	ctx.Logger.Debug("converted input", "source", source, "bytes", len(data), "duration", time.Since(start))

	text := formatter.NewFormatter(ctx.Config.FormatOptions()).Encode(v)
	return ctx.writeOutput(c.Output, []byte(text), true)
}

// FmtCmd rewrites a terse document in canonical form.
type FmtCmd struct {
	IOFlags `embed:""`
	Write   bool `help:"Write the result back to the input file." short:"w"`
}

// Run executes the fmt command
func (c *FmtCmd) Run(ctx *Context) error {
	if c.Write && c.Input == "" {
		return errors.NewInputError("--write requires --input", errors.ErrInvalidFilePath)
	}

	v, _, err := ctx.decodeInput(c.Input)
	if err != nil {
		return err
	}

	text := formatter.NewFormatter(ctx.Config.FormatOptions()).Encode(v)
	output := c.Output
	if c.Write {
		output = c.Input
	}
	return ctx.writeOutput(output, []byte(text), true)
}

// CheckCmd validates documents without converting them.
type CheckCmd struct {
	Files    []string `arg:"" optional:"" help:"Files to check. Reads stdin when none are given." type:"path"`
	Comments bool     `help:"List the comments found in each valid document."`
}

// Run executes the check command
func (c *CheckCmd) Run(ctx *Context) error {
	sources := c.Files
	if len(sources) == 0 {
		sources = []string{""}
	}

	invalid := 0
	for _, path := range sources {
		data, source, err := ctx.readInput(path)
		if err != nil {
			return err
		}

		res := parser.Parse(string(data), ctx.Config.ParseOptions())
		if res.HasErrors() {
			invalid++
			if err := ctx.reportDiagnostics(source, 0, 0, res.Diagnostics); err != nil {
				return err
			}
			continue
		}

		_, _ = fmt.Fprintf(ctx.Stdout, "%s: ok\n", source)
		if c.Comments {
			for _, comment := range res.Comments {
				_, _ = fmt.Fprintf(ctx.Stdout, "%s:%d:%d: %s\n", source, comment.Line, comment.Column, comment.Raw)
			}
		}
	}

	if invalid > 0 {
		return errors.NewParsingError(
			fmt.Sprintf("%d of %d documents are invalid", invalid, len(sources)),
			errors.ErrInvalidDocument,
		)
	}
	return nil
}

// StatsCmd reports analyzer statistics.
type StatsCmd struct {
	IOFlags `embed:""`
	Format  string `help:"Report format: text, json or yaml." enum:"text,json,yaml" default:"text"`
}

// Run executes the stats command
func (c *StatsCmd) Run(ctx *Context) error {
	v, _, err := ctx.decodeInput(c.Input)
	if err != nil {
		return err
	}

	stats := analyzer.NewAnalyzerWithConfig(ctx.Config).Analyze(v)

	var out []byte
	switch c.Format {
	case "json":
		out, err = json.MarshalIndent(stats, "", "  ")
	case "yaml":
		out, err = yaml.Marshal(stats)
	default:
		out = renderStats(stats)
	}
	if err != nil {
		return errors.NewOutputError("failed to render statistics", err)
	}
	return ctx.writeOutput(c.Output, out, true)
}

func renderStats(s analyzer.Stats) []byte {
	var buf bytes.Buffer
	row := func(label, format string, args ...interface{}) {
		_, _ = fmt.Fprintf(&buf, "%-12s "+format+"\n", append([]interface{}{label}, args...)...)
	}

	row("values", "%d", s.Values)
	for _, kind := range slices.Sorted(maps.Keys(s.Counts)) {
		row("  "+kind, "%d", s.Counts[kind])
	}
	row("members", "%d", s.Members)
	row("unique keys", "%d", s.UniqueKeys)
	row("max depth", "%d", s.MaxDepth)
	row("terse bytes", "%d (pretty %d)", s.CompactBytes, s.PrettyBytes)
	if s.JSONBytes > 0 {
		row("json bytes", "%d", s.JSONBytes)
		row("savings", "%.1f%%", s.Savings*100)
		row("tokens", "~%d (json ~%d)", s.EstimatedTokens, s.JSONEstimatedTokens)
	} else {
		row("tokens", "~%d", s.EstimatedTokens)
	}
	row("fingerprint", "%s", s.Fingerprint)
	return buf.Bytes()
}

// BatchCmd decodes one document per line.
type BatchCmd struct {
	IOFlags     `embed:""`
	StopOnError bool   `help:"Stop at the first invalid line."`
	Format      string `help:"Output format for decoded lines: json or terse." enum:"json,terse" default:"json"`
}

// Run executes the batch command
func (c *BatchCmd) Run(ctx *Context) error {
	start := time.Now()
	opts := ctx.Config.BatchOptions()

	var (
		report *batch.Report
		err    error
		source = c.Input
	)
	if c.Input != "" {
		report, err = batch.ProcessFile(c.Input, opts)
	} else {
		source = "<stdin>"
		report, err = batch.Process(ctx.Stdin, opts)
	}
	if err != nil {
		return err
	}
	ctx.Logger.Debug("processed batch", "source", source, "lines", report.Lines,
		"documents", len(report.Results), "duration", time.Since(start))

	var out bytes.Buffer
	enc := formatter.NewFormatter(ctx.Config.FormatOptions())
	for _, res := range report.Results {
		if !res.OK() {
			var diagErr *errors.DiagnosticError
			if stderrors.As(res.Err, &diagErr) {
				if err := ctx.reportDiagnostics(source, res.Line-1, res.Offset, diagErr.Diagnostics); err != nil {
					return err
				}
			}
			continue
		}

		if c.Format == "terse" {
			out.WriteString(enc.Encode(res.Value))
		} else {
			line, err := bridge.ToJSON(res.Value, 0)
			if err != nil {
				return err
			}
			out.Write(line)
		}
		out.WriteByte('\n')
	}

	if out.Len() > 0 || c.Output != "" {
		if err := ctx.writeOutput(c.Output, out.Bytes(), true); err != nil {
			return err
		}
	}

	if failures := report.Failures(); len(failures) > 0 {
		return errors.NewParsingError(
			fmt.Sprintf("%d of %d documents are invalid", len(failures), len(report.Results)),
			errors.ErrInvalidDocument,
		)
	}
	return nil
}

// VersionCmd prints the version.
type VersionCmd struct{}

// Run executes the version command
func (c *VersionCmd) Run(ctx *Context) error {
	_, err := fmt.Fprintf(ctx.Stdout, "terse version %s\n", Version)
	return err
}

// decodeInput reads and parses a terse document, reporting diagnostics on
// failure.
func (c *Context) decodeInput(path string) (*models.Value, string, error) {
	data, source, err := c.readInput(path)
	if err != nil {
		return nil, "", err
	}

	start := time.Now()
	res := parser.Parse(string(data), c.Config.ParseOptions())
	c.Logger.Debug("parsed document", "source", source, "bytes", len(data),
		"diagnostics", len(res.Diagnostics), "duration", time.Since(start))

	if res.HasErrors() {
		if err := c.reportDiagnostics(source, 0, 0, res.Diagnostics); err != nil {
			return nil, source, err
		}
		return nil, source, errors.NewParsingError(fmt.Sprintf("%s is not a valid terse document", source), res.Err())
	}
	return res.Value, source, nil
}

// jsonIndent is the JSON indent implied by the encode settings.
func (c *Context) jsonIndent() int {
	if !c.Config.Encode.Pretty {
		return 0
	}
	return c.Config.Encode.Indent
}

// diagnosticReport is one JSON diagnostic record.
type diagnosticReport struct {
	Source string `json:"source"`
	errors.Diagnostic
}

// reportDiagnostics writes diagnostics to stderr in the configured format.
// lineOffset and byteOffset shift positions for documents that start
// mid-stream so they refer to the whole input.
func (c *Context) reportDiagnostics(source string, lineOffset, byteOffset int, diags []errors.Diagnostic) error {
	reports := make([]diagnosticReport, len(diags))
	for i, d := range diags {
		d.Cursor.Line += lineOffset
		d.Cursor.Offset += byteOffset
		if d.EndCursor != nil {
			end := *d.EndCursor
			end.Line += lineOffset
			end.Offset += byteOffset
			d.EndCursor = &end
		}
		reports[i] = diagnosticReport{Source: source, Diagnostic: d}
	}

	if c.Config.Output.Diagnostics == config.DiagnosticsJSON {
		data, err := json.Marshal(reports)
		if err != nil {
			return errors.NewOutputError("failed to render diagnostics", err)
		}
		_, _ = fmt.Fprintf(c.Stderr, "%s\n", data)
		return nil
	}

	for _, r := range reports {
		_, _ = fmt.Fprintf(c.Stderr, "%s:%d:%d: %s\n", r.Source, r.Cursor.Line, r.Cursor.Column, r.Message)
	}
	return nil
}
