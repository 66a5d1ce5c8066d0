package main

import (
	"bufio"
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/mcncl/terse/internal/config"
	"github.com/mcncl/terse/internal/errors"
	"github.com/mcncl/terse/internal/parser"
)

// Version information
const (
	Version = "0.1.0"
)

// CLI defines the command-line interface
type CLI struct {
	Config      string `help:"Path to a .terse.yml config file. Discovered from the working directory if not specified." type:"path"`
	Pretty      bool   `help:"Pretty-print output, one member per line."`
	Indent      int    `help:"Spaces per nesting level when pretty-printing (0-16)." default:"-1"`
	Diagnostics string `help:"Diagnostic output format: text or json."`
	Debug       bool   `help:"Enable debug logging." short:"d"`

	Decode  DecodeCmd  `cmd:"" help:"Convert a terse document to JSON."`
	Encode  EncodeCmd  `cmd:"" help:"Convert a JSON document to terse."`
	Fmt     FmtCmd     `cmd:"" help:"Reformat a terse document in canonical form."`
	Check   CheckCmd   `cmd:"" help:"Validate terse documents and report every problem found."`
	Stats   StatsCmd   `cmd:"" help:"Report shape and size statistics for a terse document."`
	Batch   BatchCmd   `cmd:"" help:"Decode line-delimited terse documents."`
	Version VersionCmd `cmd:"" help:"Show version information."`
}

// Context holds the runtime context shared by every command
type Context struct {
	Logger *slog.Logger
	Config *config.Config
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// exitCode carries a kong exit request through a panic so run can return it.
type exitCode int

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run parses args, executes the selected command and returns the process
// exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) (code int) {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("terse"),
		kong.Description("A compact, token-efficient notation for JSON-like data"),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
		kong.Exit(func(code int) { panic(exitCode(code)) }),
	)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}

	defer func() {
		if r := recover(); r != nil {
			c, ok := r.(exitCode)
			if !ok {
				panic(r)
			}
			code = int(c)
		}
	}()

	kctx, err := parser.Parse(args)
	if err != nil {
		// Prints the error and usage, then exits through the hook above.
		parser.FatalIfErrorf(err)
	}

	ctx, err := newContext(&cli, stdin, stdout, stderr)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "%s\n", errors.UserFriendlyError(err))
		return 1
	}

	if err := kctx.Run(ctx); err != nil {
		// JSON diagnostics already describe an invalid document in full.
		if ctx.Config.Output.Diagnostics != config.DiagnosticsJSON || !stderrors.Is(err, errors.ErrInvalidDocument) {
			_, _ = fmt.Fprintf(stderr, "%s\n", errors.UserFriendlyError(err))
		}
		if stderrors.Is(err, errors.ErrNoInput) {
			_, _ = fmt.Fprintf(stderr, "\nFor help, run: terse --help\n")
		}
		return 1
	}
	return 0
}

// newContext loads configuration with CLI precedence and builds the logger.
func newContext(cli *CLI, stdin io.Reader, stdout, stderr io.Writer) (*Context, error) {
	configPath := cli.Config
	if configPath == "" {
		configPath = config.FindConfigFile()
	}

	cfg, err := config.LoadConfigWithCLI(configPath, cli.overrides())
	if err != nil {
		var appErr *errors.AppError
		if stderrors.As(err, &appErr) {
			return nil, err
		}
		return nil, errors.NewConfigError(fmt.Sprintf("failed to load '%s'", configPath), err)
	}

	level := slog.LevelWarn
	if cfg.Dev.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	if configPath != "" {
		logger.Debug("loaded config", "path", configPath)
	}

	return &Context{
		Logger: logger,
		Config: cfg,
		Stdin:  stdin,
		Stdout: stdout,
		Stderr: stderr,
	}, nil
}

// overrides collects the flags that were given explicitly. Command flags of
// commands that were not selected are zero and therefore ignored.
func (cli *CLI) overrides() config.Overrides {
	o := config.Overrides{
		Diagnostics: cli.Diagnostics,
		KeyStyle:    cli.Encode.KeyStyle,
	}
	if cli.Pretty {
		o.Pretty = boolPtr(true)
	}
	if cli.Indent >= 0 {
		indent := cli.Indent
		o.Indent = &indent
	}
	if cli.Debug {
		o.Debug = boolPtr(true)
	}
	if cli.Encode.Strict {
		o.AllowComments = boolPtr(false)
	}
	if cli.Check.Comments {
		o.PreserveComments = boolPtr(true)
	}
	if cli.Batch.StopOnError {
		o.StopOnError = boolPtr(true)
	}
	return o
}

func boolPtr(b bool) *bool {
	return &b
}

// readInput reads from a file or stdin and names the source for
// diagnostics. Compressed files are expanded.
func (c *Context) readInput(path string) ([]byte, string, error) {
	if path != "" {
		data, err := parser.ReadFile(path)
		return data, path, err
	}

	if f, ok := c.Stdin.(*os.File); ok {
		stdinInfo, err := f.Stat()
		if err != nil {
			return nil, "", errors.NewInputError("failed to access stdin", err)
		}
		if (stdinInfo.Mode() & os.ModeCharDevice) != 0 {
			// Terminal is interactive (not piped)
			data, err := c.readInteractiveInput(f)
			return data, "<stdin>", err
		}
	}

	data, err := io.ReadAll(c.Stdin)
	if err != nil {
		return nil, "", errors.NewInputError("failed to read from stdin", err)
	}
	if len(data) == 0 {
		return nil, "", errors.NewInputError("empty input received from stdin", errors.ErrEmptyInput)
	}
	return data, "<stdin>", nil
}

// readInteractiveInput lets users paste a document and signal completion
// with Ctrl+D (EOF)
func (c *Context) readInteractiveInput(stdin io.Reader) ([]byte, error) {
	_, _ = fmt.Fprintln(c.Stderr, "terse interactive mode")
	_, _ = fmt.Fprintln(c.Stderr, "Paste your input below and press Ctrl+D (or Ctrl+Z on Windows) when done:")

	reader := bufio.NewReader(stdin)
	var buf bytes.Buffer
	for {
		line, err := reader.ReadString('\n')
		buf.WriteString(line)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.NewInputError("error reading input", err)
		}
	}

	if len(bytes.TrimSpace(buf.Bytes())) == 0 {
		return nil, errors.NewInputError("no input provided", errors.ErrNoInput)
	}
	return buf.Bytes(), nil
}

// writeOutput writes data to a file or stdout. Text output ends with a
// single newline.
func (c *Context) writeOutput(path string, data []byte, text bool) error {
	if text {
		data = append([]byte(strings.TrimRight(string(data), "\n")), '\n')
	}

	if path != "" {
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", path), err)
		}
		_, _ = fmt.Fprintf(c.Stderr, "Output written to %s\n", path)
		return nil
	}

	if _, err := c.Stdout.Write(data); err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}
	return nil
}
