package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mcncl/jsonedit/internal/atomicfile"
	"github.com/mcncl/jsonedit/internal/config"
	"github.com/mcncl/jsonedit/internal/document"
	"github.com/mcncl/jsonedit/internal/draft"
	"github.com/mcncl/jsonedit/internal/errors"
	"github.com/mcncl/jsonedit/internal/parser"
	"github.com/mcncl/jsonedit/internal/script"
	"github.com/mcncl/jsonedit/internal/tree"
	"github.com/mcncl/jsonedit/internal/tui"
)

// CLI defines the command-line interface
var CLI struct {
	Input       string `help:"Path to the JSON file to edit. Without it, --print and --script read stdin." short:"i" type:"path"`
	Output      string `help:"Write the result to this file instead of the input file or stdout." short:"o" type:"path"`
	Script      string `help:"Apply the edit steps in this YAML file instead of starting the editor." short:"s" type:"path"`
	Print       bool   `help:"Print the normalised document instead of starting the editor." short:"p"`
	DraftsClear bool   `help:"Drop the recovery draft of the input file and exit." name:"drafts-clear"`
	NoDrafts    bool   `help:"Do not keep recovery drafts of unsaved edits." name:"no-drafts"`
	DraftDir    string `help:"Directory for recovery drafts." name:"draft-dir" type:"path"`
	Config      string `help:"Path to config file (.jsonedit.yml). Searched for from the working directory when not set." short:"c" type:"path"`
	Verify      bool   `help:"Check the edit tree against the document after every change."`
	LogFile     string `help:"Write logs to this file." name:"log-file" type:"path"`
	Debug       bool   `help:"Enable debug logging." short:"d"`
	Version     bool   `help:"Show version information." short:"v"`
}

// Context holds the runtime context
type Context struct {
	Config *config.Config
	Log    *zap.Logger
}

// Version information
const (
	Version = "0.1.0"
)

func main() {
	parser := kong.Must(&CLI,
		kong.Name("jsonedit"),
		kong.Description("An interactive editor for JSON documents"),
		kong.UsageOnError(),
	)

	_, err := parser.Parse(os.Args[1:])
	if err != nil {
		// kong.UsageOnError() has already printed the usage
		os.Exit(1)
	}

	if CLI.Version {
		fmt.Printf("jsonedit version %s\n", Version)
		return
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		os.Exit(1)
	}

	log, err := newLogger(cfg.Dev)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	err = run(&Context{Config: cfg, Log: log})
	if err != nil {
		log.Error("jsonedit failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		fmt.Fprintf(os.Stderr, "\nFor help, run: jsonedit --help\n")
		_ = log.Sync()
		os.Exit(1)
	}
}

// loadConfig loads the config file named on the command line, or the
// nearest .jsonedit.yml, with the command line flags merged over it.
func loadConfig() (*config.Config, error) {
	path := CLI.Config
	if path == "" {
		path = config.FindConfigFile()
	}
	return config.LoadConfigWithCLI(path, config.Overrides{
		Debug:    CLI.Debug,
		Verify:   CLI.Verify,
		NoDrafts: CLI.NoDrafts,
		LogFile:  CLI.LogFile,
		DraftDir: CLI.DraftDir,
	})
}

// newLogger builds the process logger. Logs only go to a file: the
// editor owns the terminal.
func newLogger(dev config.DevConfig) (*zap.Logger, error) {
	if dev.LogFile == "" {
		return zap.NewNop(), nil
	}
	zc := zap.NewProductionConfig()
	zc.OutputPaths = []string{dev.LogFile}
	zc.ErrorOutputPaths = []string{dev.LogFile}
	if dev.Debug {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	log, err := zc.Build()
	if err != nil {
		return nil, errors.NewInputError(fmt.Sprintf("failed to open log file '%s'", dev.LogFile), err)
	}
	return log, nil
}

// run executes the main program logic
func run(ctx *Context) error {
	if ctx.Log == nil {
		ctx.Log = zap.NewNop()
	}
	if ctx.Config == nil {
		ctx.Config = config.NewConfig()
	}

	if CLI.DraftsClear {
		return clearDraft(ctx)
	}

	if CLI.Input == "" {
		if CLI.Print || CLI.Script != "" {
			return runStdin(ctx)
		}
		return errors.NewInputError("no input provided", errors.ErrNoInput)
	}

	// Batch runs write their result straight away, so they keep no drafts.
	interactive := !CLI.Print && CLI.Script == ""
	doc, err := openDocument(ctx, interactive)
	if err != nil {
		return err
	}

	switch {
	case CLI.Script != "":
		if err := applyScript(ctx, doc.Tree()); err != nil {
			return err
		}
		if CLI.Print {
			return printDocument(doc)
		}
		if CLI.Output != "" {
			return doc.SaveAs(CLI.Output)
		}
		return doc.Save()
	case CLI.Print:
		return printDocument(doc)
	default:
		return runEditor(ctx, doc)
	}
}

// openDocument opens the input file with the configured tree options,
// formatter and, when wanted, the draft store.
func openDocument(ctx *Context, drafts bool) (*document.Document, error) {
	treeOpts, err := ctx.Config.TreeOptions(ctx.Log)
	if err != nil {
		return nil, err
	}
	opts := []document.Option{
		document.WithTreeOptions(treeOpts...),
		document.WithFormatter(ctx.Config.Formatter()),
		document.WithLogger(ctx.Log),
	}
	if drafts && ctx.Config.Drafts.Enabled {
		store, err := draftStore(ctx)
		if err != nil {
			return nil, err
		}
		opts = append(opts, document.WithDrafts(store))
	}
	return document.Open(CLI.Input, opts...)
}

func draftStore(ctx *Context) (*draft.Store, error) {
	dir, err := ctx.Config.DraftDir()
	if err != nil {
		return nil, errors.NewDraftError("cannot locate the draft directory", err)
	}
	return draft.NewStore(dir, ctx.Config.Drafts.TTL, draft.WithLogger(ctx.Log)), nil
}

func clearDraft(ctx *Context) error {
	if CLI.Input == "" {
		return errors.NewInputError("--drafts-clear needs a file", errors.ErrNoInput)
	}
	store, err := draftStore(ctx)
	if err != nil {
		return err
	}
	if err := document.ClearDraft(store, CLI.Input); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Draft of %s cleared\n", CLI.Input)
	return nil
}

// runStdin edits a document read from stdin. The result always goes to
// stdout or --output.
func runStdin(ctx *Context) error {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return errors.NewInputError("failed to read from stdin", err)
	}
	v, err := parser.ParseBytes(data)
	if err != nil {
		return err
	}

	treeOpts, err := ctx.Config.TreeOptions(ctx.Log)
	if err != nil {
		return err
	}
	t := tree.New(treeOpts...)
	t.Load(v)

	if CLI.Script != "" {
		if err := applyScript(ctx, t); err != nil {
			return err
		}
	}

	out, err := ctx.Config.Formatter().Format(t.JSON())
	if err != nil {
		return errors.NewOutputError("failed to format JSON", err)
	}
	return writeOutput(out)
}

func applyScript(ctx *Context, t *tree.Tree) error {
	s, err := script.Load(CLI.Script)
	if err != nil {
		return err
	}
	n, err := script.NewRunner(t, ctx.Log).Run(s)
	ctx.Log.Info("script applied", zap.String("script", CLI.Script), zap.Int("steps", n), zap.Error(err))
	if err != nil {
		return errors.NewInputError(fmt.Sprintf("script '%s' stopped after %d steps: %v", CLI.Script, n, err), err)
	}
	return nil
}

func printDocument(doc *document.Document) error {
	out, err := doc.Render()
	if err != nil {
		return err
	}
	return writeOutput(out)
}

// runEditor starts the terminal editor on doc.
func runEditor(ctx *Context, doc *document.Document) error {
	if err := doc.DraftErr(); err != nil {
		ctx.Log.Warn("drafts unavailable", zap.Error(err))
	}
	m := tui.New(doc,
		tui.WithTheme(tui.ThemeFromConfig(ctx.Config.Theme)),
		tui.WithLogger(ctx.Log),
	)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return errors.NewOutputError("editor failed", err)
	}
	if doc.Dirty() && ctx.Config.Drafts.Enabled {
		fmt.Fprintf(os.Stderr, "Unsaved edits of %s are kept as a draft\n", doc.Path())
	}
	return nil
}

// writeOutput writes the document to --output or stdout
func writeOutput(out string) error {
	if CLI.Output != "" {
		err := atomicfile.Write(CLI.Output, []byte(out), atomicfile.Mode(CLI.Output, 0o644))
		if err != nil {
			return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", CLI.Output), err)
		}
		fmt.Fprintf(os.Stderr, "JSON written to %s\n", CLI.Output)
		return nil
	}

	_, err := fmt.Println(strings.TrimSpace(out))
	if err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}
	return nil
}
