package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"

	"github.com/tliron/commonlog"

	"github.com/roxlang/roxscript/manifest"
	"github.com/roxlang/roxscript/rox"

	_ "github.com/tliron/commonlog/simple"
)

// Exit statuses follow the BSD sysexits convention.
const (
	exitUsage    = 64
	exitDataErr  = 65
	exitNoInput  = 66
	exitSoftware = 70
)

var log = commonlog.GetLogger("rox.cli")

func main() {
	if err := runCLI(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func runCLI(args []string) error {
	if len(args) < 2 {
		return invalidCommand()
	}
	switch args[1] {
	case "run":
		return runCommand(args[2:])
	case "check":
		return checkCommand(args[2:])
	case "analyze":
		return analyzeCommand(args[2:])
	case "repl":
		return runREPL()
	case "lsp":
		return runLSP()
	case "help", "-h", "--help":
		printUsage()
		return nil
	default:
		return invalidCommand()
	}
}

type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

func invalidCommand() error {
	printUsage()
	return usagef("invalid command")
}

func exitCode(err error) int {
	var (
		usage   *usageError
		compile *rox.CompileError
		runErr  *rox.RuntimeError
		pathErr *fs.PathError
	)
	switch {
	case errors.As(err, &usage):
		return exitUsage
	case errors.As(err, &compile):
		return exitDataErr
	case errors.As(err, &pathErr):
		return exitNoInput
	case errors.As(err, &runErr):
		return exitSoftware
	default:
		return 1
	}
}

func runCommand(args []string) error {
	flags := flag.NewFlagSet("run", flag.ContinueOnError)
	flags.SetOutput(new(flagErrorSink))
	manifestPath := flags.String("manifest", "", "path to rox.toml (default: search upward from the script)")
	call := flags.String("call", "", "global function or class to invoke after the script runs")
	var verbosity verbosityFlag
	flags.Var(&verbosity, "v", "increase log verbosity (repeatable)")
	if err := flags.Parse(args); err != nil {
		return usagef("rox run: %v", err)
	}
	remaining := flags.Args()

	startDir := "."
	if len(remaining) > 0 {
		startDir = filepath.Dir(remaining[0])
	}
	m, err := loadManifest(*manifestPath, startDir)
	if err != nil {
		return err
	}

	var scriptPath string
	switch {
	case len(remaining) > 0:
		scriptPath = remaining[0]
		remaining = remaining[1:]
	case m != nil:
		scriptPath = m.EntryPath()
	default:
		return usagef("rox run: script path required")
	}

	cfg := rox.Config{}
	var logPath *string
	level := int(verbosity)
	if m != nil {
		cfg = m.EngineConfig()
		logPath = m.LogPath()
		if level == 0 {
			level = m.Log.Verbosity
		}
	}
	commonlog.Configure(level, logPath)

	input, err := os.ReadFile(scriptPath)
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}
	engine, err := rox.NewEngine(cfg)
	if err != nil {
		return usagef("rox run: %v", err)
	}
	script, err := engine.Compile(string(input))
	if err != nil {
		return fmt.Errorf("compile failed: %w", err)
	}
	log.Infof("running %s", scriptPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *call == "" {
		if len(remaining) > 0 {
			return usagef("rox run: arguments require -call")
		}
		if _, err := script.Run(ctx, rox.RunOptions{}); err != nil {
			return fmt.Errorf("execution failed: %w", err)
		}
		return nil
	}

	argValues := make([]rox.Value, len(remaining))
	for i, raw := range remaining {
		argValues[i] = rox.NewString(raw)
	}
	result, err := script.Call(ctx, *call, argValues, rox.RunOptions{})
	if err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}
	if !result.IsNil() {
		fmt.Println(result.String())
	}
	return nil
}

// loadManifest reads an explicit manifest path, or else looks for rox.toml
// in startDir and its parents. A missing manifest is not an error.
func loadManifest(explicit, startDir string) (*manifest.Manifest, error) {
	if explicit != "" {
		return manifest.LoadFile(explicit)
	}
	return manifest.FindAndLoad(startDir)
}

func printUsage() {
	prog := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [flags] [args...]\n", prog)
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  run [-manifest path] [-call name] [-v] [script] [args...]")
	fmt.Fprintln(os.Stderr, "    run a script, or the manifest entry when no script is given")
	fmt.Fprintln(os.Stderr, "  check <path>...")
	fmt.Fprintln(os.Stderr, "    compile .rox files without running them")
	fmt.Fprintln(os.Stderr, "  analyze <script>")
	fmt.Fprintln(os.Stderr, "    report lint warnings")
	fmt.Fprintln(os.Stderr, "  repl")
	fmt.Fprintln(os.Stderr, "    start an interactive session")
	fmt.Fprintln(os.Stderr, "  lsp")
	fmt.Fprintln(os.Stderr, "    serve the language server protocol on stdio")
}

type flagErrorSink struct{}

func (flagErrorSink) Write(p []byte) (int, error) {
	return len(p), nil
}

// verbosityFlag counts bare -v occurrences and also accepts -v=N.
type verbosityFlag int

func (v *verbosityFlag) String() string { return strconv.Itoa(int(*v)) }

func (v *verbosityFlag) Set(value string) error {
	if value == "true" {
		*v++
		return nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid verbosity %q", value)
	}
	*v = verbosityFlag(n)
	return nil
}

func (v *verbosityFlag) IsBoolFlag() bool { return true }
