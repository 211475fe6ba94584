package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"cellang/interpreter-go/pkg/ast"
	"cellang/interpreter-go/pkg/driver"
	"cellang/interpreter-go/pkg/interpreter"
)

const cliToolVersion = "cell-cli 0.1.0-dev"

var errManifestNotFound = errors.New("package.yml not found")

type executionMode int

const (
	modeRun executionMode = iota
	modeCheck
	modeRender
)

type runOptions struct {
	trace  bool
	target string
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 1
	}

	switch args[0] {
	case "--help", "-h", "help":
		printUsage()
		return 0
	case "--version", "-V", "version":
		fmt.Fprintln(os.Stdout, cliToolVersion)
		return 0
	case "run":
		return runWithMode(args[1:], modeRun)
	case "check":
		return runWithMode(args[1:], modeCheck)
	case "render":
		return runWithMode(args[1:], modeRender)
	default:
		if strings.HasPrefix(args[0], "-") && args[0] != "--trace" {
			fmt.Fprintf(os.Stderr, "unknown flag %s\n", args[0])
			printUsage()
			return 1
		}
		return runWithMode(args, modeRun)
	}
}

func parseRunArgs(args []string, mode executionMode) (runOptions, error) {
	var opts runOptions
	var positional []string
	for _, arg := range args {
		switch {
		case arg == "--trace" && mode == modeRun:
			opts.trace = true
		case strings.HasPrefix(arg, "-"):
			return opts, fmt.Errorf("%s: unknown flag %s", modeCommandLabel(mode), arg)
		default:
			positional = append(positional, arg)
		}
	}
	if len(positional) > 1 {
		return opts, fmt.Errorf("unexpected arguments: %s", strings.Join(positional[1:], " "))
	}
	if len(positional) == 1 {
		opts.target = positional[0]
	}
	return opts, nil
}

func runWithMode(args []string, mode executionMode) int {
	opts, err := parseRunArgs(args, mode)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	target := opts.target
	if target == "" {
		manifestPath, err := findManifest(".")
		if err != nil {
			if errors.Is(err, errManifestNotFound) {
				fmt.Fprintf(os.Stderr, "%s requires a package or program file (package.yml not found)\n", modeCommandLabel(mode))
			} else {
				fmt.Fprintf(os.Stderr, "failed to locate manifest: %v\n", err)
			}
			return 1
		}
		target = manifestPath
	}

	home, err := resolveCellHome()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to resolve CELL_HOME: %v\n", err)
		return 1
	}

	program, err := driver.NewLoader(driver.NewGitFetcher(home)).Load(target)
	if err != nil {
		reportLoadError(err)
		return 1
	}

	switch mode {
	case modeRender:
		for _, mod := range program.Modules {
			fmt.Fprintf(os.Stdout, "# %s\n%s\n", mod.Package, ast.Render(mod.AST))
		}
		return 0
	case modeCheck:
		if _, err := buildProgram(program); err != nil {
			fmt.Fprintf(os.Stderr, "check: %v\n", err)
			return 1
		}
		fmt.Fprintln(os.Stdout, "check: ok")
		return 0
	}

	built, err := buildProgram(program)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build program: %v\n", err)
		return 1
	}

	var interpOpts []interpreter.Option
	if opts.trace {
		interpOpts = append(interpOpts, interpreter.WithTrace(os.Stderr))
	}
	interp := interpreter.New(interpOpts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := interp.Run(ctx, built); err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "interrupted")
			return 130
		}
		fmt.Fprintln(os.Stderr, interpreter.DescribeRuntimeDiagnostic(interp.BuildRuntimeDiagnostic(err)))
		return 1
	}
	return 0
}

func buildProgram(program *driver.Program) (*interpreter.Program, error) {
	name := ""
	if program.Entry != nil {
		name = program.Entry.Package
	}
	return interpreter.NewProgramBuilder(name).
		Add(program.Definitions()...).
		Origins(program.NodeOrigins()).
		Entry(program.EntryFunction).
		Build()
}

func reportLoadError(err error) {
	var diagErr *driver.ProgramDiagnosticError
	if errors.As(err, &diagErr) {
		fmt.Fprintln(os.Stderr, driver.DescribeProgramDiagnostic(diagErr.Diagnostic))
		return
	}
	fmt.Fprintf(os.Stderr, "failed to load program: %v\n", err)
}

func modeCommandLabel(mode executionMode) string {
	switch mode {
	case modeCheck:
		return "cell check"
	case modeRender:
		return "cell render"
	default:
		return "cell run"
	}
}

func findManifest(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolve start directory %q: %w", start, err)
	}
	if info, statErr := os.Stat(dir); statErr == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	origin := dir
	for {
		candidate := filepath.Join(dir, driver.ManifestFileName)
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no package.yml found from %s upwards: %w", origin, errManifestNotFound)
		}
		dir = parent
	}
}

func resolveCellHome() (string, error) {
	if home := strings.TrimSpace(os.Getenv("CELL_HOME")); home != "" {
		abs, err := filepath.Abs(home)
		if err != nil {
			return "", fmt.Errorf("resolve CELL_HOME %q: %w", home, err)
		}
		return abs, nil
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve user home: %w", err)
	}
	return filepath.Join(userHome, ".cell"), nil
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  cell run [--trace] [package dir | package.yml | program.yml]")
	fmt.Fprintln(os.Stderr, "  cell [--trace] <program.yml>")
	fmt.Fprintln(os.Stderr, "  cell check [target]")
	fmt.Fprintln(os.Stderr, "  cell render [target]")
	fmt.Fprintln(os.Stderr, "  cell version")
}
