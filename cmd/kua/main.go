package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"fortio.org/log"

	"kua/interpreter-go/pkg/console"
	"kua/interpreter-go/pkg/diagnostics"
	"kua/interpreter-go/pkg/driver"
	"kua/interpreter-go/pkg/interpreter"
	"kua/interpreter-go/pkg/runtime"
)

const cliToolVersion = "kua 0.1.0-dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	dumpAST bool
	verbose bool
	logFile string
	timeout time.Duration
	target  string
	version bool
}

func run(args []string, stdout, stderr io.Writer) int {
	var opts options
	fs := flag.NewFlagSet("kua", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&opts.dumpAST, "ast", false, "print the parsed chunk as JSON instead of running it")
	fs.BoolVar(&opts.verbose, "v", false, "verbose evaluation logging")
	fs.StringVar(&opts.logFile, "log", "", "mirror console output to this file")
	fs.DurationVar(&opts.timeout, "timeout", 0, "abort the script after this long (0 = no limit)")
	fs.StringVar(&opts.target, "target", "", "kua.yml target to run instead of the default executable")
	fs.BoolVar(&opts.version, "version", false, "print the version and exit")
	fs.Usage = func() { printUsage(fs) }
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if opts.version {
		fmt.Fprintln(stdout, cliToolVersion)
		return 0
	}
	if opts.verbose {
		log.SetLogLevel(log.Verbose)
	}

	con := console.New(stdout, stderr)
	switch fs.NArg() {
	case 0:
		return runManifest(con, opts)
	case 1:
		if opts.target != "" {
			reportError(con, nil, diagnostics.Failure("-target cannot be combined with a script file"))
			return 2
		}
		return runFile(con, fs.Arg(0), nil, opts)
	default:
		fmt.Fprintf(stderr, "unexpected arguments: %s\n", strings.Join(fs.Args()[1:], " "))
		printUsage(fs)
		return 2
	}
}

// runManifest runs a target of kua.yml in the working directory: the one named
// by -target, or else the first executable target.
func runManifest(con *console.Console, opts options) int {
	path, err := driver.FindManifest(".")
	if err != nil {
		if errors.Is(err, driver.ErrNoManifest) {
			reportError(con, nil, diagnostics.Failure("interactive mode is not supported; pass a script file"))
			return 1
		}
		reportError(con, nil, diagnostics.Failure("failed to locate manifest: %v", err))
		return 1
	}
	manifest, err := driver.LoadManifest(path)
	if err != nil {
		reportError(con, nil, diagnostics.Failure("failed to load manifest: %v", err))
		return 1
	}
	target, err := selectTarget(manifest, opts.target)
	if err != nil {
		reportError(con, nil, diagnostics.Failure("manifest error: %v", err))
		return 1
	}
	log.Infof("running target %s of %s", target.Name, manifest.Name)
	return runFile(con, manifest.MainPath(target), manifest, opts)
}

func selectTarget(manifest *driver.Manifest, name string) (*driver.TargetSpec, error) {
	if name == "" {
		return manifest.DefaultExecutableTarget()
	}
	target, ok := manifest.FindTarget(name)
	if !ok {
		return nil, fmt.Errorf("no target named %q in %s", name, manifest.Name)
	}
	return target, nil
}

func runFile(con *console.Console, path string, manifest *driver.Manifest, opts options) int {
	maxDepth := interpreter.DefaultMaxCallDepth
	logFile := opts.logFile
	timeout := opts.timeout
	if manifest != nil {
		maxDepth = manifest.Runtime.MaxCallDepth
		if logFile == "" {
			logFile = manifest.Log.File
		}
		if timeout == 0 {
			timeout = manifest.Runtime.Timeout
		}
		if !opts.verbose && manifest.Log.Level != "" {
			if level, err := log.ValidateLevel(manifest.Log.Level); err == nil {
				log.SetLogLevel(level)
			}
		}
	}

	if logFile != "" {
		if err := con.StartLog(logFile); err != nil {
			con.ErrorLine(err.Error())
			return 1
		}
		defer func() {
			if err := con.StopLog(); err != nil {
				log.Warnf("closing log: %v", err)
			}
		}()
	}

	prog, err := driver.Load(path)
	if err != nil {
		reportError(con, prog, err)
		return 1
	}
	if opts.dumpAST {
		encoded, err := json.MarshalIndent(prog.Chunk, "", "  ")
		if err != nil {
			con.ErrorLine(fmt.Sprintf("encode ast: %v", err))
			return 1
		}
		con.WriteLine(string(encoded))
		return 0
	}

	interp := interpreter.New(prog.Chunk, interpreter.WithMaxCallDepth(maxDepth), interpreter.WithOutput(con))
	registerPrint(interp)

	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	values, err := interp.RunContext(ctx)
	elapsed := time.Since(start)
	if err != nil {
		log.Errf("%s failed after %v", prog.Source.Name, elapsed)
		reportError(con, prog, err)
		return 1
	}
	con.WriteLine(fmt.Sprintf("Done: [%s] (%.3f ms)", formatResults(values), float64(elapsed.Microseconds())/1000))
	return 0
}

// reportError prints a language error with its caret snippet, or a plain error otherwise.
func reportError(con *console.Console, prog *driver.Program, err error) {
	diag, ok := diagnostics.As(err)
	if !ok {
		con.ErrorLine(err.Error())
		return
	}
	con.ErrorLine(diag.Error())
	if prog != nil {
		if snippet := diag.Snippet(prog.Source.Text); snippet != "" {
			con.Error(snippet)
		}
	}
}

func registerPrint(interp *interpreter.Interpreter) {
	printFn := &runtime.NativeFunctionValue{
		Name: "print",
		Impl: func(call *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
			parts := make([]string, 0, len(args))
			for _, arg := range args {
				parts = append(parts, runtime.ToDisplay(arg))
			}
			_, err := fmt.Fprintln(call.Output, strings.Join(parts, "\t"))
			return nil, err
		},
	}
	interp.Define("print", printFn)
}

func formatResults(values []runtime.Value) string {
	parts := make([]string, len(values))
	for idx, v := range values {
		parts[idx] = runtime.ToDisplay(v)
	}
	return strings.Join(parts, ", ")
}

func printUsage(fs *flag.FlagSet) {
	out := fs.Output()
	fmt.Fprintln(out, "Usage:")
	fmt.Fprintln(out, "  kua [flags] <file.lua>")
	fmt.Fprintln(out, "  kua [flags]            run the default target of kua.yml")
	fmt.Fprintln(out, "  kua -target <name>     run a named target of kua.yml")
	fmt.Fprintln(out, "Flags:")
	fs.PrintDefaults()
}
