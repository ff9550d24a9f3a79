// generate_routes runs Stone to generate the JavaScript routes and types of the Dropbox SDK,
// and the TypeScript declarations, from the .stone API specifications.
//
// It requires a clone of github.com/dropbox/stone (see --stone) and Python 3. Output paths
// are relative to the generator directory (see --generator-dir), so it can be executed from
// any directory. Spec files and the default Stone clone are relative to the current directory.
//
//	$ go run ./cmd/generate_routes -v
//	$ go run ./cmd/generate_routes --stone ~/src/stone dropbox-api-spec/files.stone
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	env "github.com/caarlos0/env/v11"
	"github.com/dropbox/stonegen/stone"
	"github.com/janpfeifer/must"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"k8s.io/klog/v2"
)

// envConfig holds the defaults that can be set in the environment, all prefixed with STONEGEN_.
// Flags take precedence.
type envConfig struct {
	Stone        string `env:"STONE"`
	Variant      string `env:"VARIANT" envDefault:"current"`
	GeneratorDir string `env:"GENERATOR_DIR"`
	Verbose      bool   `env:"VERBOSE" envDefault:"false"`
}

// app holds what a run of the command needs from its environment.
type app struct {
	stdout, stderr io.Writer
	workDir        string

	// environ overrides os.Environ when not nil.
	environ map[string]string

	// runner executes Stone, if nil an *stone.ExecRunner is used.
	runner stone.Runner
}

// usageError is a command line error, reported with exit code 2.
type usageError struct{ error }

func main() {
	a := &app{
		stdout:  os.Stdout,
		stderr:  os.Stderr,
		workDir: must.M1(os.Getwd()),
	}
	err := a.run(context.Background(), os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		klog.Errorf("%v", err)
		klog.Flush()
		os.Exit(exitCode(err))
	}
	klog.Flush()
}

// exitCode to report for err: the exit code of the failing Stone invocation if there is one.
func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
		return exitErr.ExitCode()
	}
	var uErr usageError
	if errors.As(err, &uErr) {
		return 2
	}
	return 1
}

// run parses the command line and runs the generation. Each call uses its own flag set.
// Flags and spec files can be interleaved, as with argparse.
func (a *app) run(ctx context.Context, args []string) error {
	var cfg envConfig
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "STONEGEN_", Environment: a.environ}); err != nil {
		return usageError{errors.Wrap(err, "invalid environment configuration")}
	}

	fs := pflag.NewFlagSet("generate_routes", pflag.ContinueOnError)
	fs.SetOutput(a.stderr)
	var (
		verbose, dryRun, listVariants bool
		stonePath, variantName        string
		stepsFile, generatorDir       string
	)
	fs.BoolVarP(&verbose, "verbose", "v", cfg.Verbose, "Print debugging statements.")
	fs.StringVarP(&stonePath, "stone", "s", cfg.Stone,
		"Path to clone of stone repository. Defaults to the variant's location relative to the current directory.")
	fs.BoolVarP(&dryRun, "dry-run", "n", false,
		"Print the Stone invocations instead of running them. Generated files are not moved.")
	fs.StringVar(&variantName, "variant", cfg.Variant,
		fmt.Sprintf("Built-in variant of the generation steps to run, one of: %s.", strings.Join(stone.Variants(), ", ")))
	fs.StringVar(&stepsFile, "steps", "", "YAML file with the variant to run, instead of a built-in one.")
	fs.StringVar(&generatorDir, "generator-dir", cfg.GeneratorDir,
		"Directory the output paths are relative to. Defaults to the directory of the generator sources.")
	fs.BoolVar(&listVariants, "list-variants", false, "List the built-in variants and exit.")
	registerKlogFlags(fs)
	fs.Usage = func() {
		fmt.Fprintf(a.stderr, "Runs Stone to generate JS routes for the Dropbox client.\n\nUsage: %s [flags] [spec.stone...]\n\n", fs.Name())
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return err
		}
		return usageError{err}
	}
	// Everything after "--" is a spec file too.
	specArgs := fs.Args()

	if listVariants {
		for _, name := range stone.Variants() {
			v, err := stone.LoadVariant(name)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "%s\t%s\n", v.Name, v.Description)
		}
		return nil
	}

	var (
		variant *stone.Variant
		err     error
	)
	if stepsFile != "" {
		variant, err = stone.LoadVariantFile(stepsFile)
	} else {
		variant, err = stone.LoadVariant(variantName)
	}
	if err != nil {
		return err
	}
	klog.V(1).Infof("Using variant %q", variant.Name)

	specs, err := stone.ResolveSpecs(specArgs, variant.SpecGlob, a.workDir)
	if err != nil {
		return err
	}
	stoneDir, err := stone.ResolveStoneDir(stonePath, variant, a.workDir)
	if err != nil {
		return err
	}
	if generatorDir == "" {
		generatorDir = defaultGeneratorDir()
	}
	paths, err := stone.ResolvePaths(variant, generatorDir, stoneDir)
	if err != nil {
		return err
	}

	runner := a.runner
	if dryRun {
		runner = &stone.DryRunner{Out: a.stdout}
	} else if runner == nil {
		runner = &stone.ExecRunner{Stderr: a.stderr}
	}
	g := &stone.Generator{
		Variant:        variant,
		Paths:          paths,
		Specs:          specs,
		Runner:         runner,
		Verbose:        verbose,
		Out:            a.stdout,
		SkipRelocation: dryRun,
	}
	return g.Run(ctx)
}

// registerKlogFlags adds klog's flags to fs. klog's "v" is renamed to "log_level", since
// "-v" is the verbose flag.
func registerKlogFlags(fs *pflag.FlagSet) {
	klogFlags := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(klogFlags)
	klogFlags.VisitAll(func(f *flag.Flag) {
		pf := pflag.PFlagFromGoFlag(f)
		if f.Name == "v" {
			pf.Name = "log_level"
			pf.Shorthand = ""
		}
		fs.AddFlag(pf)
	})
}

// defaultGeneratorDir is the root of the generator sources: two levels above this file.
func defaultGeneratorDir() string {
	_, currentFile, _, ok := runtime.Caller(0)
	if !ok {
		klog.Warningf("Cannot find the generator sources, using the current directory as generator directory")
		return "."
	}
	return filepath.Join(filepath.Dir(currentFile), "..", "..")
}
