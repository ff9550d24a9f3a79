// Package stone drives the Stone compiler (https://github.com/dropbox/stone) to generate the
// routes and types of the Dropbox JavaScript SDK, and the matching TypeScript declarations.
//
// Stone is invoked as an external process, once per Step of a Variant, in the order listed.
// The compilation itself is entirely done by Stone.
package stone

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Generator runs all the steps of a variant.
type Generator struct {
	Variant *Variant
	Paths   *Paths

	// Specs are the absolute paths to the .stone files, see ResolveSpecs.
	Specs []string

	// Runner executes the Stone invocations.
	Runner Runner

	// Verbose prints each step before running it, and the output captured from Stone.
	Verbose bool

	// Out receives the verbose output. If nil it uses os.Stdout.
	Out io.Writer

	// SkipRelocation leaves the generated files where Stone wrote them.
	SkipRelocation bool
}

// Run executes the steps sequentially, and then moves the generated files if the variant
// configures a relocation.
//
// The first failure aborts the run: the following steps are not executed, and the files
// already generated are left in place.
func (g *Generator) Run(ctx context.Context) error {
	if g.Out == nil {
		g.Out = os.Stdout
	}
	g.printf("Spec files: %v\n", g.Specs)
	for _, t := range TargetValues() {
		if dir := g.Paths.Dir(t); dir != "" {
			g.printf("%s path: %s\n", t, dir)
		}
	}
	for ii := range g.Variant.Steps {
		step := &g.Variant.Steps[ii]
		argv, err := g.Variant.StepCommand(step, g.Paths, g.Specs)
		if err != nil {
			return err
		}
		g.printf("%s\n", step.Name())
		klog.V(1).Infof("Step %d/%d (%s): %q", ii+1, len(g.Variant.Steps), step.Generator, argv)
		output, err := g.Runner.Run(ctx, g.Paths.Stone, argv)
		if err != nil {
			return errors.WithMessagef(err, "step %q", step.Name())
		}
		if g.Verbose && len(output) > 0 {
			if _, err := g.Out.Write(output); err != nil {
				return errors.Wrap(err, "failed to print Stone output")
			}
		}
	}

	r := g.Variant.Relocate
	if r == nil || g.SkipRelocation {
		return nil
	}
	fromDir, toDir := g.Paths.Dir(r.From), g.Paths.Dir(r.To)
	g.printf("Moving %s from %s to %s\n", r.Pattern, fromDir, toDir)
	moved, err := Relocate(fromDir, r.Pattern, toDir)
	if err != nil {
		return err
	}
	g.printf("Moved files: %v\n", moved)
	return nil
}

// printf prints diagnostics in verbose mode only.
func (g *Generator) printf(format string, args ...any) {
	if !g.Verbose {
		return
	}
	_, _ = fmt.Fprintf(g.Out, format, args...)
}
