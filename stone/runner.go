package stone

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Runner executes one command line, argv[0] being the program, with dir as working directory.
// It returns the captured standard output.
type Runner interface {
	Run(ctx context.Context, dir string, argv []string) ([]byte, error)
}

// ExecRunner runs commands as child processes, and blocks until they exit.
type ExecRunner struct {
	// Stderr receives the standard error of the child process. If nil it uses os.Stderr.
	Stderr io.Writer
}

// Run implements Runner.
//
// A non-zero exit status is returned as an error wrapping the *exec.ExitError, whose
// ExitCode can be recovered with errors.As.
func (r *ExecRunner) Run(ctx context.Context, dir string, argv []string) ([]byte, error) {
	if len(argv) == 0 {
		return nil, errors.New("empty command line")
	}
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = r.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	klog.V(2).Infof("Running in %s: %q", dir, argv)
	if err := cmd.Run(); err != nil {
		return stdout.Bytes(), errors.Wrapf(err, "command %q failed", strings.Join(argv, " "))
	}
	return stdout.Bytes(), nil
}

// DryRunner prints the commands it would run, and runs nothing.
type DryRunner struct {
	Out io.Writer
}

// Run implements Runner.
func (r *DryRunner) Run(_ context.Context, dir string, argv []string) ([]byte, error) {
	_, err := fmt.Fprintf(r.Out, "(cd %s && %s)\n", shellQuote(dir), shellJoin(argv))
	return nil, err
}

// shellJoin renders argv as a shell command line, for display only.
func shellJoin(argv []string) string {
	parts := make([]string, len(argv))
	for ii, arg := range argv {
		parts[ii] = shellQuote(arg)
	}
	return strings.Join(parts, " ")
}

func shellQuote(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\n\"'`$\\|&;<>()*?[]{}!#~") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
