package stone

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/janpfeifer/must"
	"github.com/pkg/errors"
)

// recordedCall is one invocation seen by recordingRunner.
type recordedCall struct {
	Dir  string
	Argv []string
}

// recordingRunner records the invocations instead of running them.
type recordingRunner struct {
	calls []recordedCall

	// failAt is the 1-based index of the call that fails, 0 means none fails.
	failAt int

	// output returned by every call.
	output string
}

func (r *recordingRunner) Run(_ context.Context, dir string, argv []string) ([]byte, error) {
	r.calls = append(r.calls, recordedCall{Dir: dir, Argv: slices.Clone(argv)})
	if len(r.calls) == r.failAt {
		return nil, errors.Errorf("exit status 1")
	}
	return []byte(r.output), nil
}

// touch creates the files (and their directories) under dir, with their name as contents.
func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		p := filepath.Join(dir, name)
		must.M(os.MkdirAll(filepath.Dir(p), 0755))
		must.M(os.WriteFile(p, []byte(name), 0644))
	}
}
