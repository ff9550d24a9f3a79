package stone

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/require"
)

// uploadArgJSON is the upload argument as Python's json.dumps encodes it.
const uploadArgJSON = `{"match": ["style", "upload"], "arg_name": "contents", "arg_type": "Object", "arg_docstring": "The file contents to be uploaded."}`

// newTestGenerator returns a generator for the current variant, with the generator directory
// under a temporary directory, and the package, templates and types directories created.
func newTestGenerator(t *testing.T, runner Runner) *Generator {
	root := t.TempDir()
	generatorDir := filepath.Join(root, "generator")
	for _, dir := range []string{"generator/typescript", "lib", "types", "stone"} {
		must.M(os.MkdirAll(filepath.Join(root, dir), 0755))
	}
	v := must.M1(LoadVariant(DefaultVariant))
	paths := must.M1(ResolvePaths(v, generatorDir, filepath.Join(root, "stone")))
	return &Generator{
		Variant: v,
		Paths:   paths,
		Specs:   []string{"/specs/auth.stone", "/specs/files.stone"},
		Runner:  runner,
		Out:     &bytes.Buffer{},
	}
}

func TestGenerator_CurrentVariantInvocations(t *testing.T) {
	runner := &recordingRunner{}
	g := newTestGenerator(t, runner)
	require.NoError(t, g.Run(context.Background()))

	pkg, templates := g.Paths.Package, g.Paths.Templates
	stone := []string{"python3", "-m", "stone.cli"}
	join := func(parts ...[]string) (all []string) {
		for _, p := range parts {
			all = append(all, p...)
		}
		return
	}
	specs := g.Specs
	want := [][]string{
		join(stone, []string{"js_types", pkg}, specs,
			[]string{"-b", "team", "-a", "host", "-a", "style", "-a", "auth",
				"--", "types.js", "-e", uploadArgJSON}),
		join(stone, []string{"js_client", pkg}, specs,
			[]string{"-a", "host", "-a", "style", "-a", "auth", "-a", "scope",
				"--", "routes.js", "-c", "Dropbox", "--wrap-response-in", "DropboxResponse",
				"--wrap-error-in", "DropboxResponseError", "-a", "scope"}),
		join(stone, []string{"tsd_types", templates}, specs,
			[]string{"-b", "team", "-a", "host", "-a", "style",
				"--", "dropbox_types.d.tstemplate", "dropbox_types.d.ts", "-e", uploadArgJSON,
				"--export-namespaces"}),
		join(stone, []string{"tsd_client", templates}, specs,
			[]string{"-a", "host", "-a", "style", "-a", "scope",
				"--", "index.d.tstemplate", "index.d.ts", "--wrap-response-in", "DropboxResponse",
				"--wrap-error-in", "DropboxResponseError", "--import-namespaces",
				"--types-file", "./dropbox_types", "-a", "scope"}),
	}
	require.Len(t, runner.calls, len(want))
	for ii, call := range runner.calls {
		require.Equal(t, g.Paths.Stone, call.Dir, "step #%d working directory", ii)
		require.Equal(t, want[ii], call.Argv, "step #%d command line", ii)
	}
}

func TestGenerator_FailureStopsLaterSteps(t *testing.T) {
	for failAt := 1; failAt <= 4; failAt++ {
		runner := &recordingRunner{failAt: failAt}
		g := newTestGenerator(t, runner)
		touch(t, g.Paths.Templates, "index.d.ts")
		err := g.Run(context.Background())
		require.Error(t, err)
		require.Contains(t, err.Error(), g.Variant.Steps[failAt-1].Description)
		require.Len(t, runner.calls, failAt, "steps after #%d should not run", failAt)

		// Nothing is relocated after a failure.
		require.FileExists(t, filepath.Join(g.Paths.Templates, "index.d.ts"))
		require.NoFileExists(t, filepath.Join(g.Paths.Types, "index.d.ts"))
	}
}

func TestGenerator_Verbose(t *testing.T) {
	quietRunner := &recordingRunner{output: "stone says hi\n"}
	quiet := newTestGenerator(t, quietRunner)
	require.NoError(t, quiet.Run(context.Background()))
	require.Empty(t, quiet.Out.(*bytes.Buffer).String())

	verboseRunner := &recordingRunner{output: "stone says hi\n"}
	verbose := newTestGenerator(t, verboseRunner)
	verbose.Verbose = true
	verbose.Paths = quiet.Paths
	require.NoError(t, verbose.Run(context.Background()))
	out := verbose.Out.(*bytes.Buffer).String()
	require.Contains(t, out, "Generating JS types\n")
	require.Contains(t, out, "Generating TSD client routes for user routes\n")
	require.Contains(t, out, "stone says hi\n")
	require.Contains(t, out, "Package path: "+quiet.Paths.Package)

	// Same invocations, verbose or not.
	require.Equal(t, quietRunner.calls, verboseRunner.calls)
}

func TestGenerator_Relocation(t *testing.T) {
	runner := &recordingRunner{}
	g := newTestGenerator(t, runner)
	touch(t, g.Paths.Templates, "index.d.ts", "dropbox_types.d.ts", "index.d.tstemplate")
	g.Verbose = true
	require.NoError(t, g.Run(context.Background()))

	for _, name := range []string{"index.d.ts", "dropbox_types.d.ts"} {
		require.NoFileExists(t, filepath.Join(g.Paths.Templates, name))
		contents := must.M1(os.ReadFile(filepath.Join(g.Paths.Types, name)))
		require.Equal(t, name, string(contents))
	}
	require.FileExists(t, filepath.Join(g.Paths.Templates, "index.d.tstemplate"))
	require.Contains(t, g.Out.(*bytes.Buffer).String(), "Moved files: ["+
		filepath.Join(g.Paths.Types, "dropbox_types.d.ts")+" "+filepath.Join(g.Paths.Types, "index.d.ts")+"]")

	// SkipRelocation leaves them in place.
	runner = &recordingRunner{}
	g = newTestGenerator(t, runner)
	touch(t, g.Paths.Templates, "index.d.ts")
	g.SkipRelocation = true
	require.NoError(t, g.Run(context.Background()))
	require.FileExists(t, filepath.Join(g.Paths.Templates, "index.d.ts"))
}

func TestGenerator_LegacyVariant(t *testing.T) {
	runner := &recordingRunner{}
	v := must.M1(LoadVariant("legacy"))
	paths := must.M1(ResolvePaths(v, "/sdk/generator", "/sdk/stone"))
	g := &Generator{Variant: v, Paths: paths, Specs: []string{"/spec/team.stone"}, Runner: runner}
	require.NoError(t, g.Run(context.Background()))

	require.Len(t, runner.calls, 6)
	require.Equal(t, []string{
		"python", "-m", "stone.cli", "js_client", filepath.FromSlash("/sdk/src"), "/spec/team.stone",
		"-w", "team", "-f", `style!="download"`, "-a", "host", "-a", "style",
		"--", "routes-team.js", "-c", "DropboxTeamBase",
	}, runner.calls[2].Argv)
	for _, call := range runner.calls {
		require.Equal(t, "/sdk/stone", call.Dir)
	}
}

func TestGenerator_VerboseDefaultsToStdout(t *testing.T) {
	runner := &recordingRunner{}
	g := newTestGenerator(t, runner)
	g.Out = nil
	g.Verbose = true
	require.NotPanics(t, func() {
		require.NoError(t, g.Run(context.Background()))
	})
	require.Equal(t, os.Stdout, g.Out)
	require.Len(t, runner.calls, len(g.Variant.Steps))
}
