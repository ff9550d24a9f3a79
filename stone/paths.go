package stone

import (
	"os/user"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Paths are the absolute directories used by one run of the generation.
type Paths struct {
	// Stone is the checkout of the Stone compiler, used as the working directory of every step.
	Stone string

	Package, Templates, Types string
}

// Dir returns the directory for the given target.
func (p *Paths) Dir(t Target) string {
	switch t {
	case TargetPackage:
		return p.Package
	case TargetTemplates:
		return p.Templates
	case TargetTypes:
		return p.Types
	}
	return ""
}

// ResolvePaths anchors the variant's target paths on generatorDir -- the directory of the
// generator itself, not the caller's working directory -- so the outputs are the same
// wherever the generator is invoked from.
//
// Targets without a configured path are left empty.
func ResolvePaths(v *Variant, generatorDir, stoneDir string) (*Paths, error) {
	base, err := filepath.Abs(generatorDir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to make generator directory %q absolute", generatorDir)
	}
	resolve := func(rel string) string {
		if rel == "" {
			return ""
		}
		if filepath.IsAbs(rel) {
			return filepath.Clean(rel)
		}
		return filepath.Join(base, rel)
	}
	return &Paths{
		Stone:     stoneDir,
		Package:   resolve(v.Paths.Package),
		Templates: resolve(v.Paths.Templates),
		Types:     resolve(v.Paths.Types),
	}, nil
}

// ResolveStoneDir returns the absolute path of the Stone checkout: override if given, otherwise
// the variant's default location relative to workDir.
func ResolveStoneDir(override string, v *Variant, workDir string) (string, error) {
	dir := v.StoneDir
	if override != "" {
		var err error
		dir, err = ReplaceTildeInDir(override)
		if err != nil {
			return "", err
		}
	}
	if dir == "" {
		return "", errors.Errorf("no Stone checkout configured for variant %q", v.Name)
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(workDir, dir)
	}
	return filepath.Clean(dir), nil
}

// ResolveSpecs returns the absolute paths of the .stone files to compile.
//
// If explicit is not empty, its paths are used in the given order, relative ones joined
// to workDir. Their existence is not checked: Stone reports missing files.
// Otherwise specGlob (relative to workDir) is expanded and sorted lexicographically.
func ResolveSpecs(explicit []string, specGlob, workDir string) ([]string, error) {
	if len(explicit) > 0 {
		specs := make([]string, len(explicit))
		for ii, spec := range explicit {
			if filepath.IsAbs(spec) {
				specs[ii] = filepath.Clean(spec)
			} else {
				specs[ii] = filepath.Join(workDir, spec)
			}
		}
		return specs, nil
	}
	if specGlob == "" {
		return nil, errors.New("no spec files given and no default spec glob configured")
	}
	specs, err := globSorted(workDir, specGlob)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to list spec files")
	}
	if len(specs) == 0 {
		klog.Warningf("No spec files match %q in %s", specGlob, workDir)
	}
	return specs, nil
}

// globSorted expands pattern relative to dir (unless absolute), and returns the sorted
// absolute matches. It supports `**` to match any number of directories.
func globSorted(dir, pattern string) ([]string, error) {
	if !filepath.IsAbs(pattern) {
		pattern = filepath.Join(escapeGlobMeta(dir), pattern)
	}
	matches, err := doublestar.Glob(pattern)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid glob %q", pattern)
	}
	for ii, match := range matches {
		matches[ii] = filepath.Clean(match)
	}
	slices.Sort(matches)
	return matches, nil
}

// escapeGlobMeta escapes the characters with special meaning in a glob, so dir is matched literally.
func escapeGlobMeta(dir string) string {
	if !strings.ContainsAny(dir, `*?[]{}\`) || filepath.Separator == '\\' {
		return dir
	}
	var b strings.Builder
	for _, r := range dir {
		if strings.ContainsRune(`*?[]{}\`, r) {
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ReplaceTildeInDir by the user's home directory. Returns dir if it doesn't start with "~".
//
// It returns an error if `dir` has an unknown user (e.g: `~unknown/...`)
func ReplaceTildeInDir(dir string) (string, error) {
	if len(dir) == 0 || dir[0] != '~' {
		return dir, nil
	}
	var userName string
	if dir != "~" && !strings.HasPrefix(dir, "~/") {
		sepIdx := strings.IndexRune(dir, '/')
		if sepIdx == -1 {
			userName = dir[1:]
		} else {
			userName = dir[1:sepIdx]
		}
	}
	var usr *user.User
	var err error
	if userName == "" {
		usr, err = user.Current()
	} else {
		usr, err = user.Lookup(userName)
	}
	if err != nil {
		return "", errors.Wrapf(err, "failed to lookup home directory for user in path %q", dir)
	}
	return filepath.Join(usr.HomeDir, dir[1+len(userName):]), nil
}

// ReportError logs an error if it is not nil, but otherwise does nothing.
func ReportError(err error) {
	if err != nil {
		klog.Warningf("Error: %v", err)
	}
}
