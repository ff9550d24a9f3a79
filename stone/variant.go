package stone

import (
	"bytes"
	"embed"
	"io"
	"os"
	"path"
	"slices"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DefaultVariant is the variant used when none is selected: the current generation of the SDK.
const DefaultVariant = "current"

//go:embed variants/*.yaml
var variantsFS embed.FS

// TargetPaths holds the directory of each Target, relative to the generator directory.
type TargetPaths struct {
	Package   string `yaml:"package"`
	Templates string `yaml:"templates,omitempty"`
	Types     string `yaml:"types,omitempty"`
}

// Get returns the configured path of the target, or "" if it is not configured.
func (p TargetPaths) Get(t Target) string {
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

// Relocation moves the files generated in one target directory to another, after all steps ran.
type Relocation struct {
	From    Target `yaml:"from"`
	Pattern string `yaml:"pattern"`
	To      Target `yaml:"to"`
}

// Variant is one complete configuration of the generation: which compiler invocation to
// use, where to find the inputs and the ordered list of steps.
type Variant struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`

	// Command is the prefix used to invoke the Stone compiler, e.g.: python3 -m stone.cli.
	Command []string `yaml:"command"`

	// SpecGlob is the pattern (relative to the working directory) of the .stone files used
	// when none are given explicitly.
	SpecGlob string `yaml:"spec_glob"`

	// StoneDir is the default location (relative to the working directory) of the Stone checkout.
	StoneDir string `yaml:"stone_dir"`

	Paths     TargetPaths `yaml:"paths"`
	UploadArg *UploadArg  `yaml:"upload_arg,omitempty"`
	Steps     []Step      `yaml:"steps"`
	Relocate  *Relocation `yaml:"relocate,omitempty"`
}

// Variants returns the sorted names of the variants built into the binary.
func Variants() []string {
	entries, err := variantsFS.ReadDir("variants")
	if err != nil {
		// The embedded directory is always present.
		panic(errors.Wrap(err, "failed to list embedded variants"))
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, strings.TrimSuffix(entry.Name(), path.Ext(entry.Name())))
	}
	slices.Sort(names)
	return names
}

// LoadVariant returns the built-in variant with the given name.
func LoadVariant(name string) (*Variant, error) {
	if !slices.Contains(Variants(), name) {
		return nil, errors.Errorf("unknown variant %q, known variants: %s", name, strings.Join(Variants(), ", "))
	}
	blob, err := variantsFS.ReadFile("variants/" + name + ".yaml")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read embedded variant %q", name)
	}
	return ParseVariant(bytes.NewReader(blob))
}

// LoadVariantFile reads a variant from a YAML file.
func LoadVariantFile(filePath string) (*Variant, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open variant file")
	}
	defer func() { ReportError(f.Close()) }()
	v, err := ParseVariant(f)
	if err != nil {
		return nil, errors.WithMessagef(err, "in %s", filePath)
	}
	return v, nil
}

// ParseVariant decodes and validates a variant in YAML. Unknown fields are rejected.
func ParseVariant(r io.Reader) (*Variant, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var v Variant
	if err := dec.Decode(&v); err != nil {
		return nil, errors.Wrap(err, "failed to parse variant")
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}
	return &v, nil
}

// Validate checks that the variant can be run: it has an invocation command and steps,
// and every target it uses has a configured path.
func (v *Variant) Validate() error {
	if v.Name == "" {
		return errors.New("variant has no name")
	}
	if len(v.Command) == 0 {
		return errors.Errorf("variant %q has no command to invoke Stone", v.Name)
	}
	if len(v.Steps) == 0 {
		return errors.Errorf("variant %q has no steps", v.Name)
	}
	for ii := range v.Steps {
		step := &v.Steps[ii]
		if step.Generator == "" {
			return errors.Errorf("variant %q: step #%d has no generator", v.Name, ii)
		}
		if !step.Output.IsATarget() || v.Paths.Get(step.Output) == "" {
			return errors.Errorf("variant %q: step %q writes to %s, which has no configured path",
				v.Name, step.Name(), step.Output)
		}
		if step.InjectUploadArg && v.UploadArg == nil {
			return errors.Errorf("variant %q: step %q injects the upload argument, but upload_arg is not set",
				v.Name, step.Name())
		}
	}
	if r := v.Relocate; r != nil {
		if r.Pattern == "" {
			return errors.Errorf("variant %q: relocation has no pattern", v.Name)
		}
		for _, t := range []Target{r.From, r.To} {
			if !t.IsATarget() || v.Paths.Get(t) == "" {
				return errors.Errorf("variant %q: relocation uses %s, which has no configured path", v.Name, t)
			}
		}
	}
	return nil
}

// StepCommand returns the full command line for the step: the invocation prefix followed by Step.Args.
func (v *Variant) StepCommand(step *Step, paths *Paths, specs []string) ([]string, error) {
	args, err := step.Args(paths.Dir(step.Output), specs, v.UploadArg)
	if err != nil {
		return nil, err
	}
	return append(slices.Clone(v.Command), args...), nil
}
