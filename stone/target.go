package stone

// Target names one of the directories the generation steps write to, or that
// generated files are moved between.
type Target int

//go:generate go tool enumer -type=Target -trimprefix=Target -text target.go

const (
	// TargetPackage is the package directory receiving the generated JavaScript client code.
	TargetPackage Target = iota

	// TargetTemplates is the directory holding the TypeScript templates, where the
	// declaration files are first generated.
	TargetTemplates

	// TargetTypes is the final location of the TypeScript declaration files.
	TargetTypes
)
