package stone

import (
	"fmt"
	"strings"
	"unicode/utf16"

	"github.com/pkg/errors"
)

// UploadArg describes the extra argument Stone injects into the routes matching
// the given attribute (e.g.: `style: upload`), carrying the uploaded file contents.
//
// It is passed to the JavaScript backends as inline JSON with the `-e` flag, and
// the field order below is the order of the keys in the JSON object.
type UploadArg struct {
	Match        []string `yaml:"match"`
	ArgName      string   `yaml:"arg_name"`
	ArgType      string   `yaml:"arg_type"`
	ArgDocstring string   `yaml:"arg_docstring"`
}

// JSON returns the encoding passed to Stone, formatted as Python's json.dumps does by
// default: ", " and ": " separators, and non-ASCII characters escaped as \uXXXX.
func (u *UploadArg) JSON() string {
	var b strings.Builder
	b.WriteString(`{"match": [`)
	for ii, m := range u.Match {
		if ii > 0 {
			b.WriteString(", ")
		}
		writeJSONString(&b, m)
	}
	b.WriteString(`], "arg_name": `)
	writeJSONString(&b, u.ArgName)
	b.WriteString(`, "arg_type": `)
	writeJSONString(&b, u.ArgType)
	b.WriteString(`, "arg_docstring": `)
	writeJSONString(&b, u.ArgDocstring)
	b.WriteString("}")
	return b.String()
}

// writeJSONString writes s as a quoted JSON string with only ASCII characters.
func writeJSONString(b *strings.Builder, s string) {
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		default:
			switch {
			case r < 0x20 || (r >= 0x7f && r <= 0xffff):
				fmt.Fprintf(b, `\u%04x`, r)
			case r > 0xffff:
				r1, r2 := utf16.EncodeRune(r)
				fmt.Fprintf(b, `\u%04x\u%04x`, r1, r2)
			default:
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
}

// Step describes one invocation of the Stone compiler.
//
// The fields before the `--` separator are interpreted by Stone itself, the ones after
// it are passed through to the backend given by Generator.
type Step struct {
	// Description is printed in verbose mode before running the step.
	Description string `yaml:"description"`

	// Generator is the Stone backend, e.g.: js_types, js_client, tsd_types, tsd_client.
	Generator string `yaml:"generator"`

	// Output selects the directory the backend writes to.
	Output Target `yaml:"output"`

	// Blacklist of namespaces whose routes are excluded (-b).
	Blacklist []string `yaml:"blacklist,omitempty"`

	// Whitelist of namespaces whose routes are included (-w).
	Whitelist []string `yaml:"whitelist,omitempty"`

	// Filter is a route attribute filter expression (-f), e.g.: `style!="download"`.
	Filter string `yaml:"filter,omitempty"`

	// Attributes of the routes that Stone keeps in the output (-a).
	Attributes []string `yaml:"attributes,omitempty"`

	// Files are the positional backend arguments: the template and/or output file names.
	Files []string `yaml:"files"`

	ClassName        string   `yaml:"class_name,omitempty"`
	WrapResponseIn   string   `yaml:"wrap_response_in,omitempty"`
	WrapErrorIn      string   `yaml:"wrap_error_in,omitempty"`
	InjectUploadArg  bool     `yaml:"inject_upload_arg,omitempty"`
	ExportNamespaces bool     `yaml:"export_namespaces,omitempty"`
	ImportNamespaces bool     `yaml:"import_namespaces,omitempty"`
	TypesFile        string   `yaml:"types_file,omitempty"`
	BackendAttrs     []string `yaml:"backend_attributes,omitempty"`
}

// Args returns the arguments of the Stone command line for the step, starting with the
// backend name: the invocation prefix (see Variant.Command) is not included.
//
// outputDir is the resolved directory for the step's Output, and uploadArg is only used
// if the step has InjectUploadArg set, in which case it must not be nil.
func (s *Step) Args(outputDir string, specs []string, uploadArg *UploadArg) ([]string, error) {
	args := []string{s.Generator, outputDir}
	args = append(args, specs...)
	for _, ns := range s.Blacklist {
		args = append(args, "-b", ns)
	}
	for _, ns := range s.Whitelist {
		args = append(args, "-w", ns)
	}
	if s.Filter != "" {
		args = append(args, "-f", s.Filter)
	}
	for _, attr := range s.Attributes {
		args = append(args, "-a", attr)
	}

	// Backend arguments.
	args = append(args, "--")
	args = append(args, s.Files...)
	if s.ClassName != "" {
		args = append(args, "-c", s.ClassName)
	}
	if s.WrapResponseIn != "" {
		args = append(args, "--wrap-response-in", s.WrapResponseIn)
	}
	if s.WrapErrorIn != "" {
		args = append(args, "--wrap-error-in", s.WrapErrorIn)
	}
	if s.InjectUploadArg {
		if uploadArg == nil {
			return nil, errors.Errorf("step %q injects the upload argument, but none is configured", s.Name())
		}
		args = append(args, "-e", uploadArg.JSON())
	}
	if s.ExportNamespaces {
		args = append(args, "--export-namespaces")
	}
	if s.ImportNamespaces {
		args = append(args, "--import-namespaces")
	}
	if s.TypesFile != "" {
		args = append(args, "--types-file", s.TypesFile)
	}
	for _, attr := range s.BackendAttrs {
		args = append(args, "-a", attr)
	}
	return args, nil
}

// Name identifies the step in logs and errors: its description, or the backend name if
// there is no description.
func (s *Step) Name() string {
	if s.Description != "" {
		return s.Description
	}
	return s.Generator
}
