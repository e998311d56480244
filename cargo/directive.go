package cargo

import (
	"strings"

	"go.trai.ch/zerr"
)

// Directive is one instruction to the build orchestrator. The set of
// implementations is closed; there is one per Kind.
type Directive interface {
	Kind() Kind
	appendLine(b []byte, syn Syntax) []byte
}

// RerunFile asks Cargo to re-run the script when the file or directory at
// Path changes.
type RerunFile struct {
	Path string
}

// RerunEnv asks Cargo to re-run the script when the environment variable
// Name changes.
type RerunEnv struct {
	Name string
}

// EnvVar sets a compile-time environment variable for the package.
type EnvVar struct {
	Name  string
	Value string
}

// Cfg enables a cfg setting. A nil Value renders the bare key.
type Cfg struct {
	Key   string
	Value *string
}

// LinkArgument passes a custom flag to the linker. A nil Target applies it
// to every linked artifact of the package.
type LinkArgument struct {
	Arg    string
	Target *LinkTarget
}

// SearchPath adds a library search path. A nil Search renders "all".
type SearchPath struct {
	Path   string
	Search *SearchKind
}

// Library links a library. A nil Link renders the bare library name and
// leaves the choice of kind to the compiler.
type Library struct {
	Name string
	Link *LinkKind
}

// Metadata sets a key/value pair passed on to dependent build scripts.
type Metadata struct {
	Key   string
	Value string
}

// Warning displays Message on the terminal.
type Warning struct {
	Message string
}

func (RerunFile) Kind() Kind { return KindRerunIfChanged }
func (RerunEnv) Kind() Kind { return KindRerunIfEnvChanged }
func (EnvVar) Kind() Kind { return KindEnv }
func (Cfg) Kind() Kind { return KindCfg }
func (LinkArgument) Kind() Kind { return KindLinkArg }
func (SearchPath) Kind() Kind { return KindLinkSearch }
func (Library) Kind() Kind { return KindLinkLib }
func (Metadata) Kind() Kind { return KindMetadata }
func (Warning) Kind() Kind { return KindWarning }

func (d RerunFile) appendLine(b []byte, syn Syntax) []byte {
	b = syn.appendKey(b, "rerun-if-changed")
	return append(b, d.Path...)
}

func (d RerunEnv) appendLine(b []byte, syn Syntax) []byte {
	b = syn.appendKey(b, "rerun-if-env-changed")
	return append(b, d.Name...)
}

func (d EnvVar) appendLine(b []byte, syn Syntax) []byte {
	b = syn.appendKey(b, "rustc-env")
	b = append(b, d.Name...)
	b = append(b, '=')
	return append(b, d.Value...)
}

func (d Cfg) appendLine(b []byte, syn Syntax) []byte {
	b = syn.appendKey(b, "rustc-cfg")
	b = append(b, d.Key...)
	if d.Value != nil {
		b = append(b, '=')
		b = append(b, *d.Value...)
	}
	return b
}

func (d LinkArgument) appendLine(b []byte, syn Syntax) []byte {
	b = append(b, syn.prefix()...)
	if d.Target != nil && d.Target.kind == targetCdylib {
		b = append(b, "rustc-cdylib-link-arg"...)
	} else {
		b = append(b, "rustc-link-arg"...)
		if d.Target != nil {
			b = append(b, d.Target.suffix()...)
		}
	}
	b = append(b, '=')
	return append(b, d.Arg...)
}

func (d SearchPath) appendLine(b []byte, syn Syntax) []byte {
	kind := SearchAll
	if d.Search != nil {
		kind = *d.Search
	}
	b = syn.appendKey(b, "rustc-link-search")
	b = append(b, kind.String()...)
	b = append(b, '=')
	return append(b, d.Path...)
}

func (d Library) appendLine(b []byte, syn Syntax) []byte {
	b = syn.appendKey(b, "rustc-link-lib")
	if d.Link != nil {
		b = append(b, d.Link.String()...)
		b = append(b, '=')
	}
	return append(b, d.Name...)
}

func (d Metadata) appendLine(b []byte, syn Syntax) []byte {
	if syn == DoubleColon {
		b = syn.appendKey(b, "metadata")
	} else {
		b = append(b, syn.prefix()...)
	}
	b = append(b, d.Key...)
	b = append(b, '=')
	return append(b, d.Value...)
}

func (d Warning) appendLine(b []byte, syn Syntax) []byte {
	b = syn.appendKey(b, "warning")
	return append(b, d.Message...)
}

// Format renders d in the default single-colon syntax, without the line
// terminator.
func Format(d Directive) string {
	return SingleColon.Format(d)
}

// ParseLibrary parses "name" or "kind:name", kind being dylib, static or
// framework.
func ParseLibrary(spec string) (Library, error) {
	kind, name, ok := strings.Cut(spec, ":")
	if !ok {
		return Library{Name: spec}, nil
	}
	k, err := ParseLinkKind(kind)
	if err != nil {
		return Library{}, zerr.With(err, "lib", spec)
	}
	return Library{Name: name, Link: &k}, nil
}

func optional[T any](v []T) *T {
	if len(v) == 0 {
		return nil
	}
	return &v[0]
}
