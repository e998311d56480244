// Package manifest reads build directives declared in a YAML file.
//
//	directives:
//	  - kind: rustc-link-search
//	    path: /opt/z/lib
//	    search: native
//	  - kind: rustc-link-lib
//	    name: z
//	    link: static
//
// Directives are applied in file order, one line each.
package manifest

import (
	"errors"
	"io"
	"os"

	"github.com/goplus/cargokit/cargo"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidEntry = zerr.New("invalid manifest entry")
	ErrMissingField = zerr.New("missing required field")
)

// File is the top-level document.
type File struct {
	Directives []Entry `yaml:"directives"`
}

// Entry is one directive. Which fields apply depends on Kind.
type Entry struct {
	Kind    string  `yaml:"kind"`
	Path    string  `yaml:"path,omitempty"`
	Name    string  `yaml:"name,omitempty"`
	Key     string  `yaml:"key,omitempty"`
	Value   *string `yaml:"value,omitempty"`
	Arg     string  `yaml:"arg,omitempty"`
	Message string  `yaml:"message,omitempty"`
	Search  string  `yaml:"search,omitempty"`
	Link    string  `yaml:"link,omitempty"`
	Target  string  `yaml:"target,omitempty"`
}

// Load reads and decodes the manifest at path.
func Load(path string) ([]cargo.Directive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to open manifest"), "path", path)
	}
	defer f.Close()

	ds, err := Decode(f)
	if err != nil {
		return nil, zerr.With(err, "path", path)
	}
	return ds, nil
}

// Decode reads a manifest from r. Unknown fields are rejected.
func Decode(r io.Reader) ([]cargo.Directive, error) {
	var file File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, zerr.Wrap(err, "failed to parse manifest")
	}

	ds := make([]cargo.Directive, 0, len(file.Directives))
	for i, e := range file.Directives {
		d, err := e.Directive()
		if err != nil {
			return nil, zerr.With(err, "index", i)
		}
		ds = append(ds, d)
	}
	return ds, nil
}

// Apply writes ds to w in order, stopping at the first write error.
func Apply(w *cargo.Writer, ds []cargo.Directive) error {
	for _, d := range ds {
		if err := w.Emit(d); err != nil {
			return err
		}
	}
	return nil
}

// Directive converts e into the directive it declares.
func (e Entry) Directive() (cargo.Directive, error) {
	kind, err := cargo.ParseKind(e.Kind)
	if err != nil {
		return nil, err
	}
	switch kind {
	case cargo.KindRerunIfChanged:
		if e.Path == "" {
			return nil, missing(kind, "path")
		}
		return cargo.RerunFile{Path: e.Path}, nil
	case cargo.KindRerunIfEnvChanged:
		if e.Name == "" {
			return nil, missing(kind, "name")
		}
		return cargo.RerunEnv{Name: e.Name}, nil
	case cargo.KindEnv:
		if e.Name == "" {
			return nil, missing(kind, "name")
		}
		if e.Value == nil {
			return nil, missing(kind, "value")
		}
		return cargo.EnvVar{Name: e.Name, Value: *e.Value}, nil
	case cargo.KindCfg:
		if e.Key == "" {
			return nil, missing(kind, "key")
		}
		return cargo.Cfg{Key: e.Key, Value: e.Value}, nil
	case cargo.KindLinkArg:
		d := cargo.LinkArgument{Arg: e.Arg}
		if e.Target != "" {
			t, err := cargo.ParseLinkTarget(e.Target)
			if err != nil {
				return nil, err
			}
			d.Target = &t
		}
		return d, nil
	case cargo.KindLinkSearch:
		if e.Path == "" {
			return nil, missing(kind, "path")
		}
		d := cargo.SearchPath{Path: e.Path}
		if e.Search != "" {
			k, err := cargo.ParseSearchKind(e.Search)
			if err != nil {
				return nil, err
			}
			d.Search = &k
		}
		return d, nil
	case cargo.KindLinkLib:
		if e.Name == "" {
			return nil, missing(kind, "name")
		}
		d := cargo.Library{Name: e.Name}
		if e.Link != "" {
			k, err := cargo.ParseLinkKind(e.Link)
			if err != nil {
				return nil, err
			}
			d.Link = &k
		}
		return d, nil
	case cargo.KindMetadata:
		if e.Key == "" {
			return nil, missing(kind, "key")
		}
		if e.Value == nil {
			return nil, missing(kind, "value")
		}
		return cargo.Metadata{Key: e.Key, Value: *e.Value}, nil
	case cargo.KindWarning:
		return cargo.Warning{Message: e.Message}, nil
	}
	return nil, zerr.With(ErrInvalidEntry, "kind", e.Kind)
}

func missing(kind cargo.Kind, field string) error {
	return zerr.With(zerr.With(ErrMissingField, "kind", kind.String()), "field", field)
}
