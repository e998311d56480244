// Package cargo emits build script directives for Cargo.
//
// A build script talks to Cargo by printing lines of the form
//
//	cargo:<key>=<value>
//
// on standard output. Each function in this package writes exactly one such
// line, immediately, with no buffering across calls. The package functions
// write to os.Stdout; a Writer targets any io.Writer.
//
//	cargo.RerunIfChanged("wrapper.h")
//	cargo.LinkSearch("/opt/z/lib", cargo.SearchNative)
//	cargo.LinkLib("z", cargo.LinkStatic)
//	cargo.LinkArg("-Wl,-rpath,$ORIGIN", cargo.TargetBin("myapp"))
//
// Optional qualifiers are trailing arguments; only the first one is used.
// Nothing is validated or escaped: values must not contain newlines.
package cargo

import (
	"io"
	"os"
	"sync"
)

// Writer writes directives to an output stream. It is safe for concurrent
// use: every directive reaches the stream in a single Write call.
type Writer struct {
	mu  sync.Mutex
	out io.Writer
	syn Syntax
	buf []byte
}

// NewWriter returns a Writer emitting single-colon directives to out.
func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out}
}

// SetSyntax changes the prefix used by subsequent directives.
func (w *Writer) SetSyntax(s Syntax) {
	w.mu.Lock()
	w.syn = s
	w.mu.Unlock()
}

// Syntax returns the syntax currently in use.
func (w *Writer) Syntax() Syntax {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.syn
}

// Emit writes d followed by a newline. The returned error is the one of the
// underlying Write, unchanged.
func (w *Writer) Emit(d Directive) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.buf = d.appendLine(w.buf[:0], w.syn)
	w.buf = append(w.buf, '\n')
	_, err := w.out.Write(w.buf)
	return err
}

// RerunIfChanged tells Cargo to re-run the script when path changes.
func (w *Writer) RerunIfChanged(path string) error {
	return w.Emit(RerunFile{Path: path})
}

// RerunIfEnvChanged tells Cargo to re-run the script when the environment
// variable name changes.
func (w *Writer) RerunIfEnvChanged(name string) error {
	return w.Emit(RerunEnv{Name: name})
}

// SetEnv sets an environment variable visible to env! at compile time.
func (w *Writer) SetEnv(name, value string) error {
	return w.Emit(EnvVar{Name: name, Value: value})
}

// SetCfg enables the cfg key, or key=value when a value is given. The
// value is written unquoted.
func (w *Writer) SetCfg(key string, value ...string) error {
	return w.Emit(Cfg{Key: key, Value: optional(value)})
}

// LinkArg passes arg to the linker, for every artifact or only for target.
func (w *Writer) LinkArg(arg string, target ...LinkTarget) error {
	return w.Emit(LinkArgument{Arg: arg, Target: optional(target)})
}

// LinkSearch adds path to the library search path. Without a kind the
// search path applies to all kinds.
func (w *Writer) LinkSearch(path string, kind ...SearchKind) error {
	return w.Emit(SearchPath{Path: path, Search: optional(kind)})
}

// LinkLib links the library name. Without a kind the compiler picks one.
func (w *Writer) LinkLib(name string, kind ...LinkKind) error {
	return w.Emit(Library{Name: name, Link: optional(kind)})
}

// SetMetadata sets metadata read by the build scripts of dependents through
// DEP_<links>_<KEY>. The key is written as is.
func (w *Writer) SetMetadata(key, value string) error {
	return w.Emit(Metadata{Key: key, Value: value})
}

// Warn displays msg as a warning on the terminal.
func (w *Writer) Warn(msg string) error {
	return w.Emit(Warning{Message: msg})
}

// -----------------------------------------------------------------------------

var std = NewWriter(os.Stdout)

// Std returns the Writer bound to standard output used by the package
// functions.
func Std() *Writer { return std }

// Emit writes d to standard output.
func Emit(d Directive) error { return std.Emit(d) }

// RerunIfChanged tells Cargo to re-run the script when path changes.
func RerunIfChanged(path string) error { return std.RerunIfChanged(path) }

// RerunIfEnvChanged tells Cargo to re-run the script when the environment
// variable name changes.
func RerunIfEnvChanged(name string) error { return std.RerunIfEnvChanged(name) }

// SetEnv sets an environment variable visible to env! at compile time.
func SetEnv(name, value string) error { return std.SetEnv(name, value) }

// SetCfg enables the cfg key, or key=value when a value is given. The
// value is written unquoted.
func SetCfg(key string, value ...string) error { return std.SetCfg(key, value...) }

// LinkArg passes arg to the linker.
func LinkArg(arg string, target ...LinkTarget) error { return std.LinkArg(arg, target...) }

// LinkSearch adds path to the library search path.
func LinkSearch(path string, kind ...SearchKind) error { return std.LinkSearch(path, kind...) }

// LinkLib links the library name.
func LinkLib(name string, kind ...LinkKind) error { return std.LinkLib(name, kind...) }

// SetMetadata sets metadata for dependent build scripts.
func SetMetadata(key, value string) error { return std.SetMetadata(key, value) }

// Warn displays msg as a warning.
func Warn(msg string) error { return std.Warn(msg) }
