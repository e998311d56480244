// Package pkgconfig finds system libraries with pkg-config and emits the
// directives needed to link them.
package pkgconfig

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/goplus/cargokit/cargo"
	"go.trai.ch/zerr"
	"golang.org/x/mod/semver"
)

var (
	ErrNotFound    = zerr.New("pkg-config package not found")
	ErrTooOld      = zerr.New("pkg-config package version too old")
	ErrNoPkgConfig = zerr.New("pkg-config not available")
)

// Config controls a probe.
type Config struct {
	// Static asks for the flags of a static link (--static) and links with
	// the static kind every -l library that has an archive in one of the -L
	// directories. Others, such as system libraries, are linked bare.
	Static bool
	// AtLeast is the minimum acceptable package version. Empty accepts any.
	AtLeast string
	// Env is appended to the environment of pkg-config.
	Env []string
}

// Library is the result of a successful probe.
type Library struct {
	Name    string
	Version string
	Static  bool

	LinkPaths      []string
	FrameworkPaths []string
	Libs           []string
	Frameworks     []string
	IncludePaths   []string
	Defines        []string
	LinkArgs       []string
}

// Probe runs pkg-config for name with the default Config.
func Probe(ctx context.Context, name string) (*Library, error) {
	return (&Config{}).Probe(ctx, name)
}

// Probe runs pkg-config for name.
func (c *Config) Probe(ctx context.Context, name string) (*Library, error) {
	out, err := c.run(ctx, "--modversion", name)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, ErrNotFound.Error()), "package", name)
	}
	lib := &Library{
		Name:    name,
		Version: strings.TrimSpace(out),
		Static:  c.Static,
	}

	if c.AtLeast != "" {
		if err := c.checkVersion(ctx, lib); err != nil {
			return nil, err
		}
	}

	args := []string{"--libs", "--cflags"}
	if c.Static {
		args = append(args, "--static")
	}
	out, err = c.run(ctx, append(args, name)...)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to query flags"), "package", name)
	}
	lib.parseFlags(strings.Fields(out))
	return lib, nil
}

func (c *Config) checkVersion(ctx context.Context, lib *Library) error {
	have, want := canonical(lib.Version), canonical(c.AtLeast)
	if have != "" && want != "" {
		if semver.Compare(have, want) < 0 {
			return zerr.With(zerr.With(ErrTooOld, "package", lib.Name), "version", lib.Version)
		}
		return nil
	}
	// Not semver: let pkg-config apply its own comparison.
	if _, err := c.run(ctx, "--atleast-version="+c.AtLeast, lib.Name); err != nil {
		return zerr.With(zerr.With(ErrTooOld, "package", lib.Name), "version", lib.Version)
	}
	return nil
}

// canonical returns v as a valid semver string, or "" if it is not one.
func canonical(v string) string {
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return ""
	}
	return v
}

func (c *Config) run(ctx context.Context, args ...string) (string, error) {
	tool := os.Getenv("PKG_CONFIG")
	if tool == "" {
		tool = "pkg-config"
	}
	path, err := exec.LookPath(tool)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, ErrNoPkgConfig.Error()), "tool", tool)
	}
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Env = append(os.Environ(), c.Env...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", zerr.With(err, "stderr", msg)
		}
		return "", err
	}
	return string(out), nil
}

// parseFlags sorts compiler and linker flags into the fields of l.
func (l *Library) parseFlags(flags []string) {
	for i := 0; i < len(flags); i++ {
		f := flags[i]
		switch {
		case strings.HasPrefix(f, "-L") && len(f) > 2:
			l.LinkPaths = append(l.LinkPaths, f[2:])
		case strings.HasPrefix(f, "-F") && len(f) > 2:
			l.FrameworkPaths = append(l.FrameworkPaths, f[2:])
		case strings.HasPrefix(f, "-l") && len(f) > 2:
			l.Libs = append(l.Libs, f[2:])
		case strings.HasPrefix(f, "-I") && len(f) > 2:
			l.IncludePaths = append(l.IncludePaths, f[2:])
		case strings.HasPrefix(f, "-D") && len(f) > 2:
			l.Defines = append(l.Defines, f[2:])
		case f == "-framework" && i+1 < len(flags):
			i++
			l.Frameworks = append(l.Frameworks, flags[i])
		case strings.HasPrefix(f, "-Wl,"):
			l.LinkArgs = append(l.LinkArgs, f)
		}
	}
}

// Emit writes the directives linking l.
func (l *Library) Emit(w *cargo.Writer) error {
	for _, name := range []string{"PKG_CONFIG", "PKG_CONFIG_PATH", "PKG_CONFIG_LIBDIR", "PKG_CONFIG_SYSROOT_DIR"} {
		if err := w.RerunIfEnvChanged(name); err != nil {
			return err
		}
	}
	for _, p := range l.LinkPaths {
		if err := w.LinkSearch(p, cargo.SearchNative); err != nil {
			return err
		}
	}
	for _, p := range l.FrameworkPaths {
		if err := w.LinkSearch(p, cargo.SearchFramework); err != nil {
			return err
		}
	}
	for _, name := range l.Libs {
		var err error
		if l.Static && l.hasArchive(name) {
			err = w.LinkLib(name, cargo.LinkStatic)
		} else {
			err = w.LinkLib(name)
		}
		if err != nil {
			return err
		}
	}
	for _, name := range l.Frameworks {
		if err := w.LinkLib(name, cargo.LinkFramework); err != nil {
			return err
		}
	}
	for _, arg := range l.LinkArgs {
		if err := w.LinkArg(arg); err != nil {
			return err
		}
	}
	return nil
}

// hasArchive reports whether a static archive of the library name exists
// in one of the link paths.
func (l *Library) hasArchive(name string) bool {
	files := []string{"lib" + name + ".a"}
	if runtime.GOOS == "windows" {
		files = append(files, name+".lib")
	}
	for _, dir := range l.LinkPaths {
		for _, f := range files {
			if fi, err := os.Stat(filepath.Join(dir, f)); err == nil && !fi.IsDir() {
				return true
			}
		}
	}
	return false
}

// EmitMetadata publishes the include paths and version of l to dependent
// build scripts as the "include" and "version" metadata keys.
func (l *Library) EmitMetadata(w *cargo.Writer) error {
	if len(l.IncludePaths) > 0 {
		if err := w.SetMetadata("include", strings.Join(l.IncludePaths, string(os.PathListSeparator))); err != nil {
			return err
		}
	}
	return w.SetMetadata("version", l.Version)
}
