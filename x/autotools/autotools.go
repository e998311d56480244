// Package autotools builds a vendored configure/make project from a build
// script and emits the directives that link its libraries.
package autotools

import (
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goplus/cargokit/cargo"
	"github.com/goplus/cargokit/internal/env"
	"go.trai.ch/zerr"
)

// AutoTools drives configure, make and make install into an output directory.
type AutoTools struct {
	sourceDir string
	outDir    string
	jobs      int
	env       env.Vars
	stdout    io.Writer
	stderr    io.Writer
}

// New returns an AutoTools building sourceDir into outDir, usually OUT_DIR.
// A relative outDir is made absolute: configure runs inside the build
// directory and takes it as --prefix. Tool output goes to stderr: stdout carries directives.
func New(sourceDir, outDir string) *AutoTools {
	if abs, err := filepath.Abs(outDir); err == nil {
		outDir = abs
	}
	return &AutoTools{
		sourceDir: sourceDir,
		outDir:    outDir,
		env:       env.Vars{},
		stdout:    os.Stderr,
		stderr:    os.Stderr,
	}
}

// Jobs sets the make -j level. Zero leaves it to make.
func (a *AutoTools) Jobs(n int) { a.jobs = n }

// Output redirects the output of the spawned tools.
func (a *AutoTools) Output(stdout, stderr io.Writer) {
	a.stdout, a.stderr = stdout, stderr
}

// Env sets key=value for every command spawned later. The build script's
// own environment is left alone.
func (a *AutoTools) Env(key, value string) {
	a.env[key] = value
}

// Use makes headers, libraries and pkg-config files installed under root
// visible to the build.
func (a *AutoTools) Use(root string) {
	a.env.UseCompilerPaths(root)
}

// BuildDir is where configure runs and objects are compiled.
func (a *AutoTools) BuildDir() string {
	return filepath.Join(a.outDir, "build")
}

// LibDir is where installed libraries land.
func (a *AutoTools) LibDir() string {
	return filepath.Join(a.outDir, "lib")
}

// Build runs configure with args, make and make install, and returns the
// output directory.
func (a *AutoTools) Build(ctx context.Context, args ...string) (string, error) {
	buildDir := a.BuildDir()
	if err := os.MkdirAll(buildDir, 0o755); err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to create build dir"), "dir", buildDir)
	}
	configure, err := filepath.Abs(filepath.Join(a.sourceDir, "configure"))
	if err != nil {
		return "", err
	}
	if err := a.run(ctx, configure, a.configureArgs(args)); err != nil {
		return "", err
	}
	if err := a.run(ctx, "make", a.makeArgs()); err != nil {
		return "", err
	}
	if err := a.run(ctx, "make", append(a.makeArgs(), "install")); err != nil {
		return "", err
	}
	return a.outDir, nil
}

func (a *AutoTools) configureArgs(extra []string) []string {
	args := []string{"--prefix=" + a.outDir, "--libdir=" + a.LibDir()}
	return append(args, extra...)
}

func (a *AutoTools) makeArgs() []string {
	if a.jobs > 0 {
		return []string{"-j" + strconv.Itoa(a.jobs)}
	}
	return nil
}

func (a *AutoTools) run(ctx context.Context, name string, args []string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = a.BuildDir()
	cmd.Stdout = a.stdout
	cmd.Stderr = a.stderr
	cmd.Env = a.env.Environ(os.Environ())
	if err := cmd.Run(); err != nil {
		return zerr.With(zerr.Wrap(err, filepath.Base(name)+" failed"), "args", strings.Join(args, " "))
	}
	return nil
}

// Link emits the directives that re-run the script when the sources change
// and link libs from LibDir. Each lib is parsed by cargo.ParseLibrary.
func (a *AutoTools) Link(w *cargo.Writer, libs ...string) error {
	if err := w.RerunIfChanged(a.sourceDir); err != nil {
		return err
	}
	if err := w.LinkSearch(a.LibDir(), cargo.SearchNative); err != nil {
		return err
	}
	for _, spec := range libs {
		lib, err := cargo.ParseLibrary(spec)
		if err != nil {
			return err
		}
		if err := w.Emit(lib); err != nil {
			return err
		}
	}
	return nil
}
