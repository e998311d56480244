// Package cmake builds a vendored CMake project from a build script and
// emits the directives that link its libraries.
package cmake

import (
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goplus/cargokit/cargo"
	"github.com/goplus/cargokit/internal/env"
	"go.trai.ch/zerr"
)

type defineValue struct {
	value    string
	typeName string
}

// CMake drives a configure/build/install cycle into an output directory.
type CMake struct {
	sourceDir string
	outDir    string
	generator string
	profile   string
	toolchain string
	defines   map[string]defineValue
	env       env.Vars
	stdout    io.Writer
	stderr    io.Writer
}

// New returns a CMake building sourceDir into outDir, usually OUT_DIR.
// Tool output goes to stderr: stdout carries directives.
func New(sourceDir, outDir string) *CMake {
	return &CMake{
		sourceDir: sourceDir,
		outDir:    outDir,
		profile:   "Release",
		defines:   make(map[string]defineValue),
		env:       env.Vars{},
		stdout:    os.Stderr,
		stderr:    os.Stderr,
	}
}

// Generator sets the CMake generator (e.g. "Ninja", "Unix Makefiles").
func (c *CMake) Generator(name string) { c.generator = name }

// Profile sets CMAKE_BUILD_TYPE. It defaults to "Release".
func (c *CMake) Profile(name string) { c.profile = name }

// Toolchain sets CMAKE_TOOLCHAIN_FILE, typically when TARGET differs
// from HOST.
func (c *CMake) Toolchain(path string) { c.toolchain = path }

// Output redirects the output of the cmake processes.
func (c *CMake) Output(stdout, stderr io.Writer) {
	c.stdout, c.stderr = stdout, stderr
}

// Define adds a -D<key>:STRING=<value> definition.
func (c *CMake) Define(key, value string) {
	c.defines[key] = defineValue{value: value, typeName: "STRING"}
}

// DefineBool adds a -D<key>:BOOL=ON/OFF definition.
func (c *CMake) DefineBool(key string, value bool) {
	v := "OFF"
	if value {
		v = "ON"
	}
	c.defines[key] = defineValue{value: v, typeName: "BOOL"}
}

// Env sets key=value for the cmake processes only.
func (c *CMake) Env(key, value string) {
	c.env[key] = value
}

// Use makes a dependency installed at root visible to find_package,
// find_library, pkg-config and the compilers of the cmake processes.
func (c *CMake) Use(root string) {
	c.env.PrependPath("CMAKE_PREFIX_PATH", root)
	if includeDir := filepath.Join(root, "include"); isDir(includeDir) {
		c.env.PrependPath("CMAKE_INCLUDE_PATH", includeDir)
	}
	if libDir := filepath.Join(root, "lib"); isDir(libDir) {
		c.env.PrependPath("CMAKE_LIBRARY_PATH", libDir)
	}
	c.env.UseCompilerPaths(root)
}

// BuildDir is where the project is configured and compiled.
func (c *CMake) BuildDir() string {
	return filepath.Join(c.outDir, "build")
}

// LibDir is where installed libraries land.
func (c *CMake) LibDir() string {
	return filepath.Join(c.outDir, "lib")
}

// Build configures, builds and installs the project into the output
// directory, and returns that directory.
func (c *CMake) Build(ctx context.Context) (string, error) {
	buildDir := c.BuildDir()
	if err := os.MkdirAll(buildDir, 0o755); err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to create build dir"), "dir", buildDir)
	}
	steps := [][]string{
		c.configureArgs(),
		{"--build", buildDir, "--config", c.profile},
		{"--install", buildDir, "--config", c.profile, "--prefix", c.outDir},
	}
	for _, args := range steps {
		if err := c.run(ctx, args); err != nil {
			return "", err
		}
	}
	return c.outDir, nil
}

func (c *CMake) configureArgs() []string {
	args := []string{"-S", c.sourceDir, "-B", c.BuildDir()}
	if c.generator != "" {
		args = append(args, "-G", c.generator)
	}
	args = append(args,
		"-DCMAKE_INSTALL_PREFIX="+c.outDir,
		"-DCMAKE_INSTALL_LIBDIR=lib",
		"-DCMAKE_BUILD_TYPE="+c.profile,
	)
	if c.toolchain != "" {
		args = append(args, "-DCMAKE_TOOLCHAIN_FILE="+c.toolchain)
	}
	return append(args, c.definesArgs()...)
}

func (c *CMake) run(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, "cmake", args...)
	cmd.Stdout = c.stdout
	cmd.Stderr = c.stderr
	cmd.Env = c.env.Environ(os.Environ())
	if err := cmd.Run(); err != nil {
		return zerr.With(zerr.Wrap(err, "cmake failed"), "args", strings.Join(args, " "))
	}
	return nil
}

func (c *CMake) definesArgs() []string {
	if len(c.defines) == 0 {
		return nil
	}
	keys := make([]string, 0, len(c.defines))
	for k := range c.defines {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	args := make([]string, 0, len(keys))
	for _, k := range keys {
		d := c.defines[k]
		args = append(args, "-D"+k+":"+d.typeName+"="+d.value)
	}
	return args
}

// Link emits the directives that re-run the script when the sources change
// and link libs from LibDir. Each lib is parsed by cargo.ParseLibrary.
func (c *CMake) Link(w *cargo.Writer, libs ...string) error {
	if err := w.RerunIfChanged(c.sourceDir); err != nil {
		return err
	}
	if err := w.LinkSearch(c.LibDir(), cargo.SearchNative); err != nil {
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

func isDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}
