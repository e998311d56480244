package cmake

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/goplus/cargokit/cargo"
)

func TestDefinesArgs(t *testing.T) {
	c := New("", "")
	c.Define("FOO", "BAR")
	c.DefineBool("ENABLE", true)
	c.DefineBool("DISABLE", false)

	got := strings.Join(c.definesArgs(), " ")
	want := "-DDISABLE:BOOL=OFF -DENABLE:BOOL=ON -DFOO:STRING=BAR"
	if got != want {
		t.Errorf("definesArgs = %q, want %q", got, want)
	}
}

func TestDefinesArgsEmpty(t *testing.T) {
	if args := New("", "").definesArgs(); args != nil {
		t.Errorf("definesArgs = %v, want nil", args)
	}
}

func TestConfigureArgs(t *testing.T) {
	out := filepath.Join("tmp", "out")
	c := New("src", out)
	c.Generator("Ninja")
	c.Profile("Debug")
	c.DefineBool("BUILD_SHARED_LIBS", false)

	got := strings.Join(c.configureArgs(), " ")
	want := strings.Join([]string{
		"-S", "src", "-B", filepath.Join(out, "build"), "-G", "Ninja",
		"-DCMAKE_INSTALL_PREFIX=" + out,
		"-DCMAKE_INSTALL_LIBDIR=lib",
		"-DCMAKE_BUILD_TYPE=Debug",
		"-DBUILD_SHARED_LIBS:BOOL=OFF",
	}, " ")
	if got != want {
		t.Errorf("configureArgs = %q, want %q", got, want)
	}
}

func TestConfigureArgsToolchain(t *testing.T) {
	c := New("src", "out")
	c.Toolchain("/opt/cross/aarch64.cmake")

	args := c.configureArgs()
	if got := args[len(args)-1]; got != "-DCMAKE_TOOLCHAIN_FILE=/opt/cross/aarch64.cmake" {
		t.Errorf("last configure arg = %q", got)
	}
}

func TestUseSetsEnv(t *testing.T) {
	root := t.TempDir()
	includeDir := filepath.Join(root, "include")
	libDir := filepath.Join(root, "lib")
	pkgconfigDir := filepath.Join(libDir, "pkgconfig")
	for _, d := range []string{includeDir, libDir, pkgconfigDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", d, err)
		}
	}
	for _, key := range []string{"PKG_CONFIG_PATH", "CMAKE_PREFIX_PATH", "CMAKE_INCLUDE_PATH", "CMAKE_LIBRARY_PATH", "INCLUDE", "LIB", "CPPFLAGS", "LDFLAGS"} {
		t.Setenv(key, "")
	}

	c := New("", "")
	c.Use(root)

	want := map[string]string{
		"PKG_CONFIG_PATH":    pkgconfigDir,
		"CMAKE_PREFIX_PATH":  root,
		"CMAKE_INCLUDE_PATH": includeDir,
		"CMAKE_LIBRARY_PATH": libDir,
	}
	if runtime.GOOS == "windows" {
		want["INCLUDE"] = includeDir
		want["LIB"] = libDir
	} else {
		want["CPPFLAGS"] = "-I" + includeDir
		want["LDFLAGS"] = "-L" + libDir
	}
	for key, w := range want {
		if got := c.env[key]; got != w {
			t.Errorf("%s = %q, want %q", key, got, w)
		}
	}
	if got := os.Getenv("CMAKE_PREFIX_PATH"); got != "" {
		t.Errorf("process CMAKE_PREFIX_PATH changed to %q", got)
	}
}

func TestUsePartialDirs(t *testing.T) {
	root := t.TempDir()
	os.MkdirAll(filepath.Join(root, "include"), 0o755)
	t.Setenv("CMAKE_PREFIX_PATH", "/usr/local")

	c := New("", "")
	c.Use(root)

	if got, want := c.env["CMAKE_PREFIX_PATH"], root+string(os.PathListSeparator)+"/usr/local"; got != want {
		t.Errorf("CMAKE_PREFIX_PATH = %q, want %q", got, want)
	}
	for _, key := range []string{"PKG_CONFIG_PATH", "CMAKE_LIBRARY_PATH"} {
		if _, ok := c.env[key]; ok {
			t.Errorf("%s set without its directory: %q", key, c.env[key])
		}
	}
}

func TestLink(t *testing.T) {
	out := filepath.Join("tmp", "out")
	c := New("vendor/z", out)

	var buf bytes.Buffer
	if err := c.Link(cargo.NewWriter(&buf), "static:z", "m"); err != nil {
		t.Fatalf("Link: %v", err)
	}
	want := "cargo:rerun-if-changed=vendor/z\n" +
		"cargo:rustc-link-search=native=" + filepath.Join(out, "lib") + "\n" +
		"cargo:rustc-link-lib=static=z\n" +
		"cargo:rustc-link-lib=m\n"
	if got := buf.String(); got != want {
		t.Errorf("Link wrote %q, want %q", got, want)
	}
}

func TestLinkBadKind(t *testing.T) {
	var buf bytes.Buffer
	if err := New("src", "out").Link(cargo.NewWriter(&buf), "shared:z"); err == nil {
		t.Fatal("Link(shared:z): expected error")
	}
}

func TestBuild(t *testing.T) {
	if _, err := exec.LookPath("cmake"); err != nil {
		t.Skip("cmake not installed")
	}
	src := t.TempDir()
	lists := `cmake_minimum_required(VERSION 3.10)
project(hello C)
add_library(hello STATIC hello.c)
install(TARGETS hello ARCHIVE DESTINATION lib)
`
	if err := os.WriteFile(filepath.Join(src, "CMakeLists.txt"), []byte(lists), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "hello.c"), []byte("int hello(void) { return 42; }\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out := t.TempDir()
	c := New(src, out)
	var log bytes.Buffer
	c.Output(&log, &log)
	dir, err := c.Build(context.Background())
	if err != nil {
		t.Skipf("cmake build failed (no C toolchain?): %v\n%s", err, log.String())
	}
	if dir != out {
		t.Errorf("Build returned %q, want %q", dir, out)
	}
	entries, err := os.ReadDir(c.LibDir())
	if err != nil || len(entries) == 0 {
		t.Errorf("no installed libraries in %s: %v", c.LibDir(), err)
	}
}

// fakeCMake puts a cmake on PATH that appends its arguments and
// CMAKE_PREFIX_PATH to the returned log file.
func fakeCMake(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fake needs a POSIX shell")
	}
	bin := t.TempDir()
	logFile := filepath.Join(bin, "calls.log")
	script := "#!/bin/sh\necho \"$* PREFIX=$CMAKE_PREFIX_PATH\" >> " + logFile + "\n"
	if err := os.WriteFile(filepath.Join(bin, "cmake"), []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", bin+string(os.PathListSeparator)+os.Getenv("PATH"))
	return logFile
}

func TestBuildPassesEnvAndToolchain(t *testing.T) {
	logFile := fakeCMake(t)
	t.Setenv("CMAKE_PREFIX_PATH", "")
	dep := t.TempDir()

	c := New("src", t.TempDir())
	c.Use(dep)
	c.Toolchain("cross.cmake")
	if _, err := c.Build(context.Background()); err != nil {
		t.Fatalf("Build: %v", err)
	}

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatal(err)
	}
	calls := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(calls) != 3 {
		t.Fatalf("got %d cmake calls, want 3:\n%s", len(calls), data)
	}
	if !strings.Contains(calls[0], "-DCMAKE_TOOLCHAIN_FILE=cross.cmake") {
		t.Errorf("configure call lacks toolchain: %s", calls[0])
	}
	for _, call := range calls {
		if !strings.HasSuffix(call, "PREFIX="+dep) {
			t.Errorf("call without CMAKE_PREFIX_PATH=%s: %s", dep, call)
		}
	}
	if got := os.Getenv("CMAKE_PREFIX_PATH"); got != "" {
		t.Errorf("process CMAKE_PREFIX_PATH changed to %q", got)
	}
}
