package internal

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the CLI with args and returns stdout and stderr.
func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestDirectiveCommands(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"rerun-if-changed", "build.rs", "wrapper.h"}, "cargo:rerun-if-changed=build.rs\ncargo:rerun-if-changed=wrapper.h\n"},
		{[]string{"rerun-if-env-changed", "CC"}, "cargo:rerun-if-env-changed=CC\n"},
		{[]string{"rustc-env", "GIT_HASH", "abc"}, "cargo:rustc-env=GIT_HASH=abc\n"},
		{[]string{"rustc-cfg", "feature"}, "cargo:rustc-cfg=feature\n"},
		{[]string{"rustc-cfg", "feature", "x"}, "cargo:rustc-cfg=feature=x\n"},
		{[]string{"rustc-link-arg", "--", "-lfoo"}, "cargo:rustc-link-arg=-lfoo\n"},
		{[]string{"rustc-link-arg", "--target", "bin=myapp", "--", "-lfoo"}, "cargo:rustc-link-arg-bin=myapp=-lfoo\n"},
		{[]string{"rustc-link-arg", "--target", "cdylib", "--", "-lfoo"}, "cargo:rustc-cdylib-link-arg=-lfoo\n"},
		{[]string{"rustc-link-search", "/usr/lib"}, "cargo:rustc-link-search=all=/usr/lib\n"},
		{[]string{"rustc-link-search", "--kind", "native", "/usr/lib"}, "cargo:rustc-link-search=native=/usr/lib\n"},
		{[]string{"rustc-link-lib", "z"}, "cargo:rustc-link-lib=z\n"},
		{[]string{"rustc-link-lib", "--kind", "Static", "z"}, "cargo:rustc-link-lib=static=z\n"},
		{[]string{"metadata", "foo", "bar"}, "cargo:foo=bar\n"},
		{[]string{"warning", "vendored", "build"}, "cargo:warning=vendored build\n"},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			stdout, _, err := run(t, "", tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, stdout)
		})
	}
}

func TestSyntaxFlags(t *testing.T) {
	stdout, _, err := run(t, "", "--syntax", "double", "metadata", "k", "v")
	require.NoError(t, err)
	assert.Equal(t, "cargo::metadata=k=v\n", stdout)

	stdout, _, err = run(t, "", "--msrv", "1.80", "rustc-link-lib", "z")
	require.NoError(t, err)
	assert.Equal(t, "cargo::rustc-link-lib=z\n", stdout)

	stdout, _, err = run(t, "", "--msrv", "1.70", "rustc-link-lib", "z")
	require.NoError(t, err)
	assert.Equal(t, "cargo:rustc-link-lib=z\n", stdout)

	stdout, _, err = run(t, "", "--msrv", "1.80", "--syntax", "single", "rustc-link-lib", "z")
	require.NoError(t, err)
	assert.Equal(t, "cargo:rustc-link-lib=z\n", stdout)

	_, _, err = run(t, "", "--syntax", "triple", "warning", "x")
	assert.Error(t, err)
}

func TestBadTags(t *testing.T) {
	for _, args := range [][]string{
		{"rustc-link-lib", "--kind", "shared", "z"},
		{"rustc-link-search", "--kind", "system", "/x"},
		{"rustc-link-arg", "--target", "lib", "--", "-s"},
	} {
		stdout, _, err := run(t, "", args...)
		assert.Error(t, err, "%v", args)
		assert.Empty(t, stdout, "%v", args)
	}
}

func TestArgCounts(t *testing.T) {
	for _, args := range [][]string{
		{"rustc-env", "ONLY_NAME"},
		{"rustc-cfg"},
		{"rustc-cfg", "a", "b", "c"},
		{"metadata", "k"},
		{"warning"},
	} {
		_, _, err := run(t, "", args...)
		assert.Error(t, err, "%v", args)
	}
}

func TestApplyStdin(t *testing.T) {
	doc := `
directives:
  - kind: rustc-link-search
    path: /opt/z/lib
    search: native
  - kind: rustc-link-lib
    name: z
    link: static
`
	stdout, _, err := run(t, doc, "apply", "-")
	require.NoError(t, err)
	assert.Equal(t, "cargo:rustc-link-search=native=/opt/z/lib\ncargo:rustc-link-lib=static=z\n", stdout)
}

func TestApplyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "d.yaml")
	require.NoError(t, os.WriteFile(path, []byte("directives:\n  - kind: warning\n    message: hi\n"), 0o644))

	stdout, stderr, err := run(t, "", "-v", "apply", path)
	require.NoError(t, err)
	assert.Equal(t, "cargo:warning=hi\n", stdout)
	assert.Contains(t, stderr, "manifest decoded")
}

func TestLogsStayOffStdout(t *testing.T) {
	stdout, stderr, err := run(t, "", "-v", "rustc-cfg", "feature")
	require.NoError(t, err)
	assert.Equal(t, "cargo:rustc-cfg=feature\n", stdout)
	assert.Contains(t, stderr, "writer ready")
}

func TestPkgConfig(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script fake needs a POSIX shell")
	}
	fake := filepath.Join(t.TempDir(), "pkg-config")
	script := `#!/bin/sh
case "$1" in
--modversion) echo 1.2.13 ;;
--libs) echo "-I/opt/z/include -L/opt/z/lib -lz" ;;
esac
`
	require.NoError(t, os.WriteFile(fake, []byte(script), 0o755))
	t.Setenv("PKG_CONFIG", fake)

	stdout, _, err := run(t, "", "pkg-config", "--metadata", "zlib")
	require.NoError(t, err)
	assert.Contains(t, stdout, "cargo:rustc-link-search=native=/opt/z/lib\n")
	assert.Contains(t, stdout, "cargo:rustc-link-lib=z\n")
	assert.Contains(t, stdout, "cargo:include=/opt/z/include\n")
	assert.Contains(t, stdout, "cargo:version=1.2.13\n")
}

func TestCMakeNeedsOutDir(t *testing.T) {
	t.Setenv("OUT_DIR", "")
	os.Unsetenv("OUT_DIR")

	_, _, err := run(t, "", "cmake", "vendor/z")
	assert.Error(t, err)
}

func TestCMakeUseAndToolchain(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script fake needs a POSIX shell")
	}
	bin := t.TempDir()
	logFile := filepath.Join(bin, "calls.log")
	script := "#!/bin/sh\necho \"$* PREFIX=$CMAKE_PREFIX_PATH\" >> " + logFile + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(bin, "cmake"), []byte(script), 0o755))
	t.Setenv("PATH", bin+string(os.PathListSeparator)+os.Getenv("PATH"))
	t.Setenv("CMAKE_PREFIX_PATH", "")

	out, dep := t.TempDir(), t.TempDir()
	stdout, _, err := run(t, "", "cmake", "--out", out, "--use", dep, "--toolchain", "cross.cmake", "--lib", "static:z", "vendor/z")
	require.NoError(t, err)
	assert.Equal(t, "cargo:rerun-if-changed=vendor/z\n"+
		"cargo:rustc-link-search=native="+filepath.Join(out, "lib")+"\n"+
		"cargo:rustc-link-lib=static=z\n", stdout)

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "-DCMAKE_TOOLCHAIN_FILE=cross.cmake")
	assert.Contains(t, string(data), "PREFIX="+dep)
}

func TestCMakeProfile(t *testing.T) {
	t.Setenv("PROFILE", "debug")
	assert.Equal(t, "Debug", cmakeProfile(""))
	assert.Equal(t, "RelWithDebInfo", cmakeProfile("RelWithDebInfo"))

	t.Setenv("PROFILE", "release")
	assert.Equal(t, "Release", cmakeProfile(""))
}

func TestAutoToolsBadEnv(t *testing.T) {
	_, _, err := run(t, "", "autotools", "--out", t.TempDir(), "--env", "NOEQUALS", "vendor/ffi")
	assert.Error(t, err)
}
