package env

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
)

// Vars holds environment overrides for spawned build tools. The build
// script's own environment is never modified.
type Vars map[string]string

// Lookup returns the value key will have in spawned commands.
func (v Vars) Lookup(key string) string {
	if val, ok := v[key]; ok {
		return val
	}
	return os.Getenv(key)
}

// PrependPath prepends value to a PATH-style variable.
func (v Vars) PrependPath(key, value string) {
	if cur := v.Lookup(key); cur != "" {
		value += string(os.PathListSeparator) + cur
	}
	v[key] = value
}

// AppendFlag appends a space-separated flag to a variable.
func (v Vars) AppendFlag(key, flag string) {
	if cur := v.Lookup(key); cur != "" {
		flag = cur + " " + flag
	}
	v[key] = flag
}

// UseCompilerPaths makes <root>/include, <root>/lib and
// <root>/lib/pkgconfig visible to compilers and pkg-config. Directories
// that do not exist are skipped.
func (v Vars) UseCompilerPaths(root string) {
	includeDir := filepath.Join(root, "include")
	libDir := filepath.Join(root, "lib")
	pkgconfigDir := filepath.Join(libDir, "pkgconfig")

	if isDir(pkgconfigDir) {
		v.PrependPath("PKG_CONFIG_PATH", pkgconfigDir)
	}
	if runtime.GOOS == "windows" {
		if isDir(includeDir) {
			v.PrependPath("INCLUDE", includeDir)
		}
		if isDir(libDir) {
			v.PrependPath("LIB", libDir)
		}
		return
	}
	if isDir(includeDir) {
		v.AppendFlag("CPPFLAGS", "-I"+includeDir)
	}
	if isDir(libDir) {
		v.AppendFlag("LDFLAGS", "-L"+libDir)
	}
}

// Environ returns base with every override replaced or appended, overrides
// in sorted key order. base is not modified.
func (v Vars) Environ(base []string) []string {
	out := make([]string, len(base), len(base)+len(v))
	copy(out, base)
	idx := make(map[string]int, len(out))
	for i, kv := range out {
		if k, _, ok := strings.Cut(kv, "="); ok {
			idx[k] = i
		}
	}
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if i, ok := idx[k]; ok {
			out[i] = k + "=" + v[k]
		} else {
			out = append(out, k+"="+v[k])
		}
	}
	return out
}

func isDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}
