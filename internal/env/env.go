// Package env reads the environment Cargo sets for a build script.
package env

import (
	"os"
	"strings"

	"go.trai.ch/zerr"
)

// ErrNotBuildScript is returned when a variable Cargo always sets for build
// scripts is missing.
var ErrNotBuildScript = zerr.New("not running as a cargo build script")

// OutDir returns OUT_DIR, the directory build outputs must be placed in.
func OutDir() (string, error) {
	dir := os.Getenv("OUT_DIR")
	if dir == "" {
		return "", zerr.With(ErrNotBuildScript, "variable", "OUT_DIR")
	}
	return dir, nil
}

// Target returns the target triple being compiled for.
func Target() string {
	return os.Getenv("TARGET")
}

// Host returns the triple of the host compiling the package.
func Host() string {
	return os.Getenv("HOST")
}

// Profile returns "release" or "debug".
func Profile() string {
	return os.Getenv("PROFILE")
}

// Feature reports whether the cargo feature name is enabled.
func Feature(name string) bool {
	_, ok := os.LookupEnv(featureVar(name))
	return ok
}

func featureVar(name string) string {
	return "CARGO_FEATURE_" + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}
