package cargo

import (
	"strings"

	"go.trai.ch/zerr"
	"golang.org/x/mod/semver"
)

// Syntax selects the directive prefix.
type Syntax int

const (
	// SingleColon renders "cargo:<key>=...". Every Cargo release accepts it.
	SingleColon Syntax = iota
	// DoubleColon renders "cargo::<key>=..." and "cargo::metadata=K=V".
	// It requires Cargo 1.77 or newer.
	DoubleColon
)

// doubleColonSince is the first Cargo release reading "cargo::" directives.
const doubleColonSince = "v1.77.0"

func (s Syntax) String() string {
	if s == DoubleColon {
		return "double"
	}
	return "single"
}

// ParseSyntax accepts "single" or "double", ignoring case.
func ParseSyntax(s string) (Syntax, error) {
	switch strings.ToLower(s) {
	case "single", "":
		return SingleColon, nil
	case "double":
		return DoubleColon, nil
	}
	return SingleColon, zerr.With(ErrUnknownTag, "syntax", s)
}

// SyntaxFor returns the richest syntax the given minimum supported Cargo
// version understands. version may omit the leading "v" and the patch
// number. Unparsable versions get SingleColon.
func SyntaxFor(version string) Syntax {
	v := version
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return SingleColon
	}
	if semver.Compare(v, doubleColonSince) >= 0 {
		return DoubleColon
	}
	return SingleColon
}

// Format renders d without the line terminator.
func (s Syntax) Format(d Directive) string {
	return string(d.appendLine(nil, s))
}

func (s Syntax) prefix() string {
	if s == DoubleColon {
		return "cargo::"
	}
	return "cargo:"
}

func (s Syntax) appendKey(b []byte, key string) []byte {
	b = append(b, s.prefix()...)
	b = append(b, key...)
	return append(b, '=')
}
