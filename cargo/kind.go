package cargo

import (
	"strings"

	"go.trai.ch/zerr"
)

// ErrUnknownTag is returned when a textual tag does not name a variant of
// one of the closed enumerations.
var ErrUnknownTag = zerr.New("unknown tag")

// Kind selects which directive family a Directive belongs to.
type Kind int

const (
	KindRerunIfChanged Kind = iota
	KindRerunIfEnvChanged
	KindEnv
	KindCfg
	KindLinkArg
	KindLinkSearch
	KindLinkLib
	KindMetadata
	KindWarning
)

var kindNames = [...]string{
	KindRerunIfChanged:    "rerun-if-changed",
	KindRerunIfEnvChanged: "rerun-if-env-changed",
	KindEnv:               "rustc-env",
	KindCfg:               "rustc-cfg",
	KindLinkArg:           "rustc-link-arg",
	KindLinkSearch:        "rustc-link-search",
	KindLinkLib:           "rustc-link-lib",
	KindMetadata:          "metadata",
	KindWarning:           "warning",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// ParseKind returns the Kind named by s, ignoring case.
func ParseKind(s string) (Kind, error) {
	for i, name := range kindNames {
		if strings.EqualFold(s, name) {
			return Kind(i), nil
		}
	}
	return 0, zerr.With(ErrUnknownTag, "kind", s)
}

// SearchKind qualifies a library search path.
type SearchKind int

const (
	SearchDependency SearchKind = iota
	SearchCrate
	SearchNative
	SearchFramework
	SearchAll
)

var searchNames = [...]string{
	SearchDependency: "dependency",
	SearchCrate:      "crate",
	SearchNative:     "native",
	SearchFramework:  "framework",
	SearchAll:        "all",
}

// String returns the lower-cased protocol token of k.
func (k SearchKind) String() string {
	if k < 0 || int(k) >= len(searchNames) {
		return "all"
	}
	return searchNames[k]
}

// ParseSearchKind returns the SearchKind named by s, ignoring case.
func ParseSearchKind(s string) (SearchKind, error) {
	for i, name := range searchNames {
		if strings.EqualFold(s, name) {
			return SearchKind(i), nil
		}
	}
	return 0, zerr.With(ErrUnknownTag, "search_kind", s)
}

// LinkKind qualifies how a library is linked.
type LinkKind int

const (
	LinkDylib LinkKind = iota
	LinkStatic
	LinkFramework
)

var linkNames = [...]string{
	LinkDylib:     "dylib",
	LinkStatic:    "static",
	LinkFramework: "framework",
}

// String returns the lower-cased protocol token of k.
func (k LinkKind) String() string {
	if k < 0 || int(k) >= len(linkNames) {
		return "dylib"
	}
	return linkNames[k]
}

// ParseLinkKind returns the LinkKind named by s, ignoring case.
func ParseLinkKind(s string) (LinkKind, error) {
	for i, name := range linkNames {
		if strings.EqualFold(s, name) {
			return LinkKind(i), nil
		}
	}
	return 0, zerr.With(ErrUnknownTag, "link_kind", s)
}

type targetKind int

const (
	targetGlobal targetKind = iota
	targetBin
	targetBins
	targetTests
	targetExamples
	targetBenches
	targetCdylib
)

// LinkTarget selects the artifacts a linker argument applies to. The zero
// value applies to every artifact, like an absent target.
type LinkTarget struct {
	kind targetKind
	bin  string
}

// Predefined link targets. Use TargetBin for a single named binary.
var (
	TargetBins     = LinkTarget{kind: targetBins}
	TargetTests    = LinkTarget{kind: targetTests}
	TargetExamples = LinkTarget{kind: targetExamples}
	TargetBenches  = LinkTarget{kind: targetBenches}
	TargetCdylib   = LinkTarget{kind: targetCdylib}
)

// TargetBin returns the target for the binary called name.
func TargetBin(name string) LinkTarget {
	return LinkTarget{kind: targetBin, bin: name}
}

// Bin returns the binary name of a TargetBin target, and whether t is one.
func (t LinkTarget) Bin() (string, bool) {
	return t.bin, t.kind == targetBin
}

// suffix returns the key segment appended after "link-arg".
func (t LinkTarget) suffix() string {
	switch t.kind {
	case targetBin:
		return "-bin=" + t.bin
	case targetBins:
		return "-bins"
	case targetTests:
		return "-tests"
	case targetExamples:
		return "-examples"
	case targetBenches:
		return "-benches"
	}
	return ""
}

// String returns the textual form accepted by ParseLinkTarget, or "" for
// the zero value.
func (t LinkTarget) String() string {
	switch t.kind {
	case targetGlobal:
		return ""
	case targetBin:
		return "bin=" + t.bin
	case targetCdylib:
		return "cdylib"
	}
	return t.suffix()[1:]
}

// ParseLinkTarget parses "bin=<name>", "bins", "tests", "examples",
// "benches" or "cdylib", ignoring case of the tag.
func ParseLinkTarget(s string) (LinkTarget, error) {
	if tag, name, ok := strings.Cut(s, "="); ok && strings.EqualFold(tag, "bin") {
		return TargetBin(name), nil
	}
	switch strings.ToLower(s) {
	case "bins":
		return TargetBins, nil
	case "tests":
		return TargetTests, nil
	case "examples":
		return TargetExamples, nil
	case "benches":
		return TargetBenches, nil
	case "cdylib":
		return TargetCdylib, nil
	}
	return LinkTarget{}, zerr.With(ErrUnknownTag, "link_target", s)
}
