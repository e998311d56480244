package internal

import (
	"strings"

	"github.com/goplus/cargokit/cargo"
	"github.com/spf13/cobra"
)

// directiveCmds returns one command per directive kind.
func directiveCmds(st *state) []*cobra.Command {
	var (
		linkTarget string
		searchKind string
		linkKind   string
	)

	rerunIfChanged := &cobra.Command{
		Use:   "rerun-if-changed PATH...",
		Short: "Re-run the build script when a file or directory changes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, p := range args {
				if err := st.w.RerunIfChanged(p); err != nil {
					return err
				}
			}
			return nil
		},
	}

	rerunIfEnvChanged := &cobra.Command{
		Use:   "rerun-if-env-changed NAME...",
		Short: "Re-run the build script when an environment variable changes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range args {
				if err := st.w.RerunIfEnvChanged(name); err != nil {
					return err
				}
			}
			return nil
		},
	}

	rustcEnv := &cobra.Command{
		Use:   "rustc-env NAME VALUE",
		Short: "Set a compile-time environment variable",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return st.w.SetEnv(args[0], args[1])
		},
	}

	rustcCfg := &cobra.Command{
		Use:   "rustc-cfg KEY [VALUE]",
		Short: "Enable a cfg setting",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return st.w.SetCfg(args[0], args[1:]...)
		},
	}

	rustcLinkArg := &cobra.Command{
		Use:   "rustc-link-arg ARG...",
		Short: "Pass flags to the linker",
		Long: `Pass flags to the linker. --target restricts them to
bin=<name>, bins, tests, examples, benches or cdylib.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var target []cargo.LinkTarget
			if linkTarget != "" {
				t, err := cargo.ParseLinkTarget(linkTarget)
				if err != nil {
					return err
				}
				target = append(target, t)
			}
			for _, arg := range args {
				if err := st.w.LinkArg(arg, target...); err != nil {
					return err
				}
			}
			return nil
		},
	}
	rustcLinkArg.Flags().StringVar(&linkTarget, "target", "", "Artifacts the flags apply to")

	rustcLinkSearch := &cobra.Command{
		Use:   "rustc-link-search PATH...",
		Short: "Add library search paths",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var kind []cargo.SearchKind
			if searchKind != "" {
				k, err := cargo.ParseSearchKind(searchKind)
				if err != nil {
					return err
				}
				kind = append(kind, k)
			}
			for _, p := range args {
				if err := st.w.LinkSearch(p, kind...); err != nil {
					return err
				}
			}
			return nil
		},
	}
	rustcLinkSearch.Flags().StringVar(&searchKind, "kind", "", "dependency, crate, native, framework or all")

	rustcLinkLib := &cobra.Command{
		Use:   "rustc-link-lib NAME...",
		Short: "Link libraries",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var kind []cargo.LinkKind
			if linkKind != "" {
				k, err := cargo.ParseLinkKind(linkKind)
				if err != nil {
					return err
				}
				kind = append(kind, k)
			}
			for _, name := range args {
				if err := st.w.LinkLib(name, kind...); err != nil {
					return err
				}
			}
			return nil
		},
	}
	rustcLinkLib.Flags().StringVar(&linkKind, "kind", "", "dylib, static or framework")

	metadata := &cobra.Command{
		Use:   "metadata KEY VALUE",
		Short: "Set metadata for the build scripts of dependents",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return st.w.SetMetadata(args[0], args[1])
		},
	}

	warning := &cobra.Command{
		Use:   "warning MESSAGE...",
		Short: "Display a warning",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return st.w.Warn(strings.Join(args, " "))
		},
	}

	return []*cobra.Command{
		rerunIfChanged,
		rerunIfEnvChanged,
		rustcEnv,
		rustcCfg,
		rustcLinkArg,
		rustcLinkSearch,
		rustcLinkLib,
		metadata,
		warning,
	}
}
