package internal

import (
	"strings"

	"github.com/goplus/cargokit/internal/env"
	"github.com/goplus/cargokit/x/autotools"
	"github.com/spf13/cobra"
	"go.trai.ch/zerr"
	"go.uber.org/zap"
)

func newAutoToolsCmd(st *state) *cobra.Command {
	var (
		outDir string
		jobs   int
		envs   []string
		uses   []string
		libs   []string
	)
	cmd := &cobra.Command{
		Use:   "autotools SOURCE_DIR [-- CONFIGURE_ARG...]",
		Short: "Build a configure/make project into OUT_DIR and link its libraries",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if outDir == "" {
				dir, err := env.OutDir()
				if err != nil {
					return zerr.Wrap(err, "--out not given")
				}
				outDir = dir
			}
			a := autotools.New(args[0], outDir)
			a.Output(cmd.ErrOrStderr(), cmd.ErrOrStderr())
			a.Jobs(jobs)
			for _, kv := range envs {
				key, value, ok := strings.Cut(kv, "=")
				if !ok {
					return zerr.With(zerr.New("env must be KEY=VALUE"), "env", kv)
				}
				a.Env(key, value)
			}
			for _, root := range uses {
				a.Use(root)
			}

			st.log.Debug("autotools build", zap.String("source", args[0]), zap.String("out", outDir), zap.Strings("configure", args[1:]))
			if _, err := a.Build(cmd.Context(), args[1:]...); err != nil {
				return err
			}
			return a.Link(st.w, libs...)
		},
	}
	cmd.Flags().StringVar(&outDir, "out", "", "Output directory (default $OUT_DIR)")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "Parallel make jobs")
	cmd.Flags().StringArrayVar(&envs, "env", nil, "Environment KEY=VALUE for the build tools")
	cmd.Flags().StringArrayVar(&uses, "use", nil, "Install root of a dependency to build against")
	cmd.Flags().StringArrayVar(&libs, "lib", nil, "Library to link, as NAME or KIND:NAME")
	return cmd
}
