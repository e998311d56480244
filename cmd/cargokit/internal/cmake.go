package internal

import (
	"strings"

	"github.com/goplus/cargokit/internal/env"
	"github.com/goplus/cargokit/x/cmake"
	"github.com/spf13/cobra"
	"go.trai.ch/zerr"
	"go.uber.org/zap"
)

func newCMakeCmd(st *state) *cobra.Command {
	var (
		outDir    string
		generator string
		profile   string
		toolchain string
		defines   []string
		uses      []string
		libs      []string
	)
	cmd := &cobra.Command{
		Use:   "cmake SOURCE_DIR",
		Short: "Build a CMake project into OUT_DIR and link its libraries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if outDir == "" {
				dir, err := env.OutDir()
				if err != nil {
					return zerr.Wrap(err, "--out not given")
				}
				outDir = dir
			}
			c := cmake.New(args[0], outDir)
			c.Output(cmd.ErrOrStderr(), cmd.ErrOrStderr())
			if generator != "" {
				c.Generator(generator)
			}
			c.Profile(cmakeProfile(profile))
			if toolchain != "" {
				c.Toolchain(toolchain)
			}
			for _, root := range uses {
				c.Use(root)
			}
			for _, d := range defines {
				key, value, ok := strings.Cut(d, "=")
				if !ok {
					return zerr.With(zerr.New("define must be KEY=VALUE"), "define", d)
				}
				c.Define(key, value)
			}

			st.log.Debug("cmake build", zap.String("source", args[0]), zap.String("out", outDir), zap.String("toolchain", toolchain))
			if _, err := c.Build(cmd.Context()); err != nil {
				return err
			}
			return c.Link(st.w, libs...)
		},
	}
	cmd.Flags().StringVar(&outDir, "out", "", "Output directory (default $OUT_DIR)")
	cmd.Flags().StringVarP(&generator, "generator", "G", "", "CMake generator")
	cmd.Flags().StringVar(&profile, "profile", "", "CMAKE_BUILD_TYPE (default from $PROFILE)")
	cmd.Flags().StringVar(&toolchain, "toolchain", "", "CMAKE_TOOLCHAIN_FILE for cross builds")
	cmd.Flags().StringArrayVar(&uses, "use", nil, "Install root of a dependency to build against")
	cmd.Flags().StringArrayVarP(&defines, "define", "D", nil, "Cache entry KEY=VALUE")
	cmd.Flags().StringArrayVar(&libs, "lib", nil, "Library to link, as NAME or KIND:NAME")
	return cmd
}

// cmakeProfile maps cargo's PROFILE to a CMake build type unless one is given.
func cmakeProfile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env.Profile() == "debug" {
		return "Debug"
	}
	return "Release"
}
