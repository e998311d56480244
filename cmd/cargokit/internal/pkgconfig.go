package internal

import (
	"github.com/goplus/cargokit/x/pkgconfig"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newPkgConfigCmd(st *state) *cobra.Command {
	var (
		conf     pkgconfig.Config
		metadata bool
	)
	cmd := &cobra.Command{
		Use:   "pkg-config NAME...",
		Short: "Link system libraries found with pkg-config",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range args {
				lib, err := conf.Probe(cmd.Context(), name)
				if err != nil {
					return err
				}
				st.log.Debug("pkg-config probe",
					zap.String("package", lib.Name),
					zap.String("version", lib.Version),
					zap.Strings("libs", lib.Libs))
				if err := lib.Emit(st.w); err != nil {
					return err
				}
				if metadata {
					if err := lib.EmitMetadata(st.w); err != nil {
						return err
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&conf.Static, "static", false, "Link the libraries statically")
	cmd.Flags().StringVar(&conf.AtLeast, "atleast-version", "", "Minimum acceptable version")
	cmd.Flags().BoolVar(&metadata, "metadata", false, "Also publish include paths and version as metadata")
	return cmd
}
