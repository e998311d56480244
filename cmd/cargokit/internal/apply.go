package internal

import (
	"github.com/goplus/cargokit/cargo"
	"github.com/goplus/cargokit/manifest"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newApplyCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "apply FILE",
		Short: "Write the directives declared in a YAML manifest",
		Long: `Apply decodes a YAML manifest of directives and writes them in order.
Use "-" to read the manifest from standard input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				ds  []cargo.Directive
				err error
			)
			if args[0] == "-" {
				ds, err = manifest.Decode(cmd.InOrStdin())
			} else {
				ds, err = manifest.Load(args[0])
			}
			if err != nil {
				return err
			}
			st.log.Debug("manifest decoded", zap.String("file", args[0]), zap.Int("directives", len(ds)))
			return manifest.Apply(st.w, ds)
		},
	}
}
