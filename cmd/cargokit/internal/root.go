package internal

import (
	"fmt"
	"io"
	"os"

	"github.com/goplus/cargokit/cargo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// state is shared by all subcommands of one invocation.
type state struct {
	syntax  string
	msrv    string
	verbose bool

	w   *cargo.Writer
	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	st := &state{}
	rootCmd := &cobra.Command{
		Use:   "cargokit",
		Short: "cargokit writes Cargo build script directives",
		Long: `cargokit writes Cargo build script directives to standard output,
so build steps written in shell or other languages can drive Cargo.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return st.setup(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&st.syntax, "syntax", "single", `Directive syntax: "single" (cargo:) or "double" (cargo::)`)
	flags.StringVar(&st.msrv, "msrv", "", "Minimum supported Cargo version; selects the syntax unless --syntax is given")
	flags.BoolVarP(&st.verbose, "verbose", "v", false, "Enable debug logging on stderr")

	rootCmd.AddCommand(directiveCmds(st)...)
	rootCmd.AddCommand(newApplyCmd(st))
	rootCmd.AddCommand(newPkgConfigCmd(st))
	rootCmd.AddCommand(newCMakeCmd(st))
	rootCmd.AddCommand(newAutoToolsCmd(st))
	return rootCmd
}

func (st *state) setup(cmd *cobra.Command) error {
	syn, err := cargo.ParseSyntax(st.syntax)
	if err != nil {
		return err
	}
	if st.msrv != "" && !cmd.Flags().Changed("syntax") {
		syn = cargo.SyntaxFor(st.msrv)
	}

	st.log = newLogger(cmd.ErrOrStderr(), st.verbose)
	st.w = cargo.NewWriter(cmd.OutOrStdout())
	st.w.SetSyntax(syn)
	st.log.Debug("writer ready", zap.Stringer("syntax", syn), zap.String("command", cmd.Name()))
	return nil
}

// newLogger logs to w, never to stdout: stdout carries directives.
func newLogger(w io.Writer, verbose bool) *zap.Logger {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), level))
}

// Execute runs the command line and exits with status 1 on failure.
// This is called by main.main().
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "cargokit: %+v\n", err)
		os.Exit(1)
	}
}
