package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

// globals holds flags shared by every subcommand.
type globals struct {
	noColor bool
	debug   bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd, g := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		FormatError(os.Stderr, err, ShouldUseColor(g.noColor))
		stop()
		os.Exit(1)
	}
}

func newRootCmd() (*cobra.Command, *globals) {
	g := &globals{}

	rootCmd := &cobra.Command{
		Use:           "lexaction",
		Short:         "Compile, inspect and run lexer action tables",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVar(&g.noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&g.debug, "debug", false, "Trace every executed action")

	rootCmd.AddCommand(
		newParseCmd(),
		newCompileCmd(),
		newInspectCmd(),
		newCheckCmd(g),
		newRunCmd(g),
	)
	return rootCmd, g
}

// useColor reports whether cmd writes colored output.
func (g *globals) useColor(cmd *cobra.Command) bool {
	if cmd.OutOrStdout() != io.Writer(os.Stdout) {
		return false
	}
	return ShouldUseColor(g.noColor)
}

func digestString(d [32]byte) string {
	return fmt.Sprintf("blake2b:%x", d)
}
