package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/opal-lang/lexaction/runtime/lexer"
	"github.com/opal-lang/lexaction/runtime/luabridge"
)

func newRunCmd(g *globals) *cobra.Command {
	var (
		seq    int
		text   string
		stop   int
		script string
	)

	cmd := &cobra.Command{
		Use:   "run TABLE",
		Short: "Execute one action sequence against a token and print the result",
		Long: `Run a sequence from a compiled table as if a token matching --text had just
been recognized. Custom actions are forwarded to --script, a Lua file that
defines action(rule, index, lexer).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := readTable(args[0])
			if err != nil {
				return err
			}
			if n := c.Table.NumSequences(); seq < 0 || seq >= n {
				return &CLIError{
					Message: fmt.Sprintf("no sequence %d in %s", seq, args[0]),
					Hint:    fmt.Sprintf("the table has %d sequences; list them with: lexaction inspect %s", n, args[0]),
				}
			}

			in := lexer.NewStringInput(text)
			opts := []lexer.TokenizerOpt{lexer.WithInput(in)}
			if script != "" {
				b, err := luabridge.NewFromFile(script)
				if err != nil {
					return fmt.Errorf("%s: %w", script, err)
				}
				defer b.Close()
				opts = append(opts, lexer.WithBridge(b))
			}

			tz := lexer.NewTokenizer(c.Table, opts...)
			tz.BeginToken(0)
			if stop < 0 {
				stop = in.Size()
			}
			in.Seek(stop)

			level := slog.LevelInfo
			execOpts := []lexer.ExecutorOpt{lexer.WithTelemetry()}
			if g.debug || os.Getenv(lexer.DebugEnv) != "" {
				level = slog.LevelDebug
				execOpts = append(execOpts, lexer.WithDebugActions())
			}
			execOpts = append(execOpts, lexer.WithLogger(lexer.NewLogger(cmd.ErrOrStderr(), level)))
			exec := lexer.NewExecutor(execOpts...)

			runErr := exec.ExecuteIndex(seq, tz)
			printRun(cmd.OutOrStdout(), tz, exec.Telemetry())
			if runErr != nil {
				return fmt.Errorf("sequence %d: %w", seq, runErr)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&seq, "seq", "s", 0, "Sequence index to run")
	cmd.Flags().StringVarP(&text, "text", "t", "", "Input text; the token starts at its beginning")
	cmd.Flags().IntVar(&stop, "stop", -1, "Input index where the match ended (default: end of text)")
	cmd.Flags().StringVar(&script, "script", "", "Lua script implementing custom actions")
	return cmd
}

func printRun(out io.Writer, tz *lexer.Tokenizer, tel *lexer.Telemetry) {
	st := tz.State()

	tokenType := "unchanged"
	if st.HasType() {
		tokenType = fmt.Sprint(st.Type)
	}

	_, _ = fmt.Fprintf(out, "text:    %q\n", tz.Text())
	_, _ = fmt.Fprintf(out, "type:    %s\n", tokenType)
	_, _ = fmt.Fprintf(out, "channel: %d\n", st.Channel)
	_, _ = fmt.Fprintf(out, "skip:    %t\n", st.Skip)
	_, _ = fmt.Fprintf(out, "more:    %t\n", st.More)
	_, _ = fmt.Fprintf(out, "modes:   %v\n", tz.Modes().Snapshot())

	if tel != nil {
		total := 0
		for _, n := range tel.Executions {
			total += n
		}
		_, _ = fmt.Fprintf(out, "actions: %d (%d underflows, %d faults)\n", total, tel.Underflows, tel.Faults)
	}
}
