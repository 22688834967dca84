package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/opal-lang/lexaction/core/actfmt"
	"github.com/opal-lang/lexaction/core/lexaction"
)

func newParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse COMMANDS...",
		Short: "Parse lexer commands and print their canonical form",
		Long: `Parse grammar lexer commands such as "skip", "pushMode(2)" or
"type(5), channel(1)" and print each action with its kind and hash.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, arg := range args {
				actions, err := lexaction.ParseList(arg)
				if err != nil {
					return err
				}
				for _, a := range actions {
					var flags string
					if a.IsPositionDependent() {
						flags = "\tposition-dependent"
					}
					_, _ = fmt.Fprintf(w, "%s\t%s\t%08x%s\n", a, a.Kind(), a.Hash(), flags)
				}
			}
			return w.Flush()
		},
	}
}

func newCompileCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "compile MANIFEST",
		Short: "Compile a JSON manifest into a binary action table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadManifest(args[0])
			if err != nil {
				return err
			}

			if output == "" {
				output = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".lxat"
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create %s: %w", output, err)
			}
			digest, err := actfmt.Write(f, c)
			if closeErr := f.Close(); err == nil && closeErr != nil {
				err = closeErr
			}
			if err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%s: %s) %s\n",
				output, c.Grammar, c.Table.Stats(), digestString(digest))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path (default: MANIFEST with .lxat extension)")
	return cmd
}

func newInspectCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "inspect TABLE",
		Short: "Print the contents of a binary action table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, digest, err := readTable(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(actfmt.ManifestOf(c))
			}
			return printTable(out, c, digest)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the table as a JSON manifest")
	return cmd
}

func printTable(out io.Writer, c *actfmt.Compiled, digest [32]byte) error {
	t := c.Table
	_, _ = fmt.Fprintf(out, "grammar: %s\n", c.Grammar)
	_, _ = fmt.Fprintf(out, "digest:  %s\n", digestString(digest))

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "\nactions (%d)\n", t.NumActions())
	for i := 0; i < t.NumActions(); i++ {
		a := t.Action(i)
		typ, d1, d2 := actfmt.EncodeATN(a)
		_, _ = fmt.Fprintf(w, "  %d\t%s\tatn(%d,%d,%d)\n", i, a, typ, d1, d2)
	}
	_, _ = fmt.Fprintf(w, "\nsequences (%d)\n", t.NumSequences())
	for i := 0; i < t.NumSequences(); i++ {
		_, _ = fmt.Fprintf(w, "  %d\t%s\n", i, t.Sequence(i))
	}
	return w.Flush()
}

func loadManifest(path string) (*actfmt.Compiled, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening file %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	m, err := actfmt.LoadManifest(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	c, err := m.Compile()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func readTable(path string) (*actfmt.Compiled, [32]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, [32]byte{}, fmt.Errorf("error opening file %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	c, digest, err := actfmt.Read(f)
	if err != nil {
		return nil, [32]byte{}, fmt.Errorf("%s: %w", path, err)
	}
	return c, digest, nil
}
