package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// debounce groups the bursts of events editors produce for one save.
const debounce = 100 * time.Millisecond

func newCheckCmd(g *globals) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "check MANIFEST...",
		Short: "Validate and compile manifests without writing output",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			useColor := g.useColor(cmd)

			failed := 0
			for _, path := range args {
				if !checkManifest(out, path, useColor) {
					failed++
				}
			}

			if watch {
				return watchManifests(cmd.Context(), out, args, useColor)
			}
			if failed > 0 {
				return &CLIError{Message: fmt.Sprintf("%d of %d manifests failed", failed, len(args))}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Re-check manifests whenever they change")
	return cmd
}

// checkManifest compiles one manifest and reports the result. It returns false on failure.
func checkManifest(out io.Writer, path string, useColor bool) bool {
	c, err := loadManifest(path)
	if err != nil {
		_, _ = fmt.Fprintf(out, "%s %s\n", Colorize("FAIL", ColorRed, useColor), path)
		FormatError(out, err, useColor)
		return false
	}
	_, _ = fmt.Fprintf(out, "%s   %s (%s: %s)\n", Colorize("ok", ColorGreen, useColor), path, c.Grammar, c.Table.Stats())
	return true
}

// watchManifests re-checks manifests as they change until ctx is cancelled. Parent
// directories are watched so that editors which replace files on save are seen.
func watchManifests(ctx context.Context, out io.Writer, paths []string, useColor bool) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = w.Close() }()

	targets := make(map[string]string) // absolute path -> path as given
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		targets[abs] = p

		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := w.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		dirs[dir] = true
	}

	_, _ = fmt.Fprintf(out, "%s\n", Colorize(fmt.Sprintf("watching %d manifest(s)", len(paths)), ColorCyan, useColor))

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()
	pending := make(map[string]bool)

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			p, tracked := targets[filepath.Clean(ev.Name)]
			if !tracked || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				continue
			}
			pending[p] = true
			timer.Reset(debounce)

		case <-timer.C:
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			clear(pending)
			for _, p := range changed {
				checkManifest(out, p, useColor)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			_, _ = fmt.Fprintf(out, "%s %v\n", Colorize("watch error:", ColorYellow, useColor), err)
		}
	}
}
