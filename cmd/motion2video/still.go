package main

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/ivlev/motion2video/internal/config"
	"github.com/ivlev/motion2video/internal/engine"
	"github.com/ivlev/motion2video/internal/scenario"
)

// watchDebounce collapses the burst of events editors emit on save.
const watchDebounce = 200 * time.Millisecond

func stillCmd() *cobra.Command {
	var (
		compositionID string
		frame         int
		output        string
		dpi           int
		watch         bool
	)

	cmd := &cobra.Command{
		Use:   "still [file]",
		Short: "Render a single frame to PNG",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := config.LoadEnv()
			if err != nil {
				return err
			}
			_, path, _, err := loadDocument(args, env)
			if err != nil {
				return err
			}

			render := func() error {
				doc, _, resolver, err := loadDocument([]string{path}, env)
				if err != nil {
					return err
				}
				comp, err := scenario.BuildOne(doc, compositionID, resolver)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				out := output
				if out == "" {
					out = filepath.Join(env.OutputDir, fmt.Sprintf("%s_f%05d.png", comp.ID, frame))
				}
				start := time.Now()
				if err := engine.RenderStill(cmd.Context(), comp, dpi, frame, out); err != nil {
					return err
				}
				fmt.Printf("[+++] Кадр %d сохранён: %s (%.0fms)\n", frame, out, float64(time.Since(start).Microseconds())/1000)
				return nil
			}

			if err := render(); err != nil {
				if !watch {
					return err
				}
				log.Printf("[!] %v", err)
			}
			if !watch {
				return nil
			}
			return watchFile(cmd.Context(), path, render)
		},
	}

	cmd.Flags().StringVarP(&compositionID, "composition", "c", "", "Composition id (default: first in file)")
	cmd.Flags().IntVarP(&frame, "frame", "f", 0, "Frame number")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output PNG (default: $MOTION2VIDEO_OUTPUT_DIR/<id>_f<frame>.png)")
	cmd.Flags().IntVar(&dpi, "dpi", 0, "DPI for PDF pages (default 150)")
	cmd.Flags().BoolVar(&watch, "watch", false, "Re-render whenever the file changes")
	return cmd
}

// watchFile calls fn after every change to path until ctx is done.
// Errors from fn are logged, not returned. The directory is watched so
// editors that save by rename keep triggering.
func watchFile(ctx context.Context, path string, fn func() error) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	fmt.Printf("[*] Watching %s (Ctrl+C to stop)\n", path)

	timer := time.NewTimer(watchDebounce)
	timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			timer.Reset(watchDebounce)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			log.Printf("[!] Watcher error: %v", err)
		case <-timer.C:
			if err := fn(); err != nil {
				log.Printf("[!] %v", err)
			}
		}
	}
}
