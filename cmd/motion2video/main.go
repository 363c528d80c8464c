// Package main provides the motion2video binary: it renders YAML motion
// compositions to video with ffmpeg.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ivlev/motion2video/internal/config"
	"github.com/ivlev/motion2video/internal/scenario"
	"github.com/ivlev/motion2video/internal/source"
)

var (
	Version   = "0.1.0"
	BuildTime = "dev"
)

const appName = "motion2video"

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   appName,
		Short: "Render motion compositions to video",
		Long: `motion2video evaluates declarative motion compositions (YAML) frame by
frame and encodes them with ffmpeg.

Compositions combine animated text, shapes, images, PDF pages, captions
and audio. Animation is driven by interpolation ranges, springs,
staggered offsets and sequence windows.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(renderCmd(), stillCmd(), validateCmd(), inspectCmd(), initCmd(), cameraCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})
	return cmd
}

// loadDocument reads the composition file named in args, or the newest
// one in the compositions directory. Asset paths resolve against the
// file's directory.
func loadDocument(args []string, env config.Env) (*scenario.Document, string, source.Resolver, error) {
	path := ""
	if len(args) > 0 {
		path = args[0]
	} else {
		latest, err := scenario.FindLatest(env.CompositionsDir)
		if err != nil {
			return nil, "", source.Resolver{}, fmt.Errorf("%w. Положите композицию в %s/", err, env.CompositionsDir)
		}
		path = latest
		fmt.Printf("[*] Выбран файл: %s\n", path)
	}
	doc, err := scenario.Read(path)
	if err != nil {
		return nil, "", source.Resolver{}, err
	}
	return doc, path, source.Resolver{Dir: filepath.Dir(path)}, nil
}
