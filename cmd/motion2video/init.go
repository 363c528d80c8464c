package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ivlev/motion2video/internal/config"
	"github.com/ivlev/motion2video/internal/scenario"
)

func initCmd() *cobra.Command {
	var (
		id     string
		fps    int
		width  int
		height int
		preset string
		output string
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter composition file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch preset {
			case "":
			case "16:9":
				width, height = 1920, 1080
			case "9:16":
				width, height = 1080, 1920
			case "4:5":
				width, height = 1080, 1350
			default:
				return fmt.Errorf("unknown preset %q (16:9, 9:16, 4:5)", preset)
			}

			path := output
			if path == "" {
				env, err := config.LoadEnv()
				if err != nil {
					return err
				}
				path = scenario.GeneratePath(env.CompositionsDir)
			}
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return err
			}
			if err := scenario.Write(scenario.Starter(id, fps, width, height), path); err != nil {
				return err
			}
			fmt.Printf("[+++] Композиция сохранена: %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "Starter", "Composition id")
	cmd.Flags().IntVar(&fps, "fps", 30, "Frames per second")
	cmd.Flags().IntVar(&width, "width", 1920, "Width")
	cmd.Flags().IntVar(&height, "height", 1080, "Height")
	cmd.Flags().StringVar(&preset, "preset", "", "Format preset: 16:9, 9:16 (Shorts/TikTok), 4:5 (Instagram)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "File to write (default: $MOTION2VIDEO_COMPOSITIONS_DIR/composition_<time>.yaml)")
	return cmd
}
