package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ivlev/motion2video/internal/director"
	"github.com/ivlev/motion2video/internal/source"
)

func cameraCmd() *cobra.Command {
	var (
		page     int
		dpi      int
		fps      int
		duration int
		detector string
	)

	cmd := &cobra.Command{
		Use:   "camera <image|pdf>",
		Short: "Suggest camera keyframes for an image or slides layer",
		Long: `camera finds content blocks on a page and prints camera keyframes that
visit them in reading order. Paste the result into an image layer.

Rects are in source pixels, so use the same --dpi as the render.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := source.Key(args[0], page)
			if !source.IsPDF(args[0]) {
				key = args[0]
			}
			assets, err := source.Load(cmd.Context(), []string{key}, dpi, 1)
			if err != nil {
				return err
			}
			img := assets[key]

			det, err := director.NewDetector(detector)
			if err != nil {
				return err
			}
			blocks, err := det.Detect(img)
			if err != nil {
				return err
			}
			log.Printf("[*] %s: %d blocks", key, len(blocks))

			b := img.Bounds()
			kfs, err := director.NewDirector(b.Dx(), b.Dy(), fps).Plan(blocks, duration)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			out, err := yaml.Marshal(map[string]any{"camera": kfs})
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	cmd.Flags().IntVarP(&page, "page", "p", 1, "PDF page (1-based)")
	cmd.Flags().IntVar(&dpi, "dpi", source.DefaultDPI, "Render DPI for PDF pages")
	cmd.Flags().IntVar(&fps, "fps", 30, "Frames per second")
	cmd.Flags().IntVarP(&duration, "duration", "d", 180, "Layer duration in frames")
	cmd.Flags().StringVar(&detector, "detector", "contrast", "Block detector")
	return cmd
}
