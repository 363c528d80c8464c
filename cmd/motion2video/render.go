package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ivlev/motion2video/internal/composition"
	"github.com/ivlev/motion2video/internal/config"
	"github.com/ivlev/motion2video/internal/engine"
	"github.com/ivlev/motion2video/internal/scenario"
	"github.com/ivlev/motion2video/internal/system"
	"github.com/ivlev/motion2video/internal/video"
)

func renderCmd() *cobra.Command {
	var (
		compositionID string
		all           bool
		output        string
		frames        string
		workers       int
		quality       int
		encoder       string
		audio         string
		dpi           int
		stats         bool
	)

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a composition to MP4",
		Long: `Render evaluates every frame of a composition and streams it to ffmpeg.
Without a file the newest composition in $MOTION2VIDEO_COMPOSITIONS_DIR is
used. With --all every composition is rendered and, when --output is set,
the results are joined into one video.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			system.InitResourceLimits()

			env, err := config.LoadEnv()
			if err != nil {
				return err
			}
			doc, path, resolver, err := loadDocument(args, env)
			if err != nil {
				return err
			}

			var comps []*composition.Composition
			if all {
				comps, err = scenario.Build(doc, resolver)
			} else {
				var c *composition.Composition
				c, err = scenario.BuildOne(doc, compositionID, resolver)
				comps = []*composition.Composition{c}
			}
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			cfg := config.New(env)
			cfg.InputPath = path
			cfg.AudioPath = audio
			cfg.ShowStats = stats
			cfg.BuildVersion = Version
			if cmd.Flags().Changed("workers") {
				cfg.Workers = workers
			}
			if dpi > 0 {
				cfg.DPI = dpi
			}
			if cfg.Frames, err = config.ParseFrameRange(frames); err != nil {
				return err
			}

			cfg.VideoEncoder = encoder
			if cfg.VideoEncoder == "" {
				cfg.VideoEncoder = system.GetBestH264Encoder(ctx, cfg.FFmpeg)
				if cfg.VideoEncoder != "libx264" {
					fmt.Printf("[*] Обнаружено аппаратное ускорение: %s\n", cfg.VideoEncoder)
				}
			}
			cfg.Quality = quality
			if cfg.Quality == 0 {
				cfg.Quality = config.DefaultQuality(cfg.VideoEncoder)
			}

			ve := &video.FFmpegEncoder{Binary: cfg.FFmpeg}
			if len(comps) == 1 {
				cfg.OutputVideo = output
				_, err := renderOne(cmd, cfg, comps[0], ve)
				return err
			}

			var outputs []string
			for _, c := range comps {
				one := *cfg
				one.OutputVideo = ""
				st, err := renderOne(cmd, &one, c, ve)
				if err != nil {
					return err
				}
				outputs = append(outputs, st.Output)
			}
			if output == "" {
				return nil
			}

			tmpDir, err := os.MkdirTemp("", "motion2video_concat_")
			if err != nil {
				return err
			}
			defer os.RemoveAll(tmpDir)
			fmt.Printf("[*] Сборка финального видео из %d композиций...\n", len(outputs))
			if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
				return err
			}
			if err := ve.Concatenate(ctx, outputs, output, tmpDir); err != nil {
				return fmt.Errorf("ошибка сборки финального видео: %w", err)
			}
			fmt.Printf("[+++] Успех! Результат: %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&compositionID, "composition", "c", "", "Composition id (default: first in file)")
	cmd.Flags().BoolVar(&all, "all", false, "Render every composition in the file")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output video (default: $MOTION2VIDEO_OUTPUT_DIR/<id>.mp4)")
	cmd.Flags().StringVar(&frames, "frames", "", "Frame range a-b (inclusive), a- or a single frame")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Render workers (default: $MOTION2VIDEO_WORKERS or CPU count)")
	cmd.Flags().IntVarP(&quality, "quality", "q", 0, "Quality (0 = auto; x264/nvenc: CRF/CQ, VideoToolbox: bitrate = Q*100 kbit/s)")
	cmd.Flags().StringVar(&encoder, "encoder", "", "H.264 encoder (default: best available)")
	cmd.Flags().StringVar(&audio, "audio", "", "Audio track, overrides the composition's")
	cmd.Flags().IntVar(&dpi, "dpi", 0, "DPI for PDF pages (default 150)")
	cmd.Flags().BoolVar(&stats, "stats", false, "Print a performance report and write metrics to $MOTION2VIDEO_STATS_FILE")
	return cmd
}

func renderOne(cmd *cobra.Command, cfg *config.Config, comp *composition.Composition, ve video.VideoEncoder) (engine.Stats, error) {
	ctx := cmd.Context()
	project := engine.NewVideoProject(cfg, comp, ve)

	audio := cfg.AudioPath
	if audio == "" && comp.Audio != nil {
		audio = comp.Audio.Path
	}
	if audio != "" {
		d, err := system.GetMediaDuration(ctx, cfg.FFprobe, audio)
		switch {
		case err != nil:
			log.Printf("[!] Не удалось получить длительность аудио: %v", err)
		case d < comp.Seconds():
			log.Printf("[!] Audio %s (%.2fs) is shorter than %s (%.2fs)", audio, d, comp.ID, comp.Seconds())
		}
	}

	st, err := project.Run(ctx)
	if err != nil {
		return st, fmt.Errorf("ошибка проекта: %w", err)
	}
	return st, nil
}
