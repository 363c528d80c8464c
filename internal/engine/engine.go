package engine

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ivlev/motion2video/internal/animate"
	"github.com/ivlev/motion2video/internal/composition"
	"github.com/ivlev/motion2video/internal/config"
	"github.com/ivlev/motion2video/internal/renderer"
	"github.com/ivlev/motion2video/internal/source"
	"github.com/ivlev/motion2video/internal/system"
	"github.com/ivlev/motion2video/internal/video"
)

// VideoProject renders one composition to a video file.
type VideoProject struct {
	Config      *config.Config
	Composition *composition.Composition
	Encoder     video.VideoEncoder
	Metrics     *Metrics
}

// Stats summarises a finished run.
type Stats struct {
	RunID       string
	Composition string
	Output      string
	Frames      int
	Workers     int
	Assets      time.Duration
	Render      time.Duration
	Mux         time.Duration
	Total       time.Duration
}

// FPS is the effective rendering speed in frames per second.
func (s Stats) FPS() float64 {
	if s.Total <= 0 {
		return 0
	}
	return float64(s.Frames) / s.Total.Seconds()
}

func NewVideoProject(cfg *config.Config, comp *composition.Composition, ve video.VideoEncoder) *VideoProject {
	return &VideoProject{
		Config:      cfg,
		Composition: comp,
		Encoder:     ve,
	}
}

// OutputPath is where the video goes: the configured path, or
// <output dir>/<composition id>.mp4.
func (p *VideoProject) OutputPath() string {
	if p.Config.OutputVideo != "" {
		return p.Config.OutputVideo
	}
	return filepath.Join(p.Config.OutputDir, p.Composition.ID+".mp4")
}

func (p *VideoProject) audioPath() string {
	if p.Config.AudioPath != "" {
		return p.Config.AudioPath
	}
	if p.Composition.Audio != nil {
		return p.Composition.Audio.Path
	}
	return ""
}

func (p *VideoProject) Run(ctx context.Context) (Stats, error) {
	startTime := time.Now()
	comp := p.Composition
	stats := Stats{RunID: uuid.NewString(), Composition: comp.ID, Output: p.OutputPath()}
	if p.Metrics == nil && p.Config.ShowStats {
		p.Metrics = NewMetrics(comp.ID, stats.RunID)
	}

	fr, err := p.Config.Frames.Clip(comp.Duration)
	if err != nil {
		return stats, fmt.Errorf("composition %q: %w", comp.ID, err)
	}
	stats.Frames = fr.Len()
	stats.Workers = system.RecommendedWorkers(p.Config.Workers, int64(comp.Width)*int64(comp.Height)*4)

	fmt.Println("--- [PROJECT: MOTION ENGINE] ---")
	fmt.Printf("[*] Composition: %s | Frames: %d-%d of %d | Run: %s\n", comp.ID, fr.Start, fr.End-1, comp.Duration, stats.RunID)
	fmt.Printf("[*] Resolution: %dx%d @ %d FPS | Workers: %d | Encoder: %s\n", comp.Width, comp.Height, comp.FPS, stats.Workers, p.Config.VideoEncoder)
	fmt.Println("-----------------------------")

	assetStart := time.Now()
	assets, err := source.Load(ctx, comp.Assets(), p.Config.DPI, stats.Workers)
	if err != nil {
		return stats, fmt.Errorf("composition %q: %w", comp.ID, err)
	}
	stats.Assets = time.Since(assetStart)
	if len(assets) > 0 {
		fmt.Printf("[*] Loaded %d assets in %.2fs\n", len(assets), stats.Assets.Seconds())
	}

	tmpDir, err := os.MkdirTemp("", "motion2video_")
	if err != nil {
		return stats, err
	}
	defer os.RemoveAll(tmpDir)

	audio := p.audioPath()
	videoPath := stats.Output
	if audio != "" {
		videoPath = filepath.Join(tmpDir, "video.mp4")
	}

	renderStart := time.Now()
	if err := p.encode(ctx, assets, fr, stats.Workers, videoPath); err != nil {
		return stats, err
	}
	stats.Render = time.Since(renderStart)

	if audio != "" {
		fmt.Printf("[*] Muxing audio: %s\n", audio)
		muxStart := time.Now()
		params, err := p.muxParams(videoPath, audio, fr)
		if err != nil {
			return stats, err
		}
		if err := p.Encoder.Mux(ctx, params); err != nil {
			return stats, fmt.Errorf("composition %q: %w", comp.ID, err)
		}
		stats.Mux = time.Since(muxStart)
	}

	if comp.Captions != nil && comp.Captions.Len() > 0 {
		p.writeCaptions(stats.Output, fr)
	}

	stats.Total = time.Since(startTime)
	if p.Config.ShowStats {
		p.report(stats)
	}
	fmt.Printf("[+++] Success! Video saved: %s\n", stats.Output)
	return stats, nil
}

// writeCaptions saves the captions seen in fr next to the video, timed
// from the first rendered frame.
func (p *VideoProject) writeCaptions(output string, fr config.FrameRange) {
	comp := p.Composition
	srt := strings.TrimSuffix(output, filepath.Ext(output)) + ".srt"
	track, err := comp.Captions.Clip(fr.Start, fr.End)
	if err == nil {
		err = track.SaveSRT(srt, comp.FPS)
	}
	if err != nil {
		log.Printf("[!] Не удалось записать субтитры %s: %v", srt, err)
		return
	}
	fmt.Printf("[*] Captions: %s (%d lines)\n", srt, track.Len())
}

// encode streams frames fr into a new video at path.
func (p *VideoProject) encode(ctx context.Context, assets source.Assets, fr config.FrameRange, workers int, path string) error {
	comp := p.Composition
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w, err := p.Encoder.Start(ctx, video.StreamParams{
		Width:   comp.Width,
		Height:  comp.Height,
		FPS:     comp.FPS,
		Output:  path,
		Encoder: p.Config.VideoEncoder,
		Quality: p.Config.Quality,
	})
	if err != nil {
		return fmt.Errorf("composition %q: %w", comp.ID, err)
	}

	step := max(fr.Len()/20, 1)
	err = RenderFrames(ctx, comp, assets, fr, workers, p.Metrics, func(frame int, img *image.RGBA) error {
		start := time.Now()
		if err := w.WriteFrame(img); err != nil {
			return err
		}
		p.Metrics.encoded(time.Since(start))
		if done := frame - fr.Start + 1; done%step == 0 || done == fr.Len() {
			fmt.Printf("[>] Ready: %d/%d\n", done, fr.Len())
		}
		return nil
	})
	if err != nil {
		cancel()
		w.Close()
		return err
	}

	closeStart := time.Now()
	if err := w.Close(); err != nil {
		return fmt.Errorf("composition %q: %w", comp.ID, err)
	}
	p.Metrics.encoded(time.Since(closeStart))
	return nil
}

// muxParams builds the audio mux for frames fr: the track is skipped to
// the first frame and faded by the composition's volume envelope.
func (p *VideoProject) muxParams(videoPath, audio string, fr config.FrameRange) (video.MuxParams, error) {
	comp := p.Composition
	a := composition.Audio{Path: audio, Volume: 1}
	if comp.Audio != nil {
		a = *comp.Audio
		a.Path = audio
	}
	env, err := shiftRange(a.Envelope(comp.Duration), -float64(fr.Start))
	if err != nil {
		return video.MuxParams{}, err
	}
	filter, err := renderer.VolumeFilter(env, comp.FPS)
	if err != nil {
		return video.MuxParams{}, err
	}
	return video.MuxParams{
		Video:       videoPath,
		Audio:       audio,
		AudioFilter: filter,
		AudioOffset: animate.Seconds(fr.Start, comp.FPS),
		Duration:    animate.Seconds(fr.Len(), comp.FPS),
		Output:      p.OutputPath(),
	}, nil
}

func shiftRange(r animate.Range, by float64) (animate.Range, error) {
	in := r.Input()
	for i := range in {
		in[i] += by
	}
	return animate.NewRange(in, r.Output(), animate.WithLeft(r.Left()), animate.WithRight(r.Right()))
}

func (p *VideoProject) report(s Stats) {
	report := fmt.Sprintf(
		"--- [PERFORMANCE REPORT] ---\n"+
			"Build: %s\n"+
			"Run: %s\n"+
			"Total Time: %.2fs\n"+
			"Assets: %.2fs\n"+
			"Rendering + Encoding: %.2fs\n"+
			"Audio Mux: %.2fs\n"+
			"Effective FPS: %.2f\n"+
			"----------------------------\n",
		p.Config.BuildVersion, s.RunID, s.Total.Seconds(), s.Assets.Seconds(), s.Render.Seconds(), s.Mux.Seconds(), s.FPS(),
	)
	fmt.Print(report)

	if p.Config.StatsFile == "" {
		return
	}
	if err := p.Metrics.WriteTextfile(p.Config.StatsFile); err != nil {
		fmt.Printf("[!] Не удалось записать %s: %v\n", p.Config.StatsFile, err)
	}
}

// RenderStill draws frame of comp and writes it as a PNG.
func RenderStill(ctx context.Context, comp *composition.Composition, dpi, frame int, path string) error {
	st, err := comp.Evaluate(frame)
	if err != nil {
		return err
	}
	assets, err := source.Load(ctx, comp.Assets(), dpi, 4)
	if err != nil {
		return fmt.Errorf("composition %q: %w", comp.ID, err)
	}
	r, err := renderer.New(assets)
	if err != nil {
		return err
	}
	defer r.Close()

	img := image.NewRGBA(image.Rect(0, 0, comp.Width, comp.Height))
	if err := r.Render(st, img); err != nil {
		return fmt.Errorf("composition %q: %w", comp.ID, err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
