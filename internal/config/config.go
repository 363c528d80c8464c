package config

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds a render run. Flags fill it on top of Env.
type Config struct {
	InputPath     string
	CompositionID string
	OutputVideo   string
	OutputDir     string
	AudioPath     string
	DPI           int
	Workers       int
	VideoEncoder  string
	Quality       int
	Frames        FrameRange
	ShowStats     bool
	StatsFile     string
	FFmpeg        string
	FFprobe       string
	BuildVersion  string
}

// Env is the environment layer of the configuration.
type Env struct {
	FFmpeg          string `env:"MOTION2VIDEO_FFMPEG"           envDefault:"ffmpeg"`
	FFprobe         string `env:"MOTION2VIDEO_FFPROBE"          envDefault:"ffprobe"`
	Workers         int    `env:"MOTION2VIDEO_WORKERS"`
	OutputDir       string `env:"MOTION2VIDEO_OUTPUT_DIR"       envDefault:"output"`
	CompositionsDir string `env:"MOTION2VIDEO_COMPOSITIONS_DIR" envDefault:"compositions"`
	StatsFile       string `env:"MOTION2VIDEO_STATS_FILE"       envDefault:"benchmark.prom"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadEnv parses Env from the process environment.
func LoadEnv() (Env, error) {
	var e Env
	if err := ParseEnv(&e); err != nil {
		return Env{}, err
	}
	if e.Workers <= 0 {
		e.Workers = runtime.NumCPU()
	}
	return e, nil
}

// New returns a Config seeded from e.
func New(e Env) *Config {
	return &Config{
		OutputDir: e.OutputDir,
		DPI:       150,
		Workers:   e.Workers,
		StatsFile: e.StatsFile,
		FFmpeg:    e.FFmpeg,
		FFprobe:   e.FFprobe,
	}
}

// DefaultQuality is the quality setting used when none is given. For
// libx264 and nvenc it is a CRF/CQ value; VideoToolbox takes a bitrate
// in hundreds of kbit/s.
func DefaultQuality(encoder string) int {
	if encoder == "h264_videotoolbox" {
		return 75
	}
	return 20
}

// FrameRange selects frames [Start, End). A zero End means up to the end
// of the composition.
type FrameRange struct {
	Start, End int
}

// ParseFrameRange reads "a-b" (inclusive), "a-" or a single frame "a".
func ParseFrameRange(s string) (FrameRange, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return FrameRange{}, nil
	}
	from, to, dash := strings.Cut(s, "-")
	start, err := strconv.Atoi(from)
	if err != nil || start < 0 {
		return FrameRange{}, fmt.Errorf("invalid frame range %q", s)
	}
	if !dash {
		return FrameRange{Start: start, End: start + 1}, nil
	}
	if to == "" {
		return FrameRange{Start: start}, nil
	}
	end, err := strconv.Atoi(to)
	if err != nil || end < start {
		return FrameRange{}, fmt.Errorf("invalid frame range %q", s)
	}
	return FrameRange{Start: start, End: end + 1}, nil
}

// Clip bounds the range to a composition of duration frames.
func (r FrameRange) Clip(duration int) (FrameRange, error) {
	end := r.End
	if end == 0 || end > duration {
		end = duration
	}
	if r.Start >= end {
		return FrameRange{}, fmt.Errorf("frame range %d-%d is outside 0-%d", r.Start, r.End-1, duration-1)
	}
	return FrameRange{Start: r.Start, End: end}, nil
}

// Len is the number of frames in the range.
func (r FrameRange) Len() int { return r.End - r.Start }
