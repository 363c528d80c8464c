package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnv(t *testing.T) {
	t.Setenv("MOTION2VIDEO_FFMPEG", "/opt/ffmpeg/bin/ffmpeg")
	t.Setenv("MOTION2VIDEO_WORKERS", "3")
	t.Setenv("MOTION2VIDEO_OUTPUT_DIR", "renders")

	e, err := LoadEnv()
	require.NoError(t, err)
	assert.Equal(t, "/opt/ffmpeg/bin/ffmpeg", e.FFmpeg)
	assert.Equal(t, "ffprobe", e.FFprobe)
	assert.Equal(t, 3, e.Workers)
	assert.Equal(t, "renders", e.OutputDir)
	assert.Equal(t, "compositions", e.CompositionsDir)

	cfg := New(e)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, "/opt/ffmpeg/bin/ffmpeg", cfg.FFmpeg)
	assert.Equal(t, 150, cfg.DPI)
}

func TestLoadEnvInvalid(t *testing.T) {
	t.Setenv("MOTION2VIDEO_WORKERS", "many")
	_, err := LoadEnv()
	assert.ErrorContains(t, err, "parse env")
}

func TestDefaultQuality(t *testing.T) {
	assert.Equal(t, 75, DefaultQuality("h264_videotoolbox"))
	assert.Equal(t, 20, DefaultQuality("libx264"))
	assert.Equal(t, 20, DefaultQuality("h264_nvenc"))
}

func TestParseFrameRange(t *testing.T) {
	tests := []struct {
		in      string
		want    FrameRange
		wantErr bool
	}{
		{in: "", want: FrameRange{}},
		{in: "30-90", want: FrameRange{Start: 30, End: 91}},
		{in: "12", want: FrameRange{Start: 12, End: 13}},
		{in: "100-", want: FrameRange{Start: 100}},
		{in: "90-30", wantErr: true},
		{in: "-5", wantErr: true},
		{in: "a-b", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFrameRange(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFrameRangeClip(t *testing.T) {
	r, err := FrameRange{}.Clip(300)
	require.NoError(t, err)
	assert.Equal(t, FrameRange{Start: 0, End: 300}, r)
	assert.Equal(t, 300, r.Len())

	r, err = FrameRange{Start: 250, End: 400}.Clip(300)
	require.NoError(t, err)
	assert.Equal(t, FrameRange{Start: 250, End: 300}, r)

	_, err = FrameRange{Start: 300}.Clip(300)
	assert.Error(t, err)
}
