package main

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestInitValidateInspect(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("MOTION2VIDEO_COMPOSITIONS_DIR", dir)
	path := filepath.Join(dir, "demo.yaml")

	_, err := run(t, "init", "--id", "Demo", "--preset", "9:16", "-o", path)
	require.NoError(t, err)
	require.FileExists(t, path)

	out, err := run(t, "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Demo")
	assert.Contains(t, out, "1080x1920 @ 30 fps")

	out, err = run(t, "validate")
	require.NoError(t, err, "newest file in the compositions dir")
	assert.Contains(t, out, "Demo")

	out, err = run(t, "inspect", path, "--frame", "130")
	require.NoError(t, err)
	assert.Contains(t, out, "stats")
	assert.Contains(t, out, "stats/progress")
}

func TestValidateReportsErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte(`
version: "1.0"
compositions:
  - id: Broken
    fps: 30
    width: 640
    height: 360
    scenes:
      - id: a
        duration: 30
        layers:
          - kind: hologram
`), 0644))

	out, err := run(t, "validate", bad)
	require.Error(t, err)
	assert.Contains(t, out, `composition "Broken"`)
	assert.Contains(t, out, "hologram")
}

func TestInitRejectsUnknownPreset(t *testing.T) {
	_, err := run(t, "init", "--preset", "1:1", "-o", filepath.Join(t.TempDir(), "x.yaml"))
	assert.ErrorContains(t, err, "unknown preset")
}

func TestTimecode(t *testing.T) {
	assert.Equal(t, "01:05.12", timecode(65*30+12, 30))
	assert.Equal(t, "", timecode(10, 0))
	assert.Equal(t, "abc…", truncate("abcdef", 4))
}

func TestCameraSuggestsKeyframes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slide.png")
	img := image.NewRGBA(image.Rect(0, 0, 640, 360))
	draw.Draw(img, img.Rect, image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(80, 60, 320, 140), image.NewUniform(color.Black), image.Point{}, draw.Src)
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	out, err := run(t, "camera", path, "--duration", "90")
	require.NoError(t, err)
	assert.Contains(t, out, "camera:")
	assert.Contains(t, out, "focus: region_1")
	assert.Contains(t, out, "frame: 60")
}
