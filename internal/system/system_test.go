package system

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPickEncoder(t *testing.T) {
	tests := []struct {
		name string
		out  string
		want string
	}{
		{"videotoolbox", " V....D h264_videotoolbox    VideoToolbox H.264 Encoder (codec h264)\n V....D libx264 ", "h264_videotoolbox"},
		{"nvenc", " V....D libx264              libx264 H.264\n V....D h264_nvenc           NVIDIA NVENC H.264 encoder\n", "h264_nvenc"},
		{"software", " V....D libx264              libx264 H.264\n", "libx264"},
		{"empty", "", "libx264"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pickEncoder(tt.out))
		})
	}
}

func TestParseDuration(t *testing.T) {
	d, err := parseDuration("214.733333\n")
	require.NoError(t, err)
	assert.InDelta(t, 214.733333, d, 1e-9)

	_, err = parseDuration("N/A")
	assert.Error(t, err)
}

func TestBoundByMemory(t *testing.T) {
	frame := int64(1920 * 1080 * 4)
	assert.Equal(t, 8, boundByMemory(8, 64<<30, frame))
	assert.Equal(t, 3, boundByMemory(8, 4*uint64(frame)*2, frame))
	assert.Equal(t, 0, boundByMemory(8, uint64(frame), frame))
	assert.Equal(t, 8, boundByMemory(8, 0, 0))
}

func TestRecommendedWorkersAtLeastOne(t *testing.T) {
	assert.GreaterOrEqual(t, RecommendedWorkers(0, 1<<62), 1)
	assert.LessOrEqual(t, RecommendedWorkers(1, 16), 1)
}

func TestFramePool(t *testing.T) {
	p := NewFramePool()
	r := image.Rect(0, 0, 32, 18)
	img := p.Get(r)
	require.NotNil(t, img)
	assert.Equal(t, r, img.Rect)
	p.Put(img)

	other := p.Get(image.Rect(0, 0, 16, 9))
	assert.Equal(t, image.Rect(0, 0, 16, 9), other.Rect)

	p.Put(image.NewRGBA(image.Rect(0, 0, 7, 7)))
	p.Put(nil)

	g := GetImage(r)
	assert.Equal(t, r, g.Rect)
	PutImage(g)
}
