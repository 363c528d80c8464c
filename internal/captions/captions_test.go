package captions

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/motion2video/internal/animate"
)

func scriptLines() []Line {
	return []Line{
		{Scene: "coldOpen", Text: "Brain-computer interfaces are no longer science fiction.", Start: 0, End: 120},
		{Scene: "title", Text: "Your thoughts.", Start: 360, End: 450},
	}
}

func TestTimestamp(t *testing.T) {
	tests := []struct {
		frame, fps int
		want       string
	}{
		{0, 30, "00:00:00,000"},
		{120, 30, "00:00:04,000"},
		{45, 30, "00:00:01,500"},
		{6450, 30, "00:03:35,000"},
		{108001, 30, "01:00:00,033"},
		{-15, 30, "00:00:00,000"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Timestamp(tt.frame, tt.fps))
	}
}

func TestWriteSRT(t *testing.T) {
	tr, err := NewTrack(scriptLines())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, tr.WriteSRT(&buf, 30))

	want := "1\n00:00:00,000 --> 00:00:04,000\nBrain-computer interfaces are no longer science fiction.\n\n" +
		"2\n00:00:12,000 --> 00:00:15,000\nYour thoughts.\n\n"
	assert.Equal(t, want, buf.String())
}

func TestActive(t *testing.T) {
	tr, err := NewTrack(scriptLines())
	require.NoError(t, err)

	l, op, ok := tr.Active(60)
	require.True(t, ok)
	assert.Equal(t, "coldOpen", l.Scene)
	assert.Equal(t, 1.0, op)

	_, op, ok = tr.Active(0)
	require.True(t, ok)
	assert.Equal(t, 0.0, op)

	_, op, _ = tr.Active(4)
	assert.InDelta(t, 0.5, op, 1e-12)

	_, _, ok = tr.Active(200)
	assert.False(t, ok)

	assert.Equal(t, 450, tr.End())
}

func TestShortLineFades(t *testing.T) {
	tr, err := NewTrack([]Line{{Text: "Until now.", Start: 10, End: 14}})
	require.NoError(t, err)

	_, op, ok := tr.Active(12)
	require.True(t, ok)
	assert.Equal(t, 1.0, op)
}

func TestNewTrackRejectsEmptyLine(t *testing.T) {
	_, err := NewTrack([]Line{{Text: "x", Start: 30, End: 30}})
	assert.ErrorIs(t, err, animate.ErrInvalidWindow)
}

func TestWriteSRTNumbersWithoutGaps(t *testing.T) {
	tr, err := NewTrack([]Line{
		{Text: "Our mind.", Start: 0, End: 30},
		{Text: "  ", Start: 30, End: 60},
		{Text: "Our rules.", Start: 60, End: 90},
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, tr.WriteSRT(&buf, 30))
	assert.Equal(t, "1\n00:00:00,000 --> 00:00:01,000\nOur mind.\n\n"+
		"2\n00:00:02,000 --> 00:00:03,000\nOur rules.\n\n", buf.String())
}

func TestClip(t *testing.T) {
	tr, err := NewTrack(scriptLines())
	require.NoError(t, err)

	tests := []struct {
		name       string
		start, end int
		want       []Line
	}{
		{"whole", 0, 450, scriptLines()},
		{"shifted", 90, 400, []Line{
			{Scene: "coldOpen", Text: "Brain-computer interfaces are no longer science fiction.", Start: 0, End: 30},
			{Scene: "title", Text: "Your thoughts.", Start: 270, End: 310},
		}},
		{"between lines", 150, 300, nil},
		{"second only", 360, 450, []Line{{Scene: "title", Text: "Your thoughts.", Start: 0, End: 90}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clipped, err := tr.Clip(tt.start, tt.end)
			require.NoError(t, err)
			assert.Equal(t, tt.want, clipped.Lines())
		})
	}
	assert.Equal(t, 2, tr.Len(), "clipping leaves the track unchanged")
}
