// Package captions binds script lines to frame windows and exports them
// as SubRip subtitles.
package captions

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ivlev/motion2video/internal/animate"
)

// Line is one caption shown on [Start, End).
type Line struct {
	Text  string
	Start int
	End   int
	Scene string
}

// fadeFrames is the cross-fade at each end of a line.
const fadeFrames = 8

// Track is an ordered caption list. When lines overlap the later one wins.
type Track struct {
	lines    []Line
	timeline animate.Timeline
}

// NewTrack validates that every line ends after it starts.
func NewTrack(lines []Line) (*Track, error) {
	windows := make([]animate.Window, len(lines))
	for i, l := range lines {
		w, err := animate.NewWindow(fmt.Sprintf("caption %d", i+1), l.Start, l.End-l.Start)
		if err != nil {
			return nil, err
		}
		windows[i] = w
	}
	tl, err := animate.NewTimeline(windows...)
	if err != nil {
		return nil, err
	}
	return &Track{lines: append([]Line(nil), lines...), timeline: tl}, nil
}

// Lines returns a copy of the lines.
func (t *Track) Lines() []Line { return append([]Line(nil), t.lines...) }

// Len is the number of lines.
func (t *Track) Len() int { return len(t.lines) }

// End is the first frame after the last line.
func (t *Track) End() int { return t.timeline.End() }

// Clip returns the lines visible in [start, end), cut to that range and
// moved so that start becomes frame 0.
func (t *Track) Clip(start, end int) (*Track, error) {
	var lines []Line
	for _, l := range t.lines {
		from, to := max(l.Start, start), min(l.End, end)
		if to <= from {
			continue
		}
		l.Start, l.End = from-start, to-start
		lines = append(lines, l)
	}
	return NewTrack(lines)
}

// Active returns the line on screen at frame and its opacity.
func (t *Track) Active(frame int) (Line, float64, bool) {
	a, ok := t.timeline.Top(frame)
	if !ok {
		return Line{}, 0, false
	}
	l := t.lines[a.Index]
	return l, opacity(l, frame), true
}

func opacity(l Line, frame int) float64 {
	d := l.End - l.Start
	fade := min(fadeFrames, d/2)
	if fade <= 0 {
		return 1
	}
	input := []float64{float64(l.Start), float64(l.Start + fade), float64(l.End - fade), float64(l.End)}
	output := []float64{0, 1, 1, 0}
	if l.End-fade == l.Start+fade {
		input = []float64{input[0], input[1], input[3]}
		output = []float64{0, 1, 0}
	}
	r := animate.MustRange(input, output, animate.WithExtrapolation(animate.Clamp))
	return r.AtFrame(frame)
}

// Timestamp formats frame as an SRT time code, HH:MM:SS,mmm. Negative
// frames print as zero.
func Timestamp(frame, fps int) string {
	if fps <= 0 {
		fps = 30
	}
	frame = max(frame, 0)
	ms := int64(frame) * 1000 / int64(fps)
	h := ms / 3_600_000
	m := ms / 60_000 % 60
	s := ms / 1000 % 60
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms%1000)
}

// WriteSRT writes every non-blank line as a SubRip cue, numbered from 1.
func (t *Track) WriteSRT(w io.Writer, fps int) error {
	bw := bufio.NewWriter(w)
	n := 0
	for _, l := range t.lines {
		text := strings.TrimSpace(l.Text)
		if text == "" {
			continue
		}
		n++
		fmt.Fprintf(bw, "%d\n%s --> %s\n%s\n\n", n, Timestamp(l.Start, fps), Timestamp(l.End, fps), text)
	}
	return bw.Flush()
}

// SaveSRT writes the track to path.
func (t *Track) SaveSRT(path string, fps int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := t.WriteSRT(f, fps); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
