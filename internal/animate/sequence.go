package animate

import "fmt"

// Window binds a sub-composition to the frames [Start, Start+Duration).
type Window struct {
	ID       string
	Start    int
	Duration int
	// Offset is the local frame shown at Start; non-zero for nested
	// windows clipped on the left by their parent.
	Offset int
}

// NewWindow validates the duration. Start may be negative: the window
// then begins part-way through its content.
func NewWindow(id string, start, duration int) (Window, error) {
	if duration <= 0 {
		return Window{}, fmt.Errorf("%w: %q duration must be positive, got %d", ErrInvalidWindow, id, duration)
	}
	return Window{ID: id, Start: start, Duration: duration}, nil
}

// End is the first frame after the window.
func (w Window) End() int { return w.Start + w.Duration }

// Contains reports whether the window is active at frame.
func (w Window) Contains(frame int) bool {
	return w.Start <= frame && frame < w.End()
}

// Local converts a global frame to the window's local frame.
func (w Window) Local(frame int) int { return frame - w.Start + w.Offset }

// Nest maps child, declared in w's local frames, to global frames and
// clips it to w. ok is false when nothing of child remains visible.
func (w Window) Nest(child Window) (nested Window, ok bool) {
	start := w.Start - w.Offset + child.Start
	origin := start - child.Offset
	end := start + child.Duration
	if start < w.Start {
		start = w.Start
	}
	if end > w.End() {
		end = w.End()
	}
	if end <= start {
		return Window{}, false
	}
	return Window{ID: child.ID, Start: start, Duration: end - start, Offset: start - origin}, true
}

// Activation is one active window at a given frame.
type Activation struct {
	Index  int
	Window Window
	Local  int
}

// Timeline is an ordered list of windows. Later entries draw on top.
type Timeline struct {
	windows []Window
}

// NewTimeline validates every window.
func NewTimeline(windows ...Window) (Timeline, error) {
	for _, w := range windows {
		if w.Duration <= 0 {
			return Timeline{}, fmt.Errorf("%w: %q duration must be positive, got %d", ErrInvalidWindow, w.ID, w.Duration)
		}
	}
	return Timeline{windows: append([]Window(nil), windows...)}, nil
}

// Windows returns a copy of the windows in declaration order.
func (t Timeline) Windows() []Window { return append([]Window(nil), t.windows...) }

// Len is the number of windows.
func (t Timeline) Len() int { return len(t.windows) }

// Active lists every window containing frame in declaration order.
func (t Timeline) Active(frame int) []Activation {
	return ActiveWindows(frame, t.windows)
}

// Top returns the last-declared window active at frame, for slots that
// show one scene at a time.
func (t Timeline) Top(frame int) (Activation, bool) {
	for i := len(t.windows) - 1; i >= 0; i-- {
		w := t.windows[i]
		if w.Contains(frame) {
			return Activation{Index: i, Window: w, Local: w.Local(frame)}, true
		}
	}
	return Activation{}, false
}

// End is the first frame after every window.
func (t Timeline) End() int {
	end := 0
	for _, w := range t.windows {
		if w.End() > end {
			end = w.End()
		}
	}
	return end
}

// ActiveWindows is the stateless form of Timeline.Active.
func ActiveWindows(frame int, windows []Window) []Activation {
	var out []Activation
	for i, w := range windows {
		if w.Contains(frame) {
			out = append(out, Activation{Index: i, Window: w, Local: w.Local(frame)})
		}
	}
	return out
}

// SeriesItem is one entry of a Series. Offset shifts the item relative to
// the end of the previous one; a negative offset makes them overlap.
type SeriesItem struct {
	ID       string
	Duration int
	Offset   int
}

// Series lays items out back to back starting at frame 0.
func Series(items ...SeriesItem) ([]Window, error) {
	out := make([]Window, 0, len(items))
	cursor := 0
	for _, it := range items {
		w, err := NewWindow(it.ID, cursor+it.Offset, it.Duration)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
		cursor = w.End()
	}
	return out, nil
}
