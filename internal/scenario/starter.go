package scenario

func float(v float64) *float64 { return &v }

// Starter is a small composition to start editing from: a particle
// background, a title that blurs in word by word, a counter and an
// outro, with captions.
func Starter(id string, fps, width, height int) *Document {
	in := func(frames float64) PropDoc {
		return PropDoc{Range: &RangeDoc{Input: []float64{0, frames}, Output: []float64{0, 1}, Extrapolate: "clamp"}}
	}
	rise := PropDoc{Spring: &SpringDoc{Damping: float(20), Stiffness: float(80), From: float64(height)/2 + 60, To: float(float64(height) / 2)}}

	return &Document{
		Version: "1.0",
		Theme: Theme{Colors: map[string]string{
			"dark":   "#0a0e17",
			"accent": "#00e5ff",
			"purple": "#a855f7",
		}},
		Compositions: []CompositionDoc{{
			ID:         id,
			FPS:        fps,
			Width:      width,
			Height:     height,
			Layout:     "series",
			Background: "$dark",
			Captions: []CaptionDoc{
				{Text: "Every frame is a pure function of time", Start: 0, End: 3 * fps},
			},
			Scenes: []SceneDoc{
				{
					ID:       "intro",
					Duration: 4 * fps,
					Layers: []LayerDoc{
						{Kind: "particles", ID: "dots", Count: 40, Glow: true, Color: "$accent", Colors: []string{"$purple"}},
						{
							Kind:    "text",
							ID:      "title",
							Text:    "Hello, motion",
							Effect:  "blur",
							Stagger: &StaggerDoc{By: "word"},
							Font:    FontDoc{Size: float64(height) / 15, Bold: true},
							Props:   map[string]PropDoc{"y": rise},
						},
						{Kind: "captions", ID: "subtitles"},
					},
				},
				{
					ID:       "stats",
					From:     -fps / 2,
					Duration: 3 * fps,
					Layers: []LayerDoc{
						{
							Kind:   "counter",
							ID:     "progress",
							Format: "%.0f%%",
							Font:   FontDoc{Size: float64(height) / 8, Bold: true},
							Color:  "$accent",
							Props: map[string]PropDoc{
								"value":   {Range: &RangeDoc{Input: []float64{0, float64(2 * fps)}, Output: []float64{0, 100}, Easing: "out-cubic", Extrapolate: "clamp"}},
								"opacity": in(float64(fps / 2)),
							},
						},
						{Kind: "ring", ID: "ring", Radius: float64(height) / 5, Stroke: 6, Color: "$purple", Props: map[string]PropDoc{"opacity": in(float64(fps))}},
					},
				},
				{
					ID:       "outro",
					Duration: 2 * fps,
					Layers: []LayerDoc{
						{Kind: "text", ID: "thanks", Text: "Thanks for watching", Effect: "shiny", Font: FontDoc{Size: float64(height) / 18}},
					},
				},
			},
		}},
	}
}
