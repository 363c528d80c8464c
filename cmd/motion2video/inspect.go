package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/ivlev/motion2video/internal/composition"
	"github.com/ivlev/motion2video/internal/config"
	"github.com/ivlev/motion2video/internal/scenario"
)

var (
	colorText    = lipgloss.Color("#e6edf3")
	colorTextDim = lipgloss.Color("#8b949e")
	colorCyan    = lipgloss.Color("#00e5ff")
	colorGreen   = lipgloss.Color("#3fb950")
	colorRed     = lipgloss.Color("#f85149")
	colorBorder  = lipgloss.Color("#30363d")

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	metaStyle   = lipgloss.NewStyle().Foreground(colorTextDim)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(colorText).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Foreground(colorText).Padding(0, 1)
	okStyle     = lipgloss.NewStyle().Foreground(colorGreen)
	errStyle    = lipgloss.NewStyle().Foreground(colorRed)
)

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file...]",
		Short: "Build every composition and report errors",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := config.LoadEnv()
			if err != nil {
				return err
			}
			if len(args) == 0 {
				return validateFile(cmd.OutOrStdout(), nil, env)
			}
			failed := 0
			for _, a := range args {
				if err := validateFile(cmd.OutOrStdout(), []string{a}, env); err != nil {
					fmt.Fprintln(cmd.OutOrStdout(), errStyle.Render("✗ "+err.Error()))
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files invalid", failed, len(args))
			}
			return nil
		},
	}
}

func validateFile(w io.Writer, args []string, env config.Env) error {
	doc, path, resolver, err := loadDocument(args, env)
	if err != nil {
		return err
	}
	comps, err := scenario.Build(doc, resolver)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	for _, c := range comps {
		fmt.Fprintf(w, "%s %s %s\n", okStyle.Render("✓"), titleStyle.Render(c.ID),
			metaStyle.Render(fmt.Sprintf("%dx%d @ %d fps, %d frames (%.2fs), %d scenes, %d assets",
				c.Width, c.Height, c.FPS, c.Duration, c.Seconds(), len(c.Scenes()), len(c.Assets()))))
	}
	return nil
}

func inspectCmd() *cobra.Command {
	var (
		compositionID string
		frame         int
	)

	cmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "Show active scenes and evaluated nodes at a frame",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := config.LoadEnv()
			if err != nil {
				return err
			}
			doc, path, resolver, err := loadDocument(args, env)
			if err != nil {
				return err
			}
			comp, err := scenario.BuildOne(doc, compositionID, resolver)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			st, err := comp.Evaluate(frame)
			if err != nil {
				return err
			}
			printFrame(cmd.OutOrStdout(), comp, st)
			return nil
		},
	}

	cmd.Flags().StringVarP(&compositionID, "composition", "c", "", "Composition id (default: first in file)")
	cmd.Flags().IntVarP(&frame, "frame", "f", 0, "Frame number")
	return cmd
}

func printFrame(w io.Writer, comp *composition.Composition, st composition.FrameState) {
	fmt.Fprintf(w, "%s %s\n\n", titleStyle.Render(comp.ID),
		metaStyle.Render(fmt.Sprintf("frame %d/%d  %s  %d nodes", st.Frame, comp.Duration, timecode(st.Frame, comp.FPS), len(st.Nodes))))

	scenes := newTable("#", "scene", "from", "duration", "local")
	for _, a := range st.Active {
		scenes.Row(strconv.Itoa(a.Index), a.Window.ID, strconv.Itoa(a.Window.Start), strconv.Itoa(a.Window.Duration), strconv.Itoa(a.Local))
	}
	fmt.Fprintln(w, scenes.Render())

	nodes := newTable("#", "kind", "scene/layer", "x", "y", "w×h", "opacity", "scale", "rot", "content")
	for i, n := range st.Nodes {
		nodes.Row(
			strconv.Itoa(i),
			string(n.Kind),
			n.Scene+"/"+n.Layer,
			num(n.X),
			num(n.Y),
			num(n.Width)+"×"+num(n.Height),
			num(n.Opacity),
			num(n.Scale),
			num(n.Rotation),
			content(n),
		)
	}
	fmt.Fprintln(w, nodes.Render())
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorBorder)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func content(n composition.Node) string {
	switch {
	case n.Text != "":
		return truncate(n.Text, 32)
	case n.Asset != "":
		return truncate(n.Asset, 32)
	}
	return n.Color.Hex()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func timecode(frame, fps int) string {
	if fps <= 0 {
		return ""
	}
	secs := frame / fps
	return fmt.Sprintf("%02d:%02d.%02d", secs/60, secs%60, frame%fps)
}
