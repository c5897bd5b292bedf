package paint

import (
	"bufio"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/panbanda/livewalk/pkg/walkthrough"
)

// Renderer prints recorded source with each range on its painted background.
type Renderer struct {
	// Color enables RGB escape sequences. Without it each line carries a role tag.
	Color       bool
	LineNumbers bool
}

// Render writes the recorder's source with its annotations.
func (rn Renderer) Render(w io.Writer, rec *Recorder) error {
	lines := rec.Styled()
	width := 1
	if len(lines) > 0 {
		width = len(fmt.Sprint(lines[len(lines)-1].Number))
	}

	bw := bufio.NewWriter(w)
	for _, line := range lines {
		if rn.LineNumbers {
			fmt.Fprintf(bw, "%*d ", width, line.Number)
		}
		if !rn.Color {
			fmt.Fprintf(bw, "%-*s| ", tagWidth, line.Role)
		}
		// Segments never include the newline, so a background never bleeds
		// to the terminal edge.
		for _, seg := range line.Segments {
			rn.style(seg.Background, seg.Foreground).Fprint(bw, seg.Text)
		}
		bw.WriteString("\n")
	}
	return bw.Flush()
}

var tagWidth = func() int {
	w := 0
	for _, r := range walkthrough.Roles() {
		w = max(w, len(r.String()))
	}
	return w + 1
}()

func (rn Renderer) style(bg, fg *walkthrough.Color) *color.Color {
	c := color.New()
	if bg != nil {
		c.AddBgRGB(int(bg.RGB.R), int(bg.RGB.G), int(bg.RGB.B))
	}
	if fg != nil {
		c.AddRGB(int(fg.RGB.R), int(fg.RGB.G), int(fg.RGB.B))
		c.Add(color.Bold)
	}
	if rn.Color {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}
